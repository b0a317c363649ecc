package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dentalops/clinicgate/internal/identity/store"
)

// HousekeepingService periodically deletes expired refresh tokens so the
// table does not grow without bound.
type HousekeepingService struct {
	store    store.Store
	log      *slog.Logger
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewHousekeepingService(st store.Store, log *slog.Logger, interval time.Duration) *HousekeepingService {
	return &HousekeepingService{
		store:    st,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *HousekeepingService) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *HousekeepingService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.store.RefreshTokens().DeleteExpiredRefreshTokens(ctx); err != nil {
		s.log.Warn("refresh token sweep failed", "error", err)
	}
}
