package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix   = "clinicgate:session:"
	redisEventsTopic = "clinicgate:session.events"
)

// RedisStore shares sessions between gateway replicas. Mutations publish the
// session ID on a pub/sub channel so managers on other replicas re-read the
// store, keeping the same eventually-consistent contract as the in-process
// store.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger

	obsMu     sync.Mutex
	observers map[int]func(sid string)
	nextObs   int

	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedisStore connects to Redis and starts the mutation listener.
// A non-positive ttl defaults to 7 days.
func NewRedisStore(url string, ttl time.Duration, log *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	s := &RedisStore{
		client:    client,
		ttl:       ttl,
		log:       log,
		observers: make(map[int]func(sid string)),
		done:      make(chan struct{}),
	}
	s.pubsub = client.Subscribe(context.Background(), redisEventsTopic)
	go s.listen()
	return s, nil
}

func (s *RedisStore) Get(ctx context.Context, sid string) (Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt record is as good as no record; clear it.
		_ = s.client.Del(ctx, redisKeyPrefix+sid).Err()
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sid string, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sid, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.publish(ctx, sid)
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sid).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	s.publish(ctx, sid)
	return nil
}

func (s *RedisStore) Subscribe(fn func(sid string)) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()

	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *RedisStore) Close() error {
	close(s.done)
	_ = s.pubsub.Close()
	return s.client.Close()
}

func (s *RedisStore) publish(ctx context.Context, sid string) {
	if err := s.client.Publish(ctx, redisEventsTopic, sid).Err(); err != nil {
		s.log.Warn("session event publish failed", "error", err)
	}
}

func (s *RedisStore) listen() {
	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.obsMu.Lock()
			fns := make([]func(string), 0, len(s.observers))
			for _, fn := range s.observers {
				fns = append(fns, fn)
			}
			s.obsMu.Unlock()
			for _, fn := range fns {
				fn(msg.Payload)
			}
		}
	}
}
