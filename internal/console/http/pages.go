package http

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// PagesHandler forwards page navigations to the frontend upstream. The gate
// has already run by the time a request lands here, so the upstream only
// ever renders for sessions the guard allowed. Without an upstream
// configured a plain placeholder is served, which keeps dev setups and gate
// tests self-contained.
func PagesHandler(upstream string, log *slog.Logger) http.Handler {
	if upstream == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<!doctype html><title>clinicgate</title><p>no pages upstream configured</p>"))
		})
	}

	target, err := url.Parse(upstream)
	if err != nil {
		log.Error("invalid pages upstream, serving placeholder", "upstream", upstream, "error", err)
		return PagesHandler("", log)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("pages upstream unreachable", "error", err)
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}
	return proxy
}
