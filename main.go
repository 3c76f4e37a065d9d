package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/handler"
	"github.com/fakhrymubarak/weather-snapshots/internal/middleware"
	"github.com/fakhrymubarak/weather-snapshots/internal/service"
	"github.com/fakhrymubarak/weather-snapshots/internal/storage"
)

// newMux routes both handlers the way API Gateway does in the deployed stack.
func newMux(h *handler.WeatherHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /weather/{city}", middleware.RateLimitMiddleware(handler.HTTPAdapter(h.HandleFetchWeather)))
	mux.Handle("GET /weather/{city}/history", middleware.RateLimitMiddleware(handler.HTTPAdapter(h.HandleHistoricalData)))
	mux.Handle("GET /weather/{$}", handler.HTTPAdapter(h.HandleFetchWeather))
	return mux
}

func newServer(addr string, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: config.GetServerTimeoutDuration("read_header_timeout", 15*time.Second),
		ReadTimeout:       config.GetServerTimeoutDuration("read_timeout", 15*time.Second),
		WriteTimeout:      config.GetServerTimeoutDuration("write_timeout", 10*time.Second),
		IdleTimeout:       config.GetServerTimeoutDuration("idle_timeout", 30*time.Second),
	}
}

func main() {
	logger := config.GetLogger()
	defer func() { _ = logger.Sync() }()

	store, err := storage.Default(context.Background())
	if err != nil {
		logger.Fatalw("Could not create snapshot store", "backend", config.GetStorageBackend(), "error", err)
	}
	h := handler.NewWeatherHandler(service.NewWeatherService(store))

	middleware.StartRateLimiterCleanup()

	port := config.GetServerPort()
	srv := newServer(":"+port, newMux(h))
	logger.Infow("Weather snapshot server running", "port", port, "backend", config.GetStorageBackend())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Server stopped", "error", err)
	}
}
