package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/handler"
	"github.com/fakhrymubarak/weather-snapshots/internal/middleware"
	"github.com/fakhrymubarak/weather-snapshots/internal/model"
	"github.com/fakhrymubarak/weather-snapshots/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (stubService) IngestSnapshot(ctx context.Context, city string) (model.Snapshot, error) {
	return model.Snapshot(`{"name":"` + city + `"}`), nil
}

func (stubService) GetHistory(ctx context.Context, city string) ([]model.Snapshot, error) {
	return nil, service.ErrNoHistory
}

func TestEnvironmentVariables(t *testing.T) {
	// Test default port behavior
	port := config.GetServerPort()
	if port != "8080" {
		t.Errorf("Expected default port 8080, got %s", port)
	}
}

func TestNewServer(t *testing.T) {
	srv := newServer(":0", http.NewServeMux())
	assert.Equal(t, 15*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.WriteTimeout)
	assert.Equal(t, 30*time.Second, srv.IdleTimeout)
}

func TestRoutes(t *testing.T) {
	middleware.ResetVisitors()
	server := httptest.NewServer(newMux(handler.NewWeatherHandler(stubService{})))
	defer server.Close()

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/weather/Paris", http.StatusOK},
		{"/weather/Paris/history", http.StatusNotFound},
		{"/weather/", http.StatusBadRequest},
		{"/other", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(server.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	resp, err := http.Post(server.URL+"/weather/Paris", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
