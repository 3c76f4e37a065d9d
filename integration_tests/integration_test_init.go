package integrationtest

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/alicebob/miniredis/v2"
	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/handler"
	"github.com/fakhrymubarak/weather-snapshots/internal/redis"
	"github.com/fakhrymubarak/weather-snapshots/internal/service"
	"github.com/fakhrymubarak/weather-snapshots/internal/storage"
	"github.com/spf13/viper"
)

const (
	testBucket = "integration-bucket"
	testAPIKey = "test_api_key"
)

var (
	miniRedisMock *miniredis.Miniredis
)

func createMockRedisServer() {
	miniRedisMock = miniredis.NewMiniRedis()
	if err := miniRedisMock.Start(); err != nil {
		panic(err)
	}
}

// setupIntegrationTestServer points config at the miniredis instance and the
// mock weather API, then serves both handlers over a real Redis-backed store.
func setupIntegrationTestServer(owmURL string) *httptest.Server {
	viper.Set("redis.addr", miniRedisMock.Addr())
	viper.Set("storage.backend", storage.BackendRedis)
	viper.Set("storage.bucket", testBucket)
	viper.Set("openweathermap.api_url", owmURL)
	config.ReloadConfigForTest()
	redis.ResetClientForTest()
	storage.ResetDefaultForTest()

	store, err := storage.Default(context.Background())
	if err != nil {
		panic(err)
	}
	h := handler.NewWeatherHandler(service.NewWeatherService(store))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /weather/{city}", handler.HTTPAdapter(h.HandleFetchWeather))
	mux.HandleFunc("GET /weather/{city}/history", handler.HTTPAdapter(h.HandleHistoricalData))
	mux.HandleFunc("GET /weather/{$}", handler.HTTPAdapter(h.HandleFetchWeather))
	return httptest.NewServer(mux)
}

func mockOWMApi() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if r.URL.Query().Get("appid") != testAPIKey {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
			return
		}
		if r.URL.Query().Get("units") != "metric" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"cod":"400","message":"units must be metric"}`))
			return
		}
		if q == "London" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"name": "London", "main": {"temp": 15.2}, "weather": [{"description": "clear sky"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod": "404", "message": "city not found"}`))
	}))
}
