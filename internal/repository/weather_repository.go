package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/model"
)

// Custom error types
var (
	ErrExternalAPI     = errors.New("external API error")
	ErrInvalidResponse = errors.New("weather provider returned invalid JSON")
)

// UpstreamError is a failure reported by the weather provider itself. The
// status is passed on to the caller of the handler.
type UpstreamError struct {
	StatusCode int
	Message    string
	// ProviderMessage is the provider's own explanation, kept for logs.
	ProviderMessage string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// HTTPStatus reports the upstream status, or 500 when none was received.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// WeatherRepository defines the interface for current-weather lookups
type WeatherRepository interface {
	FetchCurrentWeather(ctx context.Context, city string) (model.Snapshot, error)
}

// weatherRepository implements WeatherRepository against OpenWeatherMap
type weatherRepository struct {
	httpClient *http.Client
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(httpClient ...*http.Client) WeatherRepository {
	client := http.DefaultClient
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &weatherRepository{
		httpClient: client,
	}
}

func (r *weatherRepository) buildURL(city string) (string, error) {
	u, err := url.Parse(config.GetOpenWeatherApiUrl())
	if err != nil {
		return "", fmt.Errorf("%w: bad api url: %v", ErrExternalAPI, err)
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("appid", config.GetOpenWeatherMapAPIKey())
	q.Set("units", config.GetOpenWeatherUnits())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchCurrentWeather performs a single lookup with no retry and returns the
// provider's body untouched apart from whitespace compaction.
func (r *weatherRepository) FetchCurrentWeather(ctx context.Context, city string) (model.Snapshot, error) {
	endpoint, err := r.buildURL(city)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrExternalAPI, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstream := &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
		}
		var owmErr model.OpenWeatherMapError
		if json.Unmarshal(body, &owmErr) == nil {
			upstream.ProviderMessage = owmErr.Message
		}
		return nil, upstream
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return model.Snapshot(compact.Bytes()), nil
}
