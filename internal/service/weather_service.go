package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/model"
	"github.com/fakhrymubarak/weather-snapshots/internal/repository"
	"github.com/fakhrymubarak/weather-snapshots/internal/storage"
	"golang.org/x/sync/errgroup"
)

// ErrNoHistory means nothing has been stored for the city yet. It is an
// expected outcome rather than a failure.
var ErrNoHistory = errors.New("no historical data found")

type WeatherServiceInterface interface {
	IngestSnapshot(ctx context.Context, city string) (model.Snapshot, error)
	GetHistory(ctx context.Context, city string) ([]model.Snapshot, error)
}

type WeatherService struct {
	WeatherRepo repository.WeatherRepository
	Store       storage.ObjectStore
	Bucket      string
	// MaxConcurrency caps in-flight history fetches. Zero means one goroutine per key.
	MaxConcurrency int
	Now            func() time.Time
}

// NewWeatherService wires a service against store, reading the bucket and
// fan-out limit from config. The OpenWeatherMap repository is used unless one
// is passed in.
func NewWeatherService(store storage.ObjectStore, repo ...repository.WeatherRepository) *WeatherService {
	var weatherRepo repository.WeatherRepository
	if len(repo) > 0 && repo[0] != nil {
		weatherRepo = repo[0]
	} else {
		weatherRepo = repository.NewWeatherRepository()
	}
	return &WeatherService{
		WeatherRepo:    weatherRepo,
		Store:          store,
		Bucket:         config.GetBucketName(),
		MaxConcurrency: config.GetHistoryMaxConcurrency(),
		Now:            time.Now,
	}
}

func (s *WeatherService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// IngestSnapshot fetches the current weather and stores it under a fresh
// time-stamped key. Nothing is stored when the fetch fails, and the fetched
// data is dropped when the write fails.
func (s *WeatherService) IngestSnapshot(ctx context.Context, city string) (model.Snapshot, error) {
	snapshot, err := s.WeatherRepo.FetchCurrentWeather(ctx, city)
	if err != nil {
		return nil, err
	}

	key := storage.SnapshotKey(city, s.now())
	if err := s.Store.Put(ctx, s.Bucket, key, snapshot, storage.ContentTypeJSON); err != nil {
		return nil, err
	}
	config.GetLogger().Debugw("Stored weather snapshot", "city", city, "key", key)
	return snapshot, nil
}

// GetHistory loads every stored snapshot for city, in listing order. Each
// object is fetched and parsed in its own goroutine; the first failure fails
// the whole call and the other results are discarded. Siblings are left to
// finish rather than cancelled.
func (s *WeatherService) GetHistory(ctx context.Context, city string) ([]model.Snapshot, error) {
	keys, err := s.Store.List(ctx, s.Bucket, storage.CityPrefix(city))
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, ErrNoHistory
	}

	snapshots := make([]model.Snapshot, len(keys))
	var g errgroup.Group
	if s.MaxConcurrency > 0 {
		g.SetLimit(s.MaxConcurrency)
	}
	for i, key := range keys {
		g.Go(func() error {
			body, err := s.Store.Get(ctx, s.Bucket, key)
			if err != nil {
				return err
			}
			var snapshot model.Snapshot
			if err := json.Unmarshal(body, &snapshot); err != nil {
				return fmt.Errorf("parse %s: %w", key, err)
			}
			snapshots[i] = snapshot
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
