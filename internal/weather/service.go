// Package weather owns the weather refresh: two concurrent API calls
// (current conditions, today's precipitation probability) combined into one
// snapshot, with an optional Redis-backed cache in front.
package weather

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/infra/openweather"
	"github.com/wlp-app/wlp/internal/metrics"
)

// Cache is the snapshot cache interface. Implemented by the Redis client.
type Cache interface {
	GetSnapshot(ctx context.Context, city domain.City, day string) (*domain.WeatherSnapshot, bool, error)
	SetSnapshot(ctx context.Context, snap *domain.WeatherSnapshot, day string, ttl time.Duration) error
}

// Service fetches and holds the current weather snapshot for the configured
// city. The city can change at runtime; there is no generation stamping on
// responses, so when two refreshes for different cities race, the last one
// to finish wins.
type Service struct {
	api   *openweather.Client
	cache Cache
	ttl   time.Duration
	log   *slog.Logger

	mu     sync.RWMutex
	city   domain.City
	latest *domain.WeatherSnapshot
}

// NewService creates a weather service. cache may be nil.
func NewService(api *openweather.Client, cache Cache, ttl time.Duration, city domain.City, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{api: api, cache: cache, ttl: ttl, log: log, city: city}
}

// City returns the city refreshes currently target.
func (s *Service) City() domain.City {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.city
}

// SetCity changes the refresh target.
func (s *Service) SetCity(city domain.City) {
	s.mu.Lock()
	s.city = city
	s.mu.Unlock()
	s.log.Info("city changed", "city", city.Name)
}

// Latest returns the most recent snapshot, or nil before the first refresh.
func (s *Service) Latest() *domain.WeatherSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Refresh fetches a fresh snapshot for the current city. The two underlying
// calls run concurrently; if either fails, the whole refresh fails and the
// previous snapshot stays in place. Cache errors degrade to a live fetch.
func (s *Service) Refresh(ctx context.Context) (*domain.WeatherSnapshot, error) {
	city := s.City()
	now := time.Now()
	day := now.Format("2006-01-02")

	if s.cache != nil {
		if snap, ok, err := s.cache.GetSnapshot(ctx, city, day); err != nil {
			s.log.Warn("weather cache read failed", "error", err)
		} else if ok && now.Sub(snap.FetchedAt) < s.ttl {
			s.store(snap)
			metrics.WeatherFetchesTotal.WithLabelValues("cache_hit").Inc()
			return snap, nil
		}
	}

	start := time.Now()
	var (
		current *openweather.Current
		maxPop  float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.api.CurrentByCoords(gctx, city.Lat, city.Lon)
		return err
	})
	g.Go(func() error {
		var err error
		maxPop, err = s.api.TodayMaxPop(gctx, city.Lat, city.Lon, now)
		return err
	})
	if err := g.Wait(); err != nil {
		metrics.WeatherFetchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.WeatherFetchLatency.Observe(time.Since(start).Seconds())
	metrics.WeatherFetchesTotal.WithLabelValues("ok").Inc()

	snap := &domain.WeatherSnapshot{
		City:      city,
		TempC:     current.Main.Temp,
		MaxPop:    maxPop,
		FetchedAt: now,
	}
	if len(current.Weather) > 0 {
		snap.Description = current.Weather[0].Description
		snap.Icon = current.Weather[0].Icon
	}

	s.store(snap)
	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snap, day, s.ttl); err != nil {
			s.log.Warn("weather cache write failed", "error", err)
		}
	}
	return snap, nil
}

func (s *Service) store(snap *domain.WeatherSnapshot) {
	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()
}
