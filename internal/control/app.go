// Package control wires the application together and manages its lifecycle:
// notification center, connectivity monitor, weather refresh loop, note
// storage selection, and the status HTTP server the rendering layer reads.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wlp-app/wlp/internal/core/config"
	"github.com/wlp-app/wlp/internal/core/domain"
	"github.com/wlp-app/wlp/internal/fetch"
	"github.com/wlp-app/wlp/internal/infra/backend"
	"github.com/wlp-app/wlp/internal/infra/openweather"
	redisclient "github.com/wlp-app/wlp/internal/infra/redis"
	"github.com/wlp-app/wlp/internal/infra/storage"
	"github.com/wlp-app/wlp/internal/infra/storage/memory"
	"github.com/wlp-app/wlp/internal/infra/storage/postgres"
	"github.com/wlp-app/wlp/internal/netmon"
	"github.com/wlp-app/wlp/internal/notify"
	"github.com/wlp-app/wlp/internal/planner"
	"github.com/wlp-app/wlp/internal/weather"
)

// MigrationsDir is where goose migrations live, relative to CWD.
const MigrationsDir = "migrations"

// App is the main application struct that manages component lifecycles.
type App struct {
	cfg *config.AppConfig
	log *slog.Logger

	center  *notify.Center
	monitor *netmon.Monitor
	prober  *netmon.Prober
	weather *weather.Service
	planner *planner.Service
	refresh *fetch.Group

	backendClient *backend.Client
	db            *postgres.DB
	redisClient   *redisclient.Client
	server        *Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an App with all dependencies initialized.
func New(cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log, refresh: fetch.NewGroup("weather")}

	// Notification pipeline. The classifier reads the monitor's connectivity
	// snapshot; the monitor drives the center's offline slot.
	classifier := notify.NewClassifier(func() bool {
		if a.monitor == nil {
			return true
		}
		return a.monitor.Online()
	})
	a.center = notify.NewCenter(classifier, log)

	if cfg.Backend.URL != "" {
		a.backendClient = backend.NewClient(cfg.Backend.URL, cfg.Backend.RequestTimeout)
	}

	var probe netmon.ProbeFunc
	if a.backendClient != nil {
		probe = func(ctx context.Context) error {
			_, err := a.backendClient.Session(ctx)
			return err
		}
	}
	a.monitor = netmon.NewMonitor(a.center, probe, netmon.Config{
		ReassertInterval: cfg.Offline.ReassertInterval,
		Debounce:         cfg.Offline.Debounce,
	}, log)
	a.prober = netmon.NewProber(a.monitor,
		netmon.DialCheck(cfg.Offline.ProbeAddr, cfg.Offline.ProbeTimeout),
		cfg.Offline.ProbeInterval)

	// Note storage: postgres when a database is configured, the remote
	// backend otherwise, memory as the fallback.
	var noteRepo storage.NoteRepository
	switch {
	case cfg.Database.URL != "":
		db, err := postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(MigrationsDir); err != nil {
			return nil, err
		}
		a.db = db
		noteRepo = postgres.NewNoteRepo(db)
		log.Info("using PostgreSQL note storage")
	case a.backendClient != nil:
		noteRepo = backend.NewNoteRepo(a.backendClient)
		log.Info("using remote note storage")
	default:
		noteRepo = memory.NewNoteRepo()
		log.Info("using memory note storage")
	}
	a.planner = planner.NewService(noteRepo, log)

	var cache weather.Cache
	if cfg.Redis.URL != "" {
		redisClient, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = redisClient
		cache = redisClient
		log.Info("weather cache enabled")
	}

	api := openweather.NewClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.RequestTimeout)
	a.weather = weather.NewService(api, cache, cfg.Weather.CacheTTL, *cfg.City, log)

	a.server = NewServer(a, cfg.Server.Port)
	return a, nil
}

// Start brings the app up: seeds the connectivity monitor, starts the
// prober, the weather refresh loop, and the status server. Non-blocking.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	online := a.prober.CheckNow(runCtx)
	a.monitor.Start(online)

	if a.backendClient != nil && a.cfg.Backend.Email != "" {
		a.signIn(runCtx)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.prober.Run(runCtx)
	}()

	if a.cfg.Weather.APIKey != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.refreshLoop(runCtx)
		}()
	} else {
		a.log.Warn("weather refresh disabled: no API key configured")
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Start(); err != nil {
			a.log.Error("status server stopped", "error", err)
		}
	}()

	a.log.Info("app started", "port", a.cfg.Server.Port, "city", a.weather.City().Name)
	return nil
}

// Stop shuts everything down, clearing the monitor's timer on the way out.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	a.monitor.Stop()

	var firstErr error
	if err := a.server.Stop(ctx); err != nil {
		firstErr = err
	}
	a.wg.Wait()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RefreshWeather runs one deduplicated weather refresh. Failures route
// through the notification center with a retry that runs the refresh again.
func (a *App) RefreshWeather(ctx context.Context) {
	started, err := a.refresh.Do("refresh", func() error {
		_, err := a.weather.Refresh(ctx)
		return err
	})
	if !started {
		return
	}
	if err != nil {
		a.center.ShowError(err, &notify.Options{
			Retry: func(ctx context.Context) error {
				_, err := a.weather.Refresh(ctx)
				return err
			},
		})
	}
}

func (a *App) refreshLoop(ctx context.Context) {
	a.RefreshWeather(ctx)

	ticker := time.NewTicker(a.cfg.Weather.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.RefreshWeather(ctx)
		}
	}
}

// signIn authenticates against the backend with the configured credentials.
// A failure is surfaced, with sign-in itself as the retry.
func (a *App) signIn(ctx context.Context) {
	_, err := a.backendClient.SignIn(ctx, a.cfg.Backend.Email, a.cfg.Backend.Password)
	if err != nil {
		a.center.ShowError(err, &notify.Options{
			Retry: func(ctx context.Context) error {
				_, err := a.backendClient.SignIn(ctx, a.cfg.Backend.Email, a.cfg.Backend.Password)
				return err
			},
		})
		return
	}
	a.log.Info("signed in", "email", a.cfg.Backend.Email)
}

// Center exposes the notification center to the status server.
func (a *App) Center() *notify.Center { return a.center }

// Monitor exposes the connectivity monitor to the status server.
func (a *App) Monitor() *netmon.Monitor { return a.monitor }

// Weather exposes the weather service to the status server.
func (a *App) Weather() *weather.Service { return a.weather }

// Planner exposes the planner service to the status server.
func (a *App) Planner() *planner.Service { return a.planner }

// City returns the active city.
func (a *App) City() domain.City { return a.weather.City() }
