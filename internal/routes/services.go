package routes

import (
	"context"
	"fmt"

	"github.com/schemes-portal/schemes_portal/internal/backend"
	"github.com/schemes-portal/schemes_portal/internal/catalog"
	"github.com/schemes-portal/schemes_portal/internal/config"
	"github.com/schemes-portal/schemes_portal/internal/dashboard"
	"github.com/schemes-portal/schemes_portal/internal/identity"
	"github.com/schemes-portal/schemes_portal/internal/logging"
	"github.com/schemes-portal/schemes_portal/internal/notification"
	"github.com/schemes-portal/schemes_portal/internal/profile"
	"github.com/schemes-portal/schemes_portal/internal/session"
)

// Services are the application services built for one configuration.
type Services struct {
	Catalog   *catalog.Service
	Profiles  profile.Repository
	Identity  *identity.Service
	Sessions  *session.Manager
	Dashboard *dashboard.Service
	Broker    notification.Broker
}

// Close releases the event broker.
func (s *Services) Close() error {
	if s.Broker == nil {
		return nil
	}
	return s.Broker.Close()
}

// BuildServices selects storage drivers from d.Cfg.DataBackend and layers
// the Redis-backed stores on top when a cache is available.
func BuildServices(ctx context.Context, d Deps) (*Services, error) {
	var (
		catalogRepo catalog.Repository
		profiles    profile.Repository
		auth        identity.Authenticator
	)

	switch d.Cfg.DataBackend {
	case config.DriverRemote:
		client := d.Backend
		if client == nil {
			var err error
			client, err = backend.New(backend.Options{
				BaseURL: d.Cfg.BackendURL,
				APIKey:  d.Cfg.BackendAnonKey,
				Timeout: d.Cfg.BackendTimeout,
			})
			if err != nil {
				return nil, err
			}
		}
		catalogRepo = catalog.NewRemoteRepository(client)
		profiles = profile.NewRemoteRepository(client)
		auth = identity.NewRemoteAuthenticator(client)
	case config.DriverPostgres:
		if d.Res == nil || d.Res.Postgres == nil {
			return nil, fmt.Errorf("postgres pool is required when DATA_BACKEND=%s", config.DriverPostgres)
		}
		catalogRepo = catalog.NewPostgresRepository(d.Res.Postgres)
		profiles = profile.NewPostgresRepository(d.Res.Postgres)
		auth = identity.NewLocalAuthenticator(identity.NewPostgresRepository(d.Res.Postgres))
	case config.DriverSQLite:
		if d.Res == nil || d.Res.SQLite == nil {
			return nil, fmt.Errorf("sqlite database is required when DATA_BACKEND=%s", config.DriverSQLite)
		}
		catalogRepo = catalog.NewSQLiteRepository(d.Res.SQLite)
		profiles = profile.NewSQLiteRepository(d.Res.SQLite)
		auth = identity.NewLocalAuthenticator(identity.NewSQLiteRepository(d.Res.SQLite))
	case config.DriverMemory:
		catalogRepo = catalog.NewMemoryRepository(nil, nil)
		profiles = profile.NewMemoryRepository()
		auth = identity.NewLocalAuthenticator(identity.NewMemoryRepository())
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", d.Cfg.DataBackend)
	}

	var (
		otpStore identity.OTPStore
		sessions session.Store
		broker   notification.Broker
	)
	if cache := d.cache(); cache != nil {
		catalogRepo = catalog.NewCachedRepository(catalogRepo, cache, d.Cfg.CatalogCacheTTL, logging.Component(d.Logger, "catalog-cache"))
		otpStore = identity.NewRedisOTPStore(cache, d.Cfg.OTPFormTTL)
		sessions = session.NewRedisStore(cache)
		redisBroker, err := notification.NewRedisBroker(ctx, cache, logging.Component(d.Logger, "notification"))
		if err != nil {
			return nil, err
		}
		broker = redisBroker
	} else {
		otpStore = identity.NewMemoryOTPStore(d.Cfg.OTPFormTTL)
		sessions = session.NewMemoryStore()
		broker = notification.NewMemoryBroker()
	}
	broker.Subscribe(notification.NewLoggerNotifier(logging.Component(d.Logger, "session-events")).Handle)

	signer, err := session.NewSigner(d.Cfg.SessionSecret, d.Cfg.SessionTTL)
	if err != nil {
		broker.Close()
		return nil, err
	}

	catalogSvc := catalog.NewService(catalogRepo, logging.Component(d.Logger, "catalog"))
	otp := identity.NewOTPService(otpStore, d.Cfg.OTPDelay, d.Cfg.OTPMaxAttempts)
	return &Services{
		Catalog:   catalogSvc,
		Profiles:  profiles,
		Identity:  identity.NewService(auth, profiles, otp, logging.Component(d.Logger, "identity")),
		Sessions:  session.NewManager(sessions, signer, broker, auth, d.Cfg.SessionTTL, logging.Component(d.Logger, "session")),
		Dashboard: dashboard.NewService(catalogSvc, profiles, d.Cfg.DashboardTimeout, logging.Component(d.Logger, "dashboard")),
		Broker:    broker,
	}, nil
}
