package app

import (
	"database/sql"
	"fmt"
	"io"

	"shortr/internal/engine/analytics"
	"shortr/internal/engine/links"
	"shortr/internal/engine/redirect"
	"shortr/internal/pkg/geoip"
	"shortr/internal/pkg/logger"
	"shortr/internal/platform/auth"
	"shortr/internal/platform/config"
	"shortr/internal/platform/database"
)

// App holds the services shared by the server and the CLI. It is built once
// at start-up and every collaborator receives the same logger.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Log       *logger.AppLogger
	Links     *links.Service
	Analytics *analytics.Service
	Redirects *redirect.Service
	Recorder  *redirect.ClickRecorder
	Tokens    *auth.TokenService

	cache redirect.LinkCache
}

func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	cache, err := redirect.NewLinkCache(cfg.Cache)
	if err != nil {
		db.Close()
		return nil, err
	}

	appLog := logger.New(cfg.Logging)

	issuer := links.NewIssuer(links.IssuerConfig{
		BaseURL:     cfg.Links.BaseURL,
		CodeLength:  cfg.Links.CodeLength,
		MaxAttempts: cfg.Links.MaxAttempts,
	}, appLog)
	linkSvc := links.NewService(links.NewRepository(db), issuer, appLog)

	var geo geoip.Resolver = geoip.NewIPAPIResolver(cfg.GeoIP)
	if cfg.GeoIP.Endpoint == "" {
		geo = &geoip.StaticResolver{Location: links.UnknownLocation}
	}
	recorder := redirect.NewClickRecorder(linkSvc, geo, appLog)

	analyticsSvc := analytics.NewService(linkSvc, analytics.NewRepository(db), analytics.Config{
		Location:     cfg.Location(),
		TopLocations: cfg.Analytics.TopLocations,
	}, appLog)

	return &App{
		Config:    cfg,
		DB:        db,
		Log:       appLog,
		Links:     linkSvc,
		Analytics: analyticsSvc,
		Redirects: redirect.NewService(linkSvc, cache, recorder),
		Recorder:  recorder,
		Tokens:    auth.NewTokenService(cfg.Auth),
		cache:     cache,
	}, nil
}

// Cache is the redirect link cache, for health checks.
func (a *App) Cache() redirect.LinkCache {
	return a.cache
}

// Close waits for in-flight click recordings and log shipments, then
// releases connections.
func (a *App) Close() error {
	a.Recorder.Wait()
	a.Log.Close()

	if c, ok := a.cache.(io.Closer); ok {
		c.Close()
	}
	return a.DB.Close()
}
