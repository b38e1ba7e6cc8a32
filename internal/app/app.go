package app

import (
	"fmt"
	"time"

	"github.com/xelth-com/ecktms/internal/auth"
	"github.com/xelth-com/ecktms/internal/cache"
	"github.com/xelth-com/ecktms/internal/config"
	"github.com/xelth-com/ecktms/internal/database"
	"github.com/xelth-com/ecktms/internal/logger"
	"github.com/xelth-com/ecktms/internal/notify"
	"github.com/xelth-com/ecktms/internal/remote"
	"github.com/xelth-com/ecktms/internal/session"
	"github.com/xelth-com/ecktms/internal/sync"
	"go.uber.org/zap"
)

// App is the application shell: it owns one session and the sync engine built for it
type App struct {
	Config     *config.Config
	SyncConfig *config.SyncConfig
	Cache      *cache.LocalCache
	Notifier   *notify.Notifier
	Session    *session.State
	Service    *sync.Service
	Runner     *sync.AutoSyncRunner

	db  *database.DB
	log *zap.SugaredLogger
}

// FromEnv loads configuration from the environment and builds the App
func FromEnv() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg, config.LoadSyncConfig())
}

// New wires the remote client, the local cache and the sync engine
func New(cfg *config.Config, syncCfg *config.SyncConfig) (*App, error) {
	store, db, err := openStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	opts := []remote.Option{
		remote.WithHeader("X-Instance-ID", cfg.InstanceID),
		remote.WithHeader("X-API-Key", cfg.Remote.APIKey),
	}
	if cfg.Remote.JWTSecret != "" {
		signer := auth.NewSigner(cfg.InstanceID, auth.TokenTypeClient, cfg.Remote.JWTSecret, time.Hour)
		opts = append(opts, remote.WithTokenSource(signer.Token))
	}
	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout, opts...)
	return Assemble(cfg, syncCfg, client, store, db), nil
}

// Assemble builds an App around an existing remote store and cache backend
func Assemble(cfg *config.Config, syncCfg *config.SyncConfig, client sync.RemoteStore, store cache.Store, db *database.DB) *App {
	local := cache.New(store, logger.For("cache"))
	notifier := notify.New()

	return &App{
		Config:     cfg,
		SyncConfig: syncCfg,
		Cache:      local,
		Notifier:   notifier,
		Session:    session.New(),
		Service:    sync.NewService(client, local, notifier, logger.For("sync")),
		Runner:     sync.NewAutoSyncRunner(client, local, notifier, syncCfg.EnabledCollections(), logger.For("autosync")),
		db:         db,
		log:        logger.For("app"),
	}
}

// Close releases the cache database, if any
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	a.log.Info("🛑 Closing database connection...")
	return a.db.Close()
}

// openStore picks the cache backend named by the configuration
func openStore(cfg config.CacheConfig) (cache.Store, *database.DB, error) {
	if cfg.Driver == "memory" {
		return cache.NewMemoryStore(cfg.MaxBytes), nil, nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := cache.NewGormStore(db.DB, cfg.MaxBytes)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return store, db, nil
}
