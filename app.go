package main

import (
	"github.com/sirupsen/logrus"

	"github.com/rayference/tengen/internal/cache"
	"github.com/rayference/tengen/internal/config"
	"github.com/rayference/tengen/internal/fetch"
	"github.com/rayference/tengen/internal/logging"
	"github.com/rayference/tengen/internal/metrics"
	"github.com/rayference/tengen/internal/resource"
	"github.com/rayference/tengen/internal/source"
	"github.com/rayference/tengen/internal/units"
)

// newFetcher is swapped in tests to keep them offline.
var newFetcher = func(cfg *config.Config) fetch.Fetcher {
	return fetch.NewClient(cfg)
}

// application is what the subcommands share. Construction follows
// config, logger, cache, catalog.
type application struct {
	cfg     *config.Config
	logger  *logrus.Logger
	dir     *cache.Dir
	store   cache.Store
	catalog *resource.Catalog
	metrics *metrics.Recorder
}

// loadBase reads the configuration and sets up logging and the cache
// directory handle without touching the disk.
func loadBase(opts *globalOptions) (*application, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Global.LogLevel = opts.logLevel
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		return nil, err
	}

	return &application{
		cfg:    cfg,
		logger: logger,
		dir:    cache.NewDir(cfg.Global.CacheDir),
	}, nil
}

// bootstrap additionally opens the store and binds every data set.
func bootstrap(opts *globalOptions) (*application, error) {
	app, err := loadBase(opts)
	if err != nil {
		return nil, err
	}

	app.store, err = cache.NewStore(app.dir.Root())
	if err != nil {
		return nil, err
	}

	env := &source.Env{
		Fetcher:    newFetcher(app.cfg),
		Units:      units.Default(),
		ScratchDir: app.dir.RawDir(),
		Logger:     app.logger,
	}
	app.metrics = metrics.New()
	app.catalog, err = resource.NewCatalog(app.store, env,
		resource.WithLogger(app.logger),
		resource.WithMetrics(app.metrics),
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}
