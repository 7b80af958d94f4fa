package cli

import (
	"context"
	"fmt"

	authclient "github.com/goliatone/go-auth-client"
	"github.com/goliatone/go-auth-client/config"
	"github.com/goliatone/go-auth-client/repository"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app wires the store, backend and persistence for one command run
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	// clientLogger adapts logger for the library packages
	clientLogger authclient.Logger

	store    *authclient.Store
	registry *prometheus.Registry
	metrics  *authclient.Metrics
	closers  []func() error
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	clientLogger := authclient.NewZapLogger(logger)

	a := &app{
		cfg:          cfg,
		logger:       logger,
		clientLogger: clientLogger,
		registry:     prometheus.NewRegistry(),
	}
	a.metrics = authclient.NewMetrics(a.registry)

	persister, closer, err := newPersister(ctx, cfg.Auth.Persistence)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session storage")
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	backend := authclient.NewHTTPBackend(cfg, nil).WithLogger(clientLogger)

	a.store = authclient.NewStore(cfg, backend).
		WithLogger(clientLogger).
		WithPersister(persister).
		WithMetrics(a.metrics)

	if _, err := a.store.Restore(ctx); err != nil {
		a.Close()
		return nil, errors.Wrap(err, "failed to restore session")
	}

	if authclient.InsecureTLS(cfg) {
		logger.Warn("TLS certificate verification is disabled for this development build")
	}

	return a, nil
}

func (a *app) transport() *authclient.Transport {
	return authclient.NewTransport(a.store, nil).WithLogger(a.clientLogger)
}

func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.logger.Sync()
}

func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v.GetString("config"), v.GetString("env-config"))
	if err != nil {
		return nil, err
	}

	if env := v.GetString("env"); env != "" {
		cfg.Environment = env
	}
	if driver := v.GetString("store"); driver != "" {
		cfg.Auth.Persistence.Driver = driver
	}
	if dsn := v.GetString("dsn"); dsn != "" {
		cfg.Auth.Persistence.DSN = dsn
	}
	if level := v.GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, err
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

func newPersister(ctx context.Context, cfg config.PersistenceConfig) (authclient.Persister, func() error, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return authclient.NewMemoryPersister(), nil, nil
	case config.DriverRedis:
		persister, client, err := repository.NewRedisPersisterFromURL(cfg.DSN, cfg.Prefix, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return persister, client.Close, nil
	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		persister := repository.NewBunPersister(db, cfg.Key)
		if err := persister.CreateTable(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return persister, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown persistence driver %q", cfg.Driver)
	}
}
