// Package app assembles the console: the gateway backend selected by configuration, object storage
// and the HTTP router.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/church-console/backend/config"
	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/database"
	"github.com/church-console/backend/pkg/storage"
)

// OpenStore connects the configured database, applies migrations and returns a store over it.
// The returned func releases the connection. A nil reg disables gateway metrics.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, reg prometheus.Registerer, logger *zap.Logger) (*store.Store, func(), error) {
	gws, closeFn, err := openGateways(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if reg != nil {
		gws = store.Instrument(gws, gateway.NewMetrics(reg))
	}
	return store.New(gws, logger), closeFn, nil
}

func openGateways(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (store.Gateways, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.DSN(), int32(cfg.MaxConns), logger)
		if err != nil {
			return store.Gateways{}, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return store.Gateways{}, nil, fmt.Errorf("migrate: %w", err)
		}
		return store.SQLGateways(gateway.NewPostgresConn(pool), logger), pool.Close, nil
	case config.DriverSQLite:
		db, err := database.NewSQLite(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return store.Gateways{}, nil, err
		}
		if err := database.MigrateSQLite(ctx, db); err != nil {
			_ = db.Close()
			return store.Gateways{}, nil, fmt.Errorf("migrate: %w", err)
		}
		return store.SQLGateways(gateway.NewSQLiteConn(db), logger), func() { _ = db.Close() }, nil
	case config.DriverMemory:
		logger.Warn("using in-memory gateways; data is lost on restart")
		return store.NewMemoryGateways().Gateways(), func() {}, nil
	}
	return store.Gateways{}, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenS3 creates the S3 client, or returns nil when no bucket is configured.
func OpenS3(ctx context.Context, cfg config.AWSConfig, logger *zap.Logger) (*storage.S3, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return storage.NewS3(ctx, storage.S3Config{
		Region:               cfg.Region,
		AccessKeyID:          cfg.AccessKeyID,
		SecretAccessKey:      cfg.SecretAccessKey,
		MediaBucket:          cfg.MediaBucket,
		ReportsBucket:        cfg.ReportsBucket,
		PresignExpireMinutes: cfg.PresignExpireMinutes,
		Endpoint:             cfg.Endpoint,
	}, logger)
}
