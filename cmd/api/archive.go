package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	appanalysis "github.com/bryanwahyu/loglens/internal/application/analysis"
	"github.com/bryanwahyu/loglens/internal/config"
	domain "github.com/bryanwahyu/loglens/internal/domain/analysis"
	mysqlp "github.com/bryanwahyu/loglens/internal/infra/db/mysql"
	"github.com/bryanwahyu/loglens/internal/infra/db/postgres"
	"github.com/bryanwahyu/loglens/internal/infra/db/sqlite"
	minioStore "github.com/bryanwahyu/loglens/internal/infra/storage"
	"github.com/bryanwahyu/loglens/internal/middleware"
)

type schemaRepo interface {
	EnsureSchema(ctx context.Context) error
}

type archiveSet struct {
	members appanalysis.MultiArchive
	db      *sql.DB
}

func (a *archiveSet) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// openArchive connects the configured audit trail backends and registers a
// health check for each. Nothing configured yields an empty set.
func openArchive(ctx context.Context, cfg config.ArchiveConfig, checks map[string]middleware.HealthChecker) (*archiveSet, error) {
	set := &archiveSet{}

	if cfg.Driver != "" {
		if cfg.DSN == "" {
			return nil, fmt.Errorf("archive driver %q requires ARCHIVE_DSN", cfg.Driver)
		}
		var (
			db   *sql.DB
			repo interface {
				schemaRepo
				domain.Archive
				domain.HistoryReader
			}
			err error
		)
		switch cfg.Driver {
		case "mysql":
			if db, err = mysqlp.Connect(ctx, cfg.DSN); err == nil {
				repo = mysqlp.NewAnalysisRepository(db)
			}
		case "postgres":
			if db, err = postgres.Connect(ctx, cfg.DSN); err == nil {
				repo = postgres.NewAnalysisRepository(db)
			}
		case "sqlite":
			if db, err = sqlite.Connect(ctx, cfg.DSN); err == nil {
				repo = sqlite.NewAnalysisRepository(db)
			}
		default:
			return nil, fmt.Errorf("unknown archive driver %q (allowed: mysql, postgres, sqlite)", cfg.Driver)
		}
		if err != nil {
			return nil, fmt.Errorf("%s connect: %w", cfg.Driver, err)
		}
		set.db = db
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s schema: %w", cfg.Driver, err)
		}
		set.members = append(set.members, repo)
		checks[cfg.Driver] = &middleware.DatabaseHealthChecker{DB: db}
		slog.Info("analysis archive enabled", "driver", cfg.Driver)
	}

	if cfg.Minio.Enabled {
		m := cfg.Minio
		store, err := minioStore.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("minio init: %w", err), set.Close())
		}
		set.members = append(set.members, store)
		checks["minio"] = middleware.CheckFunc(store.Ping)
		slog.Info("object archive enabled", "endpoint", m.Endpoint, "bucket", m.BucketName)
	}

	return set, nil
}
