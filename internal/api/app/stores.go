package app

import (
	"context"
	"fmt"
	"strings"

	"policyinsight/internal/api/config"
	"policyinsight/internal/logging"
	feedbackrepo "policyinsight/internal/repository/feedback"
	policyrepo "policyinsight/internal/repository/policy"
	"policyinsight/internal/repository/report"
	"policyinsight/internal/repository/sqlstore"
)

type stores struct {
	kind     string
	feedback feedbackrepo.Store
	policy   policyrepo.Store
	report   report.Store
	db       *sqlstore.DB
}

func (s *stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func initStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	reports, err := chooseReportStore(cfg)
	if err != nil {
		return nil, err
	}

	var db *sqlstore.DB
	switch cfg.StoreKind() {
	case "postgres":
		db, err = sqlstore.OpenPostgres(cfg.DatabaseURL)
	case "sqlite":
		db, err = sqlstore.OpenSQLite(cfg.SQLitePath)
	default:
		logging.Info("store: in-memory")
		return &stores{
			kind:     "memory",
			feedback: feedbackrepo.NewMemoryStore(),
			policy:   policyrepo.NewMemoryStore(),
			report:   reports,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	fb := feedbackrepo.NewSQLStore(db)
	pol := policyrepo.NewSQLStore(db)
	if cfg.DBMigrate {
		if err := fb.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate feedback: %w", err)
		}
		if err := pol.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate policy: %w", err)
		}
	}
	logging.Info("store: sql", "dialect", db.Dialect.Name, "migrated", cfg.DBMigrate)
	return &stores{kind: cfg.StoreKind(), feedback: fb, policy: pol, report: reports, db: db}, nil
}

func chooseReportStore(cfg *config.Config) (report.Store, error) {
	if !cfg.Report.CanUseS3() {
		if dir := strings.TrimSpace(cfg.Report.Dir); dir != "" {
			ds, err := report.NewDiskStore(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize report dir: %w", err)
			}
			logging.Info("report store: disk", "dir", ds.Root())
			return ds, nil
		}
		logging.Info("report store: in-memory")
		return report.NewMemoryStore(), nil
	}
	s3, err := report.NewS3Store(report.S3Config{
		Endpoint:  cfg.Report.Endpoint,
		Region:    cfg.Report.Region,
		AccessKey: cfg.Report.AccessKey,
		SecretKey: cfg.Report.SecretKey,
		Bucket:    cfg.Report.Bucket,
		Prefix:    cfg.Report.Prefix,
		UseSSL:    cfg.Report.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize report s3 store: %w", err)
	}
	logging.Info("report store: s3", "bucket", cfg.Report.Bucket, "endpoint", cfg.Report.Endpoint)
	return s3, nil
}
