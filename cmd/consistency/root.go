package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/application/reporting"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/cache"
	"github.com/erp/consistency/internal/infrastructure/config"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/internal/infrastructure/persistence"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// app carries what the subcommands share. Fields left nil are resolved
// from the environment on first use.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	closeDB func() error
	redis   *cache.RedisIdempotencyStore
	out     io.Writer
}

var rootCmd = newRootCmd(&app{out: os.Stdout})

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consistency",
		Short: "Detect and correct financial inconsistencies",
		Long: `Operator tooling for the consistency engine.

Detectors are read-only. Corrections preview the findings they would act on
unless --confirm is given.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	cmd.SetOut(a.out)
	cmd.AddCommand(newDetectCmd(a), newCorrectCmd(a), newExportCmd(a), newTokenCmd(a))
	return cmd
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	if a.cfg == nil {
		// A missing .env is normal outside development
		_ = godotenv.Load()
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		a.cfg = cfg
	}
	if a.log == nil {
		// stdout carries command output, logs go to stderr
		log, err := logger.New(&logger.Config{
			Level:      a.cfg.Log.Level,
			Format:     "console",
			Output:     "stderr",
			TimeFormat: a.cfg.Log.TimeFormat,
		})
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		a.log = log
	}
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil {
			a.log.Warn("error closing database", zap.Error(err))
		}
		a.closeDB = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	_ = a.log.Sync()
	return nil
}

func (a *app) database() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	gormLog := logger.NewGormLogger(a.log, logger.MapGormLogLevel(a.cfg.Log.Level),
		logger.WithSlowThreshold(a.cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithCustomLogger(&a.cfg.Database, gormLog)
	if err != nil {
		return nil, err
	}
	a.db = db.DB
	a.closeDB = db.Close
	return a.db, nil
}

// services wires the engine against the database without telemetry
func (a *app) services() (*reporting.Facade, *consistency.CorrectionService, error) {
	db, err := a.database()
	if err != nil {
		return nil, nil, err
	}
	repos := persistence.NewGormRepositories(db)
	detect := consistency.NewDetectionService(repos, a.log, nil)
	correct := consistency.NewCorrectionService(persistence.NewGormTransactionScope(db), repos, a.log, nil,
		a.cfg.Consistency.DefaultDueDays)
	if a.cfg.Redis.Host != "" {
		// Share the server's correction locks when Redis is reachable
		store, err := cache.NewRedisIdempotencyStore(context.Background(), a.cfg.Redis.Addr(), a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			a.log.Warn("redis unavailable, corrections run without cross-process locks", zap.Error(err))
		} else {
			a.redis = store
			correct.WithLocker(cache.NewRedisLocker(store.Client(), ""))
		}
	}
	return reporting.NewFacade(detect, a.log), correct, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseRange reads inclusive whole UTC days. Either bound may be empty.
func parseRange(from, to string) (shared.DateRange, error) {
	var rng shared.DateRange
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.UTC)
		if err != nil {
			return rng, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
		}
		rng.From = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.UTC)
		if err != nil {
			return rng, fmt.Errorf("--to must be YYYY-MM-DD: %w", err)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		rng.To = &end
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return rng, fmt.Errorf("--from %s is after --to %s", from, to)
	}
	return rng, nil
}
