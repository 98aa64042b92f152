// Package app assembles the collector from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ganot/motion-collector/internal/artifact"
	"github.com/ganot/motion-collector/internal/capture"
	"github.com/ganot/motion-collector/internal/config"
	"github.com/ganot/motion-collector/internal/domain/activity"
	"github.com/ganot/motion-collector/internal/domain/recording"
	"github.com/ganot/motion-collector/internal/events"
	"github.com/ganot/motion-collector/internal/metrics"
	"github.com/ganot/motion-collector/internal/remote"
	"github.com/ganot/motion-collector/internal/replication"
	"github.com/ganot/motion-collector/internal/sqlite"
)

// App holds the wired services of one collector process.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	DB         *sqlite.DB
	Changes    *events.Bus[events.Change]
	Recordings *recording.Service
	Activity   *activity.Service
	Capture    *capture.Controller
	Metrics    *metrics.Metrics
	Provider   replication.Provider
	Registry   *replication.Registry
	Scanner    *replication.Scanner
	Sweeper    *replication.Sweeper
}

// New opens the store and wires the replication pipeline. It never changes
// existing rows, so short-lived commands can share the store with a running
// server. Background work starts with Run.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := ensureDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("preparing storage dir: %w", err)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	changes := events.NewBus[events.Change]()
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	recordingSvc := recording.NewService(
		sqlite.NewRecordingRepository(db, changes),
		artifact.NewFileWriter(logger),
		cfg.Storage.Dir,
		logger,
		recording.WithActivity(activitySvc),
	)

	provider, err := remote.New(remote.Config{
		Kind:            cfg.Remote.Kind,
		Dir:             cfg.Remote.Dir,
		Endpoint:        cfg.Remote.Endpoint,
		Bucket:          cfg.Remote.Bucket,
		AccessKey:       cfg.Remote.AccessKey,
		SecretKey:       cfg.Remote.SecretKey,
		UseSSL:          cfg.Remote.UseSSL,
		Prefix:          cfg.Remote.Prefix,
		AvailabilityTTL: cfg.Remote.AvailabilityTTL,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring remote: %w", err)
	}

	m := metrics.New()
	registry := replication.NewRegistry()
	uploader := replication.NewUploader(provider, recordingSvc, registry, m, logger)
	scanner := replication.NewScanner(replication.ScannerConfig{
		Recordings:    recordingSvc,
		Provider:      provider,
		Uploader:      uploader,
		Changes:       changes,
		Enabled:       cfg.Uploads.Enabled,
		RetryInterval: cfg.Uploads.RetryInterval,
		Metrics:       m,
		Logger:        logger,
	})
	sweeper, err := replication.NewSweeper(registry, cfg.Uploads.StaleAfter, cfg.Uploads.SweepSchedule, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Changes:    changes,
		Recordings: recordingSvc,
		Activity:   activitySvc,
		Capture:    capture.NewController(recordingSvc, cfg.Capture.UpdateInterval, m, logger),
		Metrics:    m,
		Provider:   provider,
		Registry:   registry,
		Scanner:    scanner,
		Sweeper:    sweeper,
	}, nil
}

// NewSource builds the configured sample source.
func (a *App) NewSource() capture.Source {
	sensors := make([]artifact.Source, 0, len(a.Config.Capture.Sensors))
	for _, name := range a.Config.Capture.Sensors {
		sensors = append(sensors, artifact.Source(name))
	}
	return capture.NewSimulated(a.Config.Capture.SamplesPerSecond, sensors)
}

// Run repairs rows abandoned by an earlier process, then drives replication
// until ctx is done.
func (a *App) Run(ctx context.Context) error {
	repaired, err := a.Recordings.Reconcile(ctx, a.Config.Storage.ReconcileAfter)
	if err != nil {
		return err
	}
	if repaired > 0 {
		a.Logger.Info("repaired recordings from previous run", "count", repaired)
	}

	a.Sweeper.Start()
	defer a.Sweeper.Stop()

	return a.Scanner.Run(ctx)
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
