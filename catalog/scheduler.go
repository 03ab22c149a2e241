package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler reloads a Store on a cron schedule so a price list dropped on
// disk is picked up without a restart.
type Scheduler struct {
	cron    *cron.Cron
	store   *Store
	spec    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for store using a standard 5-field cron spec.
func NewScheduler(store *Store, spec string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		store:   store,
		spec:    spec,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Start registers the reload job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.reload); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("catalog reload scheduled", "spec", s.spec)
	return nil
}

// Stop stops the cron loop. The returned context is done once a running
// reload has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	// Reload logs its own failures; the old catalog stays active.
	_ = s.store.Reload(ctx)
}
