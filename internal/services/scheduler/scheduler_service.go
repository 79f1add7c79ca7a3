package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/interfaces"
)

// Service drives the recurring autopost sweep. Three triggers exist: a cron
// expression, a fixed-interval safety poll, and an immediate run at startup.
// All of them funnel into TriggerSweep, where a single in-process boolean
// collapses overlapping triggers into a no-op.
type Service struct {
	runner interfaces.AutopostRunner
	config *common.SchedulerConfig
	cron   *cron.Cron
	logger arbor.ILogger

	mu           sync.Mutex // Protects isProcessing
	isProcessing bool
	running      bool

	pollTicker *time.Ticker
	pollDone   chan struct{}
}

// NewService creates a new scheduler service
func NewService(runner interfaces.AutopostRunner, config *common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		runner: runner,
		config: config,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start begins the cron schedule and the safety poll, and runs an immediate
// sweep when configured.
func (s *Service) Start() error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	cronExpr := s.config.CronSchedule
	if cronExpr == "" {
		cronExpr = "*/15 * * * *"
	}
	if _, err := s.cron.AddFunc(cronExpr, func() {
		if err := s.TriggerSweep(); err != nil {
			s.logger.Warn().Err(err).Msg("Scheduled sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.cron.Start()
	s.running = true

	if interval := s.pollInterval(); interval > 0 {
		s.pollTicker = time.NewTicker(interval)
		s.pollDone = make(chan struct{})
		go s.pollLoop()
		s.logger.Info().
			Str("interval", interval.String()).
			Msg("Safety poll started")
	}

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Msg("Scheduler started")

	if s.config.RunOnStart {
		go func() {
			if err := s.TriggerSweep(); err != nil {
				s.logger.Warn().Err(err).Msg("Startup sweep failed")
			}
		}()
	}

	return nil
}

// Stop halts the cron schedule and the safety poll. An in-flight sweep runs
// to completion; there is no mid-run abort path.
func (s *Service) Stop() error {
	if !s.running {
		return nil
	}
	s.cron.Stop()
	if s.pollTicker != nil {
		s.pollTicker.Stop()
		close(s.pollDone)
		s.pollTicker = nil
	}
	s.running = false
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// TriggerSweep runs one sweep unless another sweep is already in flight, in
// which case it is a no-op rather than queued.
func (s *Service) TriggerSweep() error {
	s.mu.Lock()
	if s.isProcessing {
		s.logger.Debug().Msg("Sweep already in progress, skipping this trigger")
		s.mu.Unlock()
		return nil
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	started := time.Now()
	s.logger.Info().Msg("Starting autopost sweep")

	if err := s.runner.RunDueJobs(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Autopost sweep failed")
		return err
	}

	s.logger.Info().
		Str("duration", time.Since(started).String()).
		Msg("Autopost sweep complete")
	return nil
}

// IsRunning reports whether the scheduler has been started.
func (s *Service) IsRunning() bool {
	return s.running
}

func (s *Service) pollLoop() {
	for {
		select {
		case <-s.pollDone:
			return
		case <-s.pollTicker.C:
			if err := s.TriggerSweep(); err != nil {
				s.logger.Warn().Err(err).Msg("Poll sweep failed")
			}
		}
	}
}

func (s *Service) pollInterval() time.Duration {
	if s.config.PollInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(s.config.PollInterval)
	if err != nil {
		s.logger.Warn().
			Str("poll_interval", s.config.PollInterval).
			Err(err).
			Msg("Invalid poll interval, safety poll disabled")
		return 0
	}
	return d
}
