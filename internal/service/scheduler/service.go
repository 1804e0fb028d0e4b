// Package scheduler runs the nightly achievement evaluation sweep.
package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/syncup-app/achievements/internal/config"
	prommetrics "github.com/syncup-app/achievements/internal/metrics"
	"github.com/syncup-app/achievements/pkg/logger"
)

// Evaluator evaluates achievements for every user and returns the number of new unlocks.
type Evaluator interface {
	EvaluateAllUsers(ctx context.Context) (int, error)
}

// Service handles nightly evaluation scheduling.
type Service struct {
	config    *config.SchedulerConfig
	evaluator Evaluator
	log       *logger.Logger
	cron      *cron.Cron
	timeout   time.Duration
}

// NewService creates a new scheduler service.
func NewService(cfg *config.SchedulerConfig, evaluator Evaluator, log *logger.Logger) *Service {
	return &Service{
		config:    cfg,
		evaluator: evaluator,
		log:       log,
		timeout:   30 * time.Minute,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Timezone, err)
	}

	cronExpr, err := buildCronExpression(s.config.Time)
	if err != nil {
		return fmt.Errorf("failed to build cron expression: %w", err)
	}

	// Overlapping sweeps are skipped rather than queued.
	s.cron = cron.New(
		cron.WithLocation(location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err = s.cron.AddFunc(cronExpr, func() {
		s.runEvaluation(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to register achievement evaluation job: %w", err)
	}

	s.cron.Start()

	nextRun := ""
	if entries := s.cron.Entries(); len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("schedule", cronExpr).
		Str("timezone", s.config.Timezone).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop waits for a running sweep to finish and shuts the scheduler down.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// buildCronExpression converts "HH:MM" into a daily cron expression.
func buildCronExpression(hhmm string) (string, error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time format %q, expected HH:MM", hhmm)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute %q", parts[1])
	}

	// Format: "minute hour day month weekday"
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// runEvaluation executes one evaluation sweep.
func (s *Service) runEvaluation(ctx context.Context) {
	start := time.Now()
	defer func() {
		prommetrics.ObserveSchedulerJobDuration(time.Since(start).Seconds())
		prommetrics.SetSchedulerLastRun()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.log.Info().Msg("Running achievement evaluation job")

	unlocks, err := s.evaluator.EvaluateAllUsers(ctx)
	prommetrics.AddSchedulerUnlocks(unlocks)
	if err != nil {
		s.log.Error().
			Err(err).
			Int("unlocks", unlocks).
			Dur("duration", time.Since(start)).
			Msg("Achievement evaluation job failed")
		prommetrics.RecordSchedulerJobRun("error")
		return
	}

	prommetrics.RecordSchedulerJobRun("success")
	s.log.Info().
		Int("unlocks", unlocks).
		Dur("duration", time.Since(start)).
		Msg("Achievement evaluation job completed successfully")
}
