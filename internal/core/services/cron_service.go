package services

import (
	"context"
	"fmt"
	"time"

	"lendsqr-admin/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 2 * time.Minute

// CronService runs the scheduled directory refresh and session cleanup
type CronService struct {
	cron      *cron.Cron
	refresher Refresher
	cleaner   TokenCleaner
	cfg       config.RefreshConfig
	logger    *zap.Logger
}

// NewCronService creates a new scheduler. Nothing runs until Start.
func NewCronService(refresher Refresher, cleaner TokenCleaner, cfg config.RefreshConfig, logger *zap.Logger) *CronService {
	return &CronService{
		cron: cron.New(
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		refresher: refresher,
		cleaner:   cleaner,
		cfg:       cfg,
		logger:    logger.Named("cron"),
	}
}

// Register adds the configured jobs. Empty schedules are skipped.
func (s *CronService) Register() error {
	if s.cfg.Schedule != "" && s.refresher != nil {
		if _, err := s.cron.AddFunc(s.cfg.Schedule, s.RefreshDirectory); err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE %q: %w", s.cfg.Schedule, err)
		}
		s.logger.Info("Directory refresh scheduled", zap.String("schedule", s.cfg.Schedule))
	}

	if s.cfg.TokenCleanupSchedule != "" && s.cleaner != nil {
		if _, err := s.cron.AddFunc(s.cfg.TokenCleanupSchedule, s.CleanupTokens); err != nil {
			return fmt.Errorf("invalid TOKEN_CLEANUP_SCHEDULE %q: %w", s.cfg.TokenCleanupSchedule, err)
		}
		s.logger.Info("Token cleanup scheduled", zap.String("schedule", s.cfg.TokenCleanupSchedule))
	}
	return nil
}

// Entries reports how many jobs are registered
func (s *CronService) Entries() int {
	return len(s.cron.Entries())
}

// Start launches the scheduler in its own goroutine
func (s *CronService) Start() {
	s.cron.Start()
	s.logger.Info("CronService started", zap.Int("jobs", s.Entries()))
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("CronService stopped")
}

// RefreshDirectory forces a directory refresh
func (s *CronService) RefreshDirectory() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Error("Scheduled refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("Directory refreshed", zap.Duration("took", time.Since(start)))
}

// CleanupTokens deletes expired refresh tokens
func (s *CronService) CleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.cleaner.CleanupExpiredTokens(ctx)
	if err != nil {
		s.logger.Error("Token cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.logger.Info("Expired tokens removed", zap.Int64("count", deleted))
	}
}
