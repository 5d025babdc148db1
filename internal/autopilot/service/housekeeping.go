package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/store"
)

// HousekeepingService periodically cleans up expired database records
// to prevent unbounded growth of oauth_states and deliveries, and to
// fail reports that got stuck mid-pipeline.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// StaleReportAfter is how long a report may sit in a non-terminal
	// status before housekeeping fails it.
	StaleReportAfter time.Duration

	// DeliveryRetention is how long delivery rows are kept.
	DeliveryRetention time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:             store,
		Logger:            logger,
		Interval:          interval,
		StaleReportAfter:  1 * time.Hour,
		DeliveryRetention: 90 * 24 * time.Hour,
		stopCh:            make(chan struct{}),
		doneCh:            make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup()

	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup performs one housekeeping pass. Each step is independent;
// failures in one won't stop the others.
func (s *HousekeepingService) Cleanup() {
	ctx := context.Background()
	now := time.Now()
	s.Logger.Debug("starting housekeeping cleanup")

	// Reap abandoned OAuth state records. Consume already refuses expired
	// records; this just keeps the table small.
	if err := s.Store.OAuthStates().DeleteExpiredStates(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired oauth states", "error", err)
	}

	// Fail reports stuck in a non-terminal status.
	if err := s.Store.Reports().FailStaleReports(ctx, now.Add(-s.StaleReportAfter)); err != nil {
		s.Logger.Error("failed to fail stale reports", "error", err)
	}

	// Prune old delivery records.
	if err := s.Store.Deliveries().DeleteDeliveriesBefore(ctx, now.Add(-s.DeliveryRetention)); err != nil {
		s.Logger.Error("failed to prune old deliveries", "error", err)
	}

	if remaining, err := s.Store.OAuthStates().CountStates(ctx); err == nil {
		s.Logger.Info("housekeeping cleanup completed", "outstanding_oauth_states", remaining)
	}
}
