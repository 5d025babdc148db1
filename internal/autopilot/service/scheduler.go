package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/agencydesk/autopilot/internal/autopilot/domain"
	"github.com/agencydesk/autopilot/internal/autopilot/store"
)

// SchedulerService compiles reports for clients on a weekly or monthly
// schedule. It ticks, finds clients whose latest report predates their
// schedule window, and runs the compile pipeline for each.
type SchedulerService struct {
	Store    store.Store
	Reports  *ReportService
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewSchedulerService creates the scheduler worker. If interval is 0 or
// negative, defaults to 1 hour; the due check is idempotent so frequent
// ticks only cost queries.
func NewSchedulerService(store store.Store, reports *ReportService, logger *slog.Logger, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &SchedulerService{
		Store:    store,
		Reports:  reports,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to
// gracefully shut the worker down.
func (s *SchedulerService) Start() {
	go s.run()
	s.Logger.Info("report scheduler started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
func (s *SchedulerService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("report scheduler stopped")
}

func (s *SchedulerService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Tick(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// scheduleWindow returns how far back a schedule's reporting period reaches.
func scheduleWindow(schedule string) (time.Duration, bool) {
	switch schedule {
	case domain.ScheduleWeekly:
		return 7 * 24 * time.Hour, true
	case domain.ScheduleMonthly:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// Tick runs one scheduling pass: every scheduled client whose newest report
// is older than its window gets a fresh report compiled. Failures are
// per-client; one bad client never stalls the rest.
func (s *SchedulerService) Tick(ctx context.Context) {
	for _, schedule := range []string{domain.ScheduleWeekly, domain.ScheduleMonthly} {
		window, _ := scheduleWindow(schedule)

		clients, err := s.Store.Clients().ListClientsOnSchedule(ctx, schedule)
		if err != nil {
			s.Logger.Error("list scheduled clients", "schedule", schedule, "error", err)
			continue
		}

		for _, client := range clients {
			due, err := s.clientDue(ctx, client.ID, window)
			if err != nil {
				s.Logger.Error("due check failed", "client_id", client.ID, "error", err)
				continue
			}
			if !due {
				continue
			}
			s.compileFor(ctx, client, window)
		}
	}
}

func (s *SchedulerService) clientDue(ctx context.Context, clientID string, window time.Duration) (bool, error) {
	latest, err := s.Store.Reports().LatestReportTime(ctx, clientID)
	if err != nil {
		return false, err
	}
	// Zero time means the client has never had a report.
	return latest.IsZero() || time.Since(latest) >= window, nil
}

func (s *SchedulerService) compileFor(ctx context.Context, client domain.Client, window time.Duration) {
	now := time.Now()
	report, _, err := s.Reports.create(ctx, client, now.Add(-window), now)
	if err != nil {
		s.Logger.Error("schedule report", "client_id", client.ID, "error", err)
		return
	}

	s.Logger.Info("scheduled report created", "client_id", client.ID, "report_id", report.ID)
	if err := s.Reports.Compile(ctx, report.ID); err != nil {
		// Compile already recorded the failure on the report row.
		s.Logger.Warn("scheduled compile failed", "report_id", report.ID, "error", err)
	}
}
