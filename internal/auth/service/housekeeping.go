package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/store"
)

// HousekeepingService periodically clears expired refresh sessions and
// two-factor challenges so stale secrets do not linger in the store.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
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

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background(), time.Now())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background(), time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup clears everything that expired at or before now and returns the
// number of accounts touched. Each step is independent: a failure in one
// does not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context, now time.Time) int64 {
	s.Logger.Debug("starting housekeeping cleanup")

	var total int64

	n, err := s.Store.Accounts().DeleteExpiredRefreshSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh sessions", "error", err)
	} else {
		total += n
	}

	n, err = s.Store.Accounts().DeleteExpiredTwoFactorChallenges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired two-factor challenges", "error", err)
	} else {
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "cleared", total)
	return total
}
