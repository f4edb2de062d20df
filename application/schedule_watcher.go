package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taixiu/config"
	"taixiu/domain/entities"
	"taixiu/infrastructure/observability"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ScheduleMonitor reads schedule health and raises stall alerts
type ScheduleMonitor interface {
	ScheduleHealth(ctx context.Context, now time.Time) (*entities.ScheduleHealth, error)
	ReportStall(ctx context.Context, health *entities.ScheduleHealth) error
}

// ScheduleWatcher checks on a cron spec that rounds keep settling.
// It alerts once per stall and re-arms when a newer settlement is recorded.
type ScheduleWatcher struct {
	monitor  ScheduleMonitor
	notifier AdminNotifier
	spec     string
	now      func() time.Time

	mu        sync.Mutex
	alertedAt *time.Time // LastSettledAt of the stall already alerted on
}

// NewScheduleWatcher creates a new schedule watcher
func NewScheduleWatcher(monitor ScheduleMonitor, notifier AdminNotifier) *ScheduleWatcher {
	return &ScheduleWatcher{
		monitor:  monitor,
		notifier: notifier,
		spec:     config.Get().ScheduleWatchSpec,
		now:      time.Now,
	}
}

// Start registers the health check and starts the cron scheduler
func (w *ScheduleWatcher) Start(ctx context.Context) (func(), error) {
	c := cron.New()
	if _, err := c.AddFunc(w.spec, func() { w.Check(ctx) }); err != nil {
		return nil, fmt.Errorf("register schedule health check %q: %w", w.spec, err)
	}

	c.Start()
	log.WithField("spec", w.spec).Info("Schedule watcher started")

	return func() {
		<-c.Stop().Done()
		log.Info("Schedule watcher stopped")
	}, nil
}

// Check reads schedule health once and alerts on a new stall.
// Returns true when an alert was raised.
func (w *ScheduleWatcher) Check(ctx context.Context) bool {
	health, err := w.monitor.ScheduleHealth(ctx, w.now())
	if err != nil {
		log.WithError(err).Error("Failed to read schedule health")
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if health == nil || !health.Stalled || health.LastSettledAt == nil {
		w.alertedAt = nil
		return false
	}
	if w.alertedAt != nil && w.alertedAt.Equal(*health.LastSettledAt) {
		return false
	}

	fields := log.Fields{
		"lastSettledAt": health.LastSettledAt,
		"overdue":       health.Overdue,
	}
	if health.LastRoundID != nil {
		fields["lastRoundID"] = *health.LastRoundID
	}
	log.WithFields(fields).Warn("Round scheduler stalled")

	if err := w.monitor.ReportStall(ctx, health); err != nil {
		log.WithError(err).Error("Failed to report scheduler stall")
	}
	observability.GetMetrics().RecordSchedulerStall()

	message := fmt.Sprintf("Round scheduler stalled: no settlement since %s (%s overdue)",
		health.LastSettledAt.UTC().Format(time.RFC3339), health.Overdue.Round(time.Second))
	if err := w.notifier.NotifyAdmins(ctx, message); err != nil {
		log.WithError(err).Error("Failed to notify admins of scheduler stall")
	}

	settledAt := *health.LastSettledAt
	w.alertedAt = &settledAt
	return true
}
