package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

// Clock abstracts time for the driver so tests can substitute a fixed one.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Checks is the engine surface the driver triggers. The wiring is
// deliberate: only CheckRecurringSessions is safe on the frequent poll (its
// watermark makes repeats harmless); the other checks are daily-only because
// they carry no intraday idempotency guard.
type Checks interface {
	CheckOneTimeSessions(ctx context.Context, now time.Time) error
	CheckRecurringSessions(ctx context.Context, now time.Time) error
	AdvanceRecurringSessions(ctx context.Context, now time.Time) error
	CheckDueReminders(ctx context.Context, now time.Time) error
}

// DriverConfig holds the trigger schedule.
type DriverConfig struct {
	PollInterval        time.Duration // frequent recurring-session poll, default 30m
	SessionReminderHour int           // daily one-time session reminders, default 08:00
	FollowUpHour        int           // daily follow-ups + recurrence advancement, default 09:00
}

// Driver owns the process-wide timers and invokes engine checks. It holds no
// decision logic of its own.
type Driver struct {
	engine Checks
	clock  Clock
	cfg    DriverConfig

	pollInFlight atomic.Bool
	wg           sync.WaitGroup
}

// NewDriver creates a Driver. Zero config fields get the defaults above.
func NewDriver(engine Checks, clock Clock, cfg DriverConfig) *Driver {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Minute
	}
	if cfg.SessionReminderHour == 0 {
		cfg.SessionReminderHour = 8
	}
	if cfg.FollowUpHour == 0 {
		cfg.FollowUpHour = 9
	}
	return &Driver{engine: engine, clock: clock, cfg: cfg}
}

// Start performs the startup catch-up run (covers ticks missed during
// downtime) and launches the recurring timers. It returns immediately; the
// timers stop when ctx is cancelled.
func (d *Driver) Start(ctx context.Context) {
	utils.LogInfo("Reminder scheduler started", map[string]interface{}{
		"poll_interval":         d.cfg.PollInterval.String(),
		"session_reminder_hour": d.cfg.SessionReminderHour,
		"follow_up_hour":        d.cfg.FollowUpHour,
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runStartupChecks(ctx)
	}()

	d.wg.Add(3)
	go d.pollLoop(ctx)
	go d.dailyLoop(ctx, d.cfg.SessionReminderHour, d.runMorningChecks)
	go d.dailyLoop(ctx, d.cfg.FollowUpHour, d.runFollowUpChecks)
}

// Wait blocks until all driver goroutines have exited.
func (d *Driver) Wait() {
	d.wg.Wait()
}

// runStartupChecks runs every check once at process start.
func (d *Driver) runStartupChecks(ctx context.Context) {
	d.runMorningChecks(ctx)
	d.runFollowUpChecks(ctx)
	d.pollRecurring(ctx)
}

// pollLoop drives the frequent recurring-session check.
func (d *Driver) pollLoop(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.clock.After(d.cfg.PollInterval):
			d.pollRecurring(ctx)
		}
	}
}

// pollRecurring runs the recurring check unless a previous invocation is
// still in flight, in which case the tick is skipped. Overlap would be safe
// (the watermark is the correctness guard) but wasteful.
func (d *Driver) pollRecurring(ctx context.Context) {
	if !d.pollInFlight.CompareAndSwap(false, true) {
		utils.LogDebug("Recurring check still in flight, skipping tick")
		return
	}
	defer d.pollInFlight.Store(false)

	if err := d.engine.CheckRecurringSessions(ctx, d.clock.Now()); err != nil {
		utils.LogError(err, "Recurring session check failed")
	}
}

// dailyLoop fires run at the given local hour every day.
func (d *Driver) dailyLoop(ctx context.Context, hour int, run func(context.Context)) {
	defer d.wg.Done()
	for {
		wait := untilNextDaily(d.clock.Now(), hour)
		select {
		case <-ctx.Done():
			return
		case <-d.clock.After(wait):
			run(ctx)
		}
	}
}

// runMorningChecks is the daily one-time session reminder trigger. This is
// the only place CheckOneTimeSessions is invoked on a timer: running it more
// than once a day would duplicate sends.
func (d *Driver) runMorningChecks(ctx context.Context) {
	if err := d.engine.CheckOneTimeSessions(ctx, d.clock.Now()); err != nil {
		utils.LogError(err, "One-time session check failed")
	}
}

// runFollowUpChecks is the daily follow-up trigger: overdue ad hoc reminders
// plus recurrence date advancement.
func (d *Driver) runFollowUpChecks(ctx context.Context) {
	if err := d.engine.CheckDueReminders(ctx, d.clock.Now()); err != nil {
		utils.LogError(err, "Due reminder check failed")
	}
	if err := d.engine.AdvanceRecurringSessions(ctx, d.clock.Now()); err != nil {
		utils.LogError(err, "Recurrence advancement failed")
	}
}

// untilNextDaily computes the wait until the next occurrence of hour:00 in
// now's location. A run exactly at hour:00 waits a full day.
func untilNextDaily(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
