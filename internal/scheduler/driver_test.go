package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) After(d time.Duration) <-chan time.Time {
	// Never fires; driver unit tests invoke the step methods directly.
	return make(chan time.Time)
}

type countingChecks struct {
	mu        sync.Mutex
	oneTime   int
	recurring int
	advance   int
	followUp  int
	block     chan struct{} // non-nil makes CheckRecurringSessions block
}

func (c *countingChecks) CheckOneTimeSessions(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.oneTime++
	return nil
}

func (c *countingChecks) CheckRecurringSessions(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	c.recurring++
	block := c.block
	c.mu.Unlock()
	if block != nil {
		<-block
	}
	return nil
}

func (c *countingChecks) AdvanceRecurringSessions(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advance++
	return nil
}

func (c *countingChecks) CheckDueReminders(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.followUp++
	return nil
}

func (c *countingChecks) counts() (oneTime, recurring, advance, followUp int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.oneTime, c.recurring, c.advance, c.followUp
}

func TestDriverTriggerWiring(t *testing.T) {
	// The frequent poll drives only the watermark-guarded recurring check;
	// the daily triggers own everything without an intraday guard.
	checks := &countingChecks{}
	clock := &fakeClock{now: checkTime}
	driver := NewDriver(checks, clock, DriverConfig{})

	ctx := context.Background()
	driver.pollRecurring(ctx)
	driver.pollRecurring(ctx)
	driver.pollRecurring(ctx)

	oneTime, recurring, advance, followUp := checks.counts()
	assert.Equal(t, 3, recurring)
	assert.Zero(t, oneTime, "one-time check must not run on the poll")
	assert.Zero(t, advance)
	assert.Zero(t, followUp)

	driver.runMorningChecks(ctx)
	oneTime, _, advance, followUp = checks.counts()
	assert.Equal(t, 1, oneTime)
	assert.Zero(t, advance)
	assert.Zero(t, followUp)

	driver.runFollowUpChecks(ctx)
	_, _, advance, followUp = checks.counts()
	assert.Equal(t, 1, advance)
	assert.Equal(t, 1, followUp)
}

func TestDriverStartupCatchUpRunsEveryCheck(t *testing.T) {
	checks := &countingChecks{}
	driver := NewDriver(checks, &fakeClock{now: checkTime}, DriverConfig{})

	driver.runStartupChecks(context.Background())

	oneTime, recurring, advance, followUp := checks.counts()
	assert.Equal(t, 1, oneTime)
	assert.Equal(t, 1, recurring)
	assert.Equal(t, 1, advance)
	assert.Equal(t, 1, followUp)
}

func TestDriverSkipsOverlappingPolls(t *testing.T) {
	checks := &countingChecks{block: make(chan struct{})}
	driver := NewDriver(checks, &fakeClock{now: checkTime}, DriverConfig{})

	done := make(chan struct{})
	go func() {
		driver.pollRecurring(context.Background())
		close(done)
	}()

	// Wait until the first poll is inside the engine call.
	require.Eventually(t, func() bool {
		_, recurring, _, _ := checks.counts()
		return recurring == 1
	}, time.Second, time.Millisecond)

	// Ticks arriving while the first is in flight are dropped.
	driver.pollRecurring(context.Background())
	driver.pollRecurring(context.Background())
	_, recurring, _, _ := checks.counts()
	assert.Equal(t, 1, recurring)

	close(checks.block)
	<-done

	checks.mu.Lock()
	checks.block = nil
	checks.mu.Unlock()

	driver.pollRecurring(context.Background())
	_, recurring, _, _ = checks.counts()
	assert.Equal(t, 2, recurring)
}

func TestDriverStartStopsOnCancel(t *testing.T) {
	checks := &countingChecks{}
	driver := NewDriver(checks, &fakeClock{now: checkTime}, DriverConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	driver.Start(ctx)

	// Startup catch-up runs once even before any timer fires.
	require.Eventually(t, func() bool {
		oneTime, recurring, advance, followUp := checks.counts()
		return oneTime == 1 && recurring == 1 && advance == 1 && followUp == 1
	}, time.Second, time.Millisecond)

	cancel()
	waited := make(chan struct{})
	go func() {
		driver.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("driver goroutines did not stop after cancel")
	}
}

func TestUntilNextDaily(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Duration
	}{
		{
			name: "before the hour waits until it",
			now:  time.Date(2026, 3, 4, 6, 30, 0, 0, time.UTC),
			hour: 8,
			want: 90 * time.Minute,
		},
		{
			name: "after the hour waits until tomorrow",
			now:  time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC),
			hour: 8,
			want: 23 * time.Hour,
		},
		{
			name: "exactly on the hour waits a full day",
			now:  time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC),
			hour: 8,
			want: 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, untilNextDaily(tt.now, tt.hour))
		})
	}
}
