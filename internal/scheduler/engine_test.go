package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkTime is a fixed reference instant so weekday math in the tests is
// stable: 2026-03-04 is a Wednesday.
var checkTime = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

type fakeCustomerStore struct {
	oneTime   []models.Customer
	recurring []models.Customer
	pastDate  []models.Customer

	listErr      error
	watermarkErr error

	watermarks map[int64]string
	advanced   map[int64]string
	disabled   []int64
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{
		watermarks: make(map[int64]string),
		advanced:   make(map[int64]string),
	}
}

func (f *fakeCustomerStore) ListDueOneTimePTCustomers(today string) ([]models.Customer, error) {
	return f.oneTime, f.listErr
}

func (f *fakeCustomerStore) ListRecurringPTCustomers() ([]models.Customer, error) {
	return f.recurring, f.listErr
}

func (f *fakeCustomerStore) ListPastDateRecurringCustomers(today string) ([]models.Customer, error) {
	return f.pastDate, f.listErr
}

func (f *fakeCustomerStore) UpdateLastReminderDate(customerID int64, date string) error {
	if f.watermarkErr != nil {
		return f.watermarkErr
	}
	f.watermarks[customerID] = date
	return nil
}

func (f *fakeCustomerStore) AdvancePTDate(customerID int64, newDate string) error {
	f.advanced[customerID] = newDate
	return nil
}

func (f *fakeCustomerStore) DisableRecurrence(customerID int64) error {
	f.disabled = append(f.disabled, customerID)
	return nil
}

type fakeReminderStore struct {
	due     []models.DueReminder
	listErr error
}

func (f *fakeReminderStore) ListDueReminders(today string) ([]models.DueReminder, error) {
	return f.due, f.listErr
}

type sentNotification struct {
	kind         notify.Kind
	role         notify.Role
	customerID   int64
	trainerEmail string
	opts         notify.Options
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) NotifyCustomer(ctx context.Context, kind notify.Kind, customer models.Customer, opts notify.Options) []notify.Outcome {
	f.sent = append(f.sent, sentNotification{kind: kind, role: notify.RoleCustomer, customerID: customer.ID, opts: opts})
	return nil
}

func (f *fakeNotifier) NotifyTrainer(ctx context.Context, kind notify.Kind, trainerEmail string, customer models.Customer, opts notify.Options) []notify.Outcome {
	f.sent = append(f.sent, sentNotification{kind: kind, role: notify.RoleTrainer, customerID: customer.ID, trainerEmail: trainerEmail, opts: opts})
	return nil
}

func recurringCustomer(id int64, days ...time.Weekday) models.Customer {
	ptDays := make(pq.Int64Array, 0, len(days))
	for _, d := range days {
		ptDays = append(ptDays, int64(d))
	}
	return models.Customer{
		ID:           id,
		Name:         "Lina",
		Phone:        "70123456",
		Email:        strPtr("lina@example.com"),
		CustomerType: models.CustomerTypePT,
		PTTime:       strPtr("17:00"),
		TrainerEmail: strPtr("coach@gymnastika.com"),
		IsRecurring:  true,
		PTDays:       ptDays,
	}
}

func TestCheckRecurringSessionsSendsOnSessionDay(t *testing.T) {
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{recurringCustomer(1, checkTime.Weekday())}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.KindPTReminder, notifier.sent[0].kind)
	assert.Equal(t, notify.RoleCustomer, notifier.sent[0].role)
	assert.Equal(t, notify.RoleTrainer, notifier.sent[1].role)
	assert.Equal(t, "coach@gymnastika.com", notifier.sent[1].trainerEmail)
	assert.Equal(t, "2026-03-04", store.watermarks[1])
}

func TestCheckRecurringSessionsSkipsNonSessionDay(t *testing.T) {
	otherDay := (checkTime.Weekday() + 1) % 7
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{recurringCustomer(1, otherDay)}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.NoError(t, err)

	assert.Empty(t, notifier.sent)
	assert.Empty(t, store.watermarks, "no watermark writes on non-session days")
}

func TestCheckRecurringSessionsAtMostOncePerDay(t *testing.T) {
	customer := recurringCustomer(1, checkTime.Weekday())
	customer.LastReminderDate = strPtr("2026-03-04")
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestCheckRecurringSessionsSecondPollSameDayIsNoop(t *testing.T) {
	store := newFakeCustomerStore()
	customer := recurringCustomer(1, checkTime.Weekday())
	store.recurring = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.CheckRecurringSessions(context.Background(), checkTime))
	require.Len(t, notifier.sent, 2)

	// Simulate the repository reflecting the watermark on the next poll.
	watermark := store.watermarks[1]
	customer.LastReminderDate = &watermark
	store.recurring = []models.Customer{customer}

	require.NoError(t, engine.CheckRecurringSessions(context.Background(), checkTime.Add(30*time.Minute)))
	assert.Len(t, notifier.sent, 2, "no duplicate sends within the same day")
}

func TestCheckRecurringSessionsEveryDayOfWeek(t *testing.T) {
	// A customer booked for all seven weekdays is reminded on any day.
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{recurringCustomer(1,
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday)}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 2)
}

func TestCheckRecurringSessionsWeekdayGateOverFullYear(t *testing.T) {
	// Sweep every day of 2026 for a Monday/Wednesday customer: dispatch on
	// exactly those weekdays, silence on the rest.
	for day := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC); day.Year() == 2026; day = day.AddDate(0, 0, 1) {
		store := newFakeCustomerStore()
		store.recurring = []models.Customer{recurringCustomer(1, time.Monday, time.Wednesday)}
		notifier := &fakeNotifier{}
		engine := NewEngine(store, &fakeReminderStore{}, notifier)

		require.NoError(t, engine.CheckRecurringSessions(context.Background(), day))

		if day.Weekday() == time.Monday || day.Weekday() == time.Wednesday {
			assert.Len(t, notifier.sent, 2, "expected sends on %s (%s)", day.Format(models.DateLayout), day.Weekday())
			assert.Equal(t, day.Format(models.DateLayout), store.watermarks[1])
		} else {
			assert.Empty(t, notifier.sent, "unexpected sends on %s (%s)", day.Format(models.DateLayout), day.Weekday())
			assert.Empty(t, store.watermarks)
		}
	}
}

func TestCheckRecurringSessionsSkipsCustomerWithoutTime(t *testing.T) {
	customer := recurringCustomer(1, checkTime.Weekday())
	customer.PTTime = nil
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.CheckRecurringSessions(context.Background(), checkTime))
	assert.Empty(t, notifier.sent)
}

func TestCheckRecurringSessionsListErrorAborts(t *testing.T) {
	store := newFakeCustomerStore()
	store.listErr = errors.New("connection refused")
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestCheckRecurringSessionsWatermarkErrorAborts(t *testing.T) {
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{
		recurringCustomer(1, checkTime.Weekday()),
		recurringCustomer(2, checkTime.Weekday()),
	}
	store.watermarkErr = errors.New("write failed")
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckRecurringSessions(context.Background(), checkTime)
	require.Error(t, err)
	// First customer was dispatched before the failing write stopped the batch.
	assert.Len(t, notifier.sent, 2)
}

func TestCheckRecurringSessionsNoTrainerEmail(t *testing.T) {
	customer := recurringCustomer(1, checkTime.Weekday())
	customer.TrainerEmail = nil
	store := newFakeCustomerStore()
	store.recurring = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.CheckRecurringSessions(context.Background(), checkTime))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.RoleCustomer, notifier.sent[0].role)
}

func TestCheckOneTimeSessions(t *testing.T) {
	customer := models.Customer{
		ID:           7,
		Name:         "Omar",
		Phone:        "71234567",
		CustomerType: models.CustomerTypePT,
		PTDate:       strPtr("2026-03-04"),
		PTTime:       strPtr("10:00"),
		TrainerEmail: strPtr("coach@gymnastika.com"),
	}
	store := newFakeCustomerStore()
	store.oneTime = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.CheckOneTimeSessions(context.Background(), checkTime)
	require.NoError(t, err)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.KindPTReminder, notifier.sent[0].kind)
	assert.Equal(t, "2026-03-04", notifier.sent[0].opts.PTDate)
	assert.Equal(t, "10:00", notifier.sent[0].opts.PTTime)
	assert.Empty(t, store.watermarks, "one-time checks carry no watermark")
}

func TestAdvanceRecurringSessionsInterval(t *testing.T) {
	customer := models.Customer{
		ID:                 3,
		Name:               "Maya",
		Phone:              "76111222",
		CustomerType:       models.CustomerTypePT,
		PTDate:             strPtr("2026-03-01"),
		PTTime:             strPtr("18:00"),
		TrainerEmail:       strPtr("coach@gymnastika.com"),
		IsRecurring:        true,
		RecurrenceType:     strPtr(models.RecurrenceTypeCustom),
		RecurrenceInterval: intPtr(3),
	}
	store := newFakeCustomerStore()
	store.pastDate = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	err := engine.AdvanceRecurringSessions(context.Background(), checkTime)
	require.NoError(t, err)

	assert.Equal(t, "2026-03-04", store.advanced[3])
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, notify.KindPTConfirmation, notifier.sent[0].kind)
	assert.Equal(t, "2026-03-04", notifier.sent[0].opts.PTDate)
}

func TestAdvanceRecurringSessionsIntervalCatchUp(t *testing.T) {
	// Weekly interval, last session over a month stale: the advance loop
	// lands on the first occurrence on or after today.
	customer := models.Customer{
		ID:             4,
		Name:           "Karim",
		Phone:          "78222333",
		CustomerType:   models.CustomerTypePT,
		PTDate:         strPtr("2026-01-21"),
		IsRecurring:    true,
		RecurrenceType: strPtr(models.RecurrenceTypeWeekly),
	}
	store := newFakeCustomerStore()
	store.pastDate = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.AdvanceRecurringSessions(context.Background(), checkTime))
	assert.Equal(t, "2026-03-04", store.advanced[4])
}

func TestAdvanceRecurringSessionsEndsExpiredRecurrence(t *testing.T) {
	customer := models.Customer{
		ID:                5,
		Name:              "Dana",
		Phone:             "79333444",
		CustomerType:      models.CustomerTypePT,
		PTDate:            strPtr("2026-03-02"),
		IsRecurring:       true,
		RecurrenceType:    strPtr(models.RecurrenceTypeDaily),
		RecurrenceEndDate: strPtr("2026-03-03"),
	}
	store := newFakeCustomerStore()
	store.pastDate = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.AdvanceRecurringSessions(context.Background(), checkTime))

	assert.Contains(t, store.disabled, int64(5))
	assert.Empty(t, store.advanced)
	assert.Empty(t, notifier.sent, "no confirmation for an ended recurrence")
}

func TestAdvanceRecurringSessionsWeeklyIsSilent(t *testing.T) {
	customer := recurringCustomer(6, checkTime.Weekday())
	customer.PTDate = strPtr("2026-02-25")
	store := newFakeCustomerStore()
	store.pastDate = []models.Customer{customer}
	notifier := &fakeNotifier{}
	engine := NewEngine(store, &fakeReminderStore{}, notifier)

	require.NoError(t, engine.AdvanceRecurringSessions(context.Background(), checkTime))

	assert.Equal(t, "2026-03-04", store.advanced[6])
	assert.Empty(t, notifier.sent, "weekday-set advancement is bookkeeping only")
}

func TestCheckDueRemindersRenotifiesUntilCompleted(t *testing.T) {
	due := models.DueReminder{
		Reminder: models.Reminder{
			ID:           11,
			CustomerID:   2,
			ReminderDate: "2026-03-01",
			ReminderType: "follow_up",
			Notes:        strPtr("ask about membership renewal"),
		},
		CustomerName:  "Rami",
		CustomerEmail: strPtr("rami@example.com"),
		CustomerPhone: "70999888",
	}
	reminders := &fakeReminderStore{due: []models.DueReminder{due}}
	notifier := &fakeNotifier{}
	engine := NewEngine(newFakeCustomerStore(), reminders, notifier)

	require.NoError(t, engine.CheckDueReminders(context.Background(), checkTime))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notify.KindFollowUp, notifier.sent[0].kind)
	assert.Equal(t, notify.RoleCustomer, notifier.sent[0].role)
	assert.Equal(t, "ask about membership renewal", notifier.sent[0].opts.Notes)

	// The next daily run sees the same uncompleted reminder and fires again.
	require.NoError(t, engine.CheckDueReminders(context.Background(), checkTime.AddDate(0, 0, 1)))
	assert.Len(t, notifier.sent, 2)
}

func TestCheckDueRemindersListErrorAborts(t *testing.T) {
	reminders := &fakeReminderStore{listErr: errors.New("timeout")}
	notifier := &fakeNotifier{}
	engine := NewEngine(newFakeCustomerStore(), reminders, notifier)

	err := engine.CheckDueReminders(context.Background(), checkTime)
	require.Error(t, err)
	assert.Empty(t, notifier.sent)
}
