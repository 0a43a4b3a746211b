// Package scheduler contains the reminder decision engine and the timer
// driver that feeds it. The engine decides, for each tick, which customers
// are due for which notification and fires each eligible event once.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

// CustomerStore is the slice of customer persistence the engine needs. All
// listing operations exclude archived customers.
type CustomerStore interface {
	ListDueOneTimePTCustomers(today string) ([]models.Customer, error)
	ListRecurringPTCustomers() ([]models.Customer, error)
	ListPastDateRecurringCustomers(today string) ([]models.Customer, error)
	UpdateLastReminderDate(customerID int64, date string) error
	AdvancePTDate(customerID int64, newDate string) error
	DisableRecurrence(customerID int64) error
}

// ReminderStore lists overdue ad hoc follow-ups joined with their customer.
type ReminderStore interface {
	ListDueReminders(today string) ([]models.DueReminder, error)
}

// Engine is the reminder decision engine. It owns no timing; the Driver
// invokes its check operations.
type Engine struct {
	customers CustomerStore
	reminders ReminderStore
	notifier  notify.Sender
}

// NewEngine creates an Engine over the given stores and notifier.
func NewEngine(customers CustomerStore, reminders ReminderStore, notifier notify.Sender) *Engine {
	return &Engine{customers: customers, reminders: reminders, notifier: notifier}
}

// CheckOneTimeSessions sends same-day session reminders for non-recurring PT
// customers whose pt_date is today. It carries no watermark: the date
// condition is idempotent per day, so this check MUST only run on the daily
// trigger, never the frequent poll (the driver enforces that wiring).
func (e *Engine) CheckOneTimeSessions(ctx context.Context, now time.Time) error {
	today := now.Format(models.DateLayout)
	customers, err := e.customers.ListDueOneTimePTCustomers(today)
	if err != nil {
		utils.LogError(err, "Listing one-time PT sessions due today")
		return fmt.Errorf("listing due one-time PT customers: %w", err)
	}
	if len(customers) == 0 {
		utils.LogDebug("No one-time PT sessions scheduled for today")
		return nil
	}
	utils.LogInfo("One-time PT sessions due today", map[string]interface{}{"count": len(customers)})

	for _, c := range customers {
		e.dispatchSessionReminder(ctx, c, today)
	}
	return nil
}

// CheckRecurringSessions sends today's reminder to weekly recurring PT
// customers. Eligibility (weekday in pt_days) is checked before the
// last_reminder_date watermark so non-session days cost no store writes; the
// watermark is written after the send attempt resolves, success or failure,
// so a failing channel cannot cause a delivery storm on later ticks.
func (e *Engine) CheckRecurringSessions(ctx context.Context, now time.Time) error {
	today := now.Format(models.DateLayout)
	weekday := now.Weekday()

	customers, err := e.customers.ListRecurringPTCustomers()
	if err != nil {
		utils.LogError(err, "Listing recurring PT customers")
		return fmt.Errorf("listing recurring PT customers: %w", err)
	}

	for _, c := range customers {
		pattern := c.Recurrence()
		if pattern.Kind != models.RecurrenceWeeklyDays || c.PTTime == nil {
			continue
		}
		if !pattern.OnWeekday(weekday) {
			continue
		}
		if c.LastReminderDate != nil && *c.LastReminderDate == today {
			continue // already sent today
		}

		e.dispatchSessionReminder(ctx, c, today)

		if err := e.customers.UpdateLastReminderDate(c.ID, today); err != nil {
			utils.LogError(err, "Updating last reminder date for customer "+utils.Int64ToStr(c.ID))
			return fmt.Errorf("updating last reminder date for customer %d: %w", c.ID, err)
		}
	}
	return nil
}

// dispatchSessionReminder notifies the customer first, then the assigned
// trainer. Channel failures are absorbed inside the notifier.
func (e *Engine) dispatchSessionReminder(ctx context.Context, c models.Customer, today string) {
	opts := notify.Options{PTDate: today}
	if c.PTDate != nil {
		opts.PTDate = *c.PTDate
	}
	if c.PTTime != nil {
		opts.PTTime = *c.PTTime
	}

	e.notifier.NotifyCustomer(ctx, notify.KindPTReminder, c, opts)
	if c.TrainerEmail != nil && *c.TrainerEmail != "" {
		e.notifier.NotifyTrainer(ctx, notify.KindPTReminder, *c.TrainerEmail, c, opts)
	}
}

// AdvanceRecurringSessions moves stale pt_date values forward for recurring
// customers. Interval recurrences get a fresh confirmation for the new date,
// or have recurrence disabled when the next date falls past the end date.
// Weekly (pt_days) recurrences are advanced silently: their customers are
// reminded on every session weekday already, so the date move is pure
// bookkeeping.
func (e *Engine) AdvanceRecurringSessions(ctx context.Context, now time.Time) error {
	today := now.Format(models.DateLayout)
	customers, err := e.customers.ListPastDateRecurringCustomers(today)
	if err != nil {
		utils.LogError(err, "Listing recurring customers with past session dates")
		return fmt.Errorf("listing past-date recurring customers: %w", err)
	}

	for _, c := range customers {
		if c.PTDate == nil {
			continue
		}
		current, err := time.Parse(models.DateLayout, *c.PTDate)
		if err != nil {
			utils.LogError(err, "Unparseable pt_date for customer "+utils.Int64ToStr(c.ID))
			continue
		}

		pattern := c.Recurrence()
		switch pattern.Kind {
		case models.RecurrenceWeeklyDays:
			next := nextWeekdayOccurrence(current, now, pattern)
			if next == "" || next == *c.PTDate {
				continue
			}
			if err := e.customers.AdvancePTDate(c.ID, next); err != nil {
				return fmt.Errorf("advancing pt_date for customer %d: %w", c.ID, err)
			}

		case models.RecurrenceInterval:
			next := current.AddDate(0, 0, pattern.EveryNDays)
			// Catch up over missed intervals after downtime.
			for next.Format(models.DateLayout) < today {
				next = next.AddDate(0, 0, pattern.EveryNDays)
			}
			nextStr := next.Format(models.DateLayout)

			if pattern.Until != nil && *pattern.Until != "" && nextStr > *pattern.Until {
				if err := e.customers.DisableRecurrence(c.ID); err != nil {
					return fmt.Errorf("disabling recurrence for customer %d: %w", c.ID, err)
				}
				utils.LogInfo("Recurrence ended", map[string]interface{}{
					"customer_id": c.ID, "end_date": *pattern.Until,
				})
				continue
			}

			if err := e.customers.AdvancePTDate(c.ID, nextStr); err != nil {
				return fmt.Errorf("advancing pt_date for customer %d: %w", c.ID, err)
			}

			opts := notify.Options{PTDate: nextStr}
			if c.PTTime != nil {
				opts.PTTime = *c.PTTime
			}
			e.notifier.NotifyCustomer(ctx, notify.KindPTConfirmation, c, opts)
			if c.TrainerEmail != nil && *c.TrainerEmail != "" {
				e.notifier.NotifyTrainer(ctx, notify.KindPTConfirmation, *c.TrainerEmail, c, opts)
			}
		}
	}
	return nil
}

// nextWeekdayOccurrence finds the first date on or after today that falls on
// one of the pattern's weekdays, starting the day after the stale date.
func nextWeekdayOccurrence(stale, now time.Time, pattern models.RecurrencePattern) string {
	if len(pattern.Days) == 0 {
		return ""
	}
	candidate := stale.AddDate(0, 0, 1)
	today := now.Format(models.DateLayout)
	for i := 0; i < 8; i++ {
		if candidate.Format(models.DateLayout) >= today && pattern.OnWeekday(candidate.Weekday()) {
			return candidate.Format(models.DateLayout)
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	// More than a week stale: jump to today and scan the week ahead.
	candidate = now
	for i := 0; i < 7; i++ {
		if pattern.OnWeekday(candidate.Weekday()) {
			return candidate.Format(models.DateLayout)
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	return ""
}

// CheckDueReminders sends a follow-up for every uncompleted ad hoc reminder
// whose date is today or earlier. There is no watermark: an overdue reminder
// renotifies on each daily run until someone marks it complete.
func (e *Engine) CheckDueReminders(ctx context.Context, now time.Time) error {
	today := now.Format(models.DateLayout)
	due, err := e.reminders.ListDueReminders(today)
	if err != nil {
		utils.LogError(err, "Listing due reminders")
		return fmt.Errorf("listing due reminders: %w", err)
	}
	if len(due) == 0 {
		utils.LogDebug("No reminders due today")
		return nil
	}
	utils.LogInfo("Reminders due", map[string]interface{}{"count": len(due)})

	for _, r := range due {
		customer := models.Customer{
			ID:    r.CustomerID,
			Name:  r.CustomerName,
			Phone: r.CustomerPhone,
			Email: r.CustomerEmail,
		}
		opts := notify.Options{
			ReminderType: r.ReminderType,
			ReminderDate: r.ReminderDate,
		}
		if r.Notes != nil {
			opts.Notes = *r.Notes
		}
		e.notifier.NotifyCustomer(ctx, notify.KindFollowUp, customer, opts)
	}
	return nil
}
