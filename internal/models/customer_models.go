package models

import (
	"time"

	"github.com/lib/pq"
)

// Customer types.
const (
	CustomerTypeBasic = "basic"
	CustomerTypePT    = "pt"
)

// DateLayout is the calendar-date format used everywhere dates are compared
// as strings (pt_date, last_reminder_date, reminder_date).
const DateLayout = "2006-01-02"

// Customer represents a lead or client record of the gym.
type Customer struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"name" db:"name" binding:"required"`
	Phone          string  `json:"phone" db:"phone" binding:"required"`
	Email          *string `json:"email,omitempty" db:"email"`
	ChildName      *string `json:"child_name,omitempty" db:"child_name"`
	ReferralSource *string `json:"referral_source,omitempty" db:"referral_source"`
	Notes          *string `json:"notes,omitempty" db:"notes"`
	WantsPT        bool    `json:"wants_pt" db:"wants_pt"`
	CustomerType   string  `json:"customer_type" db:"customer_type"`

	// PT scheduling fields, meaningful only when CustomerType is "pt".
	// Dates are stored as YYYY-MM-DD strings and compared as calendar dates.
	PTDate       *string `json:"pt_date,omitempty" db:"pt_date"`
	PTTime       *string `json:"pt_time,omitempty" db:"pt_time"`
	TrainerEmail *string `json:"trainer_email,omitempty" db:"trainer_email"`

	// Recurrence. PTDays (day-of-week set, Sunday=0) is the canonical weekly
	// model; the interval fields are the retained older model used for
	// automatic date advancement of non-weekly recurrences.
	IsRecurring        bool          `json:"is_recurring" db:"is_recurring"`
	PTDays             pq.Int64Array `json:"pt_days,omitempty" db:"pt_days"`
	RecurrenceType     *string       `json:"recurrence_type,omitempty" db:"recurrence_type"`
	RecurrenceInterval *int          `json:"recurrence_interval,omitempty" db:"recurrence_interval"`
	RecurrenceEndDate  *string       `json:"recurrence_end_date,omitempty" db:"recurrence_end_date"`

	// LastReminderDate is the idempotency watermark: the calendar date on
	// which a recurring-session reminder was last dispatched.
	LastReminderDate *string `json:"last_reminder_date,omitempty" db:"last_reminder_date"`

	Archived   bool       `json:"archived" db:"archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Interval recurrence types.
const (
	RecurrenceTypeDaily  = "daily"
	RecurrenceTypeWeekly = "weekly"
	RecurrenceTypeCustom = "custom"
)

// RecurrenceKind discriminates the two recurrence schema generations.
type RecurrenceKind int

const (
	RecurrenceNone RecurrenceKind = iota
	RecurrenceWeeklyDays
	RecurrenceInterval
)

// RecurrencePattern is the unified view over the two recurrence models.
type RecurrencePattern struct {
	Kind RecurrenceKind

	// Weekly model: set of weekdays the session repeats on.
	Days []time.Weekday

	// Interval model: fixed number of days between sessions and an
	// optional end date.
	EveryNDays int
	Until      *string
}

// Recurrence derives the customer's recurrence pattern. The day-of-week set
// wins when both schema generations are populated.
func (c *Customer) Recurrence() RecurrencePattern {
	if !c.IsRecurring {
		return RecurrencePattern{Kind: RecurrenceNone}
	}
	if len(c.PTDays) > 0 {
		days := make([]time.Weekday, 0, len(c.PTDays))
		for _, d := range c.PTDays {
			if d >= 0 && d <= 6 {
				days = append(days, time.Weekday(d))
			}
		}
		return RecurrencePattern{Kind: RecurrenceWeeklyDays, Days: days}
	}
	interval := 0
	if c.RecurrenceType != nil {
		switch *c.RecurrenceType {
		case RecurrenceTypeDaily:
			interval = 1
		case RecurrenceTypeWeekly:
			interval = 7
		case RecurrenceTypeCustom:
			if c.RecurrenceInterval != nil {
				interval = *c.RecurrenceInterval
			}
		}
	}
	if interval <= 0 {
		return RecurrencePattern{Kind: RecurrenceNone}
	}
	return RecurrencePattern{Kind: RecurrenceInterval, EveryNDays: interval, Until: c.RecurrenceEndDate}
}

// OnWeekday reports whether a weekly pattern includes the given weekday.
func (p RecurrencePattern) OnWeekday(d time.Weekday) bool {
	for _, day := range p.Days {
		if day == d {
			return true
		}
	}
	return false
}
