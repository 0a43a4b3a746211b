package models

import "time"

// Reminder is an ad hoc follow-up attached to a customer, distinct from the
// recurring PT session reminders. Completion is a manual user action.
type Reminder struct {
	ID           int64     `json:"id" db:"id"`
	CustomerID   int64     `json:"customer_id" db:"customer_id" binding:"required"`
	ReminderDate string    `json:"reminder_date" db:"reminder_date" binding:"required"` // YYYY-MM-DD
	ReminderType string    `json:"reminder_type" db:"reminder_type"`
	Completed    bool      `json:"completed" db:"completed"`
	Notes        *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// DueReminder is a reminder joined with the contact fields of its customer,
// as selected by the overdue-reminder query.
type DueReminder struct {
	Reminder
	CustomerName  string  `json:"customer_name" db:"customer_name"`
	CustomerEmail *string `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone string  `json:"customer_phone" db:"customer_phone"`
}
