package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"

	"github.com/lib/pq"
)

// ReminderRepository defines the interface for ad hoc follow-up reminders.
type ReminderRepository interface {
	CreateReminder(executor SQLExecutor, reminder *models.Reminder) (int64, error)
	GetReminderByID(id int64) (*models.Reminder, error)
	GetReminders() ([]models.DueReminder, error)
	GetRemindersByCustomer(customerID int64) ([]models.Reminder, error)
	ListAllReminders() ([]models.Reminder, error)
	GetPendingReminders() ([]models.DueReminder, error)
	GetCompletedReminders() ([]models.DueReminder, error)
	ListDueReminders(today string) ([]models.DueReminder, error)
	UpdateReminder(executor SQLExecutor, reminder *models.Reminder) error
	CompleteReminder(executor SQLExecutor, id int64) error
	DeleteReminder(executor SQLExecutor, id int64) error
}

type reminderRepository struct {
	db *sql.DB
}

// NewReminderRepository creates a new instance of ReminderRepository.
func NewReminderRepository(db *sql.DB) ReminderRepository {
	return &reminderRepository{db: db}
}

const dueReminderColumns = `r.id, r.customer_id, r.reminder_date, r.reminder_type, r.completed, r.notes, r.created_at,
	c.name AS customer_name, c.email AS customer_email, c.phone AS customer_phone`

func scanDueReminder(s scanner) (*models.DueReminder, error) {
	r := &models.DueReminder{}
	err := s.Scan(
		&r.ID, &r.CustomerID, &r.ReminderDate, &r.ReminderType, &r.Completed, &r.Notes, &r.CreatedAt,
		&r.CustomerName, &r.CustomerEmail, &r.CustomerPhone,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *reminderRepository) queryDueReminders(query string, args ...interface{}) ([]models.DueReminder, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying reminders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	reminders := []models.DueReminder{}
	for rows.Next() {
		rem, err := scanDueReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning reminder: %v", ErrDatabaseError, err)
		}
		reminders = append(reminders, *rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating reminder rows: %v", ErrDatabaseError, err)
	}
	return reminders, nil
}

// CreateReminder inserts a new follow-up reminder.
func (r *reminderRepository) CreateReminder(executor SQLExecutor, reminder *models.Reminder) (int64, error) {
	if reminder.ReminderType == "" {
		reminder.ReminderType = "follow_up"
	}
	if reminder.CreatedAt.IsZero() {
		reminder.CreatedAt = time.Now()
	}
	err := executor.QueryRow(
		`INSERT INTO reminders (customer_id, reminder_date, reminder_type, completed, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		reminder.CustomerID, reminder.ReminderDate, reminder.ReminderType,
		reminder.Completed, reminder.Notes, reminder.CreatedAt,
	).Scan(&reminder.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: customer %d does not exist", ErrNotFound, reminder.CustomerID)
		}
		return 0, fmt.Errorf("%w: creating reminder: %v", ErrDatabaseError, err)
	}
	return reminder.ID, nil
}

// GetReminderByID retrieves a single reminder.
func (r *reminderRepository) GetReminderByID(id int64) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	err := r.db.QueryRow(
		`SELECT id, customer_id, reminder_date, reminder_type, completed, notes, created_at
		 FROM reminders WHERE id = $1`, id,
	).Scan(&reminder.ID, &reminder.CustomerID, &reminder.ReminderDate, &reminder.ReminderType,
		&reminder.Completed, &reminder.Notes, &reminder.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting reminder by ID %d: %v", ErrDatabaseError, id, err)
	}
	return reminder, nil
}

// GetReminders retrieves all reminders with customer contact info.
func (r *reminderRepository) GetReminders() ([]models.DueReminder, error) {
	return r.queryDueReminders(`SELECT ` + dueReminderColumns + `
		FROM reminders r JOIN customers c ON r.customer_id = c.id
		ORDER BY r.reminder_date ASC`)
}

// GetRemindersByCustomer retrieves a customer's reminders.
func (r *reminderRepository) GetRemindersByCustomer(customerID int64) ([]models.Reminder, error) {
	rows, err := r.db.Query(
		`SELECT id, customer_id, reminder_date, reminder_type, completed, notes, created_at
		 FROM reminders WHERE customer_id = $1 ORDER BY reminder_date ASC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying reminders for customer %d: %v", ErrDatabaseError, customerID, err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.CustomerID, &rem.ReminderDate, &rem.ReminderType,
			&rem.Completed, &rem.Notes, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning reminder: %v", ErrDatabaseError, err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating reminder rows: %v", ErrDatabaseError, err)
	}
	return reminders, nil
}

// ListAllReminders retrieves every reminder row for the backup export.
func (r *reminderRepository) ListAllReminders() ([]models.Reminder, error) {
	rows, err := r.db.Query(
		`SELECT id, customer_id, reminder_date, reminder_type, completed, notes, created_at
		 FROM reminders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all reminders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.CustomerID, &rem.ReminderDate, &rem.ReminderType,
			&rem.Completed, &rem.Notes, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning reminder: %v", ErrDatabaseError, err)
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating reminder rows: %v", ErrDatabaseError, err)
	}
	return reminders, nil
}

// GetPendingReminders retrieves uncompleted reminders.
func (r *reminderRepository) GetPendingReminders() ([]models.DueReminder, error) {
	return r.queryDueReminders(`SELECT ` + dueReminderColumns + `
		FROM reminders r JOIN customers c ON r.customer_id = c.id
		WHERE r.completed = FALSE ORDER BY r.reminder_date ASC`)
}

// GetCompletedReminders retrieves completed reminders, newest first.
func (r *reminderRepository) GetCompletedReminders() ([]models.DueReminder, error) {
	return r.queryDueReminders(`SELECT ` + dueReminderColumns + `
		FROM reminders r JOIN customers c ON r.customer_id = c.id
		WHERE r.completed = TRUE ORDER BY r.reminder_date DESC`)
}

// ListDueReminders retrieves uncompleted reminders due today or overdue,
// joined with their customer's contact fields. This is the engine's feed.
func (r *reminderRepository) ListDueReminders(today string) ([]models.DueReminder, error) {
	return r.queryDueReminders(`SELECT `+dueReminderColumns+`
		FROM reminders r JOIN customers c ON r.customer_id = c.id
		WHERE r.reminder_date <= $1 AND r.completed = FALSE AND c.archived = FALSE
		ORDER BY r.reminder_date ASC`, today)
}

// UpdateReminder updates a reminder's fields.
func (r *reminderRepository) UpdateReminder(executor SQLExecutor, reminder *models.Reminder) error {
	result, err := executor.Exec(
		`UPDATE reminders SET reminder_date = $1, reminder_type = $2, completed = $3, notes = $4 WHERE id = $5`,
		reminder.ReminderDate, reminder.ReminderType, reminder.Completed, reminder.Notes, reminder.ID)
	if err != nil {
		return fmt.Errorf("%w: updating reminder ID %d: %v", ErrDatabaseError, reminder.ID, err)
	}
	return requireRowsAffected(result, reminder.ID, "updating reminder")
}

// CompleteReminder marks a reminder as done, which stops its daily
// renotification.
func (r *reminderRepository) CompleteReminder(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`UPDATE reminders SET completed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: completing reminder ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "completing reminder")
}

// DeleteReminder removes a reminder.
func (r *reminderRepository) DeleteReminder(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting reminder ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting reminder")
}
