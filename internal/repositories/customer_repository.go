package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"

	"github.com/lib/pq" // For pq.Error and pq.Int64Array
)

// customerColumns is the select list shared by every customer query, kept in
// one place so scanCustomer stays in sync with it.
const customerColumns = `id, name, phone, email, child_name, referral_source, notes, wants_pt,
	customer_type, pt_date, pt_time, trainer_email, is_recurring, pt_days,
	recurrence_type, recurrence_interval, recurrence_end_date, last_reminder_date,
	archived, archived_at, created_at, updated_at`

// CustomerRepository defines the interface for customer-related database
// operations. The List*/Update*/Advance/Disable group is the slice the
// reminder decision engine consumes.
type CustomerRepository interface {
	CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error)
	GetCustomerByID(id int64) (*models.Customer, error)
	GetCustomers(customerType *string) ([]models.Customer, error)
	GetArchivedCustomers(oldestFirst bool) ([]models.Customer, error)
	ListAllCustomers() ([]models.Customer, error)
	UpdateCustomer(executor SQLExecutor, customer *models.Customer) error
	ArchiveCustomer(executor SQLExecutor, id int64, at time.Time) error
	UnarchiveCustomer(executor SQLExecutor, id int64) error
	DeleteArchivedCustomer(executor SQLExecutor, id int64) error

	ListDueOneTimePTCustomers(today string) ([]models.Customer, error)
	ListRecurringPTCustomers() ([]models.Customer, error)
	ListPastDateRecurringCustomers(today string) ([]models.Customer, error)
	UpdateLastReminderDate(customerID int64, date string) error
	AdvancePTDate(customerID int64, newDate string) error
	DisableRecurrence(customerID int64) error
}

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new instance of CustomerRepository.
func NewCustomerRepository(db *sql.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func scanCustomer(s scanner) (*models.Customer, error) {
	c := &models.Customer{}
	var archivedAt sql.NullTime
	err := s.Scan(
		&c.ID, &c.Name, &c.Phone, &c.Email, &c.ChildName, &c.ReferralSource, &c.Notes, &c.WantsPT,
		&c.CustomerType, &c.PTDate, &c.PTTime, &c.TrainerEmail, &c.IsRecurring, &c.PTDays,
		&c.RecurrenceType, &c.RecurrenceInterval, &c.RecurrenceEndDate, &c.LastReminderDate,
		&c.Archived, &archivedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if archivedAt.Valid {
		c.ArchivedAt = &archivedAt.Time
	}
	return c, nil
}

func collectCustomers(rows *sql.Rows) ([]models.Customer, error) {
	defer rows.Close()
	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning customer: %v", ErrDatabaseError, err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating customer rows: %v", ErrDatabaseError, err)
	}
	return customers, nil
}

// CreateCustomer inserts a new customer into the database.
func (r *customerRepository) CreateCustomer(executor SQLExecutor, customer *models.Customer) (int64, error) {
	query := `INSERT INTO customers (name, phone, email, child_name, referral_source, notes, wants_pt,
	            customer_type, pt_date, pt_time, trainer_email, is_recurring, pt_days,
	            recurrence_type, recurrence_interval, recurrence_end_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	          RETURNING id`

	currentTime := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = currentTime
	}
	if customer.UpdatedAt.IsZero() {
		customer.UpdatedAt = currentTime
	}
	if customer.CustomerType == "" {
		customer.CustomerType = models.CustomerTypeBasic
	}

	err := executor.QueryRow(query,
		customer.Name, customer.Phone, customer.Email, customer.ChildName, customer.ReferralSource,
		customer.Notes, customer.WantsPT, customer.CustomerType, customer.PTDate, customer.PTTime,
		customer.TrainerEmail, customer.IsRecurring, customer.PTDays, customer.RecurrenceType,
		customer.RecurrenceInterval, customer.RecurrenceEndDate, customer.CreatedAt, customer.UpdatedAt,
	).Scan(&customer.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating customer: %v", ErrDatabaseError, err)
	}
	return customer.ID, nil
}

// GetCustomerByID retrieves a customer by their ID, archived or not.
func (r *customerRepository) GetCustomerByID(id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := scanCustomer(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting customer by ID %d: %v", ErrDatabaseError, id, err)
	}
	return c, nil
}

// GetCustomers retrieves non-archived customers, optionally filtered by type.
// PT customers sort by upcoming session date, others by creation time.
func (r *customerRepository) GetCustomers(customerType *string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE archived = FALSE`
	args := []interface{}{}
	if customerType != nil && *customerType != "" {
		query += ` AND customer_type = $1`
		args = append(args, *customerType)
		if *customerType == models.CustomerTypePT {
			query += ` ORDER BY pt_date ASC NULLS LAST`
		} else {
			query += ` ORDER BY created_at DESC`
		}
	} else {
		query += ` ORDER BY created_at DESC`
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// GetArchivedCustomers retrieves archived customers sorted by archive time.
func (r *customerRepository) GetArchivedCustomers(oldestFirst bool) ([]models.Customer, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE archived = TRUE ORDER BY archived_at ` + order

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying archived customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// ListAllCustomers retrieves every customer, archived included, for the
// backup export.
func (r *customerRepository) ListAllCustomers() ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY id`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying all customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// UpdateCustomer updates an existing customer in the database.
func (r *customerRepository) UpdateCustomer(executor SQLExecutor, customer *models.Customer) error {
	query := `UPDATE customers SET
	            name = $1, phone = $2, email = $3, child_name = $4, referral_source = $5, notes = $6,
	            wants_pt = $7, customer_type = $8, pt_date = $9, pt_time = $10, trainer_email = $11,
	            is_recurring = $12, pt_days = $13, recurrence_type = $14, recurrence_interval = $15,
	            recurrence_end_date = $16, updated_at = $17
	          WHERE id = $18`

	customer.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		customer.Name, customer.Phone, customer.Email, customer.ChildName, customer.ReferralSource,
		customer.Notes, customer.WantsPT, customer.CustomerType, customer.PTDate, customer.PTTime,
		customer.TrainerEmail, customer.IsRecurring, customer.PTDays, customer.RecurrenceType,
		customer.RecurrenceInterval, customer.RecurrenceEndDate, customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating customer ID %d: %v", ErrDatabaseError, customer.ID, err)
	}
	return requireRowsAffected(result, customer.ID, "updating customer")
}

// ArchiveCustomer soft-deletes a customer. Archived customers are excluded
// from every reminder query.
func (r *customerRepository) ArchiveCustomer(executor SQLExecutor, id int64, at time.Time) error {
	result, err := executor.Exec(
		`UPDATE customers SET archived = TRUE, archived_at = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%w: archiving customer ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "archiving customer")
}

// UnarchiveCustomer restores an archived customer.
func (r *customerRepository) UnarchiveCustomer(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(
		`UPDATE customers SET archived = FALSE, archived_at = NULL, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: unarchiving customer ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "unarchiving customer")
}

// DeleteArchivedCustomer permanently erases a customer, but only from the
// archived state. Their reminders go with them.
func (r *customerRepository) DeleteArchivedCustomer(executor SQLExecutor, id int64) error {
	if _, err := executor.Exec(`DELETE FROM reminders WHERE customer_id = $1`, id); err != nil {
		return fmt.Errorf("%w: deleting reminders for customer ID %d: %v", ErrDatabaseError, id, err)
	}
	result, err := executor.Exec(`DELETE FROM customers WHERE id = $1 AND archived = TRUE`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting customer ID %d: %v", ErrDatabaseError, id, err)
	}
	return requireRowsAffected(result, id, "deleting archived customer")
}

// ListDueOneTimePTCustomers selects non-archived, non-recurring PT customers
// whose session date is today.
func (r *customerRepository) ListDueOneTimePTCustomers(today string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE customer_type = 'pt' AND is_recurring = FALSE AND pt_date = $1 AND archived = FALSE`
	rows, err := r.db.Query(query, today)
	if err != nil {
		return nil, fmt.Errorf("%w: querying due one-time PT customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// ListRecurringPTCustomers selects non-archived recurring PT customers with
// a weekday set and session time; the engine applies the weekday and
// watermark filters.
func (r *customerRepository) ListRecurringPTCustomers() ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE customer_type = 'pt' AND is_recurring = TRUE AND archived = FALSE
	            AND pt_days IS NOT NULL AND cardinality(pt_days) > 0 AND pt_time IS NOT NULL`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying recurring PT customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// ListPastDateRecurringCustomers selects non-archived recurring PT customers
// whose session date has fallen strictly into the past.
func (r *customerRepository) ListPastDateRecurringCustomers(today string) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
	          WHERE customer_type = 'pt' AND is_recurring = TRUE AND archived = FALSE
	            AND pt_date IS NOT NULL AND pt_date < $1`
	rows, err := r.db.Query(query, today)
	if err != nil {
		return nil, fmt.Errorf("%w: querying past-date recurring customers: %v", ErrDatabaseError, err)
	}
	return collectCustomers(rows)
}

// UpdateLastReminderDate persists the idempotency watermark. Setting the
// same date twice is harmless, so no locking is needed.
func (r *customerRepository) UpdateLastReminderDate(customerID int64, date string) error {
	result, err := r.db.Exec(`UPDATE customers SET last_reminder_date = $1 WHERE id = $2`, date, customerID)
	if err != nil {
		return fmt.Errorf("%w: updating last reminder date for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}
	return requireRowsAffected(result, customerID, "updating last reminder date")
}

// AdvancePTDate moves a recurring customer's session date forward.
func (r *customerRepository) AdvancePTDate(customerID int64, newDate string) error {
	result, err := r.db.Exec(`UPDATE customers SET pt_date = $1, updated_at = $2 WHERE id = $3`,
		newDate, time.Now(), customerID)
	if err != nil {
		return fmt.Errorf("%w: advancing pt_date for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}
	return requireRowsAffected(result, customerID, "advancing pt_date")
}

// DisableRecurrence terminates a customer's recurrence.
func (r *customerRepository) DisableRecurrence(customerID int64) error {
	result, err := r.db.Exec(`UPDATE customers SET is_recurring = FALSE, updated_at = $1 WHERE id = $2`,
		time.Now(), customerID)
	if err != nil {
		return fmt.Errorf("%w: disabling recurrence for customer ID %d: %v", ErrDatabaseError, customerID, err)
	}
	return requireRowsAffected(result, customerID, "disabling recurrence")
}

func requireRowsAffected(result sql.Result, id int64, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s ID %d: %v", ErrDatabaseError, op, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
