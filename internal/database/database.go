package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

var DB *sql.DB

// schema creates the tables on first start. Dates are stored as TEXT in
// YYYY-MM-DD form so lexicographic comparison matches chronological order.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL,
	email TEXT,
	child_name TEXT,
	referral_source TEXT,
	notes TEXT,
	wants_pt BOOLEAN NOT NULL DEFAULT FALSE,
	customer_type TEXT NOT NULL DEFAULT 'basic',
	pt_date TEXT,
	pt_time TEXT,
	trainer_email TEXT,
	is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
	pt_days INTEGER[] NOT NULL DEFAULT '{}',
	recurrence_type TEXT,
	recurrence_interval INTEGER,
	recurrence_end_date TEXT,
	last_reminder_date TEXT,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	archived_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS reminders (
	id SERIAL PRIMARY KEY,
	customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
	reminder_date TEXT NOT NULL,
	reminder_type TEXT NOT NULL DEFAULT 'follow_up',
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	email TEXT,
	full_name TEXT,
	role TEXT NOT NULL DEFAULT 'employee',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_customers_archived ON customers (archived);
CREATE INDEX IF NOT EXISTS idx_customers_pt_date ON customers (pt_date);
CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (reminder_date, completed);
`

// InitDB opens the connection pool and bootstraps the schema.
func InitDB(host, port, user, password, dbname, sslmode string) error {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err = DB.Ping(); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	if err = applySchema(DB); err != nil {
		return err
	}

	utils.LogInfo("Successfully connected to the database", map[string]interface{}{
		"host":   host,
		"dbname": dbname,
	})
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("could not apply database schema: %w", err)
	}
	return nil
}

// GetDB returns the database connection pool
func GetDB() *sql.DB {
	return DB
}
