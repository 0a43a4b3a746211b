package services

import (
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
)

// --- Backup DTOs ---

// BackupData is the full JSON export: every customer (archived included),
// every reminder and every user account, minus password hashes.
type BackupData struct {
	ExportDate string            `json:"export_date"`
	Customers  []models.Customer `json:"customers"`
	Reminders  []models.Reminder `json:"reminders"`
	Users      []models.User     `json:"users"`
}

// BackupSummary carries the row counts shown on the backup preview screen.
type BackupSummary struct {
	TotalCustomers int `json:"total_customers"`
	TotalReminders int `json:"total_reminders"`
	TotalUsers     int `json:"total_users"`
}

// --- BackupService Interface ---
type BackupService interface {
	Export() (*BackupData, error)
}

// --- backupService Implementation ---
type backupService struct {
	customerRepo repositories.CustomerRepository
	reminderRepo repositories.ReminderRepository
	userRepo     repositories.UserRepository
}

// NewBackupService creates a new instance of BackupService.
func NewBackupService(customerRepo repositories.CustomerRepository, reminderRepo repositories.ReminderRepository, userRepo repositories.UserRepository) BackupService {
	return &backupService{
		customerRepo: customerRepo,
		reminderRepo: reminderRepo,
		userRepo:     userRepo,
	}
}

// Export collects the three tables into one snapshot. Any table failing to
// load aborts the export; a partial backup is worse than none.
func (s *backupService) Export() (*BackupData, error) {
	customers, err := s.customerRepo.ListAllCustomers()
	if err != nil {
		return nil, fmt.Errorf("exporting customers: %w", err)
	}
	reminders, err := s.reminderRepo.ListAllReminders()
	if err != nil {
		return nil, fmt.Errorf("exporting reminders: %w", err)
	}
	users, err := s.userRepo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("exporting users: %w", err)
	}

	return &BackupData{
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Customers:  customers,
		Reminders:  reminders,
		Users:      users,
	}, nil
}

// Summary returns the row counts of a snapshot.
func (d *BackupData) Summary() BackupSummary {
	return BackupSummary{
		TotalCustomers: len(d.Customers),
		TotalReminders: len(d.Reminders),
		TotalUsers:     len(d.Users),
	}
}
