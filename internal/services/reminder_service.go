package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

// --- Custom Service Errors for Reminder ---
var (
	ErrReminderNotFound = errors.New("reminder not found")
)

// --- Reminder DTOs ---
type CreateReminderRequest struct {
	CustomerID   int64  `json:"customer_id" binding:"required"`
	ReminderDate string `json:"reminder_date" binding:"required"` // Format YYYY-MM-DD
	ReminderType string `json:"reminder_type"`
	Notes        string `json:"notes"`
}

type UpdateReminderRequest struct {
	ReminderDate *string `json:"reminder_date"`
	ReminderType *string `json:"reminder_type"`
	Completed    *bool   `json:"completed"`
	Notes        *string `json:"notes"`
}

// --- ReminderService Interface ---
type ReminderService interface {
	CreateReminder(req CreateReminderRequest) (*models.Reminder, error)
	GetReminderByID(reminderID int64) (*models.Reminder, error)
	GetReminders() ([]models.DueReminder, error)
	GetRemindersByCustomer(customerID int64) ([]models.Reminder, error)
	GetPendingReminders() ([]models.DueReminder, error)
	GetCompletedReminders() ([]models.DueReminder, error)
	UpdateReminder(reminderID int64, req UpdateReminderRequest) (*models.Reminder, error)
	CompleteReminder(reminderID int64) error
	DeleteReminder(reminderID int64) error
}

// --- reminderService Implementation ---
type reminderService struct {
	reminderRepo repositories.ReminderRepository
	db           *sql.DB
}

// NewReminderService creates a new instance of ReminderService.
func NewReminderService(repo repositories.ReminderRepository, db *sql.DB) ReminderService {
	return &reminderService{
		reminderRepo: repo,
		db:           db,
	}
}

// CreateReminder stores an ad hoc follow-up reminder for a customer.
func (s *reminderService) CreateReminder(req CreateReminderRequest) (*models.Reminder, error) {
	if _, err := time.Parse(models.DateLayout, req.ReminderDate); err != nil {
		return nil, ErrDateFormat
	}

	reminderType := req.ReminderType
	if reminderType == "" {
		reminderType = "follow_up"
	}
	reminder := &models.Reminder{
		CustomerID:   req.CustomerID,
		ReminderDate: req.ReminderDate,
		ReminderType: reminderType,
		Notes:        utils.NewNullString(req.Notes),
	}

	id, err := s.reminderRepo.CreateReminder(s.db, reminder)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	created, err := s.reminderRepo.GetReminderByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created reminder: %w", err)
	}
	return created, nil
}

func (s *reminderService) GetReminderByID(reminderID int64) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.GetReminderByID(reminderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to get reminder by ID: %w", err)
	}
	return reminder, nil
}

func (s *reminderService) GetReminders() ([]models.DueReminder, error) {
	reminders, err := s.reminderRepo.GetReminders()
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders: %w", err)
	}
	return reminders, nil
}

func (s *reminderService) GetRemindersByCustomer(customerID int64) ([]models.Reminder, error) {
	reminders, err := s.reminderRepo.GetRemindersByCustomer(customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders for customer: %w", err)
	}
	return reminders, nil
}

func (s *reminderService) GetPendingReminders() ([]models.DueReminder, error) {
	reminders, err := s.reminderRepo.GetPendingReminders()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending reminders: %w", err)
	}
	return reminders, nil
}

func (s *reminderService) GetCompletedReminders() ([]models.DueReminder, error) {
	reminders, err := s.reminderRepo.GetCompletedReminders()
	if err != nil {
		return nil, fmt.Errorf("failed to get completed reminders: %w", err)
	}
	return reminders, nil
}

func (s *reminderService) UpdateReminder(reminderID int64, req UpdateReminderRequest) (*models.Reminder, error) {
	reminder, err := s.reminderRepo.GetReminderByID(reminderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to find reminder for update: %w", err)
	}

	if req.ReminderDate != nil {
		if _, err := time.Parse(models.DateLayout, *req.ReminderDate); err != nil {
			return nil, ErrDateFormat
		}
		reminder.ReminderDate = *req.ReminderDate
	}
	if req.ReminderType != nil {
		reminder.ReminderType = *req.ReminderType
	}
	if req.Completed != nil {
		reminder.Completed = *req.Completed
	}
	if req.Notes != nil {
		reminder.Notes = utils.NewNullString(*req.Notes)
	}

	if err := s.reminderRepo.UpdateReminder(s.db, reminder); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReminderNotFound
		}
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *reminderService) CompleteReminder(reminderID int64) error {
	if err := s.reminderRepo.CompleteReminder(s.db, reminderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrReminderNotFound
		}
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	return nil
}

func (s *reminderService) DeleteReminder(reminderID int64) error {
	if err := s.reminderRepo.DeleteReminder(s.db, reminderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrReminderNotFound
		}
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}
