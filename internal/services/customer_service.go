package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
	"github.com/daabouladam6/gymnastika-crm/internal/trainers"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"

	"github.com/lib/pq"
)

// --- Custom Service Errors for Customer ---
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerValidation  = errors.New("customer data validation error")
	ErrDateFormat          = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrCustomerNotArchived = errors.New("customer must be archived before permanent deletion")
)

// --- Customer DTOs ---
type CreateCustomerRequest struct {
	Name           string  `json:"name" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	Email          *string `json:"email"`
	ChildName      *string `json:"child_name"`
	ReferralSource *string `json:"referral_source"`
	Notes          *string `json:"notes"`
	WantsPT        bool    `json:"wants_pt"`
	CustomerType   string  `json:"customer_type"` // "basic" (default) or "pt"

	PTDate       *string `json:"pt_date"` // Format YYYY-MM-DD
	PTTime       *string `json:"pt_time"` // e.g. "09:00"
	TrainerEmail *string `json:"trainer_email"`

	IsRecurring        bool    `json:"is_recurring"`
	PTDays             []int64 `json:"pt_days"` // Sunday=0 .. Saturday=6
	RecurrenceType     *string `json:"recurrence_type"`
	RecurrenceInterval *int    `json:"recurrence_interval"`
	RecurrenceEndDate  *string `json:"recurrence_end_date"`
}

type UpdateCustomerRequest struct {
	Name           *string `json:"name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email"`
	ChildName      *string `json:"child_name"`
	ReferralSource *string `json:"referral_source"`
	Notes          *string `json:"notes"`
	WantsPT        *bool   `json:"wants_pt"`
	CustomerType   *string `json:"customer_type"`

	PTDate       *string `json:"pt_date"`
	PTTime       *string `json:"pt_time"`
	TrainerEmail *string `json:"trainer_email"`

	IsRecurring        *bool    `json:"is_recurring"`
	PTDays             *[]int64 `json:"pt_days"`
	RecurrenceType     *string  `json:"recurrence_type"`
	RecurrenceInterval *int     `json:"recurrence_interval"`
	RecurrenceEndDate  *string  `json:"recurrence_end_date"`
}

// --- CustomerService Interface ---
type CustomerService interface {
	CreateCustomer(req CreateCustomerRequest) (*models.Customer, []notify.Outcome, error)
	GetCustomerByID(customerID int64) (*models.Customer, error)
	GetCustomers(customerType *string) ([]models.Customer, error)
	GetArchivedCustomers(oldestFirst bool) ([]models.Customer, error)
	UpdateCustomer(customerID int64, req UpdateCustomerRequest) (*models.Customer, []notify.Outcome, error)
	ArchiveCustomer(customerID int64) ([]notify.Outcome, error)
	UnarchiveCustomer(customerID int64) error
	DeleteArchivedCustomer(customerID int64) error
}

// --- customerService Implementation ---
type customerService struct {
	customerRepo repositories.CustomerRepository
	db           *sql.DB
	notifier     notify.Sender
	trainers     *trainers.Directory
}

// NewCustomerService creates a new instance of CustomerService.
func NewCustomerService(repo repositories.CustomerRepository, db *sql.DB, notifier notify.Sender, directory *trainers.Directory) CustomerService {
	return &customerService{
		customerRepo: repo,
		db:           db,
		notifier:     notifier,
		trainers:     directory,
	}
}

func validDateString(s string) bool {
	_, err := time.Parse(models.DateLayout, s)
	return err == nil
}

// validateCustomer enforces the intake invariants: PT customers need a
// session date; recurring customers need both a weekday set (or interval
// descriptor) and a session time. An unresolvable trainer email is NOT an
// error; rendering degrades to a generic coach label.
func (s *customerService) validateCustomer(c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrCustomerValidation)
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("%w: phone cannot be empty", ErrCustomerValidation)
	}
	if c.CustomerType != models.CustomerTypeBasic && c.CustomerType != models.CustomerTypePT {
		return fmt.Errorf("%w: customer_type must be 'basic' or 'pt'", ErrCustomerValidation)
	}
	if c.Email != nil && *c.Email != "" && !utils.IsValidEmail(*c.Email) {
		return fmt.Errorf("%w: email format is invalid", ErrCustomerValidation)
	}

	if c.CustomerType == models.CustomerTypePT {
		if c.PTDate == nil || *c.PTDate == "" {
			return fmt.Errorf("%w: pt_date is required for PT customers", ErrCustomerValidation)
		}
	}
	if c.PTDate != nil && *c.PTDate != "" && !validDateString(*c.PTDate) {
		return ErrDateFormat
	}
	if c.RecurrenceEndDate != nil && *c.RecurrenceEndDate != "" && !validDateString(*c.RecurrenceEndDate) {
		return ErrDateFormat
	}

	if c.IsRecurring {
		hasWeekly := len(c.PTDays) > 0
		hasInterval := c.RecurrenceType != nil && *c.RecurrenceType != ""
		if !hasWeekly && !hasInterval {
			return fmt.Errorf("%w: recurring customers need pt_days or a recurrence_type", ErrCustomerValidation)
		}
		if c.PTTime == nil || strings.TrimSpace(*c.PTTime) == "" {
			return fmt.Errorf("%w: pt_time is required for recurring customers", ErrCustomerValidation)
		}
		for _, d := range c.PTDays {
			if d < 0 || d > 6 {
				return fmt.Errorf("%w: pt_days values must be between 0 (Sunday) and 6 (Saturday)", ErrCustomerValidation)
			}
		}
		if hasInterval {
			switch *c.RecurrenceType {
			case models.RecurrenceTypeDaily, models.RecurrenceTypeWeekly:
			case models.RecurrenceTypeCustom:
				if c.RecurrenceInterval == nil || *c.RecurrenceInterval <= 0 {
					return fmt.Errorf("%w: custom recurrence needs a positive recurrence_interval", ErrCustomerValidation)
				}
			default:
				return fmt.Errorf("%w: recurrence_type must be daily, weekly or custom", ErrCustomerValidation)
			}
		}
	}
	return nil
}

func ptOptions(c *models.Customer) notify.Options {
	opts := notify.Options{}
	if c.PTDate != nil {
		opts.PTDate = *c.PTDate
	}
	if c.PTTime != nil {
		opts.PTTime = *c.PTTime
	}
	return opts
}

func trainerEmailOf(c *models.Customer) string {
	if c.TrainerEmail != nil {
		return *c.TrainerEmail
	}
	return ""
}

func dateTimeLabel(date, timeOfDay *string) string {
	if date == nil {
		return ""
	}
	if timeOfDay != nil && *timeOfDay != "" {
		return *date + " at " + *timeOfDay
	}
	return *date
}

// CreateCustomer persists the customer and fires the intake notifications:
// welcome for basic customers, session confirmation (and an immediate
// same-day reminder when the session is today) for PT customers.
func (s *customerService) CreateCustomer(req CreateCustomerRequest) (*models.Customer, []notify.Outcome, error) {
	customerType := req.CustomerType
	if customerType == "" {
		customerType = models.CustomerTypeBasic
	}
	customer := &models.Customer{
		Name:               strings.TrimSpace(req.Name),
		Phone:              strings.TrimSpace(req.Phone),
		Email:              req.Email,
		ChildName:          req.ChildName,
		ReferralSource:     req.ReferralSource,
		Notes:              req.Notes,
		WantsPT:            req.WantsPT,
		CustomerType:       customerType,
		PTDate:             req.PTDate,
		PTTime:             req.PTTime,
		TrainerEmail:       req.TrainerEmail,
		IsRecurring:        req.IsRecurring,
		PTDays:             pq.Int64Array(req.PTDays),
		RecurrenceType:     req.RecurrenceType,
		RecurrenceInterval: req.RecurrenceInterval,
		RecurrenceEndDate:  req.RecurrenceEndDate,
	}
	if err := s.validateCustomer(customer); err != nil {
		return nil, nil, err
	}

	id, err := s.customerRepo.CreateCustomer(s.db, customer)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create customer in repository: %w", err)
	}
	created, err := s.customerRepo.GetCustomerByID(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload created customer: %w", err)
	}

	ctx := context.Background()
	var outcomes []notify.Outcome
	if created.CustomerType == models.CustomerTypePT && created.PTDate != nil {
		opts := ptOptions(created)
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTConfirmation, *created, opts)...)
		outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTConfirmation, trainerEmailOf(created), *created, opts)...)

		if *created.PTDate == time.Now().Format(models.DateLayout) {
			outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTReminder, *created, opts)...)
			outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTReminder, trainerEmailOf(created), *created, opts)...)
		}
	} else {
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindWelcome, *created, notify.Options{})...)
	}

	return created, outcomes, nil
}

func (s *customerService) GetCustomerByID(customerID int64) (*models.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}
	return customer, nil
}

func (s *customerService) GetCustomers(customerType *string) ([]models.Customer, error) {
	customers, err := s.customerRepo.GetCustomers(customerType)
	if err != nil {
		return nil, fmt.Errorf("failed to get customers: %w", err)
	}
	return customers, nil
}

func (s *customerService) GetArchivedCustomers(oldestFirst bool) ([]models.Customer, error) {
	customers, err := s.customerRepo.GetArchivedCustomers(oldestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to get archived customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer applies the changed fields and notifies both parties when a
// PT session moves (date-changed) or is dropped entirely (cancelled).
func (s *customerService) UpdateCustomer(customerID int64, req UpdateCustomerRequest) (*models.Customer, []notify.Outcome, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, fmt.Errorf("failed to find customer for update: %w", err)
	}

	wasPT := customer.CustomerType == models.CustomerTypePT
	oldDateTime := dateTimeLabel(customer.PTDate, customer.PTTime)
	oldTrainer := trainerEmailOf(customer)

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Email != nil {
		customer.Email = req.Email
	}
	if req.ChildName != nil {
		customer.ChildName = req.ChildName
	}
	if req.ReferralSource != nil {
		customer.ReferralSource = req.ReferralSource
	}
	if req.Notes != nil {
		customer.Notes = req.Notes
	}
	if req.WantsPT != nil {
		customer.WantsPT = *req.WantsPT
	}
	if req.CustomerType != nil {
		customer.CustomerType = *req.CustomerType
	}
	if req.PTDate != nil {
		customer.PTDate = utils.NewNullString(*req.PTDate)
	}
	if req.PTTime != nil {
		customer.PTTime = utils.NewNullString(*req.PTTime)
	}
	if req.TrainerEmail != nil {
		customer.TrainerEmail = utils.NewNullString(*req.TrainerEmail)
	}
	if req.IsRecurring != nil {
		customer.IsRecurring = *req.IsRecurring
	}
	if req.PTDays != nil {
		customer.PTDays = pq.Int64Array(*req.PTDays)
	}
	if req.RecurrenceType != nil {
		customer.RecurrenceType = utils.NewNullString(*req.RecurrenceType)
	}
	if req.RecurrenceInterval != nil {
		customer.RecurrenceInterval = req.RecurrenceInterval
	}
	if req.RecurrenceEndDate != nil {
		customer.RecurrenceEndDate = utils.NewNullString(*req.RecurrenceEndDate)
	}

	if err := s.validateCustomer(customer); err != nil {
		return nil, nil, err
	}
	if err := s.customerRepo.UpdateCustomer(s.db, customer); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, fmt.Errorf("failed to update customer in repository: %w", err)
	}

	updated, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload updated customer: %w", err)
	}

	ctx := context.Background()
	var outcomes []notify.Outcome
	isPT := updated.CustomerType == models.CustomerTypePT
	newDateTime := dateTimeLabel(updated.PTDate, updated.PTTime)

	switch {
	case wasPT && !isPT && oldDateTime != "":
		opts := notify.Options{OldDateTime: oldDateTime}
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTCancellation, *updated, opts)...)
		outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTCancellation, oldTrainer, *updated, opts)...)

	case isPT && oldDateTime != "" && newDateTime != "" && oldDateTime != newDateTime:
		opts := notify.Options{OldDateTime: oldDateTime, NewDateTime: newDateTime}
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTDateChange, *updated, opts)...)
		outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTDateChange, trainerEmailOf(updated), *updated, opts)...)

	case !wasPT && isPT && updated.PTDate != nil:
		opts := ptOptions(updated)
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTConfirmation, *updated, opts)...)
		outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTConfirmation, trainerEmailOf(updated), *updated, opts)...)
	}

	return updated, outcomes, nil
}

// ArchiveCustomer soft-deletes the customer. A PT customer with a scheduled
// session gets a cancellation notice, as does their trainer.
func (s *customerService) ArchiveCustomer(customerID int64) ([]notify.Outcome, error) {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to find customer for archiving: %w", err)
	}

	if err := s.customerRepo.ArchiveCustomer(s.db, customerID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to archive customer: %w", err)
	}

	var outcomes []notify.Outcome
	if customer.CustomerType == models.CustomerTypePT && customer.PTDate != nil {
		ctx := context.Background()
		opts := notify.Options{OldDateTime: dateTimeLabel(customer.PTDate, customer.PTTime)}
		outcomes = append(outcomes, s.notifier.NotifyCustomer(ctx, notify.KindPTCancellation, *customer, opts)...)
		outcomes = append(outcomes, s.notifier.NotifyTrainer(ctx, notify.KindPTCancellation, trainerEmailOf(customer), *customer, opts)...)
	}
	return outcomes, nil
}

func (s *customerService) UnarchiveCustomer(customerID int64) error {
	if err := s.customerRepo.UnarchiveCustomer(s.db, customerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to unarchive customer: %w", err)
	}
	return nil
}

// DeleteArchivedCustomer permanently erases a customer; allowed only from
// the archived state.
func (s *customerService) DeleteArchivedCustomer(customerID int64) error {
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to find customer for deletion: %w", err)
	}
	if !customer.Archived {
		return ErrCustomerNotArchived
	}
	if err := s.customerRepo.DeleteArchivedCustomer(s.db, customerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
