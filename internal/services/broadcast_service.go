package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"
	"github.com/daabouladam6/gymnastika-crm/internal/repositories"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

// --- Custom Service Errors for Broadcast ---
var (
	ErrWhatsAppNotConfigured = errors.New("whatsapp channel is not configured")
	ErrInvalidSegment        = errors.New("segment must be 'all', 'basic' or 'pt'")
)

// broadcastSendDelay paces Cloud API calls so a large broadcast does not
// trip the per-second rate limit.
const broadcastSendDelay = 100 * time.Millisecond

// --- Broadcast DTOs ---
type BroadcastRequest struct {
	Message string `json:"message" binding:"required"`
	Segment string `json:"segment"` // "all" (default), "basic" or "pt"
}

type BroadcastResult struct {
	Total    int              `json:"total"`
	Sent     int              `json:"sent"`
	Failed   int              `json:"failed"`
	Outcomes []notify.Outcome `json:"outcomes"`
}

type WhatsAppStatus struct {
	Configured bool   `json:"configured"`
	Channel    string `json:"channel"`
}

// --- BroadcastService Interface ---
type BroadcastService interface {
	Status() WhatsAppStatus
	SendMessage(ctx context.Context, phone, message string) (notify.Outcome, error)
	SendToCustomer(ctx context.Context, customerID int64, message string) (notify.Outcome, error)
	Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error)
}

// --- broadcastService Implementation ---
type broadcastService struct {
	whatsapp     notify.Channel
	customerRepo repositories.CustomerRepository
}

// NewBroadcastService creates a new instance of BroadcastService.
func NewBroadcastService(whatsapp notify.Channel, customerRepo repositories.CustomerRepository) BroadcastService {
	return &broadcastService{
		whatsapp:     whatsapp,
		customerRepo: customerRepo,
	}
}

func (s *broadcastService) Status() WhatsAppStatus {
	return WhatsAppStatus{
		Configured: s.whatsapp.Configured(),
		Channel:    s.whatsapp.Name(),
	}
}

// SendMessage delivers a free-form WhatsApp message to an arbitrary phone
// number. Also backs the connectivity test endpoint.
func (s *broadcastService) SendMessage(ctx context.Context, phone, message string) (notify.Outcome, error) {
	if !s.whatsapp.Configured() {
		return notify.Outcome{}, ErrWhatsAppNotConfigured
	}
	outcome := s.whatsapp.Send(ctx, phone, notify.Content{Body: message})
	return outcome, nil
}

func (s *broadcastService) SendToCustomer(ctx context.Context, customerID int64, message string) (notify.Outcome, error) {
	if !s.whatsapp.Configured() {
		return notify.Outcome{}, ErrWhatsAppNotConfigured
	}
	customer, err := s.customerRepo.GetCustomerByID(customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notify.Outcome{}, ErrCustomerNotFound
		}
		return notify.Outcome{}, fmt.Errorf("failed to find customer for message: %w", err)
	}
	outcome := s.whatsapp.Send(ctx, customer.Phone, notify.Content{Body: message})
	return outcome, nil
}

// Broadcast sends the message to every active customer in the segment,
// pacing sends and stopping early if the context is cancelled.
func (s *broadcastService) Broadcast(ctx context.Context, req BroadcastRequest) (*BroadcastResult, error) {
	if !s.whatsapp.Configured() {
		return nil, ErrWhatsAppNotConfigured
	}

	var customerType *string
	switch req.Segment {
	case "", "all":
	case models.CustomerTypeBasic, models.CustomerTypePT:
		segment := req.Segment
		customerType = &segment
	default:
		return nil, ErrInvalidSegment
	}

	customers, err := s.customerRepo.GetCustomers(customerType)
	if err != nil {
		return nil, fmt.Errorf("failed to list broadcast recipients: %w", err)
	}

	result := &BroadcastResult{Total: len(customers)}
	for i, customer := range customers {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(broadcastSendDelay):
			}
		}

		outcome := s.whatsapp.Send(ctx, customer.Phone, notify.Content{Body: req.Message})
		if outcome.Success {
			result.Sent++
		} else {
			result.Failed++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	utils.LogInfo("WhatsApp broadcast finished", map[string]interface{}{
		"segment": req.Segment,
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
	})
	return result, nil
}
