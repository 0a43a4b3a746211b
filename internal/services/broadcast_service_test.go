package services

import (
	"context"
	"sync"
	"testing"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedChannel struct {
	mu         sync.Mutex
	configured bool
	failFor    map[string]bool
	recipients []string
}

func (s *scriptedChannel) Name() string     { return "whatsapp" }
func (s *scriptedChannel) Configured() bool { return s.configured }

func (s *scriptedChannel) Send(ctx context.Context, recipient string, content notify.Content) notify.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipients = append(s.recipients, recipient)
	if s.failFor[recipient] {
		return notify.Outcome{Channel: "whatsapp", Recipient: recipient, Detail: "send failed"}
	}
	return notify.Outcome{Channel: "whatsapp", Recipient: recipient, Success: true}
}

func seededBroadcastService(channel notify.Channel) BroadcastService {
	repo := newMemCustomerRepo()
	repo.customers[1] = models.Customer{ID: 1, Name: "Lina", Phone: "70111111", CustomerType: models.CustomerTypeBasic}
	repo.customers[2] = models.Customer{ID: 2, Name: "Omar", Phone: "70222222", CustomerType: models.CustomerTypePT}
	repo.customers[3] = models.Customer{ID: 3, Name: "Gone", Phone: "70333333", CustomerType: models.CustomerTypeBasic, Archived: true}
	repo.nextID = 4
	return NewBroadcastService(channel, repo)
}

func TestBroadcastSkipsArchivedCustomers(t *testing.T) {
	channel := &scriptedChannel{configured: true}
	svc := seededBroadcastService(channel)

	result, err := svc.Broadcast(context.Background(), BroadcastRequest{Message: "hello", Segment: "all"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Sent)
	assert.Zero(t, result.Failed)
	assert.NotContains(t, channel.recipients, "70333333")
}

func TestBroadcastSegmentFilter(t *testing.T) {
	channel := &scriptedChannel{configured: true}
	svc := seededBroadcastService(channel)

	result, err := svc.Broadcast(context.Background(), BroadcastRequest{Message: "pt news", Segment: models.CustomerTypePT})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.Equal(t, []string{"70222222"}, channel.recipients)
}

func TestBroadcastCountsFailures(t *testing.T) {
	channel := &scriptedChannel{configured: true, failFor: map[string]bool{"70111111": true}}
	svc := seededBroadcastService(channel)

	result, err := svc.Broadcast(context.Background(), BroadcastRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Outcomes, 2)
}

func TestBroadcastRejectsUnknownSegment(t *testing.T) {
	svc := seededBroadcastService(&scriptedChannel{configured: true})

	_, err := svc.Broadcast(context.Background(), BroadcastRequest{Message: "hello", Segment: "vip"})
	assert.ErrorIs(t, err, ErrInvalidSegment)
}

func TestBroadcastRequiresConfiguredChannel(t *testing.T) {
	svc := seededBroadcastService(&scriptedChannel{configured: false})

	_, err := svc.Broadcast(context.Background(), BroadcastRequest{Message: "hello"})
	assert.ErrorIs(t, err, ErrWhatsAppNotConfigured)

	_, err = svc.SendMessage(context.Background(), "70111111", "hello")
	assert.ErrorIs(t, err, ErrWhatsAppNotConfigured)
}

func TestSendToCustomerUsesStoredPhone(t *testing.T) {
	channel := &scriptedChannel{configured: true}
	svc := seededBroadcastService(channel)

	outcome, err := svc.SendToCustomer(context.Background(), 2, "see you tomorrow")
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []string{"70222222"}, channel.recipients)

	_, err = svc.SendToCustomer(context.Background(), 99, "hi")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
