package notify

import (
	"context"
	"time"

	"github.com/daabouladam6/gymnastika-crm/internal/models"
	"github.com/daabouladam6/gymnastika-crm/internal/trainers"
	"github.com/daabouladam6/gymnastika-crm/pkg/utils"
)

// Options carries the per-event context a notification template needs beyond
// the customer record itself.
type Options struct {
	PTDate      string
	PTTime      string
	OldDateTime string
	NewDateTime string

	ReminderType string
	ReminderDate string
	Notes        string
}

// Sender dispatches rendered notifications for a customer event. The
// scheduler engine and the CRUD services both depend on this interface.
type Sender interface {
	NotifyCustomer(ctx context.Context, kind Kind, customer models.Customer, opts Options) []Outcome
	NotifyTrainer(ctx context.Context, kind Kind, trainerEmail string, customer models.Customer, opts Options) []Outcome
}

// Notifier coordinates rendering and delivery across the email and WhatsApp
// channels. Channel failures are isolated: a failed email never prevents the
// WhatsApp attempt, and every outcome is logged rather than returned as an
// error.
type Notifier struct {
	email       Channel
	whatsapp    Channel
	trainers    *trainers.Directory
	sendTimeout time.Duration
}

// NewNotifier creates a Notifier over the given channels and directory.
func NewNotifier(email, whatsapp Channel, directory *trainers.Directory, sendTimeout time.Duration) *Notifier {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &Notifier{email: email, whatsapp: whatsapp, trainers: directory, sendTimeout: sendTimeout}
}

func (n *Notifier) renderInput(customer models.Customer, trainerEmail string, opts Options) RenderInput {
	in := RenderInput{
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		TrainerName:   n.trainers.Name(trainerEmail),
		PTDate:        opts.PTDate,
		PTTime:        opts.PTTime,
		OldDateTime:   opts.OldDateTime,
		NewDateTime:   opts.NewDateTime,
		ReminderType:  opts.ReminderType,
		ReminderDate:  opts.ReminderDate,
		Notes:         opts.Notes,
	}
	if customer.Email != nil {
		in.CustomerEmail = *customer.Email
	}
	return in
}

// send runs one channel attempt under its own timeout and logs the outcome.
func (n *Notifier) send(ctx context.Context, ch Channel, role Role, kind Kind, recipient string, content Content, customerID int64) Outcome {
	sendCtx, cancel := context.WithTimeout(ctx, n.sendTimeout)
	defer cancel()

	out := ch.Send(sendCtx, recipient, content)
	out.Role = role

	fields := map[string]interface{}{
		"kind":        kind.String(),
		"channel":     out.Channel,
		"role":        string(role),
		"recipient":   recipient,
		"customer_id": customerID,
	}
	if out.Success {
		utils.LogInfo("Notification sent", fields)
	} else {
		fields["detail"] = out.Detail
		utils.LogWarn("Notification not sent", fields)
	}
	return out
}

// NotifyCustomer dispatches the customer-facing variant of a notification on
// both channels. A missing email or phone simply skips that channel.
func (n *Notifier) NotifyCustomer(ctx context.Context, kind Kind, customer models.Customer, opts Options) []Outcome {
	trainerEmail := ""
	if customer.TrainerEmail != nil {
		trainerEmail = *customer.TrainerEmail
	}
	in := n.renderInput(customer, trainerEmail, opts)

	var outcomes []Outcome
	if in.CustomerEmail != "" {
		content, err := CustomerEmail(kind, in)
		if err != nil {
			utils.LogError(err, "Rendering customer email")
		} else {
			outcomes = append(outcomes, n.send(ctx, n.email, RoleCustomer, kind, in.CustomerEmail, content, customer.ID))
		}
	}
	if customer.Phone != "" {
		content, err := CustomerWhatsApp(kind, in)
		if err != nil {
			utils.LogError(err, "Rendering customer whatsapp")
		} else {
			outcomes = append(outcomes, n.send(ctx, n.whatsapp, RoleCustomer, kind, customer.Phone, content, customer.ID))
		}
	}
	return outcomes
}

// NotifyTrainer dispatches the trainer-facing variant. Trainers are always
// emailed; WhatsApp is attempted only when the directory has a number for
// them. An empty trainerEmail is a no-op.
func (n *Notifier) NotifyTrainer(ctx context.Context, kind Kind, trainerEmail string, customer models.Customer, opts Options) []Outcome {
	if trainerEmail == "" {
		return nil
	}
	in := n.renderInput(customer, trainerEmail, opts)

	var outcomes []Outcome
	content, err := TrainerEmail(kind, in)
	if err != nil {
		utils.LogError(err, "Rendering trainer email")
	} else {
		outcomes = append(outcomes, n.send(ctx, n.email, RoleTrainer, kind, trainerEmail, content, customer.ID))
	}
	if phone := n.trainers.Phone(trainerEmail); phone != "" {
		content, err := TrainerWhatsApp(kind, in)
		if err != nil {
			utils.LogError(err, "Rendering trainer whatsapp")
		} else {
			outcomes = append(outcomes, n.send(ctx, n.whatsapp, RoleTrainer, kind, phone, content, customer.ID))
		}
	}
	return outcomes
}
