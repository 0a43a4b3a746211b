package notify

import "context"

// Kind is the closed set of notification kinds the CRM can send. Every kind
// maps to a fixed pair of customer/trainer templates per channel; rendering
// an undefined combination is an error, not a silent fallback.
type Kind int

const (
	KindWelcome Kind = iota
	KindPTConfirmation
	KindPTReminder
	KindPTDateChange
	KindPTCancellation
	KindFollowUp
)

// String returns the wire/log name of the kind.
func (k Kind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindPTConfirmation:
		return "pt_confirmation"
	case KindPTReminder:
		return "pt_reminder"
	case KindPTDateChange:
		return "pt_date_change"
	case KindPTCancellation:
		return "pt_cancellation"
	case KindFollowUp:
		return "follow_up"
	default:
		return "unknown"
	}
}

// Role identifies who a rendered message is addressed to.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleTrainer  Role = "trainer"
)

// Content is rendered message content. Email uses Subject and Body (with an
// optional HTML alternative); WhatsApp uses Body only.
type Content struct {
	Subject string
	Body    string
	HTML    string
}

// Outcome is the ephemeral per-send result. It is logged and surfaced in
// API responses, never persisted.
type Outcome struct {
	Channel   string `json:"channel"`
	Role      Role   `json:"role"`
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail,omitempty"`
}

// Channel is a delivery mechanism. Implementations enforce their own request
// timeouts and report a failed Outcome instead of returning errors, so that
// an unconfigured or failing channel never aborts a dispatch loop.
type Channel interface {
	Name() string
	Configured() bool
	Send(ctx context.Context, recipient string, content Content) Outcome
}
