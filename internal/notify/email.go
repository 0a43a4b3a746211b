package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// EmailConfig holds SMTP settings, loaded from SMTP_* environment
// variables. An empty Username or Password leaves the channel unconfigured.
type EmailConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	FromName    string
	ImplicitTLS bool // true for port 465, false for STARTTLS submission
	Timeout     time.Duration
}

// EmailChannel delivers messages over SMTP.
type EmailChannel struct {
	cfg EmailConfig
}

// NewEmailChannel creates the email channel.
func NewEmailChannel(cfg EmailConfig) *EmailChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &EmailChannel{cfg: cfg}
}

func (e *EmailChannel) Name() string { return "email" }

// Configured reports whether SMTP credentials are present.
func (e *EmailChannel) Configured() bool {
	return e.cfg.Username != "" && e.cfg.Password != ""
}

// Send submits the message to the SMTP server. The connection is bounded by
// the configured timeout so a hung server cannot stall a dispatch loop.
func (e *EmailChannel) Send(ctx context.Context, recipient string, content Content) Outcome {
	out := Outcome{Channel: e.Name(), Recipient: recipient}
	if recipient == "" {
		out.Detail = "no_recipient"
		return out
	}
	if !e.Configured() {
		out.Detail = "not_configured"
		return out
	}
	if err := e.send(ctx, recipient, content); err != nil {
		out.Detail = err.Error()
		return out
	}
	out.Success = true
	return out
}

func (e *EmailChannel) send(ctx context.Context, recipient string, content Content) error {
	body := content.HTML
	contentType := "text/html"
	if body == "" {
		body = content.Body
		contentType = "text/plain"
	}
	msg := []byte(
		fmt.Sprintf("From: %q <%s>\r\n", e.cfg.FromName, e.cfg.From) +
			fmt.Sprintf("To: %s\r\n", recipient) +
			fmt.Sprintf("Subject: %s\r\n", content.Subject) +
			"MIME-Version: 1.0\r\n" +
			fmt.Sprintf("Content-Type: %s; charset=\"utf-8\"\r\n", contentType) +
			"\r\n" +
			body,
	)

	serverAddr := net.JoinHostPort(e.cfg.Host, e.cfg.Port)
	tlsConfig := &tls.Config{ServerName: e.cfg.Host}

	deadline := time.Now().Add(e.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Timeout: e.cfg.Timeout}
	var conn net.Conn
	var err error
	if e.cfg.ImplicitTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", serverAddr, tlsConfig)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", serverAddr)
	}
	if err != nil {
		return fmt.Errorf("dialing %s: %w", serverAddr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("setting deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if !e.cfg.ImplicitTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}
	return nil
}
