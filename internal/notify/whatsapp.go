package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// WhatsAppConfig holds Meta WhatsApp Cloud API settings, loaded from
// WHATSAPP_* environment variables. Missing PhoneNumberID or AccessToken
// leaves the channel unconfigured.
type WhatsAppConfig struct {
	BaseURL            string
	PhoneNumberID      string
	AccessToken        string
	DefaultCountryCode string // prepended to local numbers, e.g. "961"
	Timeout            time.Duration
}

// WhatsAppChannel delivers text messages through the Meta Cloud API.
type WhatsAppChannel struct {
	cfg        WhatsAppConfig
	httpClient *http.Client
}

// NewWhatsAppChannel creates the WhatsApp channel.
func NewWhatsAppChannel(cfg WhatsAppConfig) *WhatsAppChannel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGraphBaseURL
	}
	if cfg.DefaultCountryCode == "" {
		cfg.DefaultCountryCode = "961"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &WhatsAppChannel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (w *WhatsAppChannel) Name() string { return "whatsapp" }

// Configured reports whether the Cloud API credentials are present.
func (w *WhatsAppChannel) Configured() bool {
	return w.cfg.PhoneNumberID != "" && w.cfg.AccessToken != ""
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatPhone normalizes a phone number for the Cloud API: digits only,
// leading zeros removed, default country code prepended to local numbers.
func (w *WhatsAppChannel) FormatPhone(phone string) string {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	cleaned = strings.TrimLeft(cleaned, "0")
	if cleaned == "" {
		return ""
	}
	if !strings.HasPrefix(cleaned, w.cfg.DefaultCountryCode) && len(cleaned) <= 10 {
		cleaned = w.cfg.DefaultCountryCode + cleaned
	}
	return cleaned
}

type whatsAppTextPayload struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

type whatsAppSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send posts a text message to the Cloud API messages endpoint.
func (w *WhatsAppChannel) Send(ctx context.Context, recipient string, content Content) Outcome {
	out := Outcome{Channel: w.Name(), Recipient: recipient}
	if recipient == "" {
		out.Detail = "no_phone_number"
		return out
	}
	if !w.Configured() {
		out.Detail = "not_configured"
		return out
	}

	payload := whatsAppTextPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               w.FormatPhone(recipient),
		Type:             "text",
	}
	payload.Text.Body = content.Body

	respBody, err := w.doRequest(ctx, payload)
	if err != nil {
		out.Detail = err.Error()
		return out
	}

	var parsed whatsAppSendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		out.Detail = fmt.Sprintf("decoding response: %v", err)
		return out
	}
	if parsed.Error != nil {
		out.Detail = parsed.Error.Message
		return out
	}

	out.Success = true
	if len(parsed.Messages) > 0 {
		out.Detail = parsed.Messages[0].ID
	}
	return out
}

func (w *WhatsAppChannel) doRequest(ctx context.Context, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	fullURL := fmt.Sprintf("%s/%s/messages", w.cfg.BaseURL, w.cfg.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The Cloud API puts the useful message in the error envelope.
		var parsed whatsAppSendResponse
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Error != nil {
			return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
