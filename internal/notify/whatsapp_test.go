package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	channel := NewWhatsAppChannel(WhatsAppConfig{DefaultCountryCode: "961"})

	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"local number gains country code", "70123456", "96170123456"},
		{"leading zero stripped", "070123456", "96170123456"},
		{"already international", "96170123456", "96170123456"},
		{"formatting characters removed", "+961 70-123-456", "96170123456"},
		{"empty after cleaning", "+-()", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, channel.FormatPhone(tt.phone))
		})
	}
}

func TestWhatsAppSendSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload whatsAppTextPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.test123"}]}`))
	}))
	defer server.Close()

	channel := NewWhatsAppChannel(WhatsAppConfig{
		BaseURL:       server.URL,
		PhoneNumberID: "12345",
		AccessToken:   "token-abc",
	})

	outcome := channel.Send(context.Background(), "70123456", Content{Body: "hello"})

	assert.True(t, outcome.Success)
	assert.Equal(t, "wamid.test123", outcome.Detail)
	assert.Equal(t, "whatsapp", outcome.Channel)
	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "96170123456", gotPayload.To)
	assert.Equal(t, "hello", gotPayload.Text.Body)
	assert.Equal(t, "whatsapp", gotPayload.MessagingProduct)
}

func TestWhatsAppSendAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid phone number","type":"OAuthException","code":100}}`))
	}))
	defer server.Close()

	channel := NewWhatsAppChannel(WhatsAppConfig{
		BaseURL:       server.URL,
		PhoneNumberID: "12345",
		AccessToken:   "token-abc",
	})

	outcome := channel.Send(context.Background(), "70123456", Content{Body: "hello"})

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Detail, "Invalid phone number")
}

func TestWhatsAppSendNotConfigured(t *testing.T) {
	channel := NewWhatsAppChannel(WhatsAppConfig{})

	outcome := channel.Send(context.Background(), "70123456", Content{Body: "hello"})

	assert.False(t, outcome.Success)
	assert.Equal(t, "not_configured", outcome.Detail)
}

func TestWhatsAppSendNoRecipient(t *testing.T) {
	channel := NewWhatsAppChannel(WhatsAppConfig{PhoneNumberID: "12345", AccessToken: "t"})

	outcome := channel.Send(context.Background(), "", Content{Body: "hello"})

	assert.False(t, outcome.Success)
	assert.Equal(t, "no_phone_number", outcome.Detail)
}

func TestWhatsAppSendRespectsContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	channel := NewWhatsAppChannel(WhatsAppConfig{
		BaseURL:       server.URL,
		PhoneNumberID: "12345",
		AccessToken:   "token-abc",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome := channel.Send(ctx, "70123456", Content{Body: "hello"})

	assert.False(t, outcome.Success)
	assert.NotEmpty(t, outcome.Detail)
}
