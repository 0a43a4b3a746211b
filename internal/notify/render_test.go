package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderKinds = []Kind{
	KindWelcome, KindPTConfirmation, KindPTReminder,
	KindPTDateChange, KindPTCancellation, KindFollowUp,
}

func sampleInput() RenderInput {
	return RenderInput{
		CustomerName:  "Lina",
		CustomerEmail: "lina@example.com",
		CustomerPhone: "70123456",
		TrainerName:   "Sarah",
		PTDate:        "2026-03-04",
		PTTime:        "17:00",
		OldDateTime:   "2026-03-04 at 17:00",
		NewDateTime:   "2026-03-06 at 18:00",
		ReminderType:  "follow_up",
		ReminderDate:  "2026-03-04",
		Notes:         "check progress",
	}
}

func TestCustomerEmailCoversEveryKind(t *testing.T) {
	for _, kind := range renderKinds {
		t.Run(kind.String(), func(t *testing.T) {
			content, err := CustomerEmail(kind, sampleInput())
			require.NoError(t, err)
			assert.NotEmpty(t, content.Subject)
			assert.Contains(t, content.Body, "Lina")
			assert.Contains(t, content.HTML, "<p>")
		})
	}
}

func TestCustomerWhatsAppCoversEveryKind(t *testing.T) {
	for _, kind := range renderKinds {
		t.Run(kind.String(), func(t *testing.T) {
			content, err := CustomerWhatsApp(kind, sampleInput())
			require.NoError(t, err)
			assert.NotEmpty(t, content.Body)
			assert.Empty(t, content.Subject, "whatsapp messages carry no subject")
		})
	}
}

func TestTrainerTemplatesSkipCustomerOnlyKinds(t *testing.T) {
	for _, kind := range []Kind{KindWelcome, KindFollowUp} {
		_, err := TrainerEmail(kind, sampleInput())
		assert.Error(t, err, "kind %s has no trainer variant", kind)
		_, err = TrainerWhatsApp(kind, sampleInput())
		assert.Error(t, err)
	}
}

func TestPTReminderSubjectFlagsToday(t *testing.T) {
	content, err := CustomerEmail(KindPTReminder, sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "TODAY at 17:00: Your Private Session with Sarah at Gymnastika!", content.Subject)

	in := sampleInput()
	in.PTTime = ""
	content, err = CustomerEmail(KindPTReminder, in)
	require.NoError(t, err)
	assert.Equal(t, "TODAY: Your Private Session with Sarah at Gymnastika!", content.Subject)
}

func TestDateChangeShowsBothDates(t *testing.T) {
	content, err := CustomerEmail(KindPTDateChange, sampleInput())
	require.NoError(t, err)
	assert.Contains(t, content.Body, "2026-03-04 at 17:00")
	assert.Contains(t, content.Body, "2026-03-06 at 18:00")

	trainer, err := TrainerWhatsApp(KindPTDateChange, sampleInput())
	require.NoError(t, err)
	assert.Contains(t, trainer.Body, "2026-03-06 at 18:00")
}

func TestTrainerContentIncludesClientContact(t *testing.T) {
	content, err := TrainerEmail(KindPTReminder, sampleInput())
	require.NoError(t, err)
	assert.Contains(t, content.Body, "70123456")
	assert.Contains(t, content.Body, "lina@example.com")

	in := sampleInput()
	in.CustomerPhone = ""
	in.CustomerEmail = ""
	content, err = TrainerEmail(KindPTReminder, in)
	require.NoError(t, err)
	assert.Contains(t, content.Body, "Not provided")
	assert.NotContains(t, content.Body, "Email:")
}

func TestFollowUpRenderingUppercasesType(t *testing.T) {
	content, err := CustomerEmail(KindFollowUp, sampleInput())
	require.NoError(t, err)
	assert.Contains(t, content.Subject, "FOLLOW UP")
	assert.Contains(t, content.Body, "check progress")

	in := sampleInput()
	in.Notes = ""
	content, err = CustomerEmail(KindFollowUp, in)
	require.NoError(t, err)
	assert.NotContains(t, content.Body, "Notes:")
}

func TestHTMLBodyEscapesNothingButWrapsParagraphs(t *testing.T) {
	html := htmlBody("first line\nsecond line\n\nnew paragraph")
	assert.Equal(t, 2, strings.Count(html, "<p>"))
	assert.Contains(t, html, "first line<br>second line")
}
