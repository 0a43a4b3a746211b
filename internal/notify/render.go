package notify

import (
	"fmt"
	"strings"
)

// RenderInput carries the fields the templates draw from. TrainerName is the
// already-resolved display name (the renderer never looks up trainers
// itself, so it stays pure).
type RenderInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	TrainerName string

	PTDate string
	PTTime string

	// Date-change fields.
	OldDateTime string
	NewDateTime string

	// Ad hoc follow-up fields.
	ReminderType string
	ReminderDate string
	Notes        string
}

func dateTimeDisplay(date, timeOfDay string) string {
	if timeOfDay != "" {
		return date + " at " + timeOfDay
	}
	return date
}

// htmlBody wraps plain-text paragraphs in a minimal HTML document so mail
// clients render line breaks properly.
func htmlBody(text string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family: Arial, sans-serif; line-height: 1.6; color: #333;\">")
	for _, para := range strings.Split(text, "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(para, "\n", "<br>"))
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func emailContent(subject, text string) Content {
	return Content{Subject: subject, Body: text, HTML: htmlBody(text)}
}

// CustomerEmail renders the customer-facing email for a kind.
func CustomerEmail(kind Kind, in RenderInput) (Content, error) {
	switch kind {
	case KindWelcome:
		text := fmt.Sprintf("Hi %s,\n\n"+
			"Thank you for your interest in Gymnastika! We're excited to have you as part of our community.\n\n"+
			"We're here to help you achieve your fitness goals and provide you with the best training experience possible.\n\n"+
			"If you have any questions or need assistance, please don't hesitate to reach out to us.\n\n"+
			"Best regards,\nThe Gymnastika Team", in.CustomerName)
		return emailContent("Welcome to Gymnastika!", text), nil

	case KindPTConfirmation:
		dt := dateTimeDisplay(in.PTDate, in.PTTime)
		text := fmt.Sprintf("Hi %s,\n\n"+
			"Thank you for booking a private session with us at Gymnastika!\n\n"+
			"YOUR PRIVATE SESSION IS SCHEDULED:\nDate: %s\nCoach: %s\n\n"+
			"What to bring:\n- Comfortable workout clothes\n- Water bottle\n- Positive attitude!\n\n"+
			"Please arrive a few minutes early so we can get started on time. If you need to reschedule, please contact us as soon as possible.\n\n"+
			"We look forward to seeing you!\n\n"+
			"Best regards,\nThe Gymnastika Team", in.CustomerName, dt, in.TrainerName)
		return emailContent("Your Private Session at Gymnastika - "+dt, text), nil

	case KindPTReminder:
		timeDisplay := ""
		if in.PTTime != "" {
			timeDisplay = " at " + in.PTTime
		}
		text := fmt.Sprintf("Hi %s,\n\n"+
			"Just a friendly reminder that your private training session with %s is TODAY%s!\n\n"+
			"Date: %s\nCoach: %s\n\n"+
			"Don't forget:\n- Comfortable workout clothes\n- Water bottle\n- Arrive a few minutes early\n\n"+
			"See you soon!\n\nBest regards,\nThe Gymnastika Team",
			in.CustomerName, in.TrainerName, timeDisplay, in.PTDate, in.TrainerName)
		subject := fmt.Sprintf("TODAY%s: Your Private Session with %s at Gymnastika!", timeDisplay, in.TrainerName)
		return emailContent(subject, text), nil

	case KindPTDateChange:
		text := fmt.Sprintf("Hi %s,\n\n"+
			"Your session with %s has been rescheduled.\n\n"+
			"Previous: %s\nNew: %s\n\n"+
			"Please update your calendar. If you have any questions, let us know!\n\n"+
			"Best regards,\nThe Gymnastika Team",
			in.CustomerName, in.TrainerName, in.OldDateTime, in.NewDateTime)
		return emailContent("Session Date Changed - New Date: "+in.NewDateTime, text), nil

	case KindPTCancellation:
		text := fmt.Sprintf("Hi %s,\n\n"+
			"Your session with %s scheduled for %s has been cancelled.\n\n"+
			"If you didn't request this cancellation or would like to reschedule, please contact us.\n\n"+
			"We hope to see you soon!\n\nBest regards,\nThe Gymnastika Team",
			in.CustomerName, in.TrainerName, in.OldDateTime)
		return emailContent("Session Cancelled - "+in.OldDateTime, text), nil

	case KindFollowUp:
		typeDisplay := strings.ToUpper(strings.ReplaceAll(in.ReminderType, "_", " "))
		text := fmt.Sprintf("Hi %s,\n\nThis is a reminder for: %s\nDate: %s\n",
			in.CustomerName, typeDisplay, in.ReminderDate)
		if in.Notes != "" {
			text += "Notes: " + in.Notes + "\n"
		}
		text += "\nBest regards,\nThe Gymnastika Team"
		subject := fmt.Sprintf("Reminder: %s - %s", typeDisplay, in.ReminderDate)
		return emailContent(subject, text), nil
	}
	return Content{}, fmt.Errorf("no customer email template for kind %s", kind)
}

// CustomerWhatsApp renders the customer-facing WhatsApp text for a kind.
func CustomerWhatsApp(kind Kind, in RenderInput) (Content, error) {
	timeStr := ""
	if in.PTTime != "" {
		timeStr = " at *" + in.PTTime + "*"
	}
	switch kind {
	case KindWelcome:
		body := fmt.Sprintf("👋 مرحباً %s!\n\n"+
			"Welcome to *Gymnastika*! 🏋️\n\n"+
			"We're excited to have you as part of our fitness community. We're here to help you achieve your health and fitness goals.\n\n"+
			"If you have any questions, feel free to reply to this message.\n\n"+
			"See you soon!\n_The Gymnastika Team_", in.CustomerName)
		return Content{Body: body}, nil

	case KindPTConfirmation:
		body := fmt.Sprintf("✅ *Session Confirmed!*\n\n"+
			"Hi %s,\n\nYour private training session at *Gymnastika* is booked!\n\n"+
			"📅 *Date:* %s%s\n🏋️ *Coach:* %s\n\n"+
			"*What to bring:*\n• Comfortable workout clothes\n• Water bottle\n• Positive attitude! 💪\n\n"+
			"Please arrive a few minutes early. If you need to reschedule, contact us ASAP.\n\n"+
			"See you soon!\n_The Gymnastika Team_",
			in.CustomerName, in.PTDate, timeStr, in.TrainerName)
		return Content{Body: body}, nil

	case KindPTReminder:
		body := fmt.Sprintf("⏰ *Reminder: Your Session is TODAY!*\n\n"+
			"Hi %s,\n\nJust a friendly reminder that your private training session with *%s* is TODAY%s!\n\n"+
			"📅 *Date:* %s\n🏋️ *Coach:* %s\n\n"+
			"Don't forget:\n✓ Comfortable workout clothes\n✓ Water bottle\n✓ Arrive a few minutes early\n\n"+
			"Let's crush those goals! 💪🔥\n\nSee you soon!\n_The Gymnastika Team_",
			in.CustomerName, in.TrainerName, timeStr, in.PTDate, in.TrainerName)
		return Content{Body: body}, nil

	case KindPTDateChange:
		body := fmt.Sprintf("📅 *Session Rescheduled*\n\n"+
			"Hi %s,\n\nYour session with *%s* has been rescheduled:\n\n"+
			"❌ ~%s~\n✅ *%s*\n\n"+
			"Please update your calendar. If you have any questions, let us know!\n\n_The Gymnastika Team_",
			in.CustomerName, in.TrainerName, in.OldDateTime, in.NewDateTime)
		return Content{Body: body}, nil

	case KindPTCancellation:
		body := fmt.Sprintf("❌ *Session Cancelled*\n\n"+
			"Hi %s,\n\nYour session with *%s* scheduled for *%s* has been cancelled.\n\n"+
			"If you didn't request this cancellation or would like to reschedule, please contact us.\n\n"+
			"We hope to see you soon!\n_The Gymnastika Team_",
			in.CustomerName, in.TrainerName, in.OldDateTime)
		return Content{Body: body}, nil

	case KindFollowUp:
		typeDisplay := strings.ToUpper(strings.ReplaceAll(in.ReminderType, "_", " "))
		body := fmt.Sprintf("📌 *Reminder: %s*\n\nHi %s,\n\nThis is a reminder for: *%s*\n📅 *Date:* %s\n",
			typeDisplay, in.CustomerName, typeDisplay, in.ReminderDate)
		if in.Notes != "" {
			body += "📝 *Notes:* " + in.Notes + "\n"
		}
		body += "\n_The Gymnastika Team_"
		return Content{Body: body}, nil
	}
	return Content{}, fmt.Errorf("no customer whatsapp template for kind %s", kind)
}

func clientContactLines(in RenderInput) string {
	phone := in.CustomerPhone
	if phone == "" {
		phone = "Not provided"
	}
	lines := "Phone: " + phone
	if in.CustomerEmail != "" {
		lines += "\nEmail: " + in.CustomerEmail
	}
	return lines
}

// TrainerEmail renders the trainer-facing email for a kind. Welcome and
// follow-up notifications have no trainer variant.
func TrainerEmail(kind Kind, in RenderInput) (Content, error) {
	switch kind {
	case KindPTConfirmation:
		dt := dateTimeDisplay(in.PTDate, in.PTTime)
		text := fmt.Sprintf("A new private session has been booked.\n\n"+
			"Client: %s\nDate: %s\n%s\n\n"+
			"Please prepare for this session.\n\nGymnastika",
			in.CustomerName, dt, clientContactLines(in))
		subject := fmt.Sprintf("New Client Session Scheduled - %s on %s", in.CustomerName, dt)
		return emailContent(subject, text), nil

	case KindPTReminder:
		timeDisplay := ""
		if in.PTTime != "" {
			timeDisplay = " at " + in.PTTime
		}
		text := fmt.Sprintf("You have a session with %s today%s.\n\n"+
			"Client: %s\nDate: %s\n%s\n\n"+
			"Have a great session!\n\nGymnastika",
			in.CustomerName, timeDisplay, in.CustomerName, in.PTDate, clientContactLines(in))
		subject := fmt.Sprintf("TODAY%s: Session with %s", timeDisplay, in.CustomerName)
		return emailContent(subject, text), nil

	case KindPTDateChange:
		text := fmt.Sprintf("Session with %s has been changed.\n\n"+
			"Previous: %s\nNew: %s\n\nClient: %s\n%s\n\n"+
			"Please update your schedule.\n\nGymnastika",
			in.CustomerName, in.OldDateTime, in.NewDateTime, in.CustomerName, clientContactLines(in))
		subject := fmt.Sprintf("Session Date Changed - %s: %s", in.CustomerName, in.NewDateTime)
		return emailContent(subject, text), nil

	case KindPTCancellation:
		text := fmt.Sprintf("Session with %s for %s has been cancelled.\n\n"+
			"Client: %s\n%s\n\nThis time slot is now available.\n\nGymnastika",
			in.CustomerName, in.OldDateTime, in.CustomerName, clientContactLines(in))
		subject := fmt.Sprintf("Session Cancelled - %s (%s)", in.CustomerName, in.OldDateTime)
		return emailContent(subject, text), nil
	}
	return Content{}, fmt.Errorf("no trainer email template for kind %s", kind)
}

// TrainerWhatsApp renders the trainer-facing WhatsApp text for a kind.
func TrainerWhatsApp(kind Kind, in RenderInput) (Content, error) {
	timeStr := ""
	if in.PTTime != "" {
		timeStr = " at *" + in.PTTime + "*"
	}
	phone := in.CustomerPhone
	if phone == "" {
		phone = "Not provided"
	}
	emailLine := ""
	if in.CustomerEmail != "" {
		emailLine = "\n📧 *Email:* " + in.CustomerEmail
	}
	switch kind {
	case KindPTConfirmation:
		body := fmt.Sprintf("📋 *New Session Scheduled*\n\n"+
			"A new private session has been booked!\n\n"+
			"👤 *Client:* %s\n📅 *Date:* %s%s\n📱 *Phone:* %s%s\n\n"+
			"Please prepare for this session!\n_Gymnastika_",
			in.CustomerName, in.PTDate, timeStr, phone, emailLine)
		return Content{Body: body}, nil

	case KindPTReminder:
		body := fmt.Sprintf("⏰ *Session TODAY%s!*\n\n"+
			"You have a session with *%s* today!\n\n"+
			"👤 *Client:* %s\n📅 *Date:* %s\n📱 *Phone:* %s%s\n\n"+
			"Have a great session! 💪\n_Gymnastika_",
			timeStr, in.CustomerName, in.CustomerName, in.PTDate, phone, emailLine)
		return Content{Body: body}, nil

	case KindPTDateChange:
		body := fmt.Sprintf("📅 *Client Session Rescheduled*\n\n"+
			"Session with *%s* has been changed:\n\n"+
			"❌ ~%s~\n✅ *%s*\n\n"+
			"👤 *Client:* %s\n📱 *Phone:* %s%s\n\n"+
			"Please update your schedule.\n_Gymnastika_",
			in.CustomerName, in.OldDateTime, in.NewDateTime, in.CustomerName, phone, emailLine)
		return Content{Body: body}, nil

	case KindPTCancellation:
		body := fmt.Sprintf("❌ *Session Cancelled*\n\n"+
			"Session with *%s* for *%s* has been cancelled.\n\n"+
			"👤 *Client:* %s\n📱 *Phone:* %s%s\n\n"+
			"This time slot is now available.\n_Gymnastika_",
			in.CustomerName, in.OldDateTime, in.CustomerName, phone, emailLine)
		return Content{Body: body}, nil
	}
	return Content{}, fmt.Errorf("no trainer whatsapp template for kind %s", kind)
}
