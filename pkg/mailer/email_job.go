package mailer

import (
	"fmt"
	"time"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// NewWelcomeJob builds the email sent after successful registration.
func NewWelcomeJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome aboard",
		Text:    fmt.Sprintf("Hi %s,\n\nYour account has been created. You can sign in with this email address.\n", name),
	}
}

// NewPasswordResetJob builds the email carrying the reset link. The raw token
// appears only here and in the API response; it is never persisted.
func NewPasswordResetJob(to, name, resetURL string, expiresAt time.Time) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Reset your password",
		Text: fmt.Sprintf(
			"Hi %s,\n\nA password reset was requested for your account. Use the link below within %s:\n\n%s\n\nIf you did not request this, you can ignore this email.\n",
			name,
			time.Until(expiresAt).Round(time.Minute),
			resetURL,
		),
	}
}
