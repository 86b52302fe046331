// Package managers handles the sending of transactional emails using the Mailgun service
// and the Hermes package for email formatting.
package managers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"
)

// MailMgr is an interface that outlines the contract for email management.
// It includes methods for sending verification, password reset, confirmation and booking mails.
type MailMgr interface {
	SendVerificationMail(email, name, code, link string) error
	SendPasswordResetMail(email, name, code string) error
	SendConfirmationMail(email, name string) error
	SendBookingRequestMail(email, name, propertyTitle string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It uses the Mailgun service for sending emails and the Hermes package for formatting emails.
type MailManager struct {
	Hermes  *hermes.Hermes
	Mailgun *mailgun.MailgunImpl
}

var from = "UniStay <team@mail.unistay.tech>"
var environment string

// SendVerificationMail sends a verification email containing the six-digit code and a
// signed verification link. The email content is formatted using the Hermes package
// and sent using the Mailgun service.
func (mm *MailManager) SendVerificationMail(email, name, code, link string) error {
	if environment != "production" {
		log.Info("Skipping verification mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"Welcome to UniStay! We're very excited to have you on board.",
				"If you have any questions, feel free to reach out to us at any time via team@mail.unistay.tech.",
			},
			Outros: []string{
				"The code and the link expire shortly, so please verify your account soon.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your account, enter the following code in the app:",
					InviteCode:   code,
				},
				{
					Instructions: "Or verify directly with one click:",
					Button: hermes.Button{
						Text: "Verify my account",
						Link: link,
					},
				},
			},
		},
	}

	return mm.send(email, "Verify your account", mailBody)
}

// SendPasswordResetMail sends a password reset email with a six-digit code.
func (mm *MailManager) SendPasswordResetMail(email, name, code string) error {
	if environment != "production" {
		log.Info("Skipping password reset mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"You have requested to reset your password.",
				"If you did not request this, you can safely ignore this email.",
			},
			Outros: []string{
				"The code expires shortly, so please reset your password soon.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "To reset your password, enter the following code in the app:",
					InviteCode:   code,
				},
			},
		},
	}

	return mm.send(email, "Reset your password", mailBody)
}

// SendConfirmationMail sends a confirmation email to a user after their account has been verified.
func (mm *MailManager) SendConfirmationMail(email, name string) error {
	if environment != "production" {
		log.Info("Skipping confirmation mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"Your account has been successfully verified!",
				"If you have any questions, feel free to reach out to us at any time via team@mail.unistay.tech.",
			},
			Outros: []string{
				"Have fun using UniStay! We'll be happy to help you find your next home.",
			},
		},
	}

	return mm.send(email, "Account successfully verified", mailBody)
}

// SendBookingRequestMail notifies an agent that a new booking request has been placed
// for one of their properties.
func (mm *MailManager) SendBookingRequestMail(email, name, propertyTitle string) error {
	if environment != "production" {
		log.Info("Skipping booking request mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				fmt.Sprintf("A new booking request has been placed for your property %q.", propertyTitle),
			},
			Outros: []string{
				"Please log in to UniStay to confirm or cancel the request.",
			},
		},
	}

	return mm.send(email, "New booking request", mailBody)
}

func (mm *MailManager) send(email, subject string, mailBody hermes.Email) error {
	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(2*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(from, subject, "", email)
	message.SetHtml(emailBody)
	_, _, err = mm.Mailgun.Send(ctx, message)
	if err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager instance with configured Mailgun and Hermes settings.
// It also checks the runtime environment to determine if emails should be sent.
// This function is used during the initialization phase of the application.
func NewMailManager() MailMgr {
	log.Info("Initializing mail manager")
	environment = os.Getenv("ENVIRONMENT")

	if environment != "production" {
		log.Println("Running in development mode, email will not be sent to users")
	}

	apiKey := os.Getenv("MAILGUN_API_KEY")
	mailgunInstance := mailgun.NewMailgun("mail.unistay.tech", apiKey)
	mailgunInstance.SetAPIBase(mailgun.APIBaseEU)

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        "UniStay",
				Link:        "https://unistay.tech/",
				Copyright:   "© UniStay",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Mailgun: mailgunInstance,
	}
	log.Info("Initialized mail manager")
	return mm
}
