package services

import (
	"errors"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/ChurchPortal/models"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var ErrEmailUnavailable = errors.New("email service not initialized")

type EmailService struct {
	client *resend.Client
	from   string
	church string
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		zap.S().Warn("RESEND_API_KEY not set. Email service will not be available.")
		return
	}

	church := os.Getenv("CHURCH_NAME")
	if church == "" {
		church = "Our Church"
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
		from:   os.Getenv("RESEND_FROM_EMAIL"),
		church: church,
	}

	zap.S().Info("Email service initialized successfully with Resend")
}

// GetEmailService returns the email service, or nil when it is not configured.
// Every method is safe to call on nil and reports ErrEmailUnavailable.
func GetEmailService() *EmailService {
	return emailService
}

// SendNewMemberNotice tells the administrator someone is waiting for approval.
func (s *EmailService) SendNewMemberNotice(adminEmail string, user models.User) error {
	if adminEmail == "" {
		return errors.New("no administrator address configured")
	}

	contact := user.Email
	if contact == "" && user.Phone != nil {
		contact = *user.Phone
	}

	body := fmt.Sprintf(`
        <p><strong>%s</strong> (%s) just created an account and is waiting for approval.</p>
        <p>Open the admin console to approve or reject the request.</p>`,
		html.EscapeString(user.Name), html.EscapeString(contact))

	return s.send(adminEmail, "", "New member awaiting approval", s.page("New member sign-up", body),
		fmt.Sprintf("%s (%s) just created an account and is waiting for approval.", user.Name, contact))
}

// SendApprovalEmail lets a member know their account has been approved.
func (s *EmailService) SendApprovalEmail(toEmail string, name string) error {
	if toEmail == "" {
		return errors.New("member has no email address")
	}

	body := fmt.Sprintf(`
        <p>Hi %s,</p>
        <p>Your account has been approved. You can now sign in to the member area to see the prayer wall, newsletters, roster and more.</p>
        <p>Blessings,<br>The %s Team</p>`,
		html.EscapeString(name), html.EscapeString(s.churchName()))

	text := fmt.Sprintf("Hi %s,\n\nYour account has been approved. You can now sign in to the member area.\n\nBlessings,\nThe %s Team\n",
		name, s.churchName())

	return s.send(toEmail, "", "Your account has been approved", s.page("Welcome!", body), text)
}

// SendContactMessage forwards the public contact form to the church inbox.
func (s *EmailService) SendContactMessage(toEmail string, msg models.ContactMessage) error {
	if toEmail == "" {
		return errors.New("no contact inbox configured")
	}

	subject := msg.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "Website contact form"
	}

	body := fmt.Sprintf(`
        <p><strong>From:</strong> %s &lt;%s&gt;</p>
        <p><strong>Phone:</strong> %s</p>
        <p style="white-space: pre-wrap;">%s</p>`,
		html.EscapeString(msg.Name), html.EscapeString(msg.Email),
		html.EscapeString(msg.Phone), html.EscapeString(msg.Message))

	text := fmt.Sprintf("From: %s <%s>\nPhone: %s\n\n%s\n", msg.Name, msg.Email, msg.Phone, msg.Message)

	return s.send(toEmail, msg.Email, subject, s.page(subject, body), text)
}

func (s *EmailService) send(to, replyTo, subject, htmlBody, textBody string) error {
	if s == nil || s.client == nil {
		return ErrEmailUnavailable
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
		Text:    textBody,
	}
	if replyTo != "" {
		params.ReplyTo = replyTo
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		zap.S().Errorf("Failed to send %q email to %s: %v", subject, to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	zap.S().Infof("Successfully sent %q email to %s. Email ID: %s", subject, to, sent.Id)
	return nil
}

func (s *EmailService) churchName() string {
	if s == nil || s.church == "" {
		return "Our Church"
	}
	return s.church
}

func (s *EmailService) page(heading, content string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #3b5b8c;
        }
        .header h1 {
            color: #3b5b8c;
            margin: 0;
        }
        .content {
            padding: 30px 0;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>

    <div class="content">
        <h2>%s</h2>
        %s
    </div>

    <div class="footer">
        <p>This is an automated message from the %s website.</p>
    </div>
</body>
</html>
`, html.EscapeString(s.churchName()), html.EscapeString(heading), content, html.EscapeString(s.churchName()))
}
