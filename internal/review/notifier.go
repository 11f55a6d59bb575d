package review

import (
	"fmt"

	mail "github.com/go-mail/mail/v2"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

// Notifier tells administrators a published review crossed its report
// tolerance and was pulled from public view.
type Notifier interface {
	ReviewReported(review *models.Review) error
}

// LogNotifier is the default sink when no mail transport is configured.
type LogNotifier struct{}

func (LogNotifier) ReviewReported(review *models.Review) error {
	logger.Info.Printf(
		"ADMIN NOTIFICATION: review %d crossed its report tolerance (%d reports, tolerance %d) and needs attention",
		review.ID, review.ReportCount, review.ReportTolerance,
	)
	return nil
}

// MailNotifier emails the configured admin addresses via SMTP.
type MailNotifier struct {
	dialer *mail.Dialer
	from   string
	to     []string
}

func NewMailNotifier(host string, port int, username, password, from string, to []string) *MailNotifier {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.StartTLSPolicy = mail.MandatoryStartTLS

	return &MailNotifier{
		dialer: dialer,
		from:   from,
		to:     to,
	}
}

func (n *MailNotifier) ReviewReported(review *models.Review) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to...)
	m.SetHeader("Subject", fmt.Sprintf("Review %d pulled for moderation", review.ID))
	m.SetBody("text/plain", fmt.Sprintf(
		"Review %d on module iteration %d accumulated %d abuse reports (tolerance %d) and is no longer publicly visible.\n\nComment:\n%s\n",
		review.ID, review.ModuleIterationID, review.ReportCount, review.ReportTolerance, review.Comment,
	))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reported-review mail: %w", err)
	}
	return nil
}
