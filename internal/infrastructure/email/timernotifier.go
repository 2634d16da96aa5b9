package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
	sharedConfig "github.com/amzibnewman/altrii-backend/internal/shared/config"
)

// SMTPTimerNotifier delivers commitment lifecycle emails over SMTP.
type SMTPTimerNotifier struct {
	config sharedConfig.EmailConfig
	dialer *gomail.Dialer
}

func NewSMTPTimerNotifier(config sharedConfig.EmailConfig) *SMTPTimerNotifier {
	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)

	return &SMTPTimerNotifier{
		config: config,
		dialer: dialer,
	}
}

func (s *SMTPTimerNotifier) SendTimerCompletion(ctx context.Context, n timer.Notification) error {
	subject := "Your Timer Commitment Is Complete"
	endedAt := biztime.FormatInBizTimezone(n.EndAt, "2 January 2006 at 15:04")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Well done, %s!</h2>
			<p>Your %d-day timer commitment on <strong>%s</strong> finished on %s.</p>
			<p>The restrictions have been removed from your device.</p>
			<p>You stayed committed for the full period. That consistency is worth keeping.</p>
		</body>
		</html>
	`, n.FirstName, n.CommitmentDays, n.DeviceName, endedAt)

	plainBody := fmt.Sprintf(`
Well done, %s!

Your %d-day timer commitment on %s finished on %s.

The restrictions have been removed from your device.

You stayed committed for the full period. That consistency is worth keeping.
	`, n.FirstName, n.CommitmentDays, n.DeviceName, endedAt)

	return s.sendEmail(n.Email, subject, htmlBody, plainBody)
}

func (s *SMTPTimerNotifier) SendExpirationWarning(ctx context.Context, n timer.Notification) error {
	subject := fmt.Sprintf("Your Timer Commitment Ends in %d Hours", n.HoursRemaining)
	endsAt := biztime.FormatInBizTimezone(n.EndAt, "2 January 2006 at 15:04")

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Almost there, %s</h2>
			<p>Your %d-day timer commitment on <strong>%s</strong> ends in about %d hours, on %s.</p>
			<p>The restrictions will be removed automatically when the timer completes. No action is needed.</p>
		</body>
		</html>
	`, n.FirstName, n.CommitmentDays, n.DeviceName, n.HoursRemaining, endsAt)

	plainBody := fmt.Sprintf(`
Almost there, %s

Your %d-day timer commitment on %s ends in about %d hours, on %s.

The restrictions will be removed automatically when the timer completes. No action is needed.
	`, n.FirstName, n.CommitmentDays, n.DeviceName, n.HoursRemaining, endsAt)

	return s.sendEmail(n.Email, subject, htmlBody, plainBody)
}

func (s *SMTPTimerNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.config.FromAddress, s.config.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
