package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NotificationService defines the interface for outbound workflow mail
type NotificationService interface {
	// SendApprovalNotice informs the supervising faculty of each affected
	// period that a request covering their class was fully approved.
	SendApprovalNotice(toEmail, toName string, notice ApprovalNotice) error
	// SendDeclineNotice informs the requesting student that their request
	// was declined, with the decliner's reason when one was given.
	SendDeclineNotice(toEmail, toName string, notice DeclineNotice) error
}

// ApprovalNotice carries the details of a fully approved request
type ApprovalNotice struct {
	StudentName string
	Date        time.Time
	Periods     []int
	Purpose     string
	IsBulk      bool
	RosterSize  int
}

// DeclineNotice carries the details of a declined request
type DeclineNotice struct {
	Date    time.Time
	Periods []int
	Reason  string
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// SMTPNotifier implements NotificationService over SMTP
type SMTPNotifier struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPNotifier creates a new SMTP-backed notification service
func NewSMTPNotifier(config SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config: config,
		logger: logger,
	}
}

// SendApprovalNotice sends an approved-absence notice to a faculty member
func (s *SMTPNotifier) SendApprovalNotice(toEmail, toName string, notice ApprovalNotice) error {
	// Without SMTP credentials the notice is logged instead of sent, so
	// development setups work without a mail server.
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("student", notice.StudentName).
			Msg("SMTP credentials not configured - approval notice not sent")
		return nil
	}

	subject := fmt.Sprintf("Approved Absence on %s", notice.Date.Format("02 Jan 2006"))

	who := notice.StudentName
	if notice.IsBulk {
		who = fmt.Sprintf("%s and %d other students", notice.StudentName, notice.RosterSize)
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Dear %s,</p>
				<p>An attendance exemption covering your class has been approved by the department:</p>
				<ul>
					<li><strong>Student:</strong> %s</li>
					<li><strong>Date:</strong> %s</li>
					<li><strong>Periods:</strong> %s</li>
					<li><strong>Purpose:</strong> %s</li>
				</ul>
				<p>Please mark the absence as excused in your attendance register.</p>
			</div>
		</body>
		</html>
	`, toName, who, notice.Date.Format("02 Jan 2006"), formatPeriods(notice.Periods), notice.Purpose)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendDeclineNotice sends a decline notice to the requesting student
func (s *SMTPNotifier) SendDeclineNotice(toEmail, toName string, notice DeclineNotice) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Msg("SMTP credentials not configured - decline notice not sent")
		return nil
	}

	subject := fmt.Sprintf("Attendance Request Declined - %s", notice.Date.Format("02 Jan 2006"))

	reason := notice.Reason
	if reason == "" {
		reason = "No reason was provided."
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Dear %s,</p>
				<p>Your attendance request for %s (periods %s) has been declined.</p>
				<p><strong>Reason:</strong> %s</p>
				<p>You may submit a new request if the circumstances change.</p>
			</div>
		</body>
		</html>
	`, toName, notice.Date.Format("02 Jan 2006"), formatPeriods(notice.Periods), reason)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// formatPeriods renders a period list as "1, 2, 5"
func formatPeriods(periods []int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

// sendHTMLEmail sends an HTML email
func (s *SMTPNotifier) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	auth := smtp.PlainAuth(
		"",
		s.config.Username,
		s.config.Password,
		s.config.Host,
	)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	var message strings.Builder
	for key, value := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", key, value))
	}
	message.WriteString("\r\n" + htmlBody)

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)

	if !s.config.UseTLS {
		err := smtp.SendMail(
			serverAddress,
			auth,
			s.config.FromEmail,
			[]string{toEmail},
			[]byte(message.String()),
		)
		if err != nil {
			s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
	}

	conn, err := tls.Dial("tcp", serverAddress, tlsConfig)
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		s.logger.Error().Err(err).Msg("SMTP authentication failed")
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return nil
}
