package notifications

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"skyfare/pkg/logger"
)

// EmailService sends ticket confirmations.
type EmailService interface {
	SendTicketEmail(ctx context.Context, delivery *TicketDelivery) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

const ticketEmailTemplate = `Thank you for flying with us.

Passenger: {{ .PassengerName }}
Flight: {{ .Origin }} -> {{ .Destination }}
Departure: {{ .DepartureAt.Format "Mon, 02 Jan 2006 15:04 MST" }}
Arrival: {{ .ArrivalAt.Format "Mon, 02 Jan 2006 15:04 MST" }}
Class: {{ .CabinClass }}
{{- if .SeatNumber }}
Seat: {{ .SeatNumber }}
{{- end }}
{{- if .Facilities }}
Extras: {{ range $i, $f := .Facilities }}{{ if $i }}, {{ end }}{{ $f }}{{ end }}
{{- end }}

Order reference: {{ .OrderReference }}
Ticket ID: {{ .TicketID }}
`

// SMTPEmailService delivers ticket emails over plain SMTP.
type SMTPEmailService struct {
	config   *SMTPConfig
	template *template.Template
	log      *logger.Logger
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	tmpl, err := template.New("ticket").Parse(ticketEmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ticket template: %w", err)
	}

	return &SMTPEmailService{
		config:   config,
		template: tmpl,
		log:      logger.GetDefault(),
	}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

func (s *SMTPEmailService) SendTicketEmail(ctx context.Context, delivery *TicketDelivery) error {
	if delivery.RecipientEmail == "" {
		return fmt.Errorf("delivery has no recipient")
	}

	var body bytes.Buffer
	if err := s.template.Execute(&body, delivery); err != nil {
		return fmt.Errorf("failed to render ticket email: %w", err)
	}

	msg := s.buildMessage(delivery.RecipientEmail, "Your flight ticket", body.String())

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{delivery.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("failed to send ticket email: %w", err)
	}

	s.log.Info("ticket email delivered", "recipient", delivery.RecipientEmail, "ticket_id", delivery.TicketID)
	return nil
}

func (s *SMTPEmailService) buildMessage(to, subject, body string) []byte {
	var b strings.Builder
	from := s.config.FromEmail
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	b.WriteString(fmt.Sprintf("From: %s\r\n", from))
	b.WriteString(fmt.Sprintf("To: %s\r\n", to))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogEmailService logs instead of sending; used in development and
// tests.
type LogEmailService struct {
	log *logger.Logger
}

func NewLogEmailService() *LogEmailService {
	return &LogEmailService{log: logger.GetDefault()}
}

func (s *LogEmailService) SendTicketEmail(ctx context.Context, delivery *TicketDelivery) error {
	s.log.Info("ticket email (log only)",
		"recipient", delivery.RecipientEmail,
		"ticket_id", delivery.TicketID,
		"flight", delivery.Origin+" -> "+delivery.Destination,
	)
	return nil
}
