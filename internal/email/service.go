package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

// Service sends user notifications
type Service interface {
	SendAppointmentConfirmation(ctx context.Context, to, nickname string, appt model.Appointment) error
	SendAppointmentReminder(ctx context.Context, to, nickname string, appts []model.Appointment) error
	SendCustom(ctx context.Context, to, subject, content string) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// Dialer is satisfied by *gomail.Dialer
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer  Dialer
	from    string
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewSMTPService sends mail through the configured SMTP relay
func NewSMTPService(cfg Config, m *metrics.Metrics, log *logger.Logger) Service {
	return NewService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From, m, log)
}

func NewService(dialer Dialer, from string, m *metrics.Metrics, log *logger.Logger) Service {
	return &smtpService{dialer: dialer, from: from, metrics: m, log: log.WithComponent("email")}
}

func (s *smtpService) SendAppointmentConfirmation(ctx context.Context, to, nickname string, appt model.Appointment) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour appointment is booked:\n\n", nickname)
	writeAppointment(&b, appt)
	b.WriteString("\nTake care!\n")

	return s.send(ctx, "confirmation", to, "Appointment confirmed: "+appt.Title, b.String())
}

func (s *smtpService) SendAppointmentReminder(ctx context.Context, to, nickname string, appts []model.Appointment) error {
	if len(appts) == 0 {
		return nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nA reminder about tomorrow:\n\n", nickname)
	for _, a := range appts {
		writeAppointment(&b, a)
	}

	subject := "Appointment reminder"
	if len(appts) > 1 {
		subject = fmt.Sprintf("%d appointments tomorrow", len(appts))
	}
	return s.send(ctx, "reminder", to, subject, b.String())
}

func (s *smtpService) SendCustom(ctx context.Context, to, subject, content string) error {
	return s.send(ctx, "custom", to, subject, content)
}

func (s *smtpService) send(ctx context.Context, kind, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	err := s.dialer.DialAndSend(m)
	if s.metrics != nil {
		s.metrics.EmailsSent.WithLabelValues(kind, metrics.Outcome(err)).Inc()
	}
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	s.log.Debug("email sent", "kind", kind)
	return nil
}

func writeAppointment(b *strings.Builder, a model.Appointment) {
	fmt.Fprintf(b, "  %s on %s at %s\n", a.Title, a.Date, a.Time)
	if a.Location != "" {
		fmt.Fprintf(b, "  Location: %s\n", a.Location)
	}
	if a.Notes != "" {
		fmt.Fprintf(b, "  Notes: %s\n", a.Notes)
	}
}

type noopService struct{}

// NewNoopService is used when SMTP is not configured
func NewNoopService() Service { return noopService{} }

func (noopService) SendAppointmentConfirmation(context.Context, string, string, model.Appointment) error {
	return nil
}

func (noopService) SendAppointmentReminder(context.Context, string, string, []model.Appointment) error {
	return nil
}

func (noopService) SendCustom(context.Context, string, string, string) error { return nil }
