package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
	"github.com/jwalitptl/popdoc-api/pkg/metrics"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func body(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

var checkup = model.Appointment{ID: "a1", Title: "Checkup", Date: "2025-03-15", Time: "09:30", Location: "Sickbay"}

func TestSendAppointmentConfirmation(t *testing.T) {
	dialer := &fakeDialer{}
	m := metrics.New("popdoc")
	svc := NewService(dialer, "noreply@popdoc.app", m, logger.Nop())

	require.NoError(t, svc.SendAppointmentConfirmation(context.Background(), "kirk@enterprise.org", "Jim", checkup))
	require.Len(t, dialer.sent, 1)

	msg := dialer.sent[0]
	assert.Equal(t, []string{"kirk@enterprise.org"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Appointment confirmed: Checkup"}, msg.GetHeader("Subject"))
	content := body(t, msg)
	assert.Contains(t, content, "Hi Jim")
	assert.Contains(t, content, "Sickbay")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("confirmation", "success")))
}

func TestSendReminderSkipsEmptyList(t *testing.T) {
	dialer := &fakeDialer{}
	svc := NewService(dialer, "noreply@popdoc.app", nil, logger.Nop())

	require.NoError(t, svc.SendAppointmentReminder(context.Background(), "kirk@enterprise.org", "Jim", nil))
	assert.Empty(t, dialer.sent)

	second := checkup
	second.Title = "Bloodwork"
	require.NoError(t, svc.SendAppointmentReminder(context.Background(), "kirk@enterprise.org", "Jim", []model.Appointment{checkup, second}))
	require.Len(t, dialer.sent, 1)
	assert.Equal(t, []string{"2 appointments tomorrow"}, dialer.sent[0].GetHeader("Subject"))
}

func TestSendFailureIsCounted(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("connection refused")}
	m := metrics.New("popdoc")
	svc := NewService(dialer, "noreply@popdoc.app", m, logger.Nop())

	err := svc.SendCustom(context.Background(), "kirk@enterprise.org", "hi", "there")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmailsSent.WithLabelValues("custom", "error")))
}

func TestConfigEnabled(t *testing.T) {
	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Host: "smtp.example.com", From: "noreply@popdoc.app"}.Enabled())
}
