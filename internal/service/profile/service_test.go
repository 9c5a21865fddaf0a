package profile

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/repository/memory"
	"github.com/jwalitptl/popdoc-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
)

type recordingMailer struct {
	confirmations []model.Appointment
	err           error
}

func (r *recordingMailer) SendAppointmentConfirmation(_ context.Context, _, _ string, appt model.Appointment) error {
	r.confirmations = append(r.confirmations, appt)
	return r.err
}

func (r *recordingMailer) SendAppointmentReminder(context.Context, string, string, []model.Appointment) error {
	return nil
}

func (r *recordingMailer) SendCustom(context.Context, string, string, string) error { return nil }

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.Local)

func newUser() *model.User {
	return &model.User{
		ID:          "user-1",
		Email:       "kirk@enterprise.org",
		Preferences: model.DefaultPreferences("kirk@enterprise.org"),
	}
}

func newTestService(t *testing.T) (*Service, repository.UserRepository, *recordingMailer) {
	t.Helper()
	repo := memory.New(newUser())
	mailer := &recordingMailer{}
	svc := NewService(repo, doctor.Default(), mailer, logger.Nop()).WithClock(func() time.Time { return fixedNow })
	return svc, repo, mailer
}

func TestGetNormalizesCollections(t *testing.T) {
	svc, _, _ := newTestService(t)
	user, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, user.Medications)
	assert.NotNil(t, user.ChatHistory)
}

func TestUnknownUserIsUnauthorized(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, http.StatusUnauthorized, apperrors.As(err).StatusCode())
}

func TestUpdatePreferencesMergesPresentFields(t *testing.T) {
	svc, repo, _ := newTestService(t)
	dark := "dark"
	voice := true

	prefs, err := svc.UpdatePreferences(context.Background(), "user-1", model.UpdatePreferencesRequest{Theme: &dark, VoiceEnabled: &voice})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
	assert.True(t, prefs.VoiceEnabled)
	assert.Equal(t, "kirk", prefs.Nickname)
	assert.Equal(t, model.DefaultPronouns, prefs.Pronouns)

	stored, err := repo.Load(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, *prefs, stored.Preferences)
}

func TestUpdatePreferencesRejectsUnknownTheme(t *testing.T) {
	svc, _, _ := newTestService(t)
	sepia := "sepia"
	_, err := svc.UpdatePreferences(context.Background(), "user-1", model.UpdatePreferencesRequest{Theme: &sepia})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())
}

func TestSelectDoctor(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.SelectDoctor(ctx, "user-1", "mccoy")
	require.NoError(t, err)
	assert.Equal(t, "mccoy", d.ID)

	_, err = svc.SelectDoctor(ctx, "user-1", "nobody")
	require.ErrorIs(t, err, doctor.ErrDoctorNotFound)
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())

	stored, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "mccoy", stored.SelectedDoctorID)
}

func TestAddMedicationAppendsWithFreshID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddMedication(ctx, "user-1", model.CreateMedicationRequest{
		Name: "Aspirin", Dosage: "100mg", Frequency: "daily", TimeOfDay: []string{"morning"},
	})
	require.NoError(t, err)
	second, err := svc.AddMedication(ctx, "user-1", model.CreateMedicationRequest{
		Name: "Vitamin D", Dosage: "1000IU", Frequency: "daily",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, []string{}, second.TimeOfDay)

	meds, err := svc.ListMedications(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, meds, 2)
	assert.Equal(t, "Aspirin", meds[0].Name)
	assert.Equal(t, []string{"morning"}, meds[0].TimeOfDay)
}

func TestIDsAreRegeneratedOnCollision(t *testing.T) {
	svc, _, _ := newTestService(t)
	ids := []string{"dup", "dup", "fresh"}
	svc.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	ctx := context.Background()
	first, err := svc.AddMedication(ctx, "user-1", model.CreateMedicationRequest{Name: "A", Dosage: "1", Frequency: "daily"})
	require.NoError(t, err)
	second, err := svc.AddMedication(ctx, "user-1", model.CreateMedicationRequest{Name: "B", Dosage: "1", Frequency: "daily"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestAddAppointmentSendsConfirmation(t *testing.T) {
	svc, _, mailer := newTestService(t)

	appt, err := svc.AddAppointment(context.Background(), "user-1", model.CreateAppointmentRequest{
		Title: "Checkup", Date: "2025-03-20", Time: "09:30",
	})
	require.NoError(t, err)
	require.Len(t, mailer.confirmations, 1)
	assert.Equal(t, appt.ID, mailer.confirmations[0].ID)
}

func TestAddAppointmentIgnoresMailFailure(t *testing.T) {
	svc, _, mailer := newTestService(t)
	mailer.err = errors.New("smtp down")

	_, err := svc.AddAppointment(context.Background(), "user-1", model.CreateAppointmentRequest{
		Title: "Checkup", Date: "2025-03-20", Time: "09:30",
	})
	assert.NoError(t, err)
}

func TestAddAppointmentWithoutNotifications(t *testing.T) {
	svc, _, mailer := newTestService(t)
	off := false
	_, err := svc.UpdatePreferences(context.Background(), "user-1", model.UpdatePreferencesRequest{Notifications: &off})
	require.NoError(t, err)

	_, err = svc.AddAppointment(context.Background(), "user-1", model.CreateAppointmentRequest{
		Title: "Checkup", Date: "2025-03-20", Time: "09:30",
	})
	require.NoError(t, err)
	assert.Empty(t, mailer.confirmations)
}

func TestAddAppointmentValidatesDateAndTime(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddAppointment(ctx, "user-1", model.CreateAppointmentRequest{Title: "x", Date: "20/03/2025", Time: "09:30"})
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())

	_, err = svc.AddAppointment(ctx, "user-1", model.CreateAppointmentRequest{Title: "x", Date: "2025-03-20", Time: "9am"})
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())
}

func TestListAppointmentsByDate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2025-03-13", "2025-03-14", "2025-03-15"} {
		_, err := svc.AddAppointment(ctx, "user-1", model.CreateAppointmentRequest{Title: date, Date: date, Time: "10:00"})
		require.NoError(t, err)
	}

	titles := func(appts []model.Appointment) []string {
		out := []string{}
		for _, a := range appts {
			out = append(out, a.Title)
		}
		return out
	}

	all, err := svc.ListAppointments(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	upcoming, err := svc.ListAppointments(ctx, "user-1", FilterUpcoming)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-14", "2025-03-15"}, titles(upcoming))

	past, err := svc.ListAppointments(ctx, "user-1", FilterPast)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-03-13"}, titles(past))

	_, err = svc.ListAppointments(ctx, "user-1", "someday")
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestAddWellnessCheck(t *testing.T) {
	svc, _, _ := newTestService(t)

	check, err := svc.AddWellnessCheck(context.Background(), "user-1", model.CreateWellnessCheckRequest{
		Mood: 7, Sleep: 6, Energy: 5, Pain: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.Format(time.RFC3339), check.Date)

	_, err = svc.AddWellnessCheck(context.Background(), "user-1", model.CreateWellnessCheckRequest{
		Mood: 11, Sleep: 6, Energy: 5, Pain: 2,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mood")
}

func TestChatHistoryKeepsInsertionOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AppendChatTurn(ctx, "user-1", "hello", "Good morning, ensign!"))
	msg, err := svc.AppendChatMessage(ctx, "user-1", model.CreateChatMessageRequest{Sender: model.SenderUser, Text: "bye"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), msg.Timestamp)

	history, err := svc.ChatHistory(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.SenderUser, history[0].Sender)
	assert.Equal(t, model.SenderDoctor, history[1].Sender)
	assert.Equal(t, "Good morning, ensign!", history[1].Text)
	assert.Equal(t, "bye", history[2].Text)
	assert.NotEqual(t, history[0].ID, history[1].ID)
}

func TestAppendChatMessageRejectsUnknownSender(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AppendChatMessage(context.Background(), "user-1", model.CreateChatMessageRequest{Sender: "nurse", Text: "hi"})
	assert.Equal(t, http.StatusBadRequest, apperrors.As(err).StatusCode())
}
