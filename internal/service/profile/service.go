package profile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/popdoc-api/internal/email"
	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/internal/service/doctor"
	apperrors "github.com/jwalitptl/popdoc-api/pkg/errors"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
)

// Appointment filters
const (
	FilterAll      = "all"
	FilterUpcoming = "upcoming"
	FilterPast     = "past"
)

const dateLayout = "2006-01-02"

var ErrInvalidFilter = errors.New("filter must be one of all, upcoming, past")

// Service applies read-modify-write mutations to whole user records.
// Concurrent mutations of the same user are last-write-wins.
type Service struct {
	users   repository.UserRepository
	doctors doctor.Registry
	mailer  email.Service
	log     *logger.Logger
	now     func() time.Time
	newID   func() string
}

func NewService(users repository.UserRepository, doctors doctor.Registry, mailer email.Service, log *logger.Logger) *Service {
	if mailer == nil {
		mailer = email.NewNoopService()
	}
	return &Service{
		users:   users,
		doctors: doctors,
		mailer:  mailer,
		log:     log.WithComponent("profile"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Get(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Normalize()
	return user, nil
}

// UpdatePreferences merges the fields present in the request
func (s *Service) UpdatePreferences(ctx context.Context, userID string, req model.UpdatePreferencesRequest) (*model.Preferences, error) {
	var prefs model.Preferences
	err := s.mutate(ctx, userID, func(u *model.User) error {
		p := &u.Preferences
		if req.Nickname != nil {
			p.Nickname = *req.Nickname
		}
		if req.Pronouns != nil {
			p.Pronouns = *req.Pronouns
		}
		if req.VoiceEnabled != nil {
			p.VoiceEnabled = *req.VoiceEnabled
		}
		if req.DoctorNickname != nil {
			p.DoctorNickname = *req.DoctorNickname
		}
		if req.Theme != nil {
			if *req.Theme != model.ThemeLight && *req.Theme != model.ThemeDark {
				return apperrors.Validation("theme must be light or dark", nil)
			}
			p.Theme = *req.Theme
		}
		if req.Notifications != nil {
			p.Notifications = *req.Notifications
		}
		prefs = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (s *Service) SelectDoctor(ctx context.Context, userID, doctorID string) (*model.Doctor, error) {
	d, ok := s.doctors.Get(doctorID)
	if !ok {
		return nil, apperrors.NotFound("doctor", doctor.ErrDoctorNotFound)
	}
	err := s.mutate(ctx, userID, func(u *model.User) error {
		u.SelectedDoctorID = d.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Service) AddMedication(ctx context.Context, userID string, req model.CreateMedicationRequest) (*model.Medication, error) {
	timeOfDay := req.TimeOfDay
	if timeOfDay == nil {
		timeOfDay = []string{}
	}
	med := model.Medication{
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
		TimeOfDay: slices.Clone(timeOfDay),
		Notes:     req.Notes,
	}
	err := s.mutate(ctx, userID, func(u *model.User) error {
		med.ID = s.uniqueID(func(id string) bool {
			return slices.ContainsFunc(u.Medications, func(m model.Medication) bool { return m.ID == id })
		})
		u.Medications = append(u.Medications, med)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &med, nil
}

func (s *Service) ListMedications(ctx context.Context, userID string) ([]model.Medication, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Medications, nil
}

// AddAppointment stores the appointment and, when the user has notifications
// on, sends a confirmation. Mail failures are logged only.
func (s *Service) AddAppointment(ctx context.Context, userID string, req model.CreateAppointmentRequest) (*model.Appointment, error) {
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, apperrors.Validation("date must be YYYY-MM-DD", err)
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, apperrors.Validation("time must be HH:MM", err)
	}

	appt := model.Appointment{
		Title:    req.Title,
		Date:     req.Date,
		Time:     req.Time,
		Notes:    req.Notes,
		Location: req.Location,
	}
	var (
		to       string
		nickname string
		notify   bool
	)
	err := s.mutate(ctx, userID, func(u *model.User) error {
		appt.ID = s.uniqueID(func(id string) bool {
			return slices.ContainsFunc(u.Appointments, func(a model.Appointment) bool { return a.ID == id })
		})
		u.Appointments = append(u.Appointments, appt)
		to, nickname, notify = u.Email, u.Preferences.Nickname, u.Preferences.Notifications
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notify {
		if err := s.mailer.SendAppointmentConfirmation(ctx, to, nickname, appt); err != nil {
			s.log.Warn(err, "appointment confirmation not sent", "user_id", userID)
		}
	}
	return &appt, nil
}

// ListAppointments splits on today's local date; today counts as upcoming
func (s *Service) ListAppointments(ctx context.Context, userID, filter string) ([]model.Appointment, error) {
	if filter == "" {
		filter = FilterAll
	}
	if filter != FilterAll && filter != FilterUpcoming && filter != FilterPast {
		return nil, apperrors.Validation(ErrInvalidFilter.Error(), ErrInvalidFilter)
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if filter == FilterAll {
		return user.Appointments, nil
	}

	today := s.now().Format(dateLayout)
	out := []model.Appointment{}
	for _, a := range user.Appointments {
		upcoming := a.Date >= today
		if upcoming == (filter == FilterUpcoming) {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddWellnessCheck records a check-in stamped with the server time
func (s *Service) AddWellnessCheck(ctx context.Context, userID string, req model.CreateWellnessCheckRequest) (*model.WellnessCheck, error) {
	for field, v := range map[string]int{"mood": req.Mood, "sleep": req.Sleep, "energy": req.Energy, "pain": req.Pain} {
		if v < 1 || v > 10 {
			return nil, apperrors.Validation(fmt.Sprintf("%s must be between 1 and 10", field), nil)
		}
	}

	check := model.WellnessCheck{
		Date:   s.now().Format(time.RFC3339),
		Mood:   req.Mood,
		Sleep:  req.Sleep,
		Energy: req.Energy,
		Pain:   req.Pain,
		Notes:  req.Notes,
	}
	err := s.mutate(ctx, userID, func(u *model.User) error {
		check.ID = s.uniqueID(func(id string) bool {
			return slices.ContainsFunc(u.WellnessChecks, func(w model.WellnessCheck) bool { return w.ID == id })
		})
		u.WellnessChecks = append(u.WellnessChecks, check)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &check, nil
}

func (s *Service) ChatHistory(ctx context.Context, userID string) ([]model.ChatMessage, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ChatHistory, nil
}

func (s *Service) AppendChatMessage(ctx context.Context, userID string, req model.CreateChatMessageRequest) (*model.ChatMessage, error) {
	if req.Sender != model.SenderUser && req.Sender != model.SenderDoctor {
		return nil, apperrors.Validation("sender must be user or doctor", nil)
	}
	msgs, err := s.appendMessages(ctx, userID, model.ChatMessage{Sender: req.Sender, Text: req.Text, AudioRef: req.AudioRef})
	if err != nil {
		return nil, err
	}
	return &msgs[0], nil
}

// AppendChatTurn stores the user's prompt and the doctor's reply in one write
func (s *Service) AppendChatTurn(ctx context.Context, userID, prompt, reply string) error {
	_, err := s.appendMessages(ctx, userID,
		model.ChatMessage{Sender: model.SenderUser, Text: prompt},
		model.ChatMessage{Sender: model.SenderDoctor, Text: reply},
	)
	return err
}

func (s *Service) appendMessages(ctx context.Context, userID string, msgs ...model.ChatMessage) ([]model.ChatMessage, error) {
	ts := s.now().UnixMilli()
	err := s.mutate(ctx, userID, func(u *model.User) error {
		for i := range msgs {
			msgs[i].ID = s.uniqueID(func(id string) bool {
				return slices.ContainsFunc(u.ChatHistory, func(m model.ChatMessage) bool { return m.ID == id })
			})
			msgs[i].Timestamp = ts
			u.ChatHistory = append(u.ChatHistory, msgs[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) mutate(ctx context.Context, userID string, fn func(u *model.User) error) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	user.Normalize()
	if err := fn(user); err != nil {
		return err
	}
	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.InvalidToken(err)
		}
		return apperrors.Persistence(fmt.Errorf("failed to save user: %w", err))
	}
	return nil
}

// load treats a missing user as an auth failure: the id came from a token.
func (s *Service) load(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidToken(err)
		}
		return nil, apperrors.Persistence(fmt.Errorf("failed to load user: %w", err))
	}
	return user, nil
}

func (s *Service) uniqueID(taken func(string) bool) string {
	for {
		id := s.newID()
		if !taken(id) {
			return id
		}
	}
}
