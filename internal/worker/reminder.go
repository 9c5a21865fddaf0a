package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jwalitptl/popdoc-api/internal/email"
	"github.com/jwalitptl/popdoc-api/internal/model"
	"github.com/jwalitptl/popdoc-api/internal/repository"
	"github.com/jwalitptl/popdoc-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// Reminder is one user's batch of appointments for the next day
type Reminder struct {
	UserID       string
	Email        string
	Nickname     string
	Appointments []model.Appointment
}

// DueReminders selects, for users with notifications on, the appointments
// dated the day after now. Appointments are ordered by time.
func DueReminders(users []*model.User, now time.Time) []Reminder {
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)

	var out []Reminder
	for _, u := range users {
		if !u.Preferences.Notifications || u.Email == "" {
			continue
		}
		var due []model.Appointment
		for _, a := range u.Appointments {
			if a.Date == tomorrow {
				due = append(due, a)
			}
		}
		if len(due) == 0 {
			continue
		}
		sort.SliceStable(due, func(i, j int) bool { return due[i].Time < due[j].Time })
		out = append(out, Reminder{
			UserID:       u.ID,
			Email:        u.Email,
			Nickname:     u.Preferences.Nickname,
			Appointments: due,
		})
	}
	return out
}

type ReminderWorker struct {
	users     repository.UserRepository
	mailer    email.Service
	at        string
	log       *logger.Logger
	now       func() time.Time
	scheduler *gocron.Scheduler
}

// NewReminderWorker runs daily at the given HH:MM local time
func NewReminderWorker(users repository.UserRepository, mailer email.Service, at string, log *logger.Logger) *ReminderWorker {
	if at == "" {
		at = "08:00"
	}
	return &ReminderWorker{
		users:  users,
		mailer: mailer,
		at:     at,
		log:    log.WithComponent("reminders"),
		now:    time.Now,
	}
}

// Start schedules the daily run. The scheduler stops when ctx is done.
func (w *ReminderWorker) Start(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.Local)
	if _, err := scheduler.Every(1).Day().At(w.at).Do(func() {
		sent, err := w.Run(ctx)
		if err != nil {
			w.log.Error(err, "reminder run failed")
			return
		}
		w.log.Info("reminder run finished", "sent", sent)
	}); err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	scheduler.StartAsync()
	w.scheduler = scheduler
	w.log.Info("appointment reminders scheduled", "at", w.at)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (w *ReminderWorker) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}

// Run sends one reminder email per due user and returns how many were sent.
// A failed send is logged and does not stop the run.
func (w *ReminderWorker) Run(ctx context.Context) (int, error) {
	users, err := w.users.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	sent := 0
	for _, r := range DueReminders(users, w.now()) {
		if err := w.mailer.SendAppointmentReminder(ctx, r.Email, r.Nickname, r.Appointments); err != nil {
			w.log.Warn(err, "reminder not sent", "user_id", r.UserID)
			continue
		}
		sent++
	}
	return sent, nil
}
