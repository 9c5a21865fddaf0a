package model

import (
	"slices"
	"strings"
)

// Theme values
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Chat message senders
const (
	SenderUser   = "user"
	SenderDoctor = "doctor"
)

// Times of day a medication can be taken
const (
	TimeMorning   = "morning"
	TimeAfternoon = "afternoon"
	TimeEvening   = "evening"
	TimeNight     = "night"
)

// DefaultPronouns is applied to every new user
const DefaultPronouns = "they/them"

type Preferences struct {
	Nickname       string `json:"nickname"`
	Pronouns       string `json:"pronouns"`
	VoiceEnabled   bool   `json:"voiceEnabled"`
	DoctorNickname string `json:"doctorNickname,omitempty"`
	Theme          string `json:"theme"`
	Notifications  bool   `json:"notifications"`
}

type Medication struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Dosage    string   `json:"dosage"`
	Frequency string   `json:"frequency"`
	TimeOfDay []string `json:"timeOfDay"`
	Notes     string   `json:"notes,omitempty"`
}

// Appointment dates are local YYYY-MM-DD strings, times HH:MM
type Appointment struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Notes    string `json:"notes,omitempty"`
	Location string `json:"location,omitempty"`
}

type WellnessCheck struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Mood   int    `json:"mood"`
	Sleep  int    `json:"sleep"`
	Energy int    `json:"energy"`
	Pain   int    `json:"pain"`
	Notes  string `json:"notes,omitempty"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	AudioRef  string `json:"audioRef,omitempty"`
}

// User is the full persisted record. It is stored and replaced as a whole.
type User struct {
	ID               string          `json:"id" bson:"_id"`
	Email            string          `json:"email" bson:"email"`
	PasswordHash     string          `json:"passwordHash" bson:"passwordHash"`
	SelectedDoctorID string          `json:"selectedDoctorId" bson:"selectedDoctorId"`
	Preferences      Preferences     `json:"preferences" bson:"preferences"`
	Medications      []Medication    `json:"medications" bson:"medications"`
	Appointments     []Appointment   `json:"appointments" bson:"appointments"`
	WellnessChecks   []WellnessCheck `json:"wellnessChecks" bson:"wellnessChecks"`
	ChatHistory      []ChatMessage   `json:"chatHistory" bson:"chatHistory"`
}

// Profile is the client view of a user; it never carries the password hash
type Profile struct {
	ID               string          `json:"id"`
	Email            string          `json:"email"`
	SelectedDoctorID string          `json:"selectedDoctorId"`
	Preferences      Preferences     `json:"preferences"`
	Medications      []Medication    `json:"medications"`
	Appointments     []Appointment   `json:"appointments"`
	WellnessChecks   []WellnessCheck `json:"wellnessChecks"`
	ChatHistory      []ChatMessage   `json:"chatHistory"`
}

// UserSummary is returned alongside auth tokens
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Normalize replaces nil collections with empty ones so they encode as []
func (u *User) Normalize() {
	if u.Medications == nil {
		u.Medications = []Medication{}
	}
	if u.Appointments == nil {
		u.Appointments = []Appointment{}
	}
	if u.WellnessChecks == nil {
		u.WellnessChecks = []WellnessCheck{}
	}
	if u.ChatHistory == nil {
		u.ChatHistory = []ChatMessage{}
	}
}

func (u *User) Profile() Profile {
	u.Normalize()
	return Profile{
		ID:               u.ID,
		Email:            u.Email,
		SelectedDoctorID: u.SelectedDoctorID,
		Preferences:      u.Preferences,
		Medications:      u.Medications,
		Appointments:     u.Appointments,
		WellnessChecks:   u.WellnessChecks,
		ChatHistory:      u.ChatHistory,
	}
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email}
}

// Profile mutation requests

type UpdatePreferencesRequest struct {
	Nickname       *string `json:"nickname" binding:"omitempty,min=1"`
	Pronouns       *string `json:"pronouns" binding:"omitempty,min=1"`
	VoiceEnabled   *bool   `json:"voiceEnabled"`
	DoctorNickname *string `json:"doctorNickname"`
	Theme          *string `json:"theme" binding:"omitempty,oneof=light dark"`
	Notifications  *bool   `json:"notifications"`
}

type SelectDoctorRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
}

type CreateMedicationRequest struct {
	Name      string   `json:"name" binding:"required"`
	Dosage    string   `json:"dosage" binding:"required"`
	Frequency string   `json:"frequency" binding:"required"`
	TimeOfDay []string `json:"timeOfDay" binding:"omitempty,dive,oneof=morning afternoon evening night"`
	Notes     string   `json:"notes"`
}

type CreateAppointmentRequest struct {
	Title    string `json:"title" binding:"required"`
	Date     string `json:"date" binding:"required,datetime=2006-01-02"`
	Time     string `json:"time" binding:"required,datetime=15:04"`
	Notes    string `json:"notes"`
	Location string `json:"location"`
}

type CreateWellnessCheckRequest struct {
	Mood   int    `json:"mood" binding:"required,min=1,max=10"`
	Sleep  int    `json:"sleep" binding:"required,min=1,max=10"`
	Energy int    `json:"energy" binding:"required,min=1,max=10"`
	Pain   int    `json:"pain" binding:"required,min=1,max=10"`
	Notes  string `json:"notes"`
}

type CreateChatMessageRequest struct {
	Sender   string `json:"sender" binding:"required,oneof=user doctor"`
	Text     string `json:"text" binding:"required"`
	AudioRef string `json:"audioRef"`
}

// DefaultPreferences are applied when a user is created
func DefaultPreferences(email string) Preferences {
	nickname := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		nickname = email[:i]
	}
	return Preferences{
		Nickname:      nickname,
		Pronouns:      DefaultPronouns,
		VoiceEnabled:  false,
		Theme:         ThemeLight,
		Notifications: true,
	}
}

// Clone returns a deep copy
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.Medications != nil {
		out.Medications = make([]Medication, len(u.Medications))
		for i, m := range u.Medications {
			m.TimeOfDay = slices.Clone(m.TimeOfDay)
			out.Medications[i] = m
		}
	}
	out.Appointments = slices.Clone(u.Appointments)
	out.WellnessChecks = slices.Clone(u.WellnessChecks)
	out.ChatHistory = slices.Clone(u.ChatHistory)
	return &out
}
