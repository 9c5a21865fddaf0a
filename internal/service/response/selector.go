package response

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

// Category is the kind of reply chosen for an utterance
type Category int

const (
	CategoryGreeting Category = iota
	CategoryMedication
	CategoryAppointment
	CategoryPain
	CategoryWellbeing
	CategoryRest
	CategoryGeneric
)

func (c Category) String() string {
	switch c {
	case CategoryGreeting:
		return "greeting"
	case CategoryMedication:
		return "medication"
	case CategoryAppointment:
		return "appointment"
	case CategoryPain:
		return "pain"
	case CategoryWellbeing:
		return "wellbeing"
	case CategoryRest:
		return "rest"
	default:
		return "generic"
	}
}

// keywords in priority order; first category with a substring hit wins
var keywords = []struct {
	category Category
	words    []string
}{
	{CategoryGreeting, []string{"hello", "hi", "hey", "greetings"}},
	{CategoryMedication, []string{"medicine", "medication", "pill", "drug", "prescription"}},
	{CategoryAppointment, []string{"appointment", "schedule", "visit", "meeting"}},
	{CategoryPain, []string{"pain", "hurt", "ache", "sore"}},
	{CategoryWellbeing, []string{"feel", "feeling", "tired", "exhausted", "sleep", "energy"}},
	{CategoryRest, []string{"rest", "break", "relax", "pause"}},
}

// Classify returns the reply category for an utterance.
// Matching is substring containment, so "this" counts as a greeting.
func Classify(utterance string) Category {
	lower := strings.ToLower(utterance)
	for _, group := range keywords {
		for _, w := range group.words {
			if strings.Contains(lower, w) {
				return group.category
			}
		}
	}
	return CategoryGeneric
}

// TimeBucket is the part of day used for greetings
type TimeBucket string

const (
	Morning   TimeBucket = "morning"
	Afternoon TimeBucket = "afternoon"
	Evening   TimeBucket = "evening"
)

// BucketFor uses the local hour: before 12 is morning, before 17 afternoon.
func BucketFor(t time.Time) TimeBucket {
	switch h := t.Hour(); {
	case h < 12:
		return Morning
	case h < 17:
		return Afternoon
	default:
		return Evening
	}
}

// Clock returns the current local time
type Clock func() time.Time

// Coin returns true for the positive rest variant
type Coin func() bool

type Selector struct {
	book  PhraseBook
	clock Clock
	coin  Coin
}

// NewSelector creates a selector over a validated phrase book. A nil clock
// uses time.Now and a nil coin flips a fair random coin.
func NewSelector(book PhraseBook, clock Clock, coin Coin) *Selector {
	if clock == nil {
		clock = time.Now
	}
	if coin == nil {
		coin = func() bool { return rand.IntN(2) == 0 }
	}
	return &Selector{book: book, clock: clock, coin: coin}
}

// Select picks the doctor's reply for the utterance. The doctor must already
// be known to the registry.
func (s *Selector) Select(utterance string, doctor model.Doctor) string {
	key := s.keyFor(Classify(utterance))

	var text string
	if entry, ok := s.book[doctor.ID]; ok {
		text = entry.line(key)
	}
	if text == "" {
		text = GenericTemplate
	}
	return render(text, utterance, doctor)
}

func (s *Selector) keyFor(c Category) lineKey {
	switch c {
	case CategoryGreeting:
		switch BucketFor(s.clock()) {
		case Morning:
			return keyMorning
		case Afternoon:
			return keyAfternoon
		default:
			return keyEvening
		}
	case CategoryMedication:
		return keyMedication
	case CategoryAppointment:
		return keyAppointment
	case CategoryPain:
		return keyPain
	case CategoryWellbeing:
		return keyWellbeing
	case CategoryRest:
		if s.coin() {
			return keyRestPositive
		}
		return keyRestConcerned
	default:
		return keyGeneric
	}
}

func render(text, utterance string, doctor model.Doctor) string {
	return strings.NewReplacer(
		"{name}", doctor.Name,
		"{specialty}", doctor.Specialty,
		"{utterance}", utterance,
	).Replace(text)
}
