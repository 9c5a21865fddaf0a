package response

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jwalitptl/popdoc-api/internal/model"
)

var ErrInvalidPhraseBook = errors.New("invalid phrase book")

// GenericTemplate is used for any line a doctor has not authored.
// Placeholders: {name}, {specialty}, {utterance}.
const GenericTemplate = "As Dr. {name}, I want to help you with {utterance}. " +
	"Based on my expertise in {specialty} and my character background, here's what I can tell you..."

// Lines is one doctor's phrasing per category. Empty fields are unset.
type Lines struct {
	Morning       string
	Afternoon     string
	Evening       string
	Medication    string
	Appointment   string
	Pain          string
	Wellbeing     string
	RestPositive  string
	RestConcerned string
	Generic       string
}

type lineKey int

const (
	keyMorning lineKey = iota
	keyAfternoon
	keyEvening
	keyMedication
	keyAppointment
	keyPain
	keyWellbeing
	keyRestPositive
	keyRestConcerned
	keyGeneric
	numKeys
)

var keyNames = [numKeys]string{
	"morning greeting", "afternoon greeting", "evening greeting",
	"medication", "appointment", "pain", "wellbeing",
	"rest (positive)", "rest (concerned)", "generic",
}

func (l Lines) get(k lineKey) string {
	switch k {
	case keyMorning:
		return l.Morning
	case keyAfternoon:
		return l.Afternoon
	case keyEvening:
		return l.Evening
	case keyMedication:
		return l.Medication
	case keyAppointment:
		return l.Appointment
	case keyPain:
		return l.Pain
	case keyWellbeing:
		return l.Wellbeing
	case keyRestPositive:
		return l.RestPositive
	case keyRestConcerned:
		return l.RestConcerned
	case keyGeneric:
		return l.Generic
	}
	return ""
}

// Entry is a doctor's phrase set: either Authored or Fallback.
type Entry interface {
	line(k lineKey) string
}

// Authored phrase sets cover every category.
type Authored struct{ Lines Lines }

// Fallback phrase sets override some categories; the rest use GenericTemplate.
type Fallback struct{ Overrides Lines }

func (a Authored) line(k lineKey) string { return a.Lines.get(k) }
func (f Fallback) line(k lineKey) string { return f.Overrides.get(k) }

// PhraseBook maps doctor id to its phrase set
type PhraseBook map[string]Entry

// Validate checks the book against the registered doctors: every doctor has an
// entry, every entry names a doctor, and every Authored entry is complete.
func (b PhraseBook) Validate(doctors []model.Doctor) error {
	var problems []string

	known := make(map[string]struct{}, len(doctors))
	for _, d := range doctors {
		known[d.ID] = struct{}{}
		if _, ok := b[d.ID]; !ok {
			problems = append(problems, fmt.Sprintf("doctor %q has no phrase entry", d.ID))
		}
	}

	ids := make([]string, 0, len(b))
	for id := range b {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		entry := b[id]
		if _, ok := known[id]; !ok {
			problems = append(problems, fmt.Sprintf("phrase entry %q references an unknown doctor", id))
		}
		if a, ok := entry.(Authored); ok {
			for k := lineKey(0); k < numKeys; k++ {
				if strings.TrimSpace(a.Lines.get(k)) == "" {
					problems = append(problems, fmt.Sprintf("authored entry %q is missing the %s line", id, keyNames[k]))
				}
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPhraseBook, strings.Join(problems, "; "))
	}
	return nil
}

// DefaultPhraseBook returns the built-in phrasing for the given doctors.
// Doctors without authored lines get a Fallback entry.
func DefaultPhraseBook(doctors []model.Doctor) PhraseBook {
	book := make(PhraseBook, len(doctors))
	for _, d := range doctors {
		if entry, ok := builtinPhrases[d.ID]; ok {
			book[d.ID] = entry
			continue
		}
		book[d.ID] = Fallback{}
	}
	return book
}

var builtinPhrases = map[string]Entry{
	"mccoy": Authored{Lines{
		Morning:       "Good morning, ensign! Ready for another day in sickbay?",
		Afternoon:     "Afternoon, crewman. Hope you're staying out of trouble.",
		Evening:       "Evening, cadet. Space never sleeps, and neither do medical emergencies.",
		Generic:       "Dammit Jim! I'm a doctor, not a miracle worker!",
		Medication:    "These pills aren't sugar candy, you need to take them as prescribed!",
		Appointment:   "I've got sickbay ready for you. Don't be late this time!",
		Pain:          "Pain? On a scale of 1 to getting shot by a Klingon, how bad is it?",
		Wellbeing:     "You humans are so fragile. Get some rest and stop overworking yourself!",
		RestPositive:  "Finally, someone talking sense! Yes, you absolutely should rest.",
		RestConcerned: "Your readings are off the charts. Get some rest, doctor's orders!",
	}},
	"crusher": Authored{Lines{
		Morning:       "Good morning! The Enterprise's sickbay is always ready to help.",
		Afternoon:     "Good afternoon. I hope you're having a productive day.",
		Evening:       "Good evening. Remember, a good night's rest is essential for health.",
		Generic:       "I'll need to run a few more scans before I can make a determination.",
		Medication:    "Your medication regimen is important. Let's make sure you're following it precisely.",
		Appointment:   "I can fit you in for an appointment. The Enterprise sickbay is never too busy for patients who need care.",
		Pain:          "Let's localize that pain and find its source. The body often tells us what's wrong if we listen carefully.",
		Wellbeing:     "Your overall wellbeing is my primary concern. Physical health is just one component of wellness.",
		RestPositive:  "Rest is essential for recovery. I recommend at least 8 hours of sleep.",
		RestConcerned: "Your cortical readings suggest you need immediate rest.",
	}},
	"the-doctor": Authored{Lines{
		Morning:       "Ah, morning! Time for a new adventure in health.",
		Afternoon:     "Afternoon! Perfect time for a check-up, wouldn't you say?",
		Evening:       "Evening! The night is young, just like I pretend to be.",
		Generic:       "Well, that's interesting. Reminds me of something I saw on Gallifrey... or was it Barcelona? The planet, not the city.",
		Medication:    "These medications work like a tiny TARDIS in your body, traveling where they need to go to make you better!",
		Appointment:   "Time is a big ball of wibbly-wobbly, timey-wimey stuff, but your appointment is quite fixed, I'm afraid.",
		Pain:          "Pain is the body's alarm system. Let's figure out what's setting it off. Allons-y!",
		Wellbeing:     "900 years of time and space, and I've never met someone who wasn't important. Your health matters!",
		RestPositive:  "Yes! Rest! Even Time Lords need a break sometimes.",
		RestConcerned: "Your timeline suggests you need rest. Doctor's orders!",
	}},
	"strange": Authored{Lines{
		Morning:       "By the Vishanti, good morning! The mystical energies are strong today.",
		Afternoon:     "Good afternoon. The dimensional barriers are thin, perfect for healing.",
		Evening:       "Evening greetings. The night holds many secrets of healing.",
		Generic:       "I've studied the mystic arts, but medicine still has its place in healing.",
		Medication:    "This medication works in this dimension, but do remember to take it at the prescribed times.",
		Appointment:   "I'll open a portal for your next appointment. Or you could just use the door like everyone else.",
		Pain:          "Pain is merely the physical dimension trying to tell you something. Let's decipher its message.",
		Wellbeing:     "The mind, body, and spirit are interconnected. Healing one often requires addressing all three.",
		RestPositive:  "The astral plane awaits your rest. It will do you good.",
		RestConcerned: "Your aura suggests extreme fatigue. Meditation and rest are required.",
	}},
	"house": Fallback{Lines{
		Generic: "*adjusts cane* {utterance}? Let me guess, you've already self-diagnosed using WebMD and now you want me to confirm your worst fears. " +
			"Here's the thing: it's probably not lupus. It's never lupus.",
	}},
	"zoidberg": Fallback{Lines{
		Generic: "*excited crab noises* Hooray! A patient! You know, on Decapod 10, we'd treat {utterance} with a nice muddy swamp bath! " +
			"But here on Earth... *nervous clicking* Maybe I should consult my medical textbook...",
	}},
	"hibbert": Fallback{Lines{
		Generic: "*chuckles* Ah-heh-heh-heh! Well, {utterance} is certainly an interesting case! " +
			"In my years at Springfield General, I've seen it all.",
	}},
}
