package doctor

import "github.com/jwalitptl/popdoc-api/internal/model"

func persona(id, name, specialty, color, bio string, voice model.VoiceParams) model.Doctor {
	return model.Doctor{
		ID:           id,
		Name:         name,
		Avatar:       "/avatars/" + id + ".png",
		Bio:          bio,
		Specialty:    specialty,
		PrimaryColor: color,
		Voice:        voice,
	}
}

// builtin is the curated persona table, in display order
var builtin = []model.Doctor{
	// Classic & sci-fi
	persona("mccoy", "Leonard \"Bones\" McCoy", "General Medicine", "#EF4444",
		"Grumpy Starfleet surgeon with a heart of gold, wielding a tricorder.",
		model.VoiceParams{ProviderVoiceID: "en-US-Wavenet-D", FallbackVoiceID: "Josh", Pitch: 0.9, Rate: 1.1}),
	persona("crusher", "Beverly Crusher", "Chief Medical Officer", "#10B981",
		"Compassionate Starfleet CMO, innovating with advanced medical tech.",
		model.VoiceParams{Pitch: 1.1, Rate: 1.0}),
	persona("the-doctor", "The Doctor", "Regeneration & Alien Medicine", "#6366F1",
		"Quirky holographic healer with a sonic screwdriver and time-travel expertise.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("bashir", "Julian Bashir", "Frontier Medicine", "#8B5CF6",
		"Charming Starfleet doctor with a knack for frontier medicine and secrets.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("phlox", "Phlox", "Xenobiology", "#FBBF24",
		"Curious Denobulan doctor with a love for alien biology and exotic pets.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("strange", "Stephen Strange", "Neurosurgery", "#D97706",
		"Mystic neurosurgeon turned Sorcerer Supreme, blending magic and medicine.",
		model.VoiceParams{Pitch: 0.8, Rate: 1.0}),
	persona("brown", "Emmett Brown", "Temporal Medicine", "#6B7280",
		"Eccentric inventor and time-traveling doctor with wild hair and a DeLorean.",
		model.VoiceParams{Pitch: 1.2, Rate: 1.0}),
	persona("jekyll", "Henry Jekyll", "Psychopharmacology", "#4B5563",
		"Tormented doctor battling his inner Hyde with gothic experiments.",
		model.VoiceParams{Pitch: 0.9, Rate: 1.0}),
	persona("frankenstein", "Victor Frankenstein", "Reanimation", "#1F2937",
		"Mad scientist obsessed with reanimation and gothic medical horrors.",
		model.VoiceParams{Pitch: 0.8, Rate: 1.0}),
	persona("octavius", "Otto Octavius", "Cybernetics", "#DC2626",
		"Brilliant scientist with mechanical arms, dabbling in dangerous medicine.",
		model.VoiceParams{Pitch: 0.9, Rate: 1.0}),
	// Medical TV
	persona("house", "Gregory House", "Diagnostics", "#3B82F6",
		"Sarcastic diagnostic genius solving mysteries with a cane and wit.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("grey", "Meredith Grey", "General Surgery", "#6D28D9",
		"Resilient surgeon navigating life and love in the OR.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("shepherd", "Derek Shepherd", "Neurosurgery", "#059669",
		"Charming neurosurgeon with a knack for saving lives and hearts.",
		model.VoiceParams{Pitch: 0.9, Rate: 1.0}),
	persona("dorian", "John \"J.D.\" Dorian", "Internal Medicine", "#F59E0B",
		"Daydreaming doctor with a quirky approach to patient care.",
		model.VoiceParams{Pitch: 1.1, Rate: 1.0}),
	persona("cox", "Perry Cox", "Internal Medicine", "#B91C1C",
		"Tough-talking mentor with a sharp tongue and fierce loyalty.",
		model.VoiceParams{Pitch: 0.9, Rate: 1.1}),
	persona("yang", "Cristina Yang", "Cardiothoracic Surgery", "#7C3AED",
		"Driven cardiothoracic surgeon with unmatched ambition.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("ross", "Doug Ross", "Emergency Medicine", "#1D4ED8",
		"Charismatic ER doctor with a knack for high-stakes cases.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("greene", "Mark Greene", "Emergency Medicine", "#15803D",
		"Dedicated ER doctor balancing chaos with compassion.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("murphy", "Shaun Murphy", "Surgical Resident", "#A5B4FC",
		"Autistic surgical prodigy with unparalleled insight.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("howser", "Doogie Howser", "General Practice", "#FACC15",
		"Teen genius doctor tackling medicine with youthful brilliance.",
		model.VoiceParams{Pitch: 1.1, Rate: 1.0}),
	// Cartoon, comic & animated
	persona("hibbert", "Julius Hibbert", "Family Medicine", "#EA580C",
		"Chuckling family doctor with a questionable bedside manner.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("riviera", "Nick Riviera", "Discount Surgery", "#F3F4F6",
		"Shady surgeon with a dubious degree and cheap rates.",
		model.VoiceParams{Pitch: 1.2, Rate: 1.0}),
	persona("zoidberg", "John Zoidberg", "Alien Physiology", "#F87171",
		"Clumsy crustacean doctor with a questionable medical license.",
		model.VoiceParams{ProviderVoiceID: "en-US-Wavenet-B", FallbackVoiceID: "Adam", Pitch: 1.2, Rate: 1.0}),
	persona("quest", "Benton Quest", "Expedition Medicine", "#475569",
		"Adventurous scientist doctor exploring mysteries with his son.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("tenma", "Tenma", "Robotics Medicine", "#1E3A8A",
		"Robotics genius creating life-saving AI with a tragic past.",
		model.VoiceParams{Pitch: 0.9, Rate: 1.0}),
	persona("quinzel", "Harleen Quinzel", "Psychiatry", "#EC4899",
		"Chaotic psychiatrist turned Harley Quinn, mixing madness and medicine.",
		model.VoiceParams{Pitch: 1.2, Rate: 1.0}),
	persona("robotnik", "Robotnik", "Cybernetic Enhancements", "#B45309",
		"Mad scientist doctor building robotic minions to conquer.",
		model.VoiceParams{Pitch: 0.8, Rate: 1.0}),
	persona("mario", "Mario", "Power-Up Medicine", "#EF4444",
		"Heroic plumber doctor prescribing mushrooms and star power.",
		model.VoiceParams{Pitch: 1.3, Rate: 1.0}),
	persona("light", "Light", "Robotics", "#3B82F6",
		"Genius roboticist doctor creating heroes to save the future.",
		model.VoiceParams{Pitch: 1.0, Rate: 1.0}),
	persona("nefarious", "Nefarious", "Galactic Medicine", "#7F1D1D",
		"Villainous robot doctor plotting galactic medical domination.",
		model.VoiceParams{Pitch: 0.7, Rate: 1.0}),
}
