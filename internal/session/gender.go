// Package session describes a named viewing session.
package session

import "strings"

// Gender selects the session accent effects.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Accent colours per gender.
const (
	AccentFemale = "#ff66aa"
	AccentMale   = "#00f2ff"
)

// Checked in order; female first, so "alo" wins over "lo".
var (
	femaleSuffixes = []string{"oy", "nur", "gul", "gül", "abon", "alo", "ira", "ra", "na", "sa", "da", "ya", "shirin", "hon", "xon"}
	maleSuffixes   = []string{"bek", "jon", "ali", "mir", "yor", "dor", "berdi", "boy", "xoja", "xo'ja", "iddin", "ulloh", "ullo", "lo", "murod"}
)

// DetectGender guesses a gender from common Uzbek and international name
// endings. An empty name is Male.
func DetectGender(name string) Gender {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Male
	}

	for _, s := range femaleSuffixes {
		if strings.HasSuffix(n, s) {
			return Female
		}
	}
	for _, s := range maleSuffixes {
		if strings.HasSuffix(n, s) {
			return Male
		}
	}

	// Many remaining names ending in a vowel are female.
	if strings.HasSuffix(n, "a") || strings.HasSuffix(n, "o") || strings.HasSuffix(n, "i") {
		return Female
	}
	return Male
}

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	return g == Male || g == Female
}

// Accent returns the accent colour for g.
func (g Gender) Accent() string {
	if g == Female {
		return AccentFemale
	}
	return AccentMale
}
