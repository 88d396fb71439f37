// Package platform defines the canonical vocabulary of physical game
// platforms used across the search engine.
package platform

// Platform is a canonical platform identifier. Provider-native platform
// codes are normalized into this set by each metadata adapter; anything a
// provider reports that has no mapping collapses to Other.
type Platform string

const (
	SNES           Platform = "SNES"
	NES            Platform = "NES"
	N64            Platform = "N64"
	GameCube       Platform = "GameCube"
	Wii            Platform = "Wii"
	WiiU           Platform = "WiiU"
	Switch         Platform = "Switch"
	PS1            Platform = "PS1"
	PS2            Platform = "PS2"
	PS3            Platform = "PS3"
	PS4            Platform = "PS4"
	PS5            Platform = "PS5"
	PSP            Platform = "PSP"
	PSVita         Platform = "PSVita"
	Xbox           Platform = "Xbox"
	Xbox360        Platform = "Xbox360"
	XboxOne        Platform = "XboxOne"
	XboxSeriesX    Platform = "XboxSeriesX"
	GameBoy        Platform = "GameBoy"
	GameBoyColor   Platform = "GameBoyColor"
	GameBoyAdvance Platform = "GameBoyAdvance"
	DS             Platform = "DS"
	N3DS           Platform = "3DS"
	Genesis        Platform = "Genesis"
	DreamCast      Platform = "DreamCast"
	Saturn         Platform = "Saturn"
	Atari2600      Platform = "Atari2600"
	Other          Platform = "Other"

	// None is the zero value, meaning "no platform filter".
	None Platform = ""
)

// all lists every canonical platform except None, in display order.
var all = []Platform{
	SNES, NES, N64, GameCube, Wii, WiiU, Switch,
	PS1, PS2, PS3, PS4, PS5, PSP, PSVita,
	Xbox, Xbox360, XboxOne, XboxSeriesX,
	GameBoy, GameBoyColor, GameBoyAdvance, DS, N3DS,
	Genesis, DreamCast, Saturn, Atari2600, Other,
}

// All returns every canonical platform.
func All() []Platform {
	out := make([]Platform, len(all))
	copy(out, all)
	return out
}

// String returns the canonical name.
func (p Platform) String() string {
	return string(p)
}

// Valid reports whether p is a member of the canonical set.
func (p Platform) Valid() bool {
	for _, known := range all {
		if p == known {
			return true
		}
	}
	return false
}

// Parse resolves a caller-supplied platform name to its canonical member.
// The boolean is false for names outside the vocabulary; an empty string
// parses to None, true (no filter requested).
func Parse(s string) (Platform, bool) {
	if s == "" {
		return None, true
	}
	p := Platform(s)
	if p.Valid() {
		return p, true
	}
	return None, false
}
