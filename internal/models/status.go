package models

import "strings"

// StatusLight is the availability signal a profile broadcasts to friends.
type StatusLight string

const (
	LightRed    StatusLight = "red"
	LightYellow StatusLight = "yellow"
	LightGreen  StatusLight = "green"
)

var statusLabels = map[StatusLight]string{
	LightRed:    "Not available",
	LightYellow: "Maybe...",
	LightGreen:  "Down to hang!",
}

// Label returns the human label for the light. Unset or unknown values,
// which the store may hold for never-updated profiles, read as "Unknown".
func (l StatusLight) Label() string {
	if label, ok := statusLabels[l]; ok {
		return label
	}
	return "Unknown"
}

func (l StatusLight) Valid() bool {
	_, ok := statusLabels[l]
	return ok
}

// ParseStatusLight accepts a light name in any casing.
func ParseStatusLight(s string) (StatusLight, bool) {
	l := StatusLight(strings.ToLower(strings.TrimSpace(s)))
	return l, l.Valid()
}
