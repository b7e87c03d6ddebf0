// Package language tracks which of the two spoken languages is active and
// detects the visual cue (a printed flag) that switches between them.
package language

import (
	"strings"

	"github.com/nadzzz/curiousframe/internal/objects"
)

// Tag identifies one of the two supported languages.
type Tag int

const (
	Primary Tag = iota
	Secondary
)

func (t Tag) String() string {
	if t == Secondary {
		return "secondary"
	}
	return "primary"
}

// ParseTag maps "primary"/"secondary" to a Tag. Anything else is Primary.
func ParseTag(s string) Tag {
	if strings.EqualFold(strings.TrimSpace(s), "secondary") {
		return Secondary
	}
	return Primary
}

// Profile describes how a Tag is spoken.
type Profile struct {
	Code  string // ISO-639-1, e.g. "en"
	Name  string // used in translation requests, e.g. "French"
	Voice string // speech voice, e.g. "fr_FR-siwis-medium"
}

// DefaultTrigger is the detected-object text that activates the secondary language.
const DefaultTrigger = "french flag"

// unknownToken is what the perception model emits for unidentifiable objects.
const unknownToken = "unknown"

// Switcher filters raw detections and decides language switches.
type Switcher struct {
	trigger string
}

// NewSwitcher creates a switcher for the given trigger phrase.
func NewSwitcher(trigger string) *Switcher {
	trigger = objects.Normalize(trigger)
	if trigger == "" {
		trigger = DefaultTrigger
	}
	return &Switcher{trigger: trigger}
}

// Trigger returns the normalized trigger phrase.
func (s *Switcher) Trigger() string { return s.trigger }

// Scan splits a comma-separated detection string into an object set.
// Tokens containing the trigger phrase are removed and reported through
// the second return value; "unknown" tokens and empty tokens are dropped.
func (s *Switcher) Scan(raw string) (objects.Set, bool) {
	var (
		set       objects.Set
		triggered bool
	)
	for _, tok := range strings.Split(raw, ",") {
		tok = objects.Normalize(tok)
		switch {
		case tok == "", tok == unknownToken:
			continue
		case strings.Contains(tok, s.trigger):
			triggered = true
		default:
			set = set.Add(tok)
		}
	}
	return set, triggered
}

// Next returns the language for this cycle and whether it differs from active.
// The trigger selects Secondary; its absence selects Primary.
func (s *Switcher) Next(active Tag, triggerSeen bool) (Tag, bool) {
	want := Primary
	if triggerSeen {
		want = Secondary
	}
	return want, want != active
}
