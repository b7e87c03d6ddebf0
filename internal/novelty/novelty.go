// Package novelty decides whether the objects in front of the camera have
// changed since the previous cycle, and how long an unchanged scene has
// been showing.
//
// The tracker is stateless: the caller owns a State value, passes it to
// Update and keeps the returned copy.
package novelty

import (
	"fmt"
	"math"
	"time"

	"github.com/nadzzz/curiousframe/internal/objects"
)

// Result classifies one observation.
type Result int

const (
	// Novel means the object set differs from the previous one.
	Novel Result = iota
	// IdenticalBelowPrompt means the scene is unchanged and neither
	// threshold has been reached. The caller waits and re-captures.
	IdenticalBelowPrompt
	// IdenticalPastPrompt means the prompt threshold was crossed for the
	// first time in this identical run. The caller asks for something new.
	IdenticalPastPrompt
	// IdenticalPastShutdown means the scene has been unchanged for the
	// whole shutdown timeout. The caller ends the session.
	IdenticalPastShutdown
)

func (r Result) String() string {
	switch r {
	case Novel:
		return "novel"
	case IdenticalBelowPrompt:
		return "identical"
	case IdenticalPastPrompt:
		return "identical_prompt"
	case IdenticalPastShutdown:
		return "identical_shutdown"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Defaults used when Config fields are zero.
const (
	DefaultShutdownTimeout = 600 * time.Second
	DefaultPromptFraction  = 2.0 / 3.0
)

// Config holds the two thresholds of an identical run.
type Config struct {
	ShutdownTimeout time.Duration
	PromptFraction  float64 // in (0, 1]; prompt threshold = PromptFraction * ShutdownTimeout
}

// State is the novelty part of the session state.
type State struct {
	LastObjects    objects.Set
	Observed       bool       // false until the first observation of the session
	IdenticalSince *time.Time // start of the current identical run, nil when none
	PromptedForNew bool       // the "anything new?" prompt was issued in this run
}

// Tracker compares successive object sets.
type Tracker struct {
	shutdownAfter time.Duration
	promptAfter   time.Duration
}

// New creates a tracker, applying defaults for zero fields.
func New(cfg Config) *Tracker {
	shutdown := cfg.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = DefaultShutdownTimeout
	}
	fraction := cfg.PromptFraction
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultPromptFraction
	}
	return &Tracker{
		shutdownAfter: shutdown,
		promptAfter:   time.Duration(math.Round(float64(shutdown) * fraction)),
	}
}

// PromptAfter returns the elapsed identical time after which the prompt fires.
func (t *Tracker) PromptAfter() time.Duration { return t.promptAfter }

// ShutdownAfter returns the elapsed identical time after which the session ends.
func (t *Tracker) ShutdownAfter() time.Duration { return t.shutdownAfter }

// Update classifies current against st.LastObjects and returns the new state.
func (t *Tracker) Update(st State, current objects.Set, now time.Time) (State, Result) {
	if !st.Observed || !current.Equal(st.LastObjects) {
		return t.Reset(st, current), Novel
	}

	if st.IdenticalSince == nil {
		since := now
		st.IdenticalSince = &since
	}
	elapsed := now.Sub(*st.IdenticalSince)

	switch {
	case elapsed >= t.shutdownAfter:
		return st, IdenticalPastShutdown
	case elapsed >= t.promptAfter && !st.PromptedForNew:
		st.PromptedForNew = true
		return st, IdenticalPastPrompt
	default:
		return st, IdenticalBelowPrompt
	}
}

// Reset records current as the latest observation and clears the identical run.
func (t *Tracker) Reset(st State, current objects.Set) State {
	st.LastObjects = current
	st.Observed = true
	st.IdenticalSince = nil
	st.PromptedForNew = false
	return st
}
