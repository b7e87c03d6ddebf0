package session

import (
	"time"

	"github.com/nadzzz/curiousframe/internal/language"
	"github.com/nadzzz/curiousframe/internal/novelty"
	"github.com/nadzzz/curiousframe/internal/objects"
)

// State is the session state threaded through each cycle.
type State struct {
	Novelty  novelty.State
	Language language.Tag
}

// Phase is where the controller currently is within a cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseCapturing  Phase = "capturing"
	PhaseDetecting  Phase = "detecting"
	PhaseDeciding   Phase = "deciding"
	PhaseNarrating  Phase = "narrating"
	PhaseSpeaking   Phase = "speaking"
	PhaseLogging    Phase = "logging"
	PhaseWaiting    Phase = "waiting"
	PhaseTerminated Phase = "terminated"
)

// Cycle is one capture-to-speech iteration. It is closed once its audit
// record is written.
type Cycle struct {
	Number       int
	Started      time.Time
	ImagePath    string
	RawDetection string
	Objects      objects.Set
	Outcome      string // novelty result, or the failing stage
	Narration    string
	Err          error
	Language     language.Tag
}

// Snapshot is what the controller publishes to observers.
type Snapshot struct {
	Phase         Phase
	Language      string // ISO code of the active language
	LastObjects   []string
	Cycles        int
	LastNarration string
	LastError     string
	IdenticalFor  time.Duration
	Termination   string
	UpdatedAt     time.Time
}

// Observer receives a snapshot on every phase change. It must not block.
type Observer func(Snapshot)
