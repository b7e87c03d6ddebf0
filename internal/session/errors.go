package session

import (
	"errors"
	"fmt"
)

// Failure classes. Perception, dialogue and speech failures are absorbed at
// the cycle boundary; capture exhaustion and interrupts end the session.
var (
	ErrCaptureExhausted = errors.New("capture exhausted")
	ErrPerception       = errors.New("perception failed")
	ErrDialogue         = errors.New("dialogue failed")
	ErrSpeech           = errors.New("speech failed")
	ErrInterrupted      = errors.New("interrupted")
)

// Termination says why Run returned.
type Termination int

const (
	// EndOfStream means the capture source produced no further frame.
	EndOfStream Termination = iota + 1
	// Interrupted means the run context was cancelled.
	Interrupted
	// IdleShutdown means the same scene stayed in front of the camera for
	// the whole shutdown timeout.
	IdleShutdown
)

func (t Termination) String() string {
	switch t {
	case EndOfStream:
		return "end_of_stream"
	case Interrupted:
		return "interrupted"
	case IdleShutdown:
		return "idle_shutdown"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// Err returns the sentinel matching t, or nil for IdleShutdown.
func (t Termination) Err() error {
	switch t {
	case EndOfStream:
		return ErrCaptureExhausted
	case Interrupted:
		return ErrInterrupted
	default:
		return nil
	}
}
