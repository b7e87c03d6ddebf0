package health

import (
	"time"

	"github.com/nadzzz/curiousframe/internal/audit"
	"github.com/nadzzz/curiousframe/internal/session"
)

// Status is the session snapshot served on /status.
type Status struct {
	Phase               string    `json:"phase" example:"narrating"`
	Language            string    `json:"language" example:"en"`
	LastObjects         []string  `json:"last_objects" example:"ball,cup"`
	Cycles              int       `json:"cycles" example:"12"`
	LastNarration       string    `json:"last_narration,omitempty" example:"A ball is round and it bounces!"`
	LastError           string    `json:"last_error,omitempty" example:"dialogue failed: context deadline exceeded"`
	IdenticalForSeconds float64   `json:"identical_for_seconds" example:"120"`
	Termination         string    `json:"termination,omitempty" example:"idle_shutdown"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// StatusFrom converts a controller snapshot.
func StatusFrom(s session.Snapshot) Status {
	objs := s.LastObjects
	if objs == nil {
		objs = []string{}
	}
	return Status{
		Phase:               string(s.Phase),
		Language:            s.Language,
		LastObjects:         objs,
		Cycles:              s.Cycles,
		LastNarration:       s.LastNarration,
		LastError:           s.LastError,
		IdenticalForSeconds: s.IdenticalFor.Seconds(),
		Termination:         s.Termination,
		UpdatedAt:           s.UpdatedAt,
	}
}

// CycleRecord is one audited cycle served on /cycles.
type CycleRecord struct {
	Time         time.Time `json:"time"`
	ImagePath    string    `json:"image_path" example:"captures/20261019-090000.000.jpg"`
	RawDetection string    `json:"raw_detection" example:"ball, french flag"`
	Narration    string    `json:"narration" example:"A ball is round and it bounces!"`
	Outcome      string    `json:"outcome" example:"novel"`
	Language     string    `json:"language" example:"fr"`
}

func cycleRecord(r audit.Record) CycleRecord {
	return CycleRecord{
		Time:         r.Time,
		ImagePath:    r.ImagePath,
		RawDetection: r.RawDetection,
		Narration:    r.Narration,
		Outcome:      r.Outcome,
		Language:     r.Language,
	}
}
