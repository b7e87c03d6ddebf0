package novelty

import (
	"testing"
	"time"

	"github.com/nadzzz/curiousframe/internal/objects"
)

var t0 = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestUpdate_FirstObservationIsNovel(t *testing.T) {
	tr := New(Config{})
	st, res := tr.Update(State{}, objects.New(), t0)
	if res != Novel {
		t.Fatalf("first observation: got %v, want novel", res)
	}
	if !st.Observed || st.IdenticalSince != nil {
		t.Fatalf("unexpected state after first observation: %+v", st)
	}
}

func TestUpdate_NovelIffSymmetricDifferenceNonEmpty(t *testing.T) {
	cases := []struct {
		name      string
		prev, cur objects.Set
		want      Result
	}{
		{"same", objects.New("ball", "cup"), objects.New("cup", "ball"), IdenticalBelowPrompt},
		{"duplicates", objects.New("ball"), objects.New("ball", "BALL", " ball "), IdenticalBelowPrompt},
		{"empty twice", objects.New(), objects.New(), IdenticalBelowPrompt},
		{"added", objects.New("ball"), objects.New("ball", "cup"), Novel},
		{"removed", objects.New("ball", "cup"), objects.New("ball"), Novel},
		{"replaced", objects.New("ball"), objects.New("cup"), Novel},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := New(Config{})
			st, _ := tr.Update(State{}, tc.prev, t0)
			_, got := tr.Update(st, tc.cur, t0.Add(time.Second))
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdate_SinglePromptThenShutdown(t *testing.T) {
	const timeout = 600 * time.Second
	tr := New(Config{ShutdownTimeout: timeout, PromptFraction: 2.0 / 3.0})
	set := objects.New("ball")

	st, _ := tr.Update(State{}, set, t0)
	// The identical run starts at the first identical observation.
	runStart := t0.Add(time.Second)

	var prompts, shutdowns int
	var promptAt, shutdownAt time.Duration
	for step := time.Duration(0); step <= timeout+time.Minute; step += 10 * time.Second {
		var res Result
		st, res = tr.Update(st, set, runStart.Add(step))
		switch res {
		case Novel:
			t.Fatalf("identical set reported novel at %v", step)
		case IdenticalPastPrompt:
			prompts++
			promptAt = step
		case IdenticalPastShutdown:
			if shutdowns == 0 {
				shutdownAt = step
			}
			shutdowns++
		}
		if shutdowns > 0 {
			break
		}
	}

	if prompts != 1 {
		t.Fatalf("expected exactly one prompt, got %d", prompts)
	}
	if promptAt < 2*timeout/3 || promptAt >= 2*timeout/3+10*time.Second {
		t.Fatalf("prompt fired at %v, want about %v", promptAt, 2*timeout/3)
	}
	if shutdowns != 1 || shutdownAt != timeout {
		t.Fatalf("shutdown at %v (count %d), want %v", shutdownAt, shutdowns, timeout)
	}
}

func TestUpdate_NovelClearsRun(t *testing.T) {
	tr := New(Config{ShutdownTimeout: 90 * time.Second})
	st, _ := tr.Update(State{}, objects.New("ball"), t0)
	st, _ = tr.Update(st, objects.New("ball"), t0.Add(time.Second))
	st, res := tr.Update(st, objects.New("ball"), t0.Add(62*time.Second))
	if res != IdenticalPastPrompt || !st.PromptedForNew {
		t.Fatalf("expected prompt, got %v (%+v)", res, st)
	}

	st, res = tr.Update(st, objects.New("cup"), t0.Add(63*time.Second))
	if res != Novel {
		t.Fatalf("expected novel, got %v", res)
	}
	if st.IdenticalSince != nil || st.PromptedForNew {
		t.Fatalf("novel observation did not reset the run: %+v", st)
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	tr := New(Config{PromptFraction: 5})
	if tr.ShutdownAfter() != DefaultShutdownTimeout {
		t.Fatalf("shutdown default: got %v", tr.ShutdownAfter())
	}
	if tr.PromptAfter() != 400*time.Second {
		t.Fatalf("prompt default: got %v", tr.PromptAfter())
	}
}
