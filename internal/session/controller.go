// Package session runs the show-and-tell loop: capture a frame, find the
// objects in it, decide whether they are worth describing, describe them
// aloud, and record the cycle.
//
// Collaborator failures never stop the loop. A session ends only when the
// camera has no frame, the run context is cancelled, or the same scene has
// been shown for the whole shutdown timeout.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/curiousframe/internal/audit"
	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/language"
	"github.com/nadzzz/curiousframe/internal/novelty"
	"github.com/nadzzz/curiousframe/internal/perception"
)

// Narrator turns an object list into a sentence for a child.
type Narrator interface {
	Narrate(ctx context.Context, objects string) (string, error)
}

// Speaker voices text in a language. bypassTranslation marks text that is
// already written in that language. SpeakUncached voices text verbatim and
// never touches the clip cache.
type Speaker interface {
	Speak(ctx context.Context, text string, lang language.Profile, bypassTranslation bool) error
	SpeakUncached(ctx context.Context, text string, lang language.Profile) error
}

// Deps are the collaborators of a Controller. Clock and Observer are optional.
type Deps struct {
	Source   capture.Source
	Detector perception.Detector
	Narrator Narrator
	Speaker  Speaker
	Audit    audit.Sink
	Clock    Clock
	Observer Observer
}

// Controller owns the session loop and its state.
type Controller struct {
	cfg      Config
	deps     Deps
	tracker  *novelty.Tracker
	switcher *language.Switcher

	cycles   int
	snapshot Snapshot
}

// New validates the wiring and creates a controller.
func New(cfg Config, deps Deps) (*Controller, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("session: no capture source")
	case deps.Detector == nil:
		return nil, fmt.Errorf("session: no perception backend")
	case deps.Narrator == nil:
		return nil, fmt.Errorf("session: no dialogue backend")
	case deps.Speaker == nil:
		return nil, fmt.Errorf("session: no speaker")
	case deps.Audit == nil:
		return nil, fmt.Errorf("session: no audit sink")
	}
	if deps.Clock == nil {
		deps.Clock = RealClock{}
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.MaxNarratedObjects < 1 {
		cfg.MaxNarratedObjects = 2
	}
	if cfg.FramesDir == "" {
		cfg.FramesDir = "."
	}
	return &Controller{
		cfg:      cfg,
		deps:     deps,
		tracker:  novelty.New(cfg.Novelty),
		switcher: language.NewSwitcher(cfg.TriggerPhrase),
	}, nil
}

// InitialState returns the state a session starts from.
func (c *Controller) InitialState() State {
	return State{Language: c.cfg.DefaultLanguage}
}

// Run loops until a terminal condition and reports which one ended it.
func (c *Controller) Run(ctx context.Context) Termination {
	st := c.InitialState()
	c.publish(PhaseIdle, st, nil)
	slog.Info("session started",
		"language", c.cfg.language(st.Language).Profile.Code,
		"trigger", c.switcher.Trigger(),
		"prompt_after", c.tracker.PromptAfter(),
		"shutdown_after", c.tracker.ShutdownAfter())

	for {
		var (
			term Termination
			done bool
		)
		st, term, done = c.Step(ctx, st)
		if done {
			c.snapshot.Termination = term.String()
			c.publish(PhaseTerminated, st, nil)
			slog.Info("session ended", "reason", term, "cycles", c.cycles)
			return term
		}
	}
}

// Step runs one cycle from st and returns the updated state. The boolean is
// true when the session must end, with the Termination saying why.
func (c *Controller) Step(ctx context.Context, st State) (State, Termination, bool) {
	c.cycles++
	log := slog.With("cycle", c.cycles)

	if ctx.Err() != nil {
		log.Info("interrupt requested")
		c.sayFarewell(ctx, st, log)
		return st, Interrupted, true
	}

	c.publish(PhaseCapturing, st, nil)
	captured := call(ctx, c.cfg.CallTimeout, c.deps.Source.Next)
	if !captured.OK() {
		if !errors.Is(captured.Err, capture.ErrEndOfStream) {
			log.Warn("capture failed, ending session", "error", captured.Err)
		}
		return st, EndOfStream, true
	}
	frame := captured.Value
	if frame.CapturedAt.IsZero() {
		frame.CapturedAt = c.deps.Clock.Now()
	}

	cyc := &Cycle{
		Number:    c.cycles,
		Started:   frame.CapturedAt,
		ImagePath: capture.FramePath(c.cfg.FramesDir, frame),
		Language:  st.Language,
	}
	if err := capture.Save(frame, cyc.ImagePath); err != nil {
		log.Warn("could not persist frame", "error", err)
		cyc.ImagePath = audit.NotAvailable
	}
	log = log.With("image", cyc.ImagePath)

	c.publish(PhaseDetecting, st, nil)
	detected := call(ctx, c.cfg.CallTimeout, func(ctx context.Context) (string, error) {
		return c.deps.Detector.Detect(ctx, frame)
	})
	if !detected.OK() {
		cyc.Outcome = "perception_failed"
		return c.fail(ctx, st, cyc, fmt.Errorf("%w: %w", ErrPerception, detected.Err), log), 0, false
	}
	cyc.RawDetection = detected.Value

	c.publish(PhaseDeciding, st, nil)
	var trigger bool
	cyc.Objects, trigger = c.switcher.Scan(detected.Value)
	lang, switched := c.switcher.Next(st.Language, trigger)

	var speechErr error
	if switched {
		st.Language = lang
		cyc.Language = lang
		target := c.cfg.language(lang)
		log.Info("language switched", "language", target.Profile.Code)
		// The announcement is written in the target language already.
		if err := c.say(ctx, target.Profile, target.Phrases.SwitchAnnouncement, true); err != nil {
			log.Warn("switch announcement failed", "error", err)
			speechErr = err
		}
		st.Novelty = c.tracker.Reset(st.Novelty, cyc.Objects)
		cyc.Outcome = novelty.Novel.String()
	} else {
		var res novelty.Result
		st.Novelty, res = c.tracker.Update(st.Novelty, cyc.Objects, c.deps.Clock.Now())
		cyc.Outcome = res.String()
		log.Debug("novelty", "result", res, "objects", cyc.Objects.String())

		switch res {
		case novelty.IdenticalPastShutdown:
			c.sayPhrase(ctx, st, cyc, func(p Phrases) string { return p.Farewell }, log)
			c.record(ctx, st, cyc, log)
			return st, IdleShutdown, true
		case novelty.IdenticalPastPrompt:
			c.sayPhrase(ctx, st, cyc, func(p Phrases) string { return p.Prompt }, log)
			c.record(ctx, st, cyc, log)
			c.wait(ctx, st)
			return st, 0, false
		case novelty.IdenticalBelowPrompt:
			c.record(ctx, st, cyc, log)
			c.wait(ctx, st)
			return st, 0, false
		}
	}

	active := c.cfg.language(st.Language)
	c.publish(PhaseNarrating, st, nil)
	narration, bypass := active.Phrases.NothingFound, true
	subject := ""
	switch {
	case !cyc.Objects.Empty():
		subject = strings.Join(cyc.Objects.First(c.cfg.MaxNarratedObjects), ", ")
	case trigger:
		subject = c.cfg.TriggerDescription
	}
	if subject != "" {
		narrated := call(ctx, c.cfg.CallTimeout, func(ctx context.Context) (string, error) {
			return c.deps.Narrator.Narrate(ctx, subject)
		})
		if narrated.OK() && narrated.Value == "" {
			narrated.Err = errors.New("empty narration")
		}
		if !narrated.OK() {
			cyc.Outcome = "dialogue_failed"
			return c.fail(ctx, st, cyc, fmt.Errorf("%w: %w", ErrDialogue, narrated.Err), log), 0, false
		}
		narration, bypass = narrated.Value, false
	}
	cyc.Narration = narration

	c.publish(PhaseSpeaking, st, nil)
	if err := c.say(ctx, active.Profile, narration, bypass); err != nil {
		speechErr = err
	}
	if speechErr != nil {
		cyc.Outcome = "speech_failed"
		return c.fail(ctx, st, cyc, speechErr, log), 0, false
	}

	log.Info("cycle narrated", "objects", cyc.Objects.String(), "length", len(narration))
	c.record(ctx, st, cyc, log)
	return st, 0, false
}

// fail closes a cycle on a recovered failure: the apology is spoken in the
// active language without translation or caching and the error replaces the
// narration in the audit record.
func (c *Controller) fail(ctx context.Context, st State, cyc *Cycle, err error, log *slog.Logger) State {
	log.Error("cycle failed", "error", err)
	cyc.Err = err
	active := c.cfg.language(st.Language)
	apology := func(ctx context.Context) error {
		return c.deps.Speaker.SpeakUncached(ctx, active.Phrases.Apology, active.Profile)
	}
	if serr := c.speak(ctx, apology); serr != nil {
		log.Warn("apology failed", "error", serr)
	}
	c.record(ctx, st, cyc, log)
	return st
}

// sayPhrase speaks a fixed phrase of the active language and stores it as
// the cycle narration.
func (c *Controller) sayPhrase(ctx context.Context, st State, cyc *Cycle, pick func(Phrases) string, log *slog.Logger) {
	active := c.cfg.language(st.Language)
	cyc.Narration = pick(active.Phrases)
	c.publish(PhaseSpeaking, st, nil)
	if err := c.say(ctx, active.Profile, cyc.Narration, true); err != nil {
		log.Warn("could not speak phrase", "error", err)
		cyc.Err = err
	}
}

func (c *Controller) sayFarewell(ctx context.Context, st State, log *slog.Logger) {
	active := c.cfg.language(st.Language)
	c.publish(PhaseSpeaking, st, nil)
	if err := c.say(ctx, active.Profile, active.Phrases.Farewell, true); err != nil {
		log.Warn("could not say farewell", "error", err)
	}
}

func (c *Controller) say(ctx context.Context, lang language.Profile, text string, bypass bool) error {
	return c.speak(ctx, func(ctx context.Context) error {
		return c.deps.Speaker.Speak(ctx, text, lang, bypass)
	})
}

func (c *Controller) speak(ctx context.Context, fn func(context.Context) error) error {
	res := call(ctx, c.cfg.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if !res.OK() {
		return fmt.Errorf("%w: %w", ErrSpeech, res.Err)
	}
	return nil
}

// record appends the cycle to the audit log. Audit failures are logged and
// never end the session.
func (c *Controller) record(ctx context.Context, st State, cyc *Cycle, log *slog.Logger) {
	c.publish(PhaseLogging, st, cyc)

	rec := audit.Record{
		Time:         cyc.Started,
		ImagePath:    cyc.ImagePath,
		RawDetection: cyc.RawDetection,
		Narration:    cyc.Narration,
		Outcome:      cyc.Outcome,
		Language:     c.cfg.language(cyc.Language).Profile.Code,
	}
	if cyc.Err != nil {
		rec.Narration = cyc.Err.Error()
	}
	res := call(ctx, c.cfg.CallTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.deps.Audit.Append(ctx, rec)
	})
	if !res.OK() {
		log.Error("audit write failed", "error", res.Err)
	}
}

func (c *Controller) wait(ctx context.Context, st State) {
	c.publish(PhaseWaiting, st, nil)
	_ = c.deps.Clock.Sleep(ctx, c.cfg.WaitInterval)
}

func (c *Controller) publish(phase Phase, st State, cyc *Cycle) {
	s := &c.snapshot
	s.Phase = phase
	s.Language = c.cfg.language(st.Language).Profile.Code
	s.LastObjects = st.Novelty.LastObjects.Names()
	s.Cycles = c.cycles
	s.UpdatedAt = c.deps.Clock.Now()
	s.IdenticalFor = 0
	if st.Novelty.IdenticalSince != nil {
		s.IdenticalFor = s.UpdatedAt.Sub(*st.Novelty.IdenticalSince)
	}
	if cyc != nil {
		s.LastNarration = cyc.Narration
		s.LastError = ""
		if cyc.Err != nil {
			s.LastError = cyc.Err.Error()
		}
	}
	if c.deps.Observer != nil {
		snap := *s
		snap.LastObjects = append([]string(nil), s.LastObjects...)
		c.deps.Observer(snap)
	}
}
