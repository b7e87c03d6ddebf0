package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nadzzz/curiousframe/internal/audit"
	"github.com/nadzzz/curiousframe/internal/capture"
	"github.com/nadzzz/curiousframe/internal/language"
)

// fakeSource yields n frames (or forever when n < 0), then end-of-stream.
type fakeSource struct {
	n     int
	calls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Next(context.Context) (capture.Frame, error) {
	if f.n >= 0 && f.calls >= f.n {
		return capture.Frame{}, capture.ErrEndOfStream
	}
	f.calls++
	return capture.Frame{Data: []byte("jpeg"), Ext: "jpg"}, nil
}

func (f *fakeSource) Close() error { return nil }

// reply is one scripted collaborator answer.
type reply struct {
	text  string
	err   error
	panic bool
}

func (r reply) resolve() (string, error) {
	if r.panic {
		panic("model crashed")
	}
	return r.text, r.err
}

// fakeDetector answers from a script and repeats the last entry.
type fakeDetector struct {
	script []reply
	calls  int
}

func (f *fakeDetector) Name() string { return "fake" }

func (f *fakeDetector) Detect(context.Context, capture.Frame) (string, error) {
	r := f.script[min(f.calls, len(f.script)-1)]
	f.calls++
	return r.resolve()
}

type fakeNarrator struct {
	script   []reply
	subjects []string
}

func (f *fakeNarrator) Narrate(_ context.Context, objects string) (string, error) {
	f.subjects = append(f.subjects, objects)
	if len(f.script) == 0 {
		return "About " + objects + ".", nil
	}
	return f.script[min(len(f.subjects)-1, len(f.script)-1)].resolve()
}

type utterance struct {
	text     string
	lang     string
	bypass   bool
	uncached bool
}

type fakeSpeaker struct {
	said []utterance
	fail map[string]error
}

func (f *fakeSpeaker) Speak(_ context.Context, text string, lang language.Profile, bypass bool) error {
	f.said = append(f.said, utterance{text: text, lang: lang.Code, bypass: bypass})
	return f.fail[text]
}

func (f *fakeSpeaker) SpeakUncached(_ context.Context, text string, lang language.Profile) error {
	f.said = append(f.said, utterance{text: text, lang: lang.Code, bypass: true, uncached: true})
	return f.fail[text]
}

func (f *fakeSpeaker) last() utterance {
	if len(f.said) == 0 {
		return utterance{}
	}
	return f.said[len(f.said)-1]
}

func (f *fakeSpeaker) count(text string) int {
	n := 0
	for _, u := range f.said {
		if u.text == text {
			n++
		}
	}
	return n
}

type memSink struct {
	mu   sync.Mutex
	recs []audit.Record
	err  error
}

func (m *memSink) Append(_ context.Context, rec audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return m.err
}

func (m *memSink) Close() error { return nil }

// fakeClock advances only when slept on.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep()
	}
	return ctx.Err()
}

var errBoom = errors.New("boom")
