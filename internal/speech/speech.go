// Package speech voices sentences in the active language, replaying cached
// clips when the same sentence was already synthesized.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nadzzz/curiousframe/internal/language"
	"github.com/nadzzz/curiousframe/internal/playback"
	"github.com/nadzzz/curiousframe/internal/tts"
)

// Translator renders text in another language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Speaker synthesizes, caches and plays sentences.
type Speaker struct {
	cache      *Cache
	synth      tts.Synthesizer
	player     playback.Player
	translator Translator
	source     string // language code narrations are written in
}

// New creates a speaker. sourceCode is the language code of the text the
// dialogue backend produces; text spoken in any other language is
// translated first unless the caller bypasses translation.
func New(cache *Cache, synth tts.Synthesizer, player playback.Player, translator Translator, sourceCode string) *Speaker {
	return &Speaker{
		cache:      cache,
		synth:      synth,
		player:     player,
		translator: translator,
		source:     sourceCode,
	}
}

// Speak voices text in lang. With bypassTranslation the text is assumed to
// be in lang already (fixed phrases). Only clips actually spoken in lang are
// cached: when translation fails the original text is played once and the
// next attempt translates again. A failed playback discards the clip so the
// next attempt synthesizes it again.
func (s *Speaker) Speak(ctx context.Context, text string, lang language.Profile, bypassTranslation bool) error {
	if text == "" {
		return errNothingToSay
	}
	key := Key(text, lang.Code)
	log := slog.With("language", lang.Code, "key", key[:12])

	if path, ok := s.cache.Lookup(key); ok {
		log.Debug("speech cache hit")
		return s.play(ctx, path, key, log)
	}

	spoken := text
	inLanguage := bypassTranslation || lang.Code == s.source
	if !inLanguage && s.translator != nil {
		translated, err := s.translator.Translate(ctx, text, lang.Name)
		if err != nil {
			log.Warn("translation failed, speaking original text", "error", err)
		} else {
			spoken, inLanguage = translated, true
		}
	}

	audio, err := s.synthesize(ctx, spoken, lang)
	if err != nil {
		return err
	}
	if !inLanguage {
		return s.playOnce(ctx, audio)
	}

	path, err := s.cache.Store(key, audio)
	if err != nil {
		return err
	}
	log.Debug("speech cached", "path", path, "bytes", len(audio))
	return s.play(ctx, path, key, log)
}

// SpeakUncached voices text verbatim in lang without reading or writing the
// cache.
func (s *Speaker) SpeakUncached(ctx context.Context, text string, lang language.Profile) error {
	if text == "" {
		return errNothingToSay
	}
	audio, err := s.synthesize(ctx, text, lang)
	if err != nil {
		return err
	}
	return s.playOnce(ctx, audio)
}

var errNothingToSay = errors.New("nothing to say")

func (s *Speaker) synthesize(ctx context.Context, text string, lang language.Profile) ([]byte, error) {
	res, err := s.synth.Synthesize(ctx, text, tts.SynthesizeOpts{Language: lang.Code, Voice: lang.Voice})
	if err != nil {
		return nil, fmt.Errorf("synthesizing: %w", err)
	}
	if _, err := tts.Inspect(res.Audio); err != nil {
		return nil, fmt.Errorf("synthesizing: %w", err)
	}
	return res.Audio, nil
}

func (s *Speaker) play(ctx context.Context, path, key string, log *slog.Logger) error {
	if err := s.player.Play(ctx, path); err != nil {
		if ierr := s.cache.Invalidate(key); ierr != nil {
			log.Warn("could not discard clip", "error", ierr)
		}
		return fmt.Errorf("playing: %w", err)
	}
	return nil
}

// playOnce plays audio from a scratch file that is removed afterwards.
func (s *Speaker) playOnce(ctx context.Context, audio []byte) error {
	path, err := s.cache.Scratch(audio)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	if err := s.player.Play(ctx, path); err != nil {
		return fmt.Errorf("playing: %w", err)
	}
	return nil
}
