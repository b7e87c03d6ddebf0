package session

import (
	"time"

	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/language"
	"github.com/nadzzz/curiousframe/internal/novelty"
)

// Phrases are the fixed sentences of one language, spoken untranslated.
type Phrases struct {
	Apology            string
	NothingFound       string
	Prompt             string
	Farewell           string
	SwitchAnnouncement string
}

// Language is a spoken language and its phrasebook.
type Language struct {
	Profile language.Profile
	Phrases Phrases
}

// Config is the controller policy.
type Config struct {
	Primary            Language
	Secondary          Language
	DefaultLanguage    language.Tag
	TriggerPhrase      string
	TriggerDescription string // narrated when only the trigger is shown
	WaitInterval       time.Duration
	CallTimeout        time.Duration
	MaxNarratedObjects int
	FramesDir          string
	Novelty            novelty.Config
}

// FromConfig maps the file configuration onto the controller policy.
func FromConfig(cfg *config.Config) Config {
	return Config{
		Primary:            languageFrom(cfg.Languages.Primary),
		Secondary:          languageFrom(cfg.Languages.Secondary),
		DefaultLanguage:    language.ParseTag(cfg.Session.DefaultLanguage),
		TriggerPhrase:      cfg.Session.TriggerPhrase,
		TriggerDescription: cfg.Session.TriggerDescription,
		WaitInterval:       cfg.Session.WaitInterval,
		CallTimeout:        cfg.Session.CallTimeout,
		MaxNarratedObjects: cfg.Session.MaxNarratedObjects,
		FramesDir:          cfg.Camera.FramesDir,
		Novelty: novelty.Config{
			ShutdownTimeout: cfg.Session.ShutdownTimeout,
			PromptFraction:  cfg.Session.PromptFraction,
		},
	}
}

func languageFrom(lc config.LanguageConfig) Language {
	return Language{
		Profile: language.Profile{Code: lc.Code, Name: lc.Name, Voice: lc.Voice},
		Phrases: Phrases{
			Apology:            lc.Phrases.Apology,
			NothingFound:       lc.Phrases.NothingFound,
			Prompt:             lc.Phrases.Prompt,
			Farewell:           lc.Phrases.Farewell,
			SwitchAnnouncement: lc.Phrases.SwitchAnnouncement,
		},
	}
}

func (c *Config) language(tag language.Tag) Language {
	if tag == language.Secondary {
		return c.Secondary
	}
	return c.Primary
}
