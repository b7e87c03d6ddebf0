// Package config handles loading and validating the curiousframe configuration.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root configuration for the curiousframe device.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Camera     CameraConfig     `mapstructure:"camera"`
	Perception PerceptionConfig `mapstructure:"perception"`
	Dialogue   DialogueConfig   `mapstructure:"dialogue"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	Session    SessionConfig    `mapstructure:"session"`
	Languages  LanguagesConfig  `mapstructure:"languages"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Network    NetworkConfig    `mapstructure:"network"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health and status server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"` // 0 disables the HTTP server
	GRPCPort   int `mapstructure:"grpc_port"`   // 0 disables the gRPC health service
}

// CameraConfig selects and configures the frame source.
type CameraConfig struct {
	Backend      string `mapstructure:"backend"` // "ffmpeg", "dir" or "websocket"
	Device       string `mapstructure:"device"`
	Width        int    `mapstructure:"width"`
	Height       int    `mapstructure:"height"`
	FPS          int    `mapstructure:"fps"`
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	SourceDir    string `mapstructure:"source_dir"`    // "dir" backend
	WebSocketURL string `mapstructure:"websocket_url"` // "websocket" backend
	FramesDir    string `mapstructure:"frames_dir"`    // where captured frames are persisted
}

// PerceptionConfig selects and configures the object detection backend.
type PerceptionConfig struct {
	Backend string       `mapstructure:"backend"` // "ollama" or "openai"
	Prompt  string       `mapstructure:"prompt"`  // overrides the built-in detection prompt
	Ollama  OllamaConfig `mapstructure:"ollama"`
	OpenAI  OpenAIConfig `mapstructure:"openai"`
}

// DialogueConfig selects and configures the narration backend.
type DialogueConfig struct {
	Backend     string       `mapstructure:"backend"`     // "ollama" or "openai"
	NumPredict  int          `mapstructure:"num_predict"` // maximum response length in tokens
	Temperature float64      `mapstructure:"temperature"`
	TopP        float64      `mapstructure:"top_p"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
	OpenAI      OpenAIConfig `mapstructure:"openai"`
}

// OllamaConfig holds self-hosted model settings.
type OllamaConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"` // empty for api.openai.com
	Model   string `mapstructure:"model"`
}

// SpeechConfig selects the synthesis backend, the player and the clip cache.
type SpeechConfig struct {
	Backend  string `mapstructure:"backend"`  // "http" (Piper HTTP server) or "wyoming"
	URL      string `mapstructure:"url"`      // Piper HTTP server
	Endpoint string `mapstructure:"endpoint"` // Wyoming host:port
	Player   string `mapstructure:"player"`   // "speaker" or "log"
	CacheDir string `mapstructure:"cache_dir"`
}

// SessionConfig holds the session loop policy.
type SessionConfig struct {
	DefaultLanguage    string        `mapstructure:"default_language"` // "primary" or "secondary"
	TriggerPhrase      string        `mapstructure:"trigger_phrase"`
	TriggerDescription string        `mapstructure:"trigger_description"`
	WaitInterval       time.Duration `mapstructure:"wait_interval"`
	PromptFraction     float64       `mapstructure:"prompt_fraction"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CallTimeout        time.Duration `mapstructure:"call_timeout"`
	MaxNarratedObjects int           `mapstructure:"max_narrated_objects"`
	ShutdownHost       bool          `mapstructure:"shutdown_host"`
	ShutdownCommand    string        `mapstructure:"shutdown_command"`
}

// LanguagesConfig holds the two spoken languages.
type LanguagesConfig struct {
	Primary   LanguageConfig `mapstructure:"primary"`
	Secondary LanguageConfig `mapstructure:"secondary"`
}

// LanguageConfig describes one spoken language.
type LanguageConfig struct {
	Code    string        `mapstructure:"code"`  // ISO-639-1
	Name    string        `mapstructure:"name"`  // used in translation requests
	Voice   string        `mapstructure:"voice"` // Piper voice model name
	Phrases PhrasesConfig `mapstructure:"phrases"`
}

// PhrasesConfig holds the fixed sentences spoken without translation.
type PhrasesConfig struct {
	Apology            string `mapstructure:"apology"`
	NothingFound       string `mapstructure:"nothing_found"`
	Prompt             string `mapstructure:"prompt"`
	Farewell           string `mapstructure:"farewell"`
	SwitchAnnouncement string `mapstructure:"switch_announcement"`
}

// AuditConfig holds the audit log locations.
type AuditConfig struct {
	Path       string `mapstructure:"path"`        // CSV file
	SQLitePath string `mapstructure:"sqlite_path"` // optional mirror, empty disables
}

// NetworkConfig holds outbound HTTP settings shared by all service clients.
type NetworkConfig struct {
	SocksProxy string `mapstructure:"socks_proxy"` // host:port, empty for direct
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text, tint
}

const defaultModel = "hf.co/unsloth/gemma-3n-E2B-it-GGUF:Q4_K_M"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("server.grpc_port", 0)

	v.SetDefault("camera.backend", "ffmpeg")
	v.SetDefault("camera.device", "/dev/video0")
	v.SetDefault("camera.width", 1280)
	v.SetDefault("camera.height", 720)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.ffmpeg_path", "ffmpeg")
	v.SetDefault("camera.frames_dir", "captures")

	v.SetDefault("perception.backend", "ollama")
	v.SetDefault("perception.ollama.url", "http://127.0.0.1:11434")
	v.SetDefault("perception.ollama.model", defaultModel)
	v.SetDefault("perception.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("perception.openai.base_url", "")
	v.SetDefault("perception.openai.model", "gpt-4o-mini")

	v.SetDefault("dialogue.backend", "ollama")
	v.SetDefault("dialogue.ollama.url", "http://127.0.0.1:11434")
	v.SetDefault("dialogue.ollama.model", defaultModel)
	v.SetDefault("dialogue.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("dialogue.openai.base_url", "")
	v.SetDefault("dialogue.openai.model", "gpt-4o-mini")
	v.SetDefault("dialogue.num_predict", 80)
	v.SetDefault("dialogue.temperature", 0.7)
	v.SetDefault("dialogue.top_p", 0.9)

	v.SetDefault("speech.backend", "http")
	v.SetDefault("speech.url", "http://127.0.0.1:5000")
	v.SetDefault("speech.endpoint", "localhost:10200")
	v.SetDefault("speech.player", "speaker")
	v.SetDefault("speech.cache_dir", "speech_cache")

	v.SetDefault("session.default_language", "primary")
	v.SetDefault("session.trigger_phrase", "french flag")
	v.SetDefault("session.trigger_description", "a French flag")
	v.SetDefault("session.wait_interval", 60*time.Second)
	v.SetDefault("session.prompt_fraction", 2.0/3.0)
	v.SetDefault("session.shutdown_timeout", 600*time.Second)
	v.SetDefault("session.call_timeout", 60*time.Second)
	v.SetDefault("session.max_narrated_objects", 2)
	v.SetDefault("session.shutdown_host", false)
	v.SetDefault("session.shutdown_command", "sudo shutdown -h now")

	v.SetDefault("languages.primary.code", "en")
	v.SetDefault("languages.primary.name", "English")
	v.SetDefault("languages.primary.voice", "en_US-lessac-medium")
	v.SetDefault("languages.primary.phrases.apology", "Oops, something went wrong. Let's try again!")
	v.SetDefault("languages.primary.phrases.nothing_found", "nothing found")
	v.SetDefault("languages.primary.phrases.prompt", "I already know this one! Can you show me something else?")
	v.SetDefault("languages.primary.phrases.farewell", "Goodbye! See you next time.")
	v.SetDefault("languages.primary.phrases.switch_announcement", "Let's speak English!")

	v.SetDefault("languages.secondary.code", "fr")
	v.SetDefault("languages.secondary.name", "French")
	v.SetDefault("languages.secondary.voice", "fr_FR-siwis-medium")
	v.SetDefault("languages.secondary.phrases.apology", "Oups, quelque chose n'a pas marché. On réessaie !")
	v.SetDefault("languages.secondary.phrases.nothing_found", "rien trouvé")
	v.SetDefault("languages.secondary.phrases.prompt", "Je connais déjà celui-là ! Tu peux me montrer autre chose ?")
	v.SetDefault("languages.secondary.phrases.farewell", "Au revoir ! À la prochaine.")
	v.SetDefault("languages.secondary.phrases.switch_announcement", "On parle français !")

	v.SetDefault("audit.path", "curious_frame.csv")
	v.SetDefault("audit.sqlite_path", "")

	v.SetDefault("network.socks_proxy", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads the configuration from file, environment variables, flags and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./curiousframe.yaml, ./configs/curiousframe.yaml, /etc/curiousframe/curiousframe.yaml.
// Flags registered in fs under the names "log-level" and "log-format" override
// logging settings; fs may be nil.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("curiousframe")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/curiousframe")
	}

	// Environment variables: CURIOUSFRAME_CAMERA_DEVICE, CURIOUSFRAME_SESSION_SHUTDOWN_TIMEOUT, etc.
	v.SetEnvPrefix("CURIOUSFRAME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, flag := range map[string]string{"logging.level": "log-level", "logging.format": "log-format"} {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
	}

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Perception.OpenAI.APIKey = resolveEnvRef(cfg.Perception.OpenAI.APIKey)
	cfg.Dialogue.OpenAI.APIKey = resolveEnvRef(cfg.Dialogue.OpenAI.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the session loop cannot run with.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(oneOf(c.Camera.Backend, "ffmpeg", "dir", "websocket"), "camera.backend %q is not one of ffmpeg, dir, websocket", c.Camera.Backend)
	check(c.Camera.Backend != "dir" || c.Camera.SourceDir != "", "camera.source_dir is required for the dir backend")
	check(c.Camera.Backend != "websocket" || c.Camera.WebSocketURL != "", "camera.websocket_url is required for the websocket backend")
	check(oneOf(c.Perception.Backend, "ollama", "openai"), "perception.backend %q is not one of ollama, openai", c.Perception.Backend)
	check(oneOf(c.Dialogue.Backend, "ollama", "openai"), "dialogue.backend %q is not one of ollama, openai", c.Dialogue.Backend)
	// Self-hosted OpenAI-compatible servers (custom base_url) may run without a key.
	check(c.Perception.Backend != "openai" || c.Perception.OpenAI.APIKey != "" || c.Perception.OpenAI.BaseURL != "",
		"perception.openai.api_key is required for the openai backend (set OPENAI_API_KEY)")
	check(c.Dialogue.Backend != "openai" || c.Dialogue.OpenAI.APIKey != "" || c.Dialogue.OpenAI.BaseURL != "",
		"dialogue.openai.api_key is required for the openai backend (set OPENAI_API_KEY)")
	check(oneOf(c.Speech.Backend, "http", "wyoming"), "speech.backend %q is not one of http, wyoming", c.Speech.Backend)
	check(oneOf(c.Speech.Player, "speaker", "log"), "speech.player %q is not one of speaker, log", c.Speech.Player)
	check(oneOf(c.Session.DefaultLanguage, "primary", "secondary"), "session.default_language %q is not one of primary, secondary", c.Session.DefaultLanguage)
	check(c.Session.PromptFraction > 0 && c.Session.PromptFraction <= 1, "session.prompt_fraction must be in (0, 1], got %v", c.Session.PromptFraction)
	check(c.Session.ShutdownTimeout > 0, "session.shutdown_timeout must be positive")
	check(c.Session.WaitInterval >= 0, "session.wait_interval must not be negative")
	check(c.Session.CallTimeout > 0, "session.call_timeout must be positive")
	check(c.Session.MaxNarratedObjects >= 1, "session.max_narrated_objects must be at least 1")
	check(c.Audit.Path != "", "audit.path is required")
	check(c.Languages.Primary.Code != "" && c.Languages.Secondary.Code != "", "languages.primary.code and languages.secondary.code are required")

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env
// var value. An unset variable resolves to "".
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, cfg)))
}

func newHandler(w io.Writer, cfg LoggingConfig) slog.Handler {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "tint":
		return tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	default:
		return slog.NewJSONHandler(w, opts)
	}
}
