// Curious Frame is an unattended show-and-tell device: it describes the
// objects a child places inside a cardboard frame, in English or in French
// depending on whether a French flag is shown.
//
// Usage:
//
//	curiousframe [flags]
//	curiousframe --config /path/to/curiousframe.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nadzzz/curiousframe/internal/audit"
	"github.com/nadzzz/curiousframe/internal/capture"
	dircapture "github.com/nadzzz/curiousframe/internal/capture/dir"
	ffmpegcapture "github.com/nadzzz/curiousframe/internal/capture/ffmpeg"
	wscapture "github.com/nadzzz/curiousframe/internal/capture/websocket"
	"github.com/nadzzz/curiousframe/internal/config"
	"github.com/nadzzz/curiousframe/internal/dialogue"
	ollamadialogue "github.com/nadzzz/curiousframe/internal/dialogue/ollama"
	openaidialogue "github.com/nadzzz/curiousframe/internal/dialogue/openai"
	"github.com/nadzzz/curiousframe/internal/health"
	"github.com/nadzzz/curiousframe/internal/host"
	"github.com/nadzzz/curiousframe/internal/netclient"
	"github.com/nadzzz/curiousframe/internal/ollama"
	"github.com/nadzzz/curiousframe/internal/perception"
	ollamaperception "github.com/nadzzz/curiousframe/internal/perception/ollama"
	openaiperception "github.com/nadzzz/curiousframe/internal/perception/openai"
	"github.com/nadzzz/curiousframe/internal/playback"
	"github.com/nadzzz/curiousframe/internal/session"
	"github.com/nadzzz/curiousframe/internal/speech"
	"github.com/nadzzz/curiousframe/internal/tts"
	"github.com/nadzzz/curiousframe/internal/tts/piper"
	"github.com/nadzzz/curiousframe/internal/tts/piperhttp"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := pflag.Bool("version", false, "print version and exit")
	configFile := pflag.StringP("config", "c", "", "path to config file (e.g. configs/curiousframe.yaml)")
	envFile := pflag.StringP("env", "e", ".env", "env file with API keys and overrides")
	pflag.String("log-level", "info", "log level: debug, info, warn, error")
	pflag.String("log-format", "json", "log format: json, text, tint")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("curiousframe %s\n", version)
		os.Exit(0)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile, pflag.CommandLine)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("curiousframe starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	term, err := run(ctx, cfg)
	if err != nil {
		slog.Error("curiousframe failed", "error", err)
		os.Exit(1)
	}

	stopErr := term.Err()
	slog.Info("curiousframe stopped", "reason", term, "cause", stopErr)
	if cfg.Session.ShutdownHost && !errors.Is(stopErr, session.ErrInterrupted) {
		if err := host.Shutdown(context.Background(), cfg.Session.ShutdownCommand); err != nil {
			slog.Error("host shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}

func run(ctx context.Context, cfg *config.Config) (session.Termination, error) {
	httpClient, err := netclient.New(cfg.Session.CallTimeout, cfg.Network.SocksProxy)
	if err != nil {
		return 0, err
	}

	probeOllama(ctx, cfg, httpClient)

	// Initialize the camera.
	source, err := newSource(cfg.Camera)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	// Initialize the perception backend.
	var detector perception.Detector
	switch cfg.Perception.Backend {
	case "openai":
		detector = openaiperception.New(cfg.Perception, httpClient)
		slog.Info("using OpenAI perception", "model", cfg.Perception.OpenAI.Model)
	default:
		detector = ollamaperception.New(cfg.Perception, httpClient)
		slog.Info("using Ollama perception", "url", cfg.Perception.Ollama.URL, "model", cfg.Perception.Ollama.Model)
	}

	// Initialize the dialogue backend.
	var dlg dialogue.Dialogue
	switch cfg.Dialogue.Backend {
	case "openai":
		dlg = openaidialogue.New(cfg.Dialogue, httpClient)
		slog.Info("using OpenAI dialogue", "model", cfg.Dialogue.OpenAI.Model)
	default:
		dlg = ollamadialogue.New(cfg.Dialogue, httpClient)
		slog.Info("using Ollama dialogue", "url", cfg.Dialogue.Ollama.URL, "model", cfg.Dialogue.Ollama.Model)
	}

	// Initialize speech.
	voices := map[string]string{
		cfg.Languages.Primary.Code:   cfg.Languages.Primary.Voice,
		cfg.Languages.Secondary.Code: cfg.Languages.Secondary.Voice,
	}
	var synth tts.Synthesizer
	switch cfg.Speech.Backend {
	case "wyoming":
		synth = piper.New(cfg.Speech.Endpoint, voices)
	default:
		synth = piperhttp.New(cfg.Speech.URL, voices, httpClient)
	}
	defer synth.Close()
	slog.Info("using piper speech", "backend", synth.Name(), "player", cfg.Speech.Player)

	var player playback.Player = playback.NewSpeaker()
	if cfg.Speech.Player == "log" {
		player = playback.Log{}
	}
	cache, err := speech.NewCache(cfg.Speech.CacheDir)
	if err != nil {
		return 0, err
	}
	speaker := speech.New(cache, synth, player, dlg, cfg.Languages.Primary.Code)

	// Initialize the audit log.
	csvSink, err := audit.NewCSV(cfg.Audit.Path)
	if err != nil {
		return 0, err
	}
	sinks := audit.Multi{csvSink}

	healthServer := health.New(cfg.Server.HealthPort)
	if cfg.Audit.SQLitePath != "" {
		db, err := audit.OpenSQLite(cfg.Audit.SQLitePath)
		if err != nil {
			return 0, err
		}
		sinks = append(sinks, db)
		healthServer.SetHistory(db.Recent)
	}
	defer sinks.Close()

	// Status servers live as long as the session.
	srvCtx, stopServers := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		stopServers()
		wg.Wait()
	}()

	if cfg.Server.HealthPort > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := healthServer.ListenAndServe(srvCtx); err != nil {
				slog.Error("health server failed", "error", err)
			}
		}()
	}
	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			return 0, fmt.Errorf("grpc listen: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := healthServer.ServeGRPC(srvCtx, lis); err != nil {
				slog.Error("grpc health failed", "error", err)
			}
		}()
	}

	ctrl, err := session.New(session.FromConfig(cfg), session.Deps{
		Source:   source,
		Detector: detector,
		Narrator: dlg,
		Speaker:  speaker,
		Audit:    sinks,
		Observer: func(s session.Snapshot) { healthServer.SetStatus(health.StatusFrom(s)) },
	})
	if err != nil {
		return 0, err
	}

	healthServer.SetReady(true)
	slog.Info("curiousframe ready",
		"camera", source.Name(),
		"audit", csvSink.Path(),
		"health_port", cfg.Server.HealthPort)

	term := ctrl.Run(ctx)
	healthServer.SetReady(false)
	return term, nil
}

func newSource(cfg config.CameraConfig) (capture.Source, error) {
	switch cfg.Backend {
	case "dir":
		return dircapture.New(cfg.SourceDir)
	case "websocket":
		return wscapture.New(cfg.WebSocketURL)
	default:
		return ffmpegcapture.New(cfg), nil
	}
}

// probeOllama warns at startup when a configured Ollama server does not
// answer. The session still starts; failed cycles are apologized for.
func probeOllama(ctx context.Context, cfg *config.Config, httpClient *http.Client) {
	urls := map[string]bool{}
	if cfg.Perception.Backend != "openai" {
		urls[cfg.Perception.Ollama.URL] = true
	}
	if cfg.Dialogue.Backend != "openai" {
		urls[cfg.Dialogue.Ollama.URL] = true
	}
	for url := range urls {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := ollama.New(url, httpClient).Ping(pingCtx)
		cancel()
		if err != nil {
			slog.Warn("ollama not reachable", "url", url, "error", err)
			continue
		}
		slog.Info("ollama reachable", "url", url)
	}
}
