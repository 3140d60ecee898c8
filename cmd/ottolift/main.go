// OttoLift: a terminal workout tracker with rest timers, supersets and
// a local control API.
//
// Usage:
//
//	ottolift [-config ottolift.yaml] [-verbose] [-quiet] [-serve] [-voice] [-no-audio]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/ottolift/internal/audio"
	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/config"
	"github.com/hammamikhairi/ottolift/internal/conversation"
	"github.com/hammamikhairi/ottolift/internal/display"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/history"
	"github.com/hammamikhairi/ottolift/internal/idgen"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/mcp"
	"github.com/hammamikhairi/ottolift/internal/notify"
	"github.com/hammamikhairi/ottolift/internal/routine"
	"github.com/hammamikhairi/ottolift/internal/server"
	"github.com/hammamikhairi/ottolift/internal/session"
	"github.com/hammamikhairi/ottolift/internal/storage"
	"github.com/hammamikhairi/ottolift/internal/timer"
	"github.com/hammamikhairi/ottolift/internal/voice"
	"github.com/hammamikhairi/ottolift/internal/wakelock"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "ottolift.yaml", "path to the YAML config file")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".ottolift/ottolift.log", "file to write logs to (use \"stderr\" to log to console)")
	voiceOn := flag.Bool("voice", false, "enable voice input via local Whisper STT")
	serve := flag.Bool("serve", false, "start the local control API even if disabled in config")
	noAudio := flag.Bool("no-audio", false, "disable the keep-alive loop and chimes")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *voiceOn {
		cfg.Voice.Enabled = true
	}
	if *serve {
		cfg.Server.Enabled = true
	}
	if *noAudio {
		cfg.Audio.KeepAlive = false
		cfg.Audio.Chime = false
	}

	logLevel, _ := logger.ParseLevel(cfg.LogLevel)
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libraries (whisper, migrate) log through the standard
	// logger; keep them off the terminal too.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("%v", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Each process writes under its own origin so it can tell its own
	// writes from another instance's.
	origin := idgen.New()
	docs, closeStore, err := openStore(ctx, cfg.Storage, origin, log.Named("storage"))
	if err != nil {
		return err
	}
	defer closeStore()

	queue := storage.NewWriteQueue(docs, cfg.Storage.Debounce, log.Named("queue"))
	defer queue.Close(context.Background())

	lib, err := routine.NewLibrary(ctx, docs, log.Named("routines"))
	if err != nil {
		return fmt.Errorf("loading routines: %w", err)
	}
	hist, err := history.Open(ctx, docs, log.Named("history"))
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	catalog := routine.NewCatalog()
	clk := clock.Real{}

	// The UI polls the engine, which does not exist yet; nothing prints
	// until the supervisor starts.
	var ui *display.UI
	printf := func(format string, a ...any) { ui.Printf(format, a...) }

	// Notifications: text above the prompt, plus a chime for urgent ones.
	var notifier domain.Notifier = notify.NewCLINotifier(log.Named("notify"), printf)
	var keepAlive domain.AudioKeepAlive = audio.NoOp{}
	if cfg.Audio.KeepAlive || cfg.Audio.Chime {
		driver, err := newAudio(cfg.Audio, log.Named("audio"))
		if err != nil {
			log.Warn("audio disabled: %v", err)
		} else {
			defer driver.Close()
			if cfg.Audio.KeepAlive {
				keepAlive = driver
			}
			if cfg.Audio.Chime {
				notifier = notify.NewChimeNotifier(notifier, driver, log.Named("chime"))
			}
		}
	}

	mgr := session.NewManager(docs, lib, hist, clk, log.Named("session"),
		session.WithCatalog(catalog),
		session.WithQueue(queue),
		session.WithRestSettings(session.RestSettings{
			Defaults: cfg.Timers.RestTimes(),
			Override: cfg.Timers.OverrideRest,
		}),
	)

	engOpts := []engine.Option{
		engine.WithNotifier(notifier),
		engine.WithTimerStore(timer.NewTimerStore(docs, queue)),
		engine.WithKeepAlive(keepAlive),
		engine.WithSupersetTransition(cfg.Timers.SupersetRest),
	}
	if cfg.Notifications.Enabled {
		worker := notify.NewWorker(notifier, log.Named("worker"))
		defer worker.Close()
		engOpts = append(engOpts, engine.WithScheduler(worker))
	}
	if cfg.WakeLock.Enabled {
		lock := wakelock.NewInhibitor(cfg.WakeLock.Command, log.Named("wakelock"))
		engOpts = append(engOpts, engine.WithScreenGuard(wakelock.NewGuard(lock, log.Named("wakelock"))))
	}
	eng := engine.New(mgr, clk, log.Named("engine"), engOpts...)
	ui = display.NewUI(eng)

	if err := eng.Restore(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}
	go func() {
		err := eng.Follow(ctx, docs, map[string]engine.Reloader{storage.KeyHistory: hist})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("not following other instances: %v", err)
		}
	}()

	supervisor := timer.New(eng, log.Named("timer"),
		timer.WithTickInterval(cfg.Timers.Tick),
		timer.WithWatcher(timer.NewWatcher(eng, notifier, clk, log.Named("watcher"),
			timer.WithIdleAfter(cfg.Timers.IdleNudge),
		)),
	)
	supervisor.Start(ctx)
	defer supervisor.Stop()

	if cfg.Server.Enabled {
		stop := startServer(cfg.Server, eng, lib, hist, log.Named("server"))
		defer stop()
	}

	var ear *voice.Ear
	if cfg.Voice.Enabled {
		if _, err := os.Stat(cfg.Voice.Model); err != nil {
			return fmt.Errorf("whisper model not found at %s", cfg.Voice.Model)
		}
		ear = voice.NewEar(cfg.Voice.WhisperBin, cfg.Voice.Model, log.Named("voice"),
			voice.WithRecordDuration(time.Duration(cfg.Voice.RecordSecs)*time.Second),
		)
		go ear.Run(ctx)
		log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)", cfg.Voice.WhisperBin, cfg.Voice.Model, cfg.Voice.RecordSecs)
	}

	app := &cliApp{
		engine:   eng,
		routines: lib,
		history:  hist,
		catalog:  catalog,
		parser:   conversation.NewKeywordParser(log.Named("parser")),
		ear:      ear,
		log:      log,
		ui:       ui,
	}

	fmt.Println(display.RenderBanner())
	if ear != nil {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON: say \"Hey Otto\" to activate, or type commands."))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	return nil
}

// openStore opens the configured document store. The returned func
// releases it.
func openStore(ctx context.Context, cfg config.StorageConfig, origin string, log *logger.Logger) (domain.DocumentStore, func(), error) {
	switch cfg.Driver {
	case "memory":
		return storage.NewMemoryStoreOn(storage.NewHub(), origin, log), func() {}, nil
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		s, err := storage.OpenSQLite(cfg.Path, origin, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite %s: %w", cfg.Path, err)
		}
		return s, func() { s.Close() }, nil
	case "postgres":
		s, err := storage.OpenPostgres(ctx, cfg.DSN, origin, log)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("storage driver %q: %w", cfg.Driver, domain.ErrInvalidInput)
}

func newAudio(cfg config.AudioConfig, log *logger.Logger) (*audio.OtoDriver, error) {
	var opts []audio.Option
	if cfg.ChimeWAV != "" {
		wav, err := os.ReadFile(cfg.ChimeWAV)
		if err != nil {
			log.Warn("chime %s unreadable, using the built-in tone: %v", cfg.ChimeWAV, err)
		} else {
			opts = append(opts, audio.WithChimeWAV(wav))
		}
	}
	return audio.NewOtoDriver(log, opts...)
}

// startServer serves the control API and MCP endpoint in the background.
// The returned func shuts it down.
func startServer(cfg config.ServerConfig, eng *engine.Engine, lib *routine.Library, hist *history.Log, log *logger.Logger) func() {
	api := server.New(eng, lib, hist, log)
	api.Handle("/mcp", mcp.Handler(mcp.New(eng, hist, version, log.Named("mcp"))))

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     api,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		log.Info("listening on http://%s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
