package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/config"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
	"github.com/vovakirdan/arcade-studio/internal/secrets"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

// appConfig is the loaded studio configuration, set before any command runs.
var appConfig config.StudioConfig

// loadApp reads .env, the config file and keyring secrets.
func loadApp() {
	config.LoadDotEnv()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	secrets.NewStore(secrets.Service).Fill(&cfg.AI)
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	appConfig = cfg
}

// fileLogger logs to ~/.arcade-studio/studio.log so that full-screen
// programs keep the terminal to themselves.
func fileLogger() (*log.Logger, func()) {
	path := config.UserPath("studio.log")
	if path == "" {
		return log.New(io.Discard), func() {}
	}
	//nolint:errcheck // Opening the file reports the real problem
	os.MkdirAll(filepath.Dir(path), 0o755)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "studio",
	})
	return logger, func() { f.Close() }
}

// stderrLogger is used by the servers.
func stderrLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "studio",
	})
}

// openStore opens the game database, or returns nil with a warning.
func openStore() *storage.Store {
	store, err := storage.Open(appConfig.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return nil
	}
	return store
}

// mustOpenStore opens the game database or exits.
func mustOpenStore() *storage.Store {
	store, err := storage.Open(appConfig.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	return store
}

// terminalConfig builds a runtime config sized to the terminal.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

func assemblerOptions() assembler.Options {
	return assembler.OptionsFrom(appConfig)
}

func newExecutor(logger *log.Logger, cfg core.RuntimeConfig) *executor.Executor {
	return executor.New(executor.Options{Runtime: cfg, Logger: logger})
}

// newOrchestrator builds an orchestrator wired to the configured AI services.
func newOrchestrator(logger *log.Logger) *orchestrator.Orchestrator {
	chat, images, remover := orchestrator.ClientsFrom(appConfig.AI)
	return orchestrator.New(orchestrator.Options{
		Chat:             chat,
		Images:           images,
		Remover:          remover,
		RemoveBackground: appConfig.Assets.RemoveBackground && appConfig.AI.BgRemovalEndpoint != "",
		Style:            appConfig.Assets.Style,
		MaxAttempts:      appConfig.AI.MaxAttempts,
		Backoff:          appConfig.AI.Backoff(),
		Logger:           logger,
	})
}
