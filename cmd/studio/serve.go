package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/orchestrator"
	"github.com/vovakirdan/arcade-studio/internal/platform/tui"
	"github.com/vovakirdan/arcade-studio/internal/platform/web"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

var (
	flagSSHAddr     string
	flagHTTPAddr    string
	flagHostKey     string
	flagPublicURL   string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH and HTTP servers",
	Long: `Start the studio servers.

The SSH server gives every connection its own gallery and chat studio.
The HTTP server exposes the same sessions as a JSON API with a live
event stream, plus the saved game catalog and share links.

Either server can be turned off with an empty address. Flags override
the server section of the config file.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade-studio/host_key

Examples:
  studio serve                           # SSH on :23234, HTTP on :8080
  studio serve --ssh :2222 --http ""     # SSH only
  studio serve --public-url https://arcade.example.com

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config, then :23234)")
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP server address (default from config, then :8080)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagPublicURL, "public-url", "", "Base URL for share links")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in minutes for connections and sessions")
}

func runServe(cmd *cobra.Command, _ []string) {
	srvCfg := appConfig.Server
	flags := cmd.Flags()
	if flags.Changed("ssh") {
		srvCfg.SSHAddr = flagSSHAddr
	}
	if flags.Changed("http") {
		srvCfg.HTTPAddr = flagHTTPAddr
	}
	if flagHostKey != "" {
		srvCfg.HostKeyPath = flagHostKey
	}
	if flagPublicURL != "" {
		srvCfg.PublicURL = flagPublicURL
	}
	if flagIdleTimeout > 0 {
		srvCfg.IdleTimeoutSeconds = flagIdleTimeout * 60
	}
	if srvCfg.SSHAddr == "" && srvCfg.HTTPAddr == "" {
		fmt.Fprintln(os.Stderr, "Error: both servers are disabled")
		os.Exit(1)
	}
	idle := time.Duration(srvCfg.IdleTimeoutSeconds) * time.Second

	logger := stderrLogger()
	store := mustOpenStore()
	defer store.Close()

	ex := newExecutor(logger, core.DefaultConfig())
	defer ex.Close()

	managerCfg := studio.DefaultManagerConfig()
	managerCfg.IdleTimeout = idle
	base := studio.Options{
		Store:     store,
		Assembler: assemblerOptions(),
		Logger:    logger,
	}
	manager := studio.NewManager(managerCfg, base, func() *orchestrator.Orchestrator {
		return newOrchestrator(logger)
	}, ex)
	manager.Start()
	defer manager.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	running := 0

	if srvCfg.SSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = srvCfg.SSHAddr
		sshCfg.HostKeyPath = srvCfg.HostKeyPath
		if idle > 0 {
			sshCfg.IdleTimeout = idle
		}
		server, err := tui.NewSSHServer(sshCfg, tui.Backend{
			Manager:   manager,
			Executor:  ex,
			Store:     store,
			Assembler: assemblerOptions(),
			Logger:    logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating SSH server: %v\n", err)
			os.Exit(1)
		}
		running++
		go func() { errCh <- server.ListenAndServe(ctx) }()
		logger.Info("connect with ssh", "address", srvCfg.SSHAddr)
	}

	if srvCfg.HTTPAddr != "" {
		server := web.NewServer(web.Options{
			Manager:   manager,
			Store:     store,
			PublicURL: srvCfg.PublicURL,
			Logger:    logger,
		})
		running++
		go func() { errCh <- server.ListenAndServe(ctx, srvCfg.HTTPAddr) }()
	}

	logger.Info("press Ctrl+C to stop")

	// The first server to fail stops the other.
	var failed error
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && failed == nil {
			failed = err
			stop()
		}
	}
	if failed != nil {
		logger.Error("server error", "err", failed)
		os.Exit(1)
	}
}
