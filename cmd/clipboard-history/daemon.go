package main

import (
	"clipboard-history/internal/clipboard"
	"clipboard-history/internal/hotkey"
	"clipboard-history/internal/hotkey/native"
	"clipboard-history/internal/logging"
	"clipboard-history/internal/server"
	"clipboard-history/internal/service"
	"clipboard-history/internal/storage"
	"clipboard-history/internal/storage/sqlite"
	"clipboard-history/internal/tui"
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the clipboard history daemon",
		Long: `Watches the system clipboard, records every new text or image in the
history database and serves the history over a local HTTP API with a websocket
notification stream.

With --tui the terminal shows an interactive history browser and logs go to
~/.clipboard-history/clipboard-history.log.

On Linux the global hotkey needs X11 and a binary built with -tags x11.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runDaemon(cmd.Context(), v) },
	}

	f := cmd.Flags()
	f.String("db", "", "database path (default: ~/.clipboard-history/clipboard.db)")
	f.String("addr", defaultAddr, "API listen address")
	f.Duration("poll-interval", clipboard.DefaultPollInterval, "clipboard sampling interval")
	f.Bool("no-server", false, "do not serve the HTTP API")
	f.Bool("no-hotkey", false, "do not register the global hotkey")
	f.Bool("tui", false, "show the interactive history browser")
	_ = f.MarkHidden("poll-interval")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runDaemon(parent context.Context, v *viper.Viper) error {
	if parent == nil {
		parent = context.Background()
	}

	baseDir, err := dataDir()
	if err != nil {
		return err
	}

	useTUI := v.GetBool("tui")
	if useTUI {
		logFile, err := logging.SetupFile(
			filepath.Join(baseDir, "clipboard-history.log"),
			logging.FormatJSON,
			logging.ParseLevel(v.GetString("log-level")))
		if err != nil {
			return err
		}
		defer logFile.Close()
	} else {
		setupLogging(v)
	}

	pid, err := server.AcquirePIDFile(baseDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := pid.Release(); err != nil {
			slog.Warn("failed to release PID file", "err", err)
		}
	}()

	dbPath := v.GetString("db")
	if dbPath == "" {
		dbPath = filepath.Join(baseDir, "clipboard.db")
	}
	store, err := sqlite.New(storage.Config{DBPath: dbPath})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	backend := clipboard.NewBackend()
	defer backend.Close()
	monitor := clipboard.NewMonitor(backend, clipboard.WithInterval(v.GetDuration("poll-interval")))

	var registrar hotkey.Registrar = native.NewRegistrar()
	if v.GetBool("no-hotkey") {
		registrar = hotkey.NopRegistrar{}
	}

	svc := service.New(monitor, backend, store.History(), store.Config(), registrar)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !v.GetBool("no-server") {
		cfg, err := serverConfig(v.GetString("addr"))
		if err != nil {
			return err
		}
		srv := server.New(svc, cfg)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := srv.Stop(); err != nil {
				slog.Warn("failed to stop server", "err", err)
			}
		}()
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start clipboard service: %w", err)
	}
	defer func() {
		if err := svc.Stop(); err != nil {
			slog.Warn("error stopping service", "err", err)
		}
	}()

	slog.Info("clipboard history started", "db", dbPath, "pid", os.Getpid(), "version", Version)

	if useTUI {
		browser, err := tui.New(svc, nil)
		if err != nil {
			return err
		}
		svc.RegisterHandler(browser)
		return browser.Run(ctx)
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

func serverConfig(addr string) (server.Config, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid --addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid port in --addr %q: %w", addr, err)
	}
	return server.Config{Host: host, Port: port}, nil
}
