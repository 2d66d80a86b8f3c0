package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"agora/internal/api"
	"agora/internal/debuglog"
	"agora/internal/refresh"
	"agora/internal/store"
	"agora/internal/worker"
)

var serveQuiet bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the aggregation service",
	Long:  "Starts the HTTP API and a background worker that refreshes every source on an interval.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		if !serveQuiet {
			showBanner()
		}

		st, err := store.Open(cfg)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer st.Close()

		refresher := refresh.New(st, cfg)
		hub := api.NewHub()
		srv := api.NewServer(st, refresher, hub, cfg.Server.StaticDir)

		httpServer := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		mgr := worker.NewManager(&worker.RefreshWorker{
			Refresher: refresher,
			Notifier:  hub,
			Interval:  cfg.Feed.RefreshInterval,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			debuglog.Infof("received signal: %s, shutting down", s)
			cancel()
		}()

		httpErrs := make(chan error, 1)
		go func() {
			debuglog.Infof("listening on %s", cfg.Server.Addr)
			fmt.Printf("Listening on %s\n", cfg.Server.Addr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				httpErrs <- err
			}
		}()

		workerDone := make(chan error, 1)
		go func() { workerDone <- mgr.Start(ctx) }()

		select {
		case err := <-httpErrs:
			cancel()
			<-workerDone
			return err
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			debuglog.Errorf("http shutdown: %v", err)
		}
		return <-workerDone
	},
}

func showBanner() {
	colors := []lipgloss.Color{
		lipgloss.Color("#FF6B6B"),
		lipgloss.Color("#FFA86B"),
		lipgloss.Color("#95E1D3"),
		lipgloss.Color("#4ECDC4"),
		lipgloss.Color("#FF6B6B"),
	}

	lines := []string{
		" ▄████▄   ▄████▄   ▄████▄  ██▄███   ▄████▄",
		"██    ██ ██       ██    ██ ██   ██ ██    ██",
		"██    ██ ██  ▀▀██ ██    ██ ██      ██    ██",
		" ▀████▀█  ▀████▀   ▀████▀  ██       ▀████▀",
		"",
		"    Feed Aggregation Service",
	}

	for i, line := range lines {
		if line == "" {
			fmt.Println()
			continue
		}
		style := lipgloss.NewStyle().Foreground(colors[i%len(colors)]).Bold(true)
		fmt.Println(style.Render(line))
	}
	fmt.Println()
}

func init() {
	serveCmd.Flags().BoolVar(&serveQuiet, "quiet", false, "skip startup banner")
	rootCmd.AddCommand(serveCmd)
}
