package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/archbot/archbot/internal/bot"
	"github.com/archbot/archbot/internal/config"
	"github.com/archbot/archbot/internal/github"
	"github.com/archbot/archbot/internal/githubauth"
	"github.com/archbot/archbot/internal/server"
	"github.com/archbot/archbot/internal/stale"
)

// defaultPollInterval applies when the repo config does not set one.
const defaultPollInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server and the stalled-discussion scanner",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	log := newLogger()

	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	tokens, err := newTokenSource(settings)
	if err != nil {
		return err
	}
	client, err := newClient(settings, tokens)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The repo config is a startup requirement: a repository without
	// one is misconfigured, not silently idle.
	cfg, err := config.FetchArchBotConfig(ctx, client)
	if err != nil {
		return err
	}
	log.Info("loaded repo config",
		"bot", cfg.BotUserLogin,
		"approvers", len(cfg.RecordCreationApprovers))

	if fileTokens, ok := tokens.(*githubauth.FileTokenSource); ok {
		go func() {
			if err := fileTokens.Watch(ctx, log); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("token watcher stopped", "error", err)
			}
		}()
	}

	workflow := &bot.DraftRecordWorkflow{
		Host:    client,
		Cfg:     cfg,
		Enabled: settings.EnableCreateDraft,
		Log:     log,
	}
	srv := &server.Server{
		Workflow: workflow,
		Secret:   settings.WebhookSecret,
		Log:      log,
	}

	httpSrv := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", settings.ListenAddr)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go runStaleLoop(ctx, settings, tokens, cfg, log)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// runStaleLoop drives the stalled-discussion scan on the configured
// interval. Each tick builds a fresh client handle so an expired
// token never outlives one run; the last-run timestamp is the only
// state carried between ticks.
func runStaleLoop(ctx context.Context, settings *config.Settings, tokens githubauth.TokenSource, cfg *config.ArchBotConfig, log *slog.Logger) {
	if !settings.EnableStalledDiscussion {
		log.Debug("stalled-discussion flow disabled")
		return
	}

	interval := cfg.PollInterval()
	if interval <= 0 {
		interval = defaultPollInterval
	}

	detector := &stale.Detector{
		BotLogin:   cfg.BotUserLogin,
		StaleAfter: cfg.StaleAfter(),
		Log:        log,
	}

	owner, name, _ := settings.SplitRepository()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastRun time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client := github.NewClient(tokens, owner, name)
			next, err := detector.Run(ctx, client, time.Now(), lastRun)
			if err != nil {
				// Operational failure: log and try again next tick.
				log.Error("stalled-discussion scan failed", "error", err)
				continue
			}
			lastRun = next
		}
	}
}
