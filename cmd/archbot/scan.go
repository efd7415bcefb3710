package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/archbot/archbot/internal/config"
	"github.com/archbot/archbot/internal/stale"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one stalled-discussion scan and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		cfg, err := config.FetchArchBotConfig(cmd.Context(), client)
		if err != nil {
			return err
		}

		detector := &stale.Detector{
			BotLogin:   cfg.BotUserLogin,
			StaleAfter: cfg.StaleAfter(),
			Log:        log,
		}
		_, err = detector.Run(cmd.Context(), client, time.Now(), time.Time{})
		return err
	},
}

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Fetch and validate the repository's bot config",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		cfg, err := config.FetchArchBotConfig(cmd.Context(), client)
		if err != nil {
			return err
		}
		fmt.Printf("bot user:   %s\n", cfg.BotUserLogin)
		fmt.Printf("approvers:  %v\n", cfg.RecordCreationApprovers)
		fmt.Printf("published:  %s\n", cfg.PublishedURL)
		fmt.Printf("poll every: %s\n", cfg.PollInterval())
		fmt.Printf("stale after: %s\n", cfg.StaleAfter())
		return nil
	},
}
