// Command archbot runs the architecture-record bot: it turns slash
// commands on tracking issues into draft records landed through
// merged pull requests, and periodically flags review discussions
// that have stalled.
package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/archbot/archbot/internal/config"
	"github.com/archbot/archbot/internal/github"
	"github.com/archbot/archbot/internal/githubauth"
)

// Version is stamped by the release build.
var Version = "dev"

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:           "archbot",
	Short:         "Automation bot for architecture decision records",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the archbot version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("archbot", Version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd, serveCmd, scanCmd, checkConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verboseFlag {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newTokenSource picks the token source from the settings; a token
// file wins over a fixed token because it can be rotated underneath a
// running process.
func newTokenSource(s *config.Settings) (githubauth.TokenSource, error) {
	if s.TokenFile != "" {
		return githubauth.NewFileTokenSource(s.TokenFile)
	}
	return githubauth.Static(s.Token), nil
}

// newClient builds a hosting client for the configured repository.
func newClient(s *config.Settings, tokens githubauth.TokenSource) (*github.Client, error) {
	owner, name, err := s.SplitRepository()
	if err != nil {
		return nil, err
	}
	return github.NewClient(tokens, owner, name), nil
}
