// Package config holds the bot's two configuration layers: process
// settings read from the environment at startup, and the bot config
// file that lives in the target repository itself.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the process-level knobs: where to listen, which
// repository to operate on, how to authenticate, and which flows are
// enabled. Both flows default to off.
type Settings struct {
	ListenAddr              string
	Repository              string // "owner/name"
	Token                   string // personal access / installation token
	TokenFile               string // file-backed token, preferred when set
	WebhookSecret           string
	EnableCreateDraft       bool
	EnableStalledDiscussion bool
}

// LoadSettings reads settings from ARCHBOT_* environment variables.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("archbot")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen-addr", ":8080")
	v.SetDefault("enable.create-draft", false)
	v.SetDefault("enable.stalled-discussion", false)

	s := &Settings{
		ListenAddr:              v.GetString("listen-addr"),
		Repository:              v.GetString("repository"),
		Token:                   v.GetString("token"),
		TokenFile:               v.GetString("token-file"),
		WebhookSecret:           v.GetString("webhook-secret"),
		EnableCreateDraft:       v.GetBool("enable.create-draft"),
		EnableStalledDiscussion: v.GetBool("enable.stalled-discussion"),
	}

	if s.Repository == "" {
		return nil, fmt.Errorf("ARCHBOT_REPOSITORY is required (owner/name)")
	}
	if _, _, err := s.SplitRepository(); err != nil {
		return nil, err
	}
	if s.Token == "" && s.TokenFile == "" {
		return nil, fmt.Errorf("one of ARCHBOT_TOKEN or ARCHBOT_TOKEN_FILE is required")
	}
	return s, nil
}

// SplitRepository splits the "owner/name" repository path.
func (s *Settings) SplitRepository() (owner, name string, err error) {
	owner, name, ok := strings.Cut(s.Repository, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("repository %q is not of the form owner/name", s.Repository)
	}
	return owner, name, nil
}
