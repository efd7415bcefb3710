package config

import (
	"context"
	"fmt"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/archbot/archbot/internal/github"
)

// RepoConfigPath is where the bot config lives inside the target
// repository.
const RepoConfigPath = ".github/arch-bot.yml"

// DefaultStalledThresholdDays is how old a review's last human
// activity must be before it counts as stalled.
const DefaultStalledThresholdDays = 40

// ArchBotConfig is the bot configuration stored in the target
// repository. It is fetched per run and treated as an immutable
// snapshot.
type ArchBotConfig struct {
	// BotUserLogin is the login of the bot itself, filtered out of
	// review activity.
	BotUserLogin string `yaml:"bot_user_login"`

	// StalledDiscussionPollTimeMins is the wait between stalled-review
	// scans.
	StalledDiscussionPollTimeMins int `yaml:"stalled_discussion_poll_time_mins"`

	// RecordCreationApprovers are the logins allowed to run
	// /create and /supersede.
	RecordCreationApprovers []string `yaml:"record_creation_approvers"`

	// PublishedURL is the base URL of the published site.
	PublishedURL string `yaml:"published_url"`

	// StalledThresholdDays overrides DefaultStalledThresholdDays when
	// positive.
	StalledThresholdDays int `yaml:"stalled_threshold_days"`
}

// Validate checks the fetched config before any flow uses it.
func (c *ArchBotConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BotUserLogin, validation.Required),
		validation.Field(&c.PublishedURL, validation.Required),
		validation.Field(&c.StalledDiscussionPollTimeMins, validation.Min(0)),
		validation.Field(&c.StalledThresholdDays, validation.Min(0)),
	)
}

// PollInterval returns the stalled-discussion poll interval.
func (c *ArchBotConfig) PollInterval() time.Duration {
	return time.Duration(c.StalledDiscussionPollTimeMins) * time.Minute
}

// StaleAfter returns the staleness threshold as a duration.
func (c *ArchBotConfig) StaleAfter() time.Duration {
	days := c.StalledThresholdDays
	if days <= 0 {
		days = DefaultStalledThresholdDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// ParseArchBotConfig decodes and validates the config file content.
func ParseArchBotConfig(data []byte) (*ArchBotConfig, error) {
	var cfg ArchBotConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", RepoConfigPath, err)
	}
	sort.Strings(cfg.RecordCreationApprovers)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", RepoConfigPath, err)
	}
	return &cfg, nil
}

// RepoFileReader is the subset of the hosting client the config
// loader needs. *github.Client satisfies it.
type RepoFileReader interface {
	GetRepository(ctx context.Context) (*github.Repository, error)
	GetFileContent(ctx context.Context, path, ref string) (string, bool, error)
}

// FetchArchBotConfig loads the bot config from the target repository.
// A missing config file is a fatal misconfiguration, not a silent
// no-op.
func FetchArchBotConfig(ctx context.Context, host RepoFileReader) (*ArchBotConfig, error) {
	repo, err := host.GetRepository(ctx)
	if err != nil {
		return nil, err
	}
	content, ok, err := host.GetFileContent(ctx, RepoConfigPath, repo.DefaultBranch)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("repository is missing config file %s", RepoConfigPath)
	}
	return ParseArchBotConfig([]byte(content))
}
