// Package config loads the engine's startup configuration: the
// Reporter's agent credentials and the top-level reporting toggles.
// Parsing a pre-compiled line tree, by contrast, takes no
// configuration at all -- see story.DecodeTree.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/jayvdb/platform-engine/reporting"
)

// Config is the engine's startup configuration document. Every field
// maps onto one of Reporter.init's configuration keys.
type Config struct {
	Slack struct {
		Webhook string `mapstructure:"webhook"`
	} `mapstructure:"slack"`

	Sentry struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"sentry"`

	CleverTap struct {
		Account string `mapstructure:"account"`
		Pass    string `mapstructure:"pass"`
	} `mapstructure:"clevertap"`

	UserReporting           bool `mapstructure:"user_reporting"`
	UserReportingStacktrace bool `mapstructure:"user_reporting_stacktrace"`
}

// Load reads configuration from path (if non-empty and present) and
// from environment variables prefixed ENGINE_ (e.g. ENGINE_SENTRY_DSN
// maps to sentry.dsn), with environment taking precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("engine")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("user_reporting", false)
	v.SetDefault("user_reporting_stacktrace", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}
	return cfg, nil
}

// ReporterConfig adapts Config into the shape reporting.New expects.
func (c Config) ReporterConfig() reporting.Config {
	return reporting.Config{
		SlackWebhook:            c.Slack.Webhook,
		SentryDSN:               c.Sentry.DSN,
		CleverTapAccount:        c.CleverTap.Account,
		CleverTapPass:           c.CleverTap.Pass,
		UserReporting:           c.UserReporting,
		UserReportingStacktrace: c.UserReportingStacktrace,
	}
}
