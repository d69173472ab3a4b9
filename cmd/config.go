package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
)

const (
	defaultConcurrency = 4
	defaultRateLimit   = 10
	defaultLogLevel    = "info"
	formatText         = "text"
	formatJSON         = "json"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Run    RunConfig
	Log    LogConfig
	Static StaticConfig
	Live   LiveConfig
}

// RunConfig identifies what is verified and how the result is printed.
type RunConfig struct {
	PageURL    string
	Origin     string
	TargetHost string
	Timeout    time.Duration
	Format     string
	NoColor    bool
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
	File  string
}

// StaticConfig groups request-level probing options.
type StaticConfig struct {
	Concurrency   int
	RateLimit     int
	RequestHeader string
}

// LiveConfig groups browser-level observation options.
type LiveConfig struct {
	MaxAttempts       int
	RetryDelay        time.Duration
	NavigationTimeout time.Duration
	Quiescence        time.Duration
	DevToolsURL       string
	ChromePath        string
	Headless          bool
	NoSandbox         bool
	RequireContact    bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Run: RunConfig{
			PageURL:    consts.DefaultPageURL,
			Origin:     consts.DefaultOrigin,
			TargetHost: consts.DefaultTargetHost,
			Timeout:    consts.DefaultRequestTimeout,
			Format:     formatText,
		},
		Log: LogConfig{
			Level: defaultLogLevel,
		},
		Static: StaticConfig{
			Concurrency:   defaultConcurrency,
			RateLimit:     defaultRateLimit,
			RequestHeader: consts.DefaultProbeHeader,
		},
		Live: LiveConfig{
			MaxAttempts:       consts.DefaultNavigationAttempts,
			RetryDelay:        consts.DefaultRetryDelay,
			NavigationTimeout: consts.DefaultNavigationTimeout,
			Quiescence:        consts.DefaultQuiescence,
			Headless:          true,
			RequireContact:    true,
		},
	}
}

// applyConfigDefaults merges config file and environment values into the
// runtime config when the user did not explicitly set the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	flags := cmd.Flags()

	applyStringDefault(flags, "page-url", "page_url", func(v string) { cliConfig.Run.PageURL = v })
	applyStringDefault(flags, "origin", "origin", func(v string) { cliConfig.Run.Origin = v })
	applyStringDefault(flags, "target-host", "target_host", func(v string) { cliConfig.Run.TargetHost = v })
	applyDurationDefault(flags, "timeout", "timeout", func(v time.Duration) { cliConfig.Run.Timeout = v })
	applyStringDefault(flags, "format", "format", func(v string) { cliConfig.Run.Format = v })
	if viper.IsSet("no_color") {
		applyBoolDefault(flags, "no-color", viper.GetBool("no_color"), func(v bool) { cliConfig.Run.NoColor = v })
	}
	applyStringDefault(flags, "log-level", "log.level", func(v string) { cliConfig.Log.Level = v })
	applyStringDefault(flags, "log-file", "log.file", func(v string) { cliConfig.Log.File = v })

	if viper.IsSet("static.concurrency") {
		applyIntDefault(flags, "concurrency", viper.GetInt("static.concurrency"), func(v int) { cliConfig.Static.Concurrency = v })
	}
	if viper.IsSet("static.rate_limit") {
		applyIntDefault(flags, "rate-limit", viper.GetInt("static.rate_limit"), func(v int) { cliConfig.Static.RateLimit = v })
	}
	applyStringDefault(flags, "request-header", "static.request_header", func(v string) { cliConfig.Static.RequestHeader = v })

	if viper.IsSet("live.max_attempts") {
		applyIntDefault(flags, "max-attempts", viper.GetInt("live.max_attempts"), func(v int) { cliConfig.Live.MaxAttempts = v })
	}
	applyDurationDefault(flags, "retry-delay", "live.retry_delay", func(v time.Duration) { cliConfig.Live.RetryDelay = v })
	applyDurationDefault(flags, "navigation-timeout", "live.navigation_timeout", func(v time.Duration) { cliConfig.Live.NavigationTimeout = v })
	applyDurationDefault(flags, "quiescence", "live.quiescence", func(v time.Duration) { cliConfig.Live.Quiescence = v })
	applyStringDefault(flags, "devtools-url", "live.devtools_url", func(v string) { cliConfig.Live.DevToolsURL = v })
	applyStringDefault(flags, "chrome-path", "live.chrome_path", func(v string) { cliConfig.Live.ChromePath = v })
	if viper.IsSet("live.headless") {
		applyBoolDefault(flags, "headless", viper.GetBool("live.headless"), func(v bool) { cliConfig.Live.Headless = v })
	}
	if viper.IsSet("live.no_sandbox") {
		applyBoolDefault(flags, "no-sandbox", viper.GetBool("live.no_sandbox"), func(v bool) { cliConfig.Live.NoSandbox = v })
	}
	if viper.IsSet("live.require_contact") {
		applyBoolDefault(flags, "require-contact", viper.GetBool("live.require_contact"), func(v bool) { cliConfig.Live.RequireContact = v })
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyStringDefault(flags *pflag.FlagSet, name, key string, setter func(string)) {
	if flags == nil || setter == nil || !viper.IsSet(key) {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	if v := viper.GetString(key); v != "" {
		setter(v)
	}
}

func applyDurationDefault(flags *pflag.FlagSet, name, key string, setter func(time.Duration)) {
	if flags == nil || setter == nil || !viper.IsSet(key) {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	if v := viper.GetDuration(key); v > 0 {
		setter(v)
	}
}
