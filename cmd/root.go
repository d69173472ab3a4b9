package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "CORSCHECK"

var cfgFile string
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:           "corscheck",
	Short:         "Verify that a cross-origin dependency grants CORS access to a site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		applyConfigDefaults(cmd)

		if cliConfig.Run.NoColor {
			color.NoColor = true
		}

		l, err := newLogger(cliConfig.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// initConfig loads the config file and enables CORSCHECK_* environment overrides.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".corscheck")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing default config is fine; an explicit one must load.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var verdictErr *VerdictError
		if errors.As(err, &verdictErr) {
			os.Exit(verdictErr.ExitCode())
		}
		fmt.Fprintln(os.Stderr, colorError("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.corscheck.yaml)")
	flags.StringVar(&cliConfig.Run.PageURL, "page-url", cliConfig.Run.PageURL, "page whose dependency references are verified")
	flags.StringVar(&cliConfig.Run.Origin, "origin", cliConfig.Run.Origin, "origin sent in the Origin header and expected in Access-Control-Allow-Origin")
	flags.StringVar(&cliConfig.Run.TargetHost, "target-host", cliConfig.Run.TargetHost, "host pattern identifying the dependency")
	flags.DurationVar(&cliConfig.Run.Timeout, "timeout", cliConfig.Run.Timeout, "timeout for each HTTP request")
	flags.StringVar(&cliConfig.Run.Format, "format", cliConfig.Run.Format, "report format: text or json")
	flags.BoolVar(&cliConfig.Run.NoColor, "no-color", false, "disable colorized output")
	flags.StringVar(&cliConfig.Log.Level, "log-level", cliConfig.Log.Level, "log level: debug, info, warn, error")
	flags.StringVar(&cliConfig.Log.File, "log-file", "", "also write logs to this file (rotated)")

	rootCmd.AddCommand(staticCmd)
	rootCmd.AddCommand(liveCmd)
	rootCmd.AddCommand(versionCmd)
}
