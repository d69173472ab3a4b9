package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the effective configuration and where it came from",
	Long: `Display corscheck configuration information including:
  - Configuration file in use
  - Effective run, static and live settings after flags, file and CORSCHECK_* env
  - Platform information`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		configFile := viper.ConfigFileUsed()
		configExists := "✓ (loaded)"
		if configFile == "" {
			configExists = "✗ (using defaults)"
			if home, err := os.UserHomeDir(); err == nil {
				configFile = home + "/.corscheck.yaml"
			}
		}

		run, static, live := cliConfig.Run, cliConfig.Static, cliConfig.Live
		devtools := live.DevToolsURL
		if devtools == "" {
			devtools = "(launch local Chrome)"
		}

		fmt.Fprintln(out, colorBold("corscheck Configuration"))
		fmt.Fprintln(out, "=======================")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Platform:             %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "Configuration File:   %s %s\n", configFile, configExists)
		fmt.Fprintf(out, "Environment Prefix:   %s_\n", envPrefix)
		fmt.Fprintln(out)
		fmt.Fprintln(out, colorInfo("Run:"))
		fmt.Fprintf(out, "  Page URL:           %s\n", run.PageURL)
		fmt.Fprintf(out, "  Origin:             %s\n", run.Origin)
		fmt.Fprintf(out, "  Target Host:        %s\n", run.TargetHost)
		fmt.Fprintf(out, "  Request Timeout:    %s\n", run.Timeout)
		fmt.Fprintf(out, "  Format:             %s\n", run.Format)
		fmt.Fprintln(out)
		fmt.Fprintln(out, colorInfo("Static:"))
		fmt.Fprintf(out, "  Concurrency:        %d\n", static.Concurrency)
		fmt.Fprintf(out, "  Rate Limit:         %d/s\n", static.RateLimit)
		fmt.Fprintf(out, "  Request Header:     %s\n", static.RequestHeader)
		fmt.Fprintln(out)
		fmt.Fprintln(out, colorInfo("Live:"))
		fmt.Fprintf(out, "  Browser:            %s\n", devtools)
		fmt.Fprintf(out, "  Headless:           %t\n", live.Headless)
		fmt.Fprintf(out, "  Attempts:           %d (delay %s, timeout %s)\n", live.MaxAttempts, live.RetryDelay, live.NavigationTimeout)
		fmt.Fprintf(out, "  Quiescence:         %s\n", live.Quiescence)
		fmt.Fprintf(out, "  Require Contact:    %t\n", live.RequireContact)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
