package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/browser"
	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Load the page in a real browser and watch dependency traffic",
	Long: `Load the page in Chrome (launched locally, or attached through
--devtools-url) and record every request to the dependency host, its response
headers and status, and any console message reporting a CORS block.

Navigation is retried with a fixed delay. After the page loads, observation
stays open for the quiescence window so late requests are captured.

The run fails when the dependency was never contacted, when a CORS block was
reported, or when any dependency response has status 400 or above.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(cliConfig.Run.Format); err != nil {
			return err
		}
		target, err := targetFromConfig()
		if err != nil {
			return err
		}
		agg := checker.Aggregator{RequireContact: cliConfig.Live.RequireContact}
		return runVerification(cmd, target, newLiveBackend(), agg)
	},
}

func newLiveBackend() *checker.LiveObserver {
	cfg := cliConfig.Live
	launcher := browser.NewLauncher(browser.Options{
		DevToolsURL: cfg.DevToolsURL,
		Headless:    cfg.Headless,
		NoSandbox:   cfg.NoSandbox,
		ExecPath:    cfg.ChromePath,
		Logger:      currentLogger(),
	})

	observer := checker.NewLiveObserver(launcher, currentLogger())
	observer.Retry.MaxAttempts = cfg.MaxAttempts
	observer.Retry.Delay = cfg.RetryDelay
	observer.Retry.AttemptTimeout = cfg.NavigationTimeout
	observer.Quiescence = cfg.Quiescence
	return observer
}

func init() {
	flags := liveCmd.Flags()
	flags.IntVar(&cliConfig.Live.MaxAttempts, "max-attempts", cliConfig.Live.MaxAttempts, "navigation attempts before giving up")
	flags.DurationVar(&cliConfig.Live.RetryDelay, "retry-delay", cliConfig.Live.RetryDelay, "fixed delay between navigation attempts")
	flags.DurationVar(&cliConfig.Live.NavigationTimeout, "navigation-timeout", cliConfig.Live.NavigationTimeout, "timeout for a single navigation attempt")
	flags.DurationVar(&cliConfig.Live.Quiescence, "quiescence", cliConfig.Live.Quiescence, "how long to keep observing after the page loads")
	flags.StringVar(&cliConfig.Live.DevToolsURL, "devtools-url", "", "attach to a running browser's DevTools endpoint instead of launching Chrome")
	flags.StringVar(&cliConfig.Live.ChromePath, "chrome-path", "", "Chrome executable (default: auto-detect)")
	flags.BoolVar(&cliConfig.Live.Headless, "headless", cliConfig.Live.Headless, "run Chrome headless")
	flags.BoolVar(&cliConfig.Live.NoSandbox, "no-sandbox", false, "disable the Chrome sandbox (containers running as root)")
	flags.BoolVar(&cliConfig.Live.RequireContact, "require-contact", cliConfig.Live.RequireContact, "fail when the page never requests the dependency")
}
