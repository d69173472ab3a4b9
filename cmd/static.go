package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

var showProgress bool

var staticCmd = &cobra.Command{
	Use:   "static",
	Short: "Fetch the page and probe every dependency URL with preflight requests",
	Long: `Fetch the page once, extract every URL that points at the dependency host
from markup attributes and inline scripts, and probe each one:

- OPTIONS with Origin, Access-Control-Request-Method and
  Access-Control-Request-Headers
- a single GET fallback when the preflight carries no
  Access-Control-Allow-Origin

A URL passes when Access-Control-Allow-Origin equals the origin or "*".
The run passes when every URL passes or the page references none.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(cliConfig.Run.Format); err != nil {
			return err
		}
		target, err := targetFromConfig()
		if err != nil {
			return err
		}
		backend, stop := newStaticBackend(cmd)
		defer stop()
		return runVerification(cmd, target, backend, checker.Aggregator{RequireContact: true})
	},
}

// newStaticBackend builds the prober from the runtime config. The returned
// func stops the progress line, if any.
func newStaticBackend(cmd *cobra.Command) (*checker.StaticChecker, func()) {
	cfg := cliConfig.Static
	timeout := cliConfig.Run.Timeout

	runner := checker.Runner{
		Concurrency: cfg.Concurrency,
		RateLimit:   cfg.RateLimit,
		// Preflight and fallback share one budget.
		Timeout: 2 * timeout,
	}
	backend := checker.NewStaticChecker(checker.NewHTTPClient(timeout), runner, currentLogger())
	backend.RequestHeader = cfg.RequestHeader

	if !showProgress || cliConfig.Run.Format != formatText {
		return backend, func() {}
	}
	progress := newProgressPrinter(cmd.ErrOrStderr(), 0, "static")
	backend.OnDiscovered = progress.SetTotal
	backend.OnResult = progress.Record
	progress.Start()
	return backend, progress.Stop
}

func init() {
	flags := staticCmd.Flags()
	flags.IntVar(&cliConfig.Static.Concurrency, "concurrency", cliConfig.Static.Concurrency, "maximum concurrent probes")
	flags.IntVar(&cliConfig.Static.RateLimit, "rate-limit", cliConfig.Static.RateLimit, "probes per second across all workers (0 = unlimited)")
	flags.StringVar(&cliConfig.Static.RequestHeader, "request-header", cliConfig.Static.RequestHeader, "header announced in Access-Control-Request-Headers")
	flags.BoolVar(&showProgress, "progress", false, "show live progress while probing")
}
