package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

func currentLogger() *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

func targetFromConfig() (checker.Target, error) {
	target, err := checker.NewTarget(cliConfig.Run.PageURL, cliConfig.Run.Origin, cliConfig.Run.TargetHost)
	if err != nil {
		return checker.Target{}, &ConfigError{Field: "target", Err: err}
	}
	return target, nil
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return &ConfigError{Field: "format", Err: fmt.Errorf("%w: unsupported format %q (want text or json)", sharedErrors.ErrValidation, format)}
}

// runVerification evaluates target through backend, prints the report and
// returns a VerdictError when the run failed.
func runVerification(cmd *cobra.Command, target checker.Target, backend checker.Backend, agg checker.Aggregator) error {
	log := currentLogger()

	ctx, cancel := context.WithCancel(contextOrBackground(cmd.Context()))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%s Received %s, finishing with the results so far...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Infof("mode=%s page_url=%s origin=%s target_host=%s", backend.Name(), target.PageURL, target.Origin, target.HostPattern)

	started := time.Now()
	verdict := agg.Evaluate(ctx, backend, target)
	report := newRunReport(target, started, verdict)

	log.Infow("run complete",
		"run_id", report.RunID,
		"overall", verdict.Overall,
		"reason", verdict.Reason,
		"details", len(verdict.Details),
		"duration", report.CompletedAt.Sub(report.StartedAt).String(),
	)

	if err := printReport(cmd.OutOrStdout(), report, cliConfig.Run.Format); err != nil {
		return err
	}
	if !verdict.Passed() {
		return &VerdictError{Verdict: verdict}
	}
	return nil
}

// contextOrBackground guards commands invoked without ExecuteContext.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
