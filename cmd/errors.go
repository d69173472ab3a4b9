package cmd

import (
	"fmt"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

// VerdictError signals a completed run that failed. The report has already
// been printed; only the exit status remains.
type VerdictError struct {
	Verdict checker.Verdict
}

func (e *VerdictError) Error() string {
	return fmt.Sprintf("verification failed: %s", e.Verdict.Reason)
}

// ExitCode is the process exit status for the verdict.
func (e *VerdictError) ExitCode() int {
	if e.Verdict.Passed() {
		return 0
	}
	return 1
}

// ConfigError reports an unusable flag or config value.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
