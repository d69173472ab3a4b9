// Package browser adapts real browsers to the checker.Session contract.
package browser

import (
	"time"

	"go.uber.org/zap"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
)

const closeTimeout = 5 * time.Second

// Options selects and configures the browser backend.
type Options struct {
	// DevToolsURL attaches to a running browser instead of launching Chrome.
	DevToolsURL string
	Headless    bool
	NoSandbox   bool
	ExecPath    string
	UserAgent   string
	Logger      *zap.SugaredLogger
}

// NewLauncher returns a DevTools launcher when an endpoint is configured and a
// local Chrome launcher otherwise.
func NewLauncher(opts Options) checker.Launcher {
	if opts.DevToolsURL != "" {
		return &DevToolsLauncher{Endpoint: opts.DevToolsURL, Logger: opts.Logger}
	}
	return &ChromeLauncher{
		Headless:  opts.Headless,
		NoSandbox: opts.NoSandbox,
		ExecPath:  opts.ExecPath,
		UserAgent: opts.UserAgent,
		Logger:    opts.Logger,
	}
}
