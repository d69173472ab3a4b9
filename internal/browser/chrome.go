package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// ChromeLauncher starts a local Chrome through chromedp.
type ChromeLauncher struct {
	Headless  bool
	NoSandbox bool
	ExecPath  string
	UserAgent string
	Logger    *zap.SugaredLogger
}

// Launch allocates the browser and opens one tab.
func (l *ChromeLauncher) Launch(ctx context.Context) (checker.Session, error) {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", l.Headless))
	if l.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if l.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.ExecPath))
	}
	if l.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(l.logger().Debugf))

	// The first Run starts the browser; its context controls the browser's lifetime.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: start chrome: %w", sharedErrors.ErrBrowserUnavailable, err)
	}

	return &chromeSession{
		ctx:    tabCtx,
		cancel: func() { tabCancel(); allocCancel() },
		log:    l.logger(),
	}, nil
}

func (l *ChromeLauncher) logger() *zap.SugaredLogger {
	if l.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return l.Logger
}

type chromeSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.SugaredLogger

	mu         sync.Mutex
	subscribed bool
	closed     bool
}

func (s *chromeSession) Subscribe(h checker.Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sharedErrors.ErrSessionClosed
	}

	chromedp.ListenTarget(s.ctx, func(ev any) { dispatchChromeEvent(h, ev) })

	if err := chromedp.Run(s.ctx, network.Enable(), cdplog.Enable(), runtime.Enable()); err != nil {
		return fmt.Errorf("enable domains: %w", err)
	}
	s.subscribed = true
	return nil
}

// dispatchChromeEvent forwards the target events the observer cares about.
func dispatchChromeEvent(h checker.Handlers, ev any) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if h.OnRequest != nil && e.Request != nil {
			h.OnRequest(checker.RequestEvent{
				RequestID: string(e.RequestID),
				URL:       e.Request.URL,
				Method:    e.Request.Method,
			})
		}
	case *network.EventResponseReceived:
		if h.OnResponse != nil && e.Response != nil {
			h.OnResponse(checker.ResponseEvent{
				RequestID: string(e.RequestID),
				URL:       e.Response.URL,
				Status:    int(e.Response.Status),
				Headers:   headersFromMap(e.Response.Headers),
			})
		}
	case *cdplog.EventEntryAdded:
		if h.OnConsole != nil && e.Entry != nil {
			h.OnConsole(checker.ConsoleEvent{
				Level: string(e.Entry.Level),
				Text:  e.Entry.Text,
				URL:   e.Entry.URL,
			})
		}
	case *runtime.EventConsoleAPICalled:
		if h.OnConsole != nil {
			values := make([][]byte, 0, len(e.Args))
			descs := make([]string, 0, len(e.Args))
			for _, arg := range e.Args {
				if arg == nil {
					continue
				}
				values = append(values, []byte(arg.Value))
				descs = append(descs, arg.Description)
			}
			h.OnConsole(checker.ConsoleEvent{
				Level: string(e.Type),
				Text:  consoleArgText(values, descs),
			})
		}
	}
}

// Navigate loads url and waits for the load event or ctx.
func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	subscribed, closed := s.subscribed, s.closed
	s.mu.Unlock()
	if closed {
		return sharedErrors.ErrSessionClosed
	}
	if !subscribed {
		return sharedErrors.ErrNotSubscribed
	}

	// Derive from the tab context so chromedp finds the target, but honor the
	// caller's deadline and cancellation.
	navCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (s *chromeSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := chromedp.Cancel(s.ctx)
	s.cancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
