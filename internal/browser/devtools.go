package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	cdplog "github.com/mafredri/cdp/protocol/log"
	"github.com/mafredri/cdp/protocol/network"
	"github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"
	"go.uber.org/zap"

	"github.com/pohxiang0219/Hiredly-Web-Crawler/internal/checker"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// DevToolsLauncher attaches to an already running browser through its
// DevTools HTTP endpoint (e.g. http://127.0.0.1:9222) and opens a new tab.
type DevToolsLauncher struct {
	Endpoint string
	Logger   *zap.SugaredLogger
}

// Launch creates a tab and dials its websocket.
func (l *DevToolsLauncher) Launch(ctx context.Context) (checker.Session, error) {
	log := l.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	dt := devtool.New(l.Endpoint)
	tab, err := dt.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create tab at %s: %w", sharedErrors.ErrBrowserUnavailable, l.Endpoint, err)
	}

	conn, err := rpcc.DialContext(ctx, tab.WebSocketDebuggerURL)
	if err != nil {
		_ = dt.Close(context.Background(), tab)
		return nil, fmt.Errorf("%w: dial %s: %w", sharedErrors.ErrBrowserUnavailable, tab.WebSocketDebuggerURL, err)
	}

	sessCtx, cancel := context.WithCancel(context.Background())
	log.Debugf("attached to devtools tab id=%s", tab.ID)
	return &devtoolsSession{
		ctx:    sessCtx,
		cancel: cancel,
		dt:     dt,
		tab:    tab,
		conn:   conn,
		client: cdp.NewClient(conn),
		log:    log,
	}, nil
}

type devtoolsSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	dt     *devtool.DevTools
	tab    *devtool.Target
	conn   *rpcc.Conn
	client *cdp.Client
	log    *zap.SugaredLogger

	mu         sync.Mutex
	subscribed bool
	closed     bool
	wg         sync.WaitGroup
}

func (s *devtoolsSession) Subscribe(h checker.Handlers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sharedErrors.ErrSessionClosed
	}

	c := s.client
	if err := c.Network.Enable(s.ctx, network.NewEnableArgs()); err != nil {
		return fmt.Errorf("enable network: %w", err)
	}
	if err := c.Page.Enable(s.ctx); err != nil {
		return fmt.Errorf("enable page: %w", err)
	}
	if err := c.Log.Enable(s.ctx); err != nil {
		return fmt.Errorf("enable log: %w", err)
	}
	if err := c.Runtime.Enable(s.ctx); err != nil {
		return fmt.Errorf("enable runtime: %w", err)
	}

	requests, err := c.Network.RequestWillBeSent(s.ctx)
	if err != nil {
		return err
	}
	responses, err := c.Network.ResponseReceived(s.ctx)
	if err != nil {
		return err
	}
	entries, err := c.Log.EntryAdded(s.ctx)
	if err != nil {
		return err
	}
	console, err := c.Runtime.ConsoleAPICalled(s.ctx)
	if err != nil {
		return err
	}

	s.wg.Add(4)
	go func() {
		defer s.wg.Done()
		defer requests.Close()
		for {
			ev, err := requests.Recv()
			if err != nil {
				return
			}
			if h.OnRequest != nil {
				h.OnRequest(requestFromDevTools(ev))
			}
		}
	}()
	go func() {
		defer s.wg.Done()
		defer responses.Close()
		for {
			ev, err := responses.Recv()
			if err != nil {
				return
			}
			if h.OnResponse != nil {
				h.OnResponse(responseFromDevTools(ev))
			}
		}
	}()
	go func() {
		defer s.wg.Done()
		defer entries.Close()
		for {
			ev, err := entries.Recv()
			if err != nil {
				return
			}
			if h.OnConsole != nil {
				h.OnConsole(logEntryFromDevTools(ev))
			}
		}
	}()
	go func() {
		defer s.wg.Done()
		defer console.Close()
		for {
			ev, err := console.Recv()
			if err != nil {
				return
			}
			if h.OnConsole != nil {
				h.OnConsole(consoleCallFromDevTools(ev))
			}
		}
	}()

	s.subscribed = true
	return nil
}

func requestFromDevTools(ev *network.RequestWillBeSentReply) checker.RequestEvent {
	return checker.RequestEvent{
		RequestID: string(ev.RequestID),
		URL:       ev.Request.URL,
		Method:    ev.Request.Method,
	}
}

func responseFromDevTools(ev *network.ResponseReceivedReply) checker.ResponseEvent {
	return checker.ResponseEvent{
		RequestID: string(ev.RequestID),
		URL:       ev.Response.URL,
		Status:    ev.Response.Status,
		Headers:   headersFromJSON(ev.Response.Headers),
	}
}

func logEntryFromDevTools(ev *cdplog.EntryAddedReply) checker.ConsoleEvent {
	e := checker.ConsoleEvent{Level: ev.Entry.Level, Text: ev.Entry.Text}
	if ev.Entry.URL != nil {
		e.URL = *ev.Entry.URL
	}
	return e
}

func consoleCallFromDevTools(ev *runtime.ConsoleAPICalledReply) checker.ConsoleEvent {
	values := make([][]byte, 0, len(ev.Args))
	descs := make([]string, 0, len(ev.Args))
	for _, arg := range ev.Args {
		values = append(values, arg.Value)
		desc := ""
		if arg.Description != nil {
			desc = *arg.Description
		}
		descs = append(descs, desc)
	}
	return checker.ConsoleEvent{Level: ev.Type, Text: consoleArgText(values, descs)}
}

// Navigate loads url and waits for the page load event or ctx.
func (s *devtoolsSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	subscribed, closed := s.subscribed, s.closed
	s.mu.Unlock()
	if closed {
		return sharedErrors.ErrSessionClosed
	}
	if !subscribed {
		return sharedErrors.ErrNotSubscribed
	}

	loaded, err := s.client.Page.LoadEventFired(ctx)
	if err != nil {
		return err
	}
	defer loaded.Close()

	reply, err := s.client.Page.Navigate(ctx, page.NewNavigateArgs(url))
	if err != nil {
		return err
	}
	if reply.ErrorText != nil && *reply.ErrorText != "" {
		return errors.New(*reply.ErrorText)
	}

	if _, err := loaded.Recv(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (s *devtoolsSession) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	connErr := s.conn.Close()
	s.wg.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	tabErr := s.dt.Close(closeCtx, s.tab)
	return errors.Join(connErr, tabErr)
}
