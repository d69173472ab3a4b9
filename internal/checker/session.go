package checker

import (
	"context"
	"net/http"
)

// RequestEvent is emitted when the page issues a network request.
type RequestEvent struct {
	RequestID string
	URL       string
	Method    string
}

// ResponseEvent is emitted when response headers for a request arrive.
type ResponseEvent struct {
	RequestID string
	URL       string
	Status    int
	Headers   http.Header
}

// ConsoleEvent is a console or log diagnostic raised by the page.
type ConsoleEvent struct {
	Level string
	Text  string
	URL   string
}

// Handlers are the callbacks a Session delivers events to. Callbacks may be
// invoked concurrently from different goroutines.
type Handlers struct {
	OnRequest  func(RequestEvent)
	OnResponse func(ResponseEvent)
	OnConsole  func(ConsoleEvent)
}

// Session is one browser page. Subscribe must be called before Navigate;
// Close releases the browser and is safe to call more than once.
type Session interface {
	Subscribe(h Handlers) error
	Navigate(ctx context.Context, url string) error
	Close() error
}

// Launcher opens a Session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f(ctx).
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) { return f(ctx) }
