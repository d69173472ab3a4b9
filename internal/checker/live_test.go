package checker

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

const blockedMessage = "Access to fetch at 'https://cms.example.com/api/pages' from origin " +
	"'https://my.example.com' has been blocked by CORS policy: No 'Access-Control-Allow-Origin' header is present on the requested resource."

// fakeSession replays scripted events on every Navigate call.
type fakeSession struct {
	mu       sync.Mutex
	handlers *Handlers
	attempts int
	closed   int

	// navigate runs for each attempt; it may emit events through h.
	navigate func(ctx context.Context, attempt int, h Handlers) error
}

func (f *fakeSession) Subscribe(h Handlers) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = &h
	return nil
}

func (f *fakeSession) Navigate(ctx context.Context, _ string) error {
	f.mu.Lock()
	if f.handlers == nil {
		f.mu.Unlock()
		return sharedErrors.ErrNotSubscribed
	}
	f.attempts++
	attempt, h := f.attempts, *f.handlers
	f.mu.Unlock()

	if f.navigate == nil {
		return nil
	}
	return f.navigate(ctx, attempt, h)
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func liveTarget() Target {
	return Target{
		PageURL:     "https://my.example.com/about-us",
		Origin:      "https://my.example.com",
		HostPattern: "cms.example.com",
	}
}

// newTestObserver returns an observer around sess that never really sleeps.
func newTestObserver(sess Session) (*LiveObserver, *[]time.Duration) {
	var slept []time.Duration
	var mu sync.Mutex
	obs := NewLiveObserver(LauncherFunc(func(context.Context) (Session, error) { return sess, nil }), nil)
	obs.Retry.Sleep = func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		slept = append(slept, d)
		mu.Unlock()
		return ctx.Err()
	}
	return obs, &slept
}

func respond(h Handlers, id, url string, status int, acao string) {
	h.OnRequest(RequestEvent{RequestID: id, URL: url, Method: http.MethodGet})
	headers := http.Header{}
	if acao != "" {
		headers.Set("Access-Control-Allow-Origin", acao)
	}
	h.OnResponse(ResponseEvent{RequestID: id, URL: url, Status: status, Headers: headers})
}

func TestLiveObserver_Healthy(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, _ int, h Handlers) error {
		respond(h, "1", "https://cms.example.com/api/pages", 200, "https://my.example.com")
		respond(h, "2", "https://other.example.com/x.js", 500, "")
		h.OnConsole(ConsoleEvent{Level: "error", Text: "unrelated error"})
		return nil
	}}
	observer, slept := newTestObserver(sess)

	obs, err := observer.Observe(context.Background(), liveTarget())
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !obs.RequestAttempted || obs.CORSError {
		t.Fatalf("unexpected flags: %+v", obs)
	}
	if len(obs.Outcomes) != 1 {
		t.Fatalf("expected one dependency outcome, got %+v", obs.Outcomes)
	}
	o := obs.Outcomes[0]
	if o.HTTPStatus != 200 || o.AllowOrigin != "https://my.example.com" || !o.Permitted || o.Reason != ReasonObserved {
		t.Errorf("unexpected outcome: %+v", o)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Errorf("expected a single quiescence wait of 2s, got %v", *slept)
	}

	if v := Decide(obs); v.Overall != StatusPass || v.Reason != VerdictHealthy {
		t.Errorf("verdict = %s %s", v.Overall, v.Reason)
	}
}

func TestLiveObserver_BlockingMessage(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, _ int, h Handlers) error {
		h.OnRequest(RequestEvent{RequestID: "1", URL: "https://cms.example.com/api/pages"})
		respond(h, "2", "https://cms.example.com/img.png", 503, "")
		h.OnConsole(ConsoleEvent{Level: "error", Text: blockedMessage})
		h.OnConsole(ConsoleEvent{Level: "error", Text: "Access to fetch at 'https://else.example.net' has been blocked by CORS policy"})
		return nil
	}}
	observer, _ := newTestObserver(sess)

	obs, err := observer.Observe(context.Background(), liveTarget())
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !obs.CORSError || len(obs.BlockingMessages) != 1 {
		t.Fatalf("expected one blocking message, got %+v", obs.BlockingMessages)
	}
	if len(obs.Outcomes) != 2 {
		t.Fatalf("expected two outcomes, got %+v", obs.Outcomes)
	}
	api, img := obs.Outcomes[0], obs.Outcomes[1]
	if api.URL != "https://cms.example.com/api/pages" || !api.CORSError || api.Reason != ReasonBlocked {
		t.Errorf("unanswered blocked request: %+v", api)
	}
	if img.Reason != ReasonErrorStatus || img.CORSError {
		t.Errorf("error-status outcome: %+v", img)
	}

	// The blocking signal outranks the error status.
	if v := Decide(obs); v.Overall != StatusFail || v.Reason != VerdictBlockingSignal {
		t.Errorf("verdict = %s %s", v.Overall, v.Reason)
	}
}

func TestLiveObserver_NoResponseDetail(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, _ int, h Handlers) error {
		h.OnRequest(RequestEvent{RequestID: "9", URL: "https://cms.example.com/slow"})
		return nil
	}}
	observer, _ := newTestObserver(sess)

	obs, err := observer.Observe(context.Background(), liveTarget())
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if len(obs.Outcomes) != 1 || obs.Outcomes[0].Reason != ReasonNoResponse {
		t.Fatalf("expected a no-response detail, got %+v", obs.Outcomes)
	}
	if v := Decide(obs); v.Overall != StatusPass {
		t.Errorf("attempted request without errors should pass, got %s %s", v.Overall, v.Reason)
	}
}

func TestLiveObserver_RetryKeepsOnlySuccessfulLoad(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, attempt int, h Handlers) error {
		if attempt < 3 {
			h.OnConsole(ConsoleEvent{Text: blockedMessage})
			return errors.New("net::ERR_CONNECTION_RESET")
		}
		respond(h, "1", "https://cms.example.com/ok.json", 200, "*")
		return nil
	}}
	observer, slept := newTestObserver(sess)

	obs, err := observer.Observe(context.Background(), liveTarget())
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if sess.attempts != 3 {
		t.Fatalf("attempts = %d, want 3", sess.attempts)
	}
	if obs.CORSError || len(obs.Outcomes) != 1 {
		t.Fatalf("failed attempts leaked into the result: %+v", obs)
	}
	want := []time.Duration{3 * time.Second, 3 * time.Second, 2 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("sleeps = %v, want %v", *slept, want)
	}
	for i := range want {
		if (*slept)[i] != want[i] {
			t.Errorf("sleep %d = %s, want %s", i, (*slept)[i], want[i])
		}
	}
}

func TestLiveObserver_Exhausted(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, _ int, h Handlers) error {
		respond(h, "1", "https://cms.example.com/partial", 200, "*")
		return context.DeadlineExceeded
	}}
	observer, _ := newTestObserver(sess)

	v := Evaluate(context.Background(), observer, liveTarget())
	if v.Overall != StatusFail || v.Reason != VerdictPageLoadFailed {
		t.Fatalf("verdict = %s %s", v.Overall, v.Reason)
	}
	if len(v.Details) != 0 {
		t.Fatalf("exhausted run must have no details, got %+v", v.Details)
	}
	if sess.attempts != 3 {
		t.Errorf("attempts = %d, want 3", sess.attempts)
	}
	if sess.closed != 1 {
		t.Errorf("session closed %d times, want 1", sess.closed)
	}
}

func TestLiveObserver_LaunchFailure(t *testing.T) {
	observer := NewLiveObserver(LauncherFunc(func(context.Context) (Session, error) {
		return nil, errors.New("chrome not found")
	}), nil)

	_, err := observer.Observe(context.Background(), liveTarget())
	if !errors.Is(err, sharedErrors.ErrBrowserUnavailable) {
		t.Fatalf("expected ErrBrowserUnavailable, got %v", err)
	}
	if v := Evaluate(context.Background(), observer, liveTarget()); v.Reason != VerdictBrowserUnavailable {
		t.Errorf("verdict reason = %s", v.Reason)
	}
}

func TestLiveObserver_NeverContacted(t *testing.T) {
	sess := &fakeSession{navigate: func(_ context.Context, _ int, h Handlers) error {
		respond(h, "1", "https://my.example.com/app.js", 200, "")
		return nil
	}}
	observer, _ := newTestObserver(sess)

	if v := Evaluate(context.Background(), observer, liveTarget()); v.Reason != VerdictNeverContacted || v.Passed() {
		t.Fatalf("verdict = %s %s", v.Overall, v.Reason)
	}

	lenient := Aggregator{RequireContact: false}
	if v := lenient.Evaluate(context.Background(), observer, liveTarget()); v.Reason != VerdictNoReferences || !v.Passed() {
		t.Fatalf("lenient verdict = %s %s", v.Overall, v.Reason)
	}
}

func TestLiveRecorder_ConcurrentEvents(t *testing.T) {
	rec := newLiveRecorder(liveTarget())
	h := rec.handlers()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			respond(h, id+string(rune('0'+i/26)), "https://cms.example.com/r", 200, "*")
			h.OnConsole(ConsoleEvent{Text: "noise"})
		}(i)
	}
	wg.Wait()

	obs := rec.snapshot()
	if len(obs.Outcomes) != 50 {
		t.Fatalf("expected 50 outcomes, got %d", len(obs.Outcomes))
	}

	rec.reset()
	if obs := rec.snapshot(); obs.RequestAttempted || len(obs.Outcomes) != 0 {
		t.Fatalf("reset left state behind: %+v", obs)
	}
}

func TestLiveRecorder_RedirectOffTargetHost(t *testing.T) {
	rec := newLiveRecorder(liveTarget())
	h := rec.handlers()

	h.OnRequest(RequestEvent{RequestID: "7", URL: "https://cms.example.com/img/logo.png", Method: http.MethodGet})
	h.OnRequest(RequestEvent{RequestID: "7", URL: "https://cdn.example.net/logo.png", Method: http.MethodGet})
	h.OnResponse(ResponseEvent{RequestID: "7", URL: "https://cdn.example.net/logo.png", Status: 200, Headers: http.Header{}})

	h.OnRequest(RequestEvent{RequestID: "8", URL: "https://cms.example.com/api/pages", Method: http.MethodGet})
	h.OnResponse(ResponseEvent{RequestID: "8", URL: "https://static.example.net/pages.json", Status: 200, Headers: http.Header{}})

	obs := rec.snapshot()
	if !obs.RequestAttempted {
		t.Fatal("expected the dependency request to count as attempted")
	}
	if len(obs.Outcomes) != 0 {
		t.Fatalf("redirected requests left details behind: %+v", obs.Outcomes)
	}
}
