package checker

import (
	"strings"
	"sync"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
)

// liveRecorder accumulates dependency traffic for one navigation.
type liveRecorder struct {
	target Target

	mu        sync.Mutex
	attempted bool
	corsError bool
	messages  []string
	pending   map[string]string // request id -> url, until answered
	outcomes  []ProbeOutcome
}

func newLiveRecorder(target Target) *liveRecorder {
	r := &liveRecorder{target: target}
	r.reset()
	return r
}

func (r *liveRecorder) handlers() Handlers {
	return Handlers{
		OnRequest:  r.onRequest,
		OnResponse: r.onResponse,
		OnConsole:  r.onConsole,
	}
}

// reset discards everything seen so far, e.g. before a retried navigation.
func (r *liveRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempted = false
	r.corsError = false
	r.messages = nil
	r.pending = make(map[string]string)
	r.outcomes = nil
}

func (r *liveRecorder) onRequest(e RequestEvent) {
	if !r.target.MatchesText(e.URL) {
		// A redirect reuses the request id; once it leaves the dependency
		// host the original request is no longer waiting on it.
		r.forget(e.RequestID)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempted = true
	key := e.RequestID
	if key == "" {
		key = e.URL
	}
	r.pending[key] = e.URL
}

func (r *liveRecorder) onResponse(e ResponseEvent) {
	if !r.target.MatchesText(e.URL) {
		r.forget(e.RequestID)
		return
	}
	h := ReadCORSHeaders(e.Headers)
	outcome := ProbeOutcome{
		URL:          e.URL,
		HTTPStatus:   e.Status,
		AllowOrigin:  h.AllowOrigin,
		AllowHeaders: h.AllowHeaders,
		Method:       "browser",
		Permitted:    AllowsOrigin(h.AllowOrigin, r.target.Origin),
		Reason:       ReasonObserved,
	}
	if e.Status >= 400 {
		outcome.Reason = ReasonErrorStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// A response implies the request was attempted even if the request event
	// was missed.
	r.attempted = true
	key := e.RequestID
	if key == "" {
		key = e.URL
	}
	delete(r.pending, key)
	r.outcomes = append(r.outcomes, outcome)
}

// forget drops a pending request by id.
func (r *liveRecorder) forget(requestID string) {
	if requestID == "" {
		return
	}
	r.mu.Lock()
	delete(r.pending, requestID)
	r.mu.Unlock()
}

func (r *liveRecorder) onConsole(e ConsoleEvent) {
	if !strings.Contains(e.Text, consts.CORSBlockedPhrase) {
		return
	}
	if !r.target.MatchesText(e.Text) && !r.target.MatchesText(e.URL) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corsError = true
	r.messages = append(r.messages, e.Text)
}

// snapshot returns the observation accumulated so far.
func (r *liveRecorder) snapshot() Observation {
	r.mu.Lock()
	defer r.mu.Unlock()

	obs := Observation{
		Mode:             ModeLive,
		RequestAttempted: r.attempted,
		CORSError:        r.corsError,
		BlockingMessages: append([]string(nil), r.messages...),
		Outcomes:         make([]ProbeOutcome, 0, len(r.outcomes)+len(r.pending)),
	}
	for _, o := range r.outcomes {
		if r.corsError && mentionedIn(o.URL, r.messages) {
			o.CORSError = true
			o.Reason = ReasonBlocked
			o.Permitted = false
		}
		obs.Outcomes = append(obs.Outcomes, o)
	}
	for _, u := range r.pending {
		o := ProbeOutcome{URL: u, Method: "browser", Reason: ReasonNoResponse}
		if r.corsError && mentionedIn(u, r.messages) {
			o.CORSError = true
			o.Reason = ReasonBlocked
		}
		obs.Outcomes = append(obs.Outcomes, o)
	}
	SortOutcomes(obs.Outcomes)
	return obs
}

func mentionedIn(rawURL string, messages []string) bool {
	for _, m := range messages {
		if strings.Contains(m, rawURL) {
			return true
		}
	}
	return false
}
