package checker

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Mode identifies which backend produced an observation.
type Mode string

const (
	ModeStatic Mode = "static"
	ModeLive   Mode = "live"
)

// Reason is a stable, machine-readable explanation attached to outcomes and verdicts.
type Reason string

// Per-URL reasons.
const (
	ReasonPermitted      Reason = "permitted"
	ReasonOriginMismatch Reason = "origin-mismatch"
	ReasonHeaderMissing  Reason = "header-missing"
	ReasonProbeError     Reason = "probe-error"
	ReasonObserved       Reason = "observed"
	ReasonBlocked        Reason = "blocked"
	ReasonErrorStatus    Reason = "error-status"
	ReasonNoResponse     Reason = "no-response"
)

// ProbeOutcome is the CORS result for one dependency URL.
type ProbeOutcome struct {
	URL          string `json:"url"`
	HTTPStatus   int    `json:"http_status,omitempty"`
	AllowOrigin  string `json:"access_control_allow_origin,omitempty"`
	AllowHeaders string `json:"access_control_allow_headers,omitempty"`
	CORSError    bool   `json:"cors_error"`
	Permitted    bool   `json:"permitted"`
	Method       string `json:"method,omitempty"`
	Reason       Reason `json:"reason"`
	Error        string `json:"error,omitempty"`
}

// Observation is everything a backend learned about the dependency during one run.
type Observation struct {
	Mode             Mode           `json:"mode"`
	Outcomes         []ProbeOutcome `json:"outcomes"`
	RequestAttempted bool           `json:"request_attempted"`
	CORSError        bool           `json:"cors_error"`
	BlockingMessages []string       `json:"blocking_messages,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
}

// Clone returns a copy that shares no slices with o.
func (o Observation) Clone() Observation {
	out := o
	out.Outcomes = append([]ProbeOutcome(nil), o.Outcomes...)
	out.BlockingMessages = append([]string(nil), o.BlockingMessages...)
	out.Warnings = append([]string(nil), o.Warnings...)
	return out
}

// Backend produces an observation of the dependency for a target page.
// The static prober and the live observer are the two implementations.
type Backend interface {
	// Observe discovers and evaluates dependency traffic for target
	Observe(ctx context.Context, target Target) (Observation, error)

	// Name returns the name of this backend (e.g., "static", "live")
	Name() string
}

// ProbeFunc evaluates a single dependency URL.
type ProbeFunc func(ctx context.Context, rawURL string) ProbeOutcome

// ResultFunc is a callback invoked after every probe, e.g. for progress output.
type ResultFunc func(outcome ProbeOutcome, duration time.Duration)

// Runner orchestrates probes with concurrency and rate limiting
type Runner struct {
	Concurrency int           // Maximum number of concurrent probes
	RateLimit   int           // Probes per second (global), 0 = unlimited
	Timeout     time.Duration // Timeout for each probe (both requests)
}

// Run probes every URL using a worker pool and returns outcomes sorted by URL.
func (r *Runner) Run(ctx context.Context, urls []string, probe ProbeFunc, onResult ResultFunc) []ProbeOutcome {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var limiter *rate.Limiter
	if r.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RateLimit), r.RateLimit)
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	mu := sync.Mutex{}
	outcomes := make([]ProbeOutcome, 0, len(urls))

	for _, u := range urls {
		wg.Add(1)
		go func(target string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()

			var outcome ProbeOutcome
			var waitErr error
			if limiter != nil {
				waitErr = limiter.Wait(ctx)
			}
			if waitErr != nil {
				// Cancelled while queued: record it without sending anything.
				outcome = probeError(target, "", waitErr)
			} else {
				probeCtx := ctx
				if r.Timeout > 0 {
					var cancel context.CancelFunc
					probeCtx, cancel = context.WithTimeout(ctx, r.Timeout)
					defer cancel()
				}
				outcome = probe(probeCtx, target)
			}

			if onResult != nil {
				onResult(outcome, time.Since(start))
			}

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(u)
	}

	wg.Wait()
	SortOutcomes(outcomes)
	return outcomes
}

// SortOutcomes orders outcomes by URL; equal URLs keep their relative order.
func SortOutcomes(outcomes []ProbeOutcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].URL < outcomes[j].URL
	})
}
