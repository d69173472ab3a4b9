package checker

import (
	"context"
	"errors"
	"fmt"

	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// Status is the overall outcome of a run.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Verdict-level reasons.
const (
	VerdictNoReferences       Reason = "no-dependency-references"
	VerdictAllPermitted       Reason = "all-permitted"
	VerdictCORSDenied         Reason = "cors-denied"
	VerdictPageFetchFailed    Reason = "page-fetch-failed"
	VerdictPageLoadFailed     Reason = "page-load-failed"
	VerdictNeverContacted     Reason = "dependency-never-contacted"
	VerdictBlockingSignal     Reason = "blocking-signal-observed"
	VerdictErrorStatus        Reason = "dependency-error-status"
	VerdictHealthy            Reason = "dependency-healthy"
	VerdictBrowserUnavailable Reason = "browser-unavailable"
)

// Verdict is the final decision of a run.
type Verdict struct {
	Overall  Status         `json:"overall"`
	Reason   Reason         `json:"reason"`
	Message  string         `json:"message"`
	Mode     Mode           `json:"mode"`
	Details  []ProbeOutcome `json:"details"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Passed reports whether the run passed.
func (v Verdict) Passed() bool { return v.Overall == StatusPass }

// Aggregator turns observations into verdicts.
type Aggregator struct {
	// RequireContact fails live runs in which the dependency was never
	// requested. When false such runs pass as having no references.
	RequireContact bool
}

// Decide applies the default aggregator.
func Decide(obs Observation) Verdict {
	return Aggregator{RequireContact: true}.Decide(obs)
}

// Evaluate runs backend against target with the default aggregator.
func Evaluate(ctx context.Context, backend Backend, target Target) Verdict {
	return Aggregator{RequireContact: true}.Evaluate(ctx, backend, target)
}

// Evaluate observes target through backend and decides. Backend errors become
// FAIL verdicts; it never returns without a verdict.
func (a Aggregator) Evaluate(ctx context.Context, backend Backend, target Target) Verdict {
	obs, err := backend.Observe(ctx, target)
	if obs.Mode == "" {
		obs.Mode = Mode(backend.Name())
	}
	if err != nil {
		return failure(obs, err)
	}
	return a.Decide(obs)
}

// Decide is a pure function of obs.
func (a Aggregator) Decide(obs Observation) Verdict {
	obs = obs.Clone()
	if obs.Outcomes == nil {
		obs.Outcomes = []ProbeOutcome{}
	}
	SortOutcomes(obs.Outcomes)

	v := Verdict{
		Mode:     obs.Mode,
		Details:  obs.Outcomes,
		Warnings: obs.Warnings,
	}

	if obs.Mode == ModeLive {
		a.decideLive(obs, &v)
	} else {
		decideStatic(obs, &v)
	}
	return v
}

func decideStatic(obs Observation, v *Verdict) {
	total := len(obs.Outcomes)
	if total == 0 {
		v.Overall, v.Reason = StatusPass, VerdictNoReferences
		v.Message = "no dependency references found on the page"
		return
	}

	denied := 0
	for _, o := range obs.Outcomes {
		if !o.Permitted {
			denied++
		}
	}
	if denied == 0 {
		v.Overall, v.Reason = StatusPass, VerdictAllPermitted
		v.Message = fmt.Sprintf("all %d dependency url(s) permit the origin", total)
		return
	}
	v.Overall, v.Reason = StatusFail, VerdictCORSDenied
	v.Message = fmt.Sprintf("%d of %d dependency url(s) deny the origin", denied, total)
}

func (a Aggregator) decideLive(obs Observation, v *Verdict) {
	switch {
	case !obs.RequestAttempted && a.RequireContact:
		v.Overall, v.Reason = StatusFail, VerdictNeverContacted
		v.Message = "the page made no requests to the dependency"
	case !obs.RequestAttempted:
		v.Overall, v.Reason = StatusPass, VerdictNoReferences
		v.Message = "the page made no requests to the dependency"
	case obs.CORSError:
		v.Overall, v.Reason = StatusFail, VerdictBlockingSignal
		v.Message = fmt.Sprintf("browser reported %d CORS blocking message(s)", len(obs.BlockingMessages))
	case countErrorStatus(obs.Outcomes) > 0:
		v.Overall, v.Reason = StatusFail, VerdictErrorStatus
		v.Message = fmt.Sprintf("%d dependency response(s) returned an error status", countErrorStatus(obs.Outcomes))
	default:
		v.Overall, v.Reason = StatusPass, VerdictHealthy
		v.Message = "all dependency requests succeeded without CORS errors"
	}
}

func countErrorStatus(outcomes []ProbeOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.HTTPStatus >= 400 {
			n++
		}
	}
	return n
}

func failure(obs Observation, err error) Verdict {
	v := Verdict{
		Overall:  StatusFail,
		Mode:     obs.Mode,
		Message:  err.Error(),
		Details:  []ProbeOutcome{},
		Warnings: append([]string(nil), obs.Warnings...),
	}
	switch {
	case errors.Is(err, sharedErrors.ErrBrowserUnavailable):
		v.Reason = VerdictBrowserUnavailable
	case errors.Is(err, sharedErrors.ErrNavigationExhausted):
		v.Reason = VerdictPageLoadFailed
	case errors.Is(err, sharedErrors.ErrPageFetchFailed):
		v.Reason = VerdictPageFetchFailed
	case obs.Mode == ModeLive:
		v.Reason = VerdictPageLoadFailed
	default:
		v.Reason = VerdictPageFetchFailed
	}
	return v
}
