package checker

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// StaticChecker is the request-level backend: fetch the page, extract the
// dependency URLs, then probe each one.
type StaticChecker struct {
	Fetcher       PageFetcher
	Client        *http.Client
	RequestHeader string
	Runner        Runner
	Logger        *zap.SugaredLogger
	OnDiscovered  func(count int) // called once discovery settles, before probing
	OnResult      ResultFunc
}

// NewStaticChecker wires a fetcher and prober around one shared HTTP client.
func NewStaticChecker(client *http.Client, runner Runner, logger *zap.SugaredLogger) *StaticChecker {
	return &StaticChecker{
		Fetcher: &HTTPFetcher{Client: client},
		Client:  client,
		Runner:  runner,
		Logger:  logger,
	}
}

// Name returns the backend name.
func (s *StaticChecker) Name() string { return string(ModeStatic) }

// Observe runs discovery and probing. A fetch failure aborts before any probe
// and is returned as the error.
func (s *StaticChecker) Observe(ctx context.Context, target Target) (Observation, error) {
	obs := Observation{Mode: ModeStatic}
	log := s.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	fetcher := s.Fetcher
	if fetcher == nil {
		fetcher = &HTTPFetcher{Client: s.Client}
	}

	page, err := fetcher.Fetch(ctx, target.PageURL)
	if err != nil {
		log.Errorf("fetch failed url=%s err=%v", target.PageURL, err)
		return obs, err
	}

	base := page.FinalURL
	if base == nil {
		base, err = url.Parse(target.PageURL)
		if err != nil {
			return obs, fmt.Errorf("parse page url: %w", err)
		}
	}

	urls, err := ExtractURLs(bytes.NewReader(page.Body), base, target)
	if err != nil {
		msg := fmt.Sprintf("discovery failed, no dependency references evaluated: %v", err)
		log.Errorf("%s url=%s", msg, target.PageURL)
		obs.Warnings = append(obs.Warnings, msg)
		return obs, nil
	}
	log.Infof("discovered %d dependency url(s) on %s", len(urls), target.PageURL)
	if s.OnDiscovered != nil {
		s.OnDiscovered(len(urls))
	}

	prober := &Prober{
		Client:        s.Client,
		Origin:        target.Origin,
		RequestHeader: s.RequestHeader,
		Logger:        log,
	}
	obs.Outcomes = s.Runner.Run(ctx, urls, prober.Probe, s.OnResult)
	obs.RequestAttempted = len(obs.Outcomes) > 0
	return obs, nil
}
