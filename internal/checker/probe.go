package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// Prober issues a preflight for one dependency URL and falls back to a plain
// GET when the preflight carries no Access-Control-Allow-Origin field.
type Prober struct {
	Client        *http.Client
	Origin        string
	RequestHeader string // announced in Access-Control-Request-Headers
	Logger        *zap.SugaredLogger
}

// Probe evaluates rawURL. It never returns an error: transport failures become
// a denial with ReasonProbeError.
func (p *Prober) Probe(ctx context.Context, rawURL string) ProbeOutcome {
	log := p.logger()

	resp, err := p.do(ctx, http.MethodOptions, rawURL)
	if err != nil {
		log.Warnf("preflight failed url=%s err=%v", rawURL, err)
		return probeError(rawURL, http.MethodOptions, err)
	}

	method := http.MethodOptions
	headers := ReadCORSHeaders(resp.Header)
	status := resp.StatusCode

	if !headers.HasAllowOrigin {
		log.Debugf("preflight without allow-origin, retrying with GET url=%s status=%d", rawURL, status)
		resp, err = p.do(ctx, http.MethodGet, rawURL)
		if err != nil {
			log.Warnf("fallback GET failed url=%s err=%v", rawURL, err)
			return probeError(rawURL, http.MethodGet, err)
		}
		method = http.MethodGet
		headers = ReadCORSHeaders(resp.Header)
		status = resp.StatusCode
	}

	outcome := ProbeOutcome{
		URL:          rawURL,
		HTTPStatus:   status,
		AllowOrigin:  headers.AllowOrigin,
		AllowHeaders: headers.AllowHeaders,
		Method:       method,
		Permitted:    AllowsOrigin(headers.AllowOrigin, p.Origin),
	}
	if outcome.Permitted {
		outcome.Reason = ReasonPermitted
	} else {
		outcome.Reason = denialReason(headers)
		log.Infof("cors denied url=%s reason=%s allow_origin=%q", rawURL, outcome.Reason, headers.AllowOrigin)
	}
	return outcome
}

// do sends one request and releases the body; only headers and status matter.
func (p *Prober) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerOrigin, p.Origin)
	if method == http.MethodOptions {
		req.Header.Set(headerRequestMethod, http.MethodGet)
		req.Header.Set(headerRequestHeaders, p.requestHeader())
	}

	client := p.Client
	if client == nil {
		client = NewHTTPClient(0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return resp, nil
}

func (p *Prober) requestHeader() string {
	if p.RequestHeader == "" {
		return consts.DefaultProbeHeader
	}
	return p.RequestHeader
}

func (p *Prober) logger() *zap.SugaredLogger {
	if p.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return p.Logger
}

func probeError(rawURL, method string, err error) ProbeOutcome {
	return ProbeOutcome{
		URL:    rawURL,
		Method: method,
		Reason: ReasonProbeError,
		Error:  fmt.Errorf("%w: %v", sharedErrors.ErrProbeFailed, err).Error(),
	}
}
