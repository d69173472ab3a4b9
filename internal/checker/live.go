package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	consts "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/constants"
	sharedErrors "github.com/pohxiang0219/Hiredly-Web-Crawler/internal/shared/errors"
)

// LiveObserver is the browser-level backend. It loads the page in a real
// browser and records what the browser itself did with dependency requests.
type LiveObserver struct {
	Launcher   Launcher
	Retry      RetryPolicy
	Quiescence time.Duration // observation window after a successful load
	Logger     *zap.SugaredLogger
}

// NewLiveObserver returns an observer with the default retry policy and
// quiescence window.
func NewLiveObserver(launcher Launcher, logger *zap.SugaredLogger) *LiveObserver {
	return &LiveObserver{
		Launcher:   launcher,
		Retry:      DefaultRetryPolicy(),
		Quiescence: consts.DefaultQuiescence,
		Logger:     logger,
	}
}

// Name returns the backend name.
func (o *LiveObserver) Name() string { return string(ModeLive) }

// Observe opens one session, navigates with retries and snapshots the traffic
// seen during the successful load. The session is closed on every path.
func (o *LiveObserver) Observe(ctx context.Context, target Target) (Observation, error) {
	empty := Observation{Mode: ModeLive}
	log := o.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if o.Launcher == nil {
		return empty, fmt.Errorf("%w: no launcher configured", sharedErrors.ErrBrowserUnavailable)
	}

	sess, err := o.Launcher.Launch(ctx)
	if err != nil {
		return empty, wrapBrowserErr(err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warnf("closing browser session: %v", cerr)
		}
	}()

	rec := newLiveRecorder(target)
	if err := sess.Subscribe(rec.handlers()); err != nil {
		return empty, wrapBrowserErr(err)
	}

	retry := o.Retry
	if retry.OnAttempt == nil {
		retry.OnAttempt = func(a PageLoadAttempt) {
			if a.Err != nil {
				log.Warnf("navigation attempt %d/%d %s after %s: %v", a.Number, a.MaxAttempts, a.Outcome, a.Duration.Round(time.Millisecond), a.Err)
				return
			}
			log.Infof("navigation attempt %d/%d succeeded in %s", a.Number, a.MaxAttempts, a.Duration.Round(time.Millisecond))
		}
	}

	err = retry.Do(ctx, func(attemptCtx context.Context, _ int) error {
		rec.reset()
		return sess.Navigate(attemptCtx, target.PageURL)
	})
	if err != nil {
		log.Errorf("page never loaded url=%s: %v", target.PageURL, err)
		return empty, err
	}

	sleep := retry.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	if err := sleep(ctx, o.Quiescence); err != nil {
		log.Warnf("quiescence window interrupted: %v", err)
	}

	obs := rec.snapshot()
	log.Infof("observed %d dependency response(s), cors_error=%v", len(obs.Outcomes), obs.CORSError)
	return obs, nil
}

func wrapBrowserErr(err error) error {
	if errors.Is(err, sharedErrors.ErrBrowserUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", sharedErrors.ErrBrowserUnavailable, err)
}
