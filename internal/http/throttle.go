package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var errMustBePositive = errors.New("must be greater than zero")

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls. It is shared by every
// task of a run, unlike the per-task start delay.
type throttle struct {
	limiter *rate.Limiter
	rps     float64
	burst   int
	next    http.RoundTripper
	logger  *slog.Logger
}

func newThrottle(rps float64, burst int, logger *slog.Logger, next http.RoundTripper) (*throttle, error) {
	if rps <= 0 {
		return nil, fmt.Errorf("rps[%v] %w", rps, errMustBePositive)
	}
	if burst < 1 {
		burst = 1
	}

	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		next:    next,
		logger:  logger,
	}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	if err := t.limiter.Wait(r.Context()); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}

	if waited := time.Since(start); waited > time.Millisecond {
		t.logger.Debug("throttle wait complete", "waited", waited.Round(time.Millisecond).String(), "rate", t.rps, "burst", t.burst, "host", r.URL.Host)
	}

	return t.next.RoundTrip(r)
}
