package clientcli

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"
)

// ErrMustNotBeZero is returned for a non-positive rate or burst.
var ErrMustNotBeZero = errors.New("must be greater than zero")

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	limiter *rate.Limiter
	next    http.RoundTripper
	logger  *slog.Logger
}

func newThrottle(rps float64, burst int, logger *slog.Logger, next http.RoundTripper) (*throttle, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%v] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		next:    next,
		logger:  logger,
	}, nil
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.limiter.Tokens() < 1 {
		t.logger.Debug("request throttled", "method", r.Method, "url", r.URL.Redacted())
	}
	if err := t.limiter.Wait(r.Context()); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	return t.next.RoundTrip(r)
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}
