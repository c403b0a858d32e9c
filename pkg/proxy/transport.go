package proxy

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
)

type transportOptions struct {
	base        http.RoundTripper
	logger      *slog.Logger
	name        string
	waitMin     time.Duration
	waitMax     time.Duration
	timeout     time.Duration
	maxRetries  int
	tripCount   uint32
	maxRequests uint32
}

// TransportOption configures NewTransport.
type TransportOption func(*transportOptions)

// TransportBase sets the round tripper requests are finally sent through.
// Default: http.DefaultTransport.
func TransportBase(rt http.RoundTripper) TransportOption {
	return func(o *transportOptions) {
		o.base = rt
	}
}

// TransportLogger sets the logger for retries and circuit state changes.
func TransportLogger(l *slog.Logger) TransportOption {
	return func(o *transportOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// TransportName names the circuit breaker in logs.
func TransportName(name string) TransportOption {
	return func(o *transportOptions) {
		o.name = name
	}
}

// TransportRetry sets the retry budget and backoff bounds.
// Default: 2 retries, 100ms to 2s.
func TransportRetry(maxRetries int, waitMin, waitMax time.Duration) TransportOption {
	return func(o *transportOptions) {
		o.maxRetries = maxRetries
		o.waitMin = waitMin
		o.waitMax = waitMax
	}
}

// TransportCircuit sets how many consecutive failures open the circuit and
// how long it stays open.
// Default: 5 failures, 30s.
func TransportCircuit(tripCount uint32, timeout time.Duration) TransportOption {
	return func(o *transportOptions) {
		o.tripCount = tripCount
		o.timeout = timeout
	}
}

var errUpstreamStatus = errors.New("proxy: upstream unavailable")

// NewTransport returns a round tripper that retries idempotent requests with
// backoff and fails fast while the upstream is unhealthy.
//
// Only GET and HEAD requests reach the proxy, so retrying is always safe.
// Gateway errors (502, 503, 504) count against the circuit but are still
// passed through to the client.
func NewTransport(opts ...TransportOption) http.RoundTripper {
	o := &transportOptions{
		base:        http.DefaultTransport,
		logger:      slog.New(slog.DiscardHandler),
		name:        "proxy",
		waitMin:     100 * time.Millisecond,
		waitMax:     2 * time.Second,
		maxRetries:  2,
		tripCount:   5,
		timeout:     30 * time.Second,
		maxRequests: 1,
	}
	for _, opt := range opts {
		opt(o)
	}

	log := o.logger.With(slog.String("circuit", o.name))

	rc := &retryablehttp.Client{
		HTTPClient: &http.Client{
			Transport: o.base,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		Logger:       nil,
		RetryWaitMin: o.waitMin,
		RetryWaitMax: o.waitMax,
		RetryMax:     o.maxRetries,
		RequestLogHook: func(_ retryablehttp.Logger, req *http.Request, attempt int) {
			if attempt > 0 {
				log.DebugContext(req.Context(), "retrying upstream request",
					slog.String("url", req.URL.String()),
					slog.Int("attempt", attempt),
				)
			}
		},
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        o.name,
		MaxRequests: o.maxRequests,
		Timeout:     o.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= o.tripCount
		},
		OnStateChange: func(_ string, _, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				log.Error("circuit opened")
			case gobreaker.StateHalfOpen:
				log.Warn("circuit half open", slog.Uint64("max_requests", uint64(o.maxRequests)))
			case gobreaker.StateClosed:
				log.Info("circuit closed")
			}
		},
	})

	return &circuitRoundTripper{
		next: &retryablehttp.RoundTripper{Client: rc},
		cb:   cb,
	}
}

type circuitRoundTripper struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.RequestURI != "" {
		req = req.Clone(req.Context())
		req.RequestURI = ""
	}

	v, err := rt.cb.Execute(func() (any, error) {
		resp, err := rt.next.RoundTrip(req)
		if err != nil {
			return resp, err
		}
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resp, errUpstreamStatus
		}
		return resp, nil
	})

	resp, _ := v.(*http.Response)
	if errors.Is(err, errUpstreamStatus) {
		return resp, nil
	}
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	return resp, nil
}
