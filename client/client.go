// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package client builds HTTP clients for pushing game state snapshots
// to downstream consumers, e.g. relaying payloads from a LAN machine
// to a remote collector.
//
// The game client itself retries failed sends forever, so anything
// re-publishing snapshots over HTTP should be just as tolerant:
// clients built here can retry with backoff and trip a circuit
// breaker instead of hammering a dead collector.
package client

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type circuitOptions struct {
	name         string
	logger       *zap.Logger
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	tripCount    uint32
	isSuccessful func(error) bool
	statusCodes  []int
}

// CircuitOption configures the circuit breaker transport.
type CircuitOption func(*circuitOptions)

// CircuitName names the circuit breaker. The name is used for the
// logger which reports state changes.
func CircuitName(name string) CircuitOption {
	return func(co *circuitOptions) {
		co.name = name
	}
}

// CircuitLogger configures the logger used for reporting circuit
// state changes.
func CircuitLogger(logger *zap.Logger) CircuitOption {
	return func(co *circuitOptions) {
		co.logger = logger
	}
}

// CircuitMaxRequests is the maximum number of requests allowed through
// while the circuit is half-open. Zero allows a single request.
func CircuitMaxRequests(maxRequests uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.maxRequests = maxRequests
	}
}

// CircuitInterval is the cyclic period of the closed state after which
// the breaker clears its internal counts. Zero never clears them while
// closed.
func CircuitInterval(interval time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.interval = interval
	}
}

// CircuitTimeout is how long the circuit stays open before moving to
// half-open. Zero means 60 seconds.
func CircuitTimeout(timeout time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.timeout = timeout
	}
}

// CircuitTripCount is the number of consecutive failures required to
// trip the circuit.
func CircuitTripCount(n uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.tripCount = n
	}
}

var errStatusCode = errors.New("status code error")

// CircuitErrorOnStatusCode registers an HTTP response status code the
// circuit breaker counts as a failure.
//
// Default: 400, 401, 403, 500.
func CircuitErrorOnStatusCode(n int) CircuitOption {
	return func(co *circuitOptions) {
		co.statusCodes = append(co.statusCodes, n)
	}
}

// NotConnError reports whether err is unrelated to establishing a
// network connection.
func NotConnError(err error) bool {
	switch errors.Unwrap(err).(type) {
	case *net.AddrError, *net.DNSError, *net.OpError:
		return false
	default:
		return true
	}
}

// NotStatusCodeError reports whether err is unrelated to a registered
// failure status code.
func NotStatusCodeError(err error) bool {
	return err != errStatusCode
}

func composeCircuitErrorCheckers(fs ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, f := range fs {
			if !f(err) {
				return false
			}
		}
		return true
	}
}

// CountCircuitErrorIf overrides how the breaker decides whether a
// request outcome was successful.
func CountCircuitErrorIf(f func(error) bool) CircuitOption {
	return func(co *circuitOptions) {
		co.isSuccessful = f
	}
}

// RoundTripperOption wraps an http.RoundTripper with extra behaviour.
type RoundTripperOption func(http.RoundTripper) http.RoundTripper

// Instrument wraps the transport with otel tracing for outgoing
// requests.
func Instrument() RoundTripperOption {
	return func(rt http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(rt)
	}
}

// CircuitBreaker wraps the transport with a circuit breaker.
func CircuitBreaker(opts ...CircuitOption) RoundTripperOption {
	return func(rt http.RoundTripper) http.RoundTripper {
		co := &circuitOptions{
			logger:      zap.NewNop(),
			tripCount:   5,
			timeout:     60 * time.Second,
			maxRequests: 1,
			isSuccessful: composeCircuitErrorCheckers(
				NotStatusCodeError,
				NotConnError,
			),
		}
		for _, opt := range opts {
			opt(co)
		}

		if len(co.statusCodes) == 0 {
			co.statusCodes = append(
				co.statusCodes,
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusInternalServerError,
			)
		}
		codes := make(map[int]struct{}, len(co.statusCodes))
		for _, code := range co.statusCodes {
			codes[code] = struct{}{}
		}

		log := co.logger.Named(co.name)

		return &circuitRoundTripper{
			RoundTripper: rt,
			cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        co.name,
				MaxRequests: co.maxRequests,
				Interval:    co.interval,
				Timeout:     co.timeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= co.tripCount
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					switch to {
					case gobreaker.StateOpen:
						log.Error("circuit has been opened")
					case gobreaker.StateHalfOpen:
						log.Warn("circuit is half open and letting some requests through", zap.Uint32("max_requests_allowed_through", co.maxRequests))
					case gobreaker.StateClosed:
						log.Info("circuit has been closed")
					}
				},
				IsSuccessful: co.isSuccessful,
			}),
			onStatusCode: func(n int) error {
				if _, ok := codes[n]; !ok {
					return nil
				}
				return errStatusCode
			},
		}
	}
}

// RoundTripperWith applies the given options to rt in order.
func RoundTripperWith(rt http.RoundTripper, opts ...RoundTripperOption) http.RoundTripper {
	for _, opt := range opts {
		rt = opt(rt)
	}
	return rt
}

type retryOptions struct {
	logger     *zap.Logger
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

// RetryOption configures request retry behaviour.
type RetryOption func(*retryOptions)

// MinWaitDuration is the minimum wait between retries.
func MinWaitDuration(min time.Duration) RetryOption {
	return func(ro *retryOptions) {
		ro.waitMin = min
	}
}

// MaxWaitDuration is the maximum wait between retries.
func MaxWaitDuration(max time.Duration) RetryOption {
	return func(ro *retryOptions) {
		ro.waitMax = max
	}
}

// MaxAttempts is the maximum number of retries per request.
func MaxAttempts(maxAttempts int) RetryOption {
	return func(ro *retryOptions) {
		ro.maxRetries = maxAttempts
	}
}

// RetryAttemptLogger configures the logger used for reporting retry
// attempts.
func RetryAttemptLogger(logger *zap.Logger) RetryOption {
	return func(ro *retryOptions) {
		ro.logger = logger
	}
}

// RetryRequests adds retry with backoff to the client.
func RetryRequests(opts ...RetryOption) Option {
	return func(co *clientOptions) {
		ro := &retryOptions{
			logger:     zap.NewNop(),
			waitMin:    100 * time.Millisecond,
			waitMax:    5 * time.Second,
			maxRetries: 2,
		}
		for _, opt := range opts {
			opt(ro)
		}
		co.retryOptions = ro
	}
}

type clientOptions struct {
	timeout      time.Duration
	transport    http.RoundTripper
	retryOptions *retryOptions
}

// Option configures the client returned by [New].
type Option func(*clientOptions)

// Timeout bounds each request, including retries.
func Timeout(timeout time.Duration) Option {
	return func(co *clientOptions) {
		co.timeout = timeout
	}
}

// WithTransport overrides the underlying transport. Combine with
// [RoundTripperWith] to layer circuit breaking and instrumentation.
func WithTransport(transport http.RoundTripper) Option {
	return func(co *clientOptions) {
		co.transport = transport
	}
}

// New returns an http.Client built from the given options.
func New(opts ...Option) *http.Client {
	co := &clientOptions{
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(co)
	}
	c := &http.Client{
		Timeout:   co.timeout,
		Transport: co.transport,
	}
	if co.retryOptions == nil {
		return c
	}

	log := co.retryOptions.logger
	rc := retryablehttp.Client{
		HTTPClient:   c,
		Logger:       nil,
		RetryWaitMin: co.retryOptions.waitMin,
		RetryWaitMax: co.retryOptions.waitMax,
		RetryMax:     co.retryOptions.maxRetries,
		RequestLogHook: func(l retryablehttp.Logger, req *http.Request, i int) {
			log.Info("sending http request", zap.String("url", req.URL.String()), zap.Int("request_attempt_count", i))
		},
		ResponseLogHook: func(l retryablehttp.Logger, resp *http.Response) {
			log.Info("received http response", zap.String("url", resp.Request.URL.String()), zap.Int("http_status_code", resp.StatusCode))
		},
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	return rc.StandardClient()
}

type circuitRoundTripper struct {
	http.RoundTripper
	cb           *gobreaker.CircuitBreaker
	onStatusCode func(int) error
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := rt.cb.Execute(func() (interface{}, error) {
		resp, err := rt.RoundTripper.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		err = rt.onStatusCode(resp.StatusCode)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}
