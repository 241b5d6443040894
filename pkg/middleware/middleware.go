/*
Package middleware provides net/http admission middleware backed by a
leakgate rate limiter service.

It wraps an existing http.Handler, extracts a bucket key from each request,
and lets the request through only when the limiter admits it. Denied
requests receive 429 with a Retry-After hint; store failures under the
default fail-closed policy receive 503, never a silent admit.
*/
package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/vnykmshr/leakgate/pkg/limiter"
	"github.com/vnykmshr/leakgate/pkg/store"
)

// ErrNoKey indicates the request carried no bucket key. The default handler
// answers 401, matching the contract that unidentified callers are not
// admitted anonymously.
var ErrNoKey = errors.New("no bucket key in request")

// Admitter is the admission surface the middleware needs; both
// *limiter.Service and *limiter.MetricsService satisfy it.
type Admitter interface {
	Admit(ctx context.Context, key string) (limiter.Result, error)
}

// KeyFunc extracts the bucket key from a request.
type KeyFunc func(r *http.Request) (string, error)

// BearerKey extracts the key from the Bearer header. It is the default.
func BearerKey(r *http.Request) (string, error) {
	token := r.Header.Get("Bearer")
	if token == "" {
		return "", ErrNoKey
	}
	return token, nil
}

// Option customizes the middleware.
type Option func(*config)

type config struct {
	keyFunc  KeyFunc
	onDenied func(w http.ResponseWriter, r *http.Request, res limiter.Result)
	onError  func(w http.ResponseWriter, r *http.Request, err error)
}

// WithKeyFunc overrides how the bucket key is extracted.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *config) { c.keyFunc = fn }
}

// WithDeniedHandler overrides the response written on denial.
func WithDeniedHandler(fn func(http.ResponseWriter, *http.Request, limiter.Result)) Option {
	return func(c *config) { c.onDenied = fn }
}

// WithErrorHandler overrides the response written on limiter errors.
func WithErrorHandler(fn func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *config) { c.onError = fn }
}

// Handler creates middleware gating requests through the given admitter.
//
//	svc, _ := limiter.New(limiter.Config{...})
//	mux := http.NewServeMux()
//	mux.HandleFunc("/", myHandler)
//	http.ListenAndServe(":8080", middleware.Handler(svc)(mux))
func Handler(admitter Admitter, options ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		keyFunc:  BearerKey,
		onDenied: defaultDenied,
		onError:  defaultError,
	}
	for _, opt := range options {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := cfg.keyFunc(r)
			if err != nil {
				cfg.onError(w, r, err)
				return
			}

			res, err := admitter.Admit(r.Context(), key)
			if err != nil && !res.Allowed {
				cfg.onError(w, r, err)
				return
			}

			w.Header().Set("X-RateLimit-Remaining",
				strconv.FormatFloat(res.Remaining, 'f', -1, 64))

			if !res.Allowed {
				cfg.onDenied(w, r, res)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// defaultDenied answers 429 with a Retry-After estimate.
func defaultDenied(w http.ResponseWriter, _ *http.Request, res limiter.Result) {
	if res.RetryAfter > 0 {
		seconds := int64(math.Ceil(res.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}

// defaultError maps limiter errors onto status codes.
func defaultError(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoKey):
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, store.ErrUnavailable):
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
