package gotlres

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// RetryConfig bounds how a failing bundle fetch is retried.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt
	BaseDelay  time.Duration // First backoff interval
	MaxDelay   time.Duration // Backoff ceiling
	Jitter     float64       // Randomization factor in [0, 1); 0 disables
}

// DefaultRetryConfig suits local and network sources alike: a missing
// bundle fails at once, a flaky one gets three more tries within a second or
// two.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Jitter:     0.2,
	}
}

func (c RetryConfig) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	b.MaxInterval = c.MaxDelay
	b.RandomizationFactor = c.Jitter
	b.Multiplier = 2
	b.Reset()
	return b
}

func (c RetryConfig) maxTries() uint {
	if c.MaxRetries <= 0 {
		return 1
	}
	return uint(c.MaxRetries) + 1
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry runs fn with exponential backoff until it succeeds, fails with an
// error IsRetryable rejects, runs out of tries or ctx is done.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	return retry(ctx, cfg, fn, nil)
}

func retry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T], notify backoff.Notify) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	op := func() (T, error) {
		v, err := fn()
		if err != nil && !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithMaxTries(cfg.maxTries()),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(notify))
	}
	return backoff.Retry(ctx, op, opts...)
}

// IsRetryable reports whether a failed fetch is worth repeating. Only a
// SourceError flagged Retryable qualifies, and never when it wraps a missing
// or unreadable file, a malformed bundle or a context error.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid), errors.Is(err, fs.ErrPermission):
		return false
	case errors.Is(err, errMalformedBundle):
		return false
	}

	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return sourceErr.Retryable
	}
	return false
}

// RetryableSource wraps a BundleSource with retry logic.
type RetryableSource struct {
	source BundleSource
	config RetryConfig
	logger zerolog.Logger
}

// RetrySourceOption configures a RetryableSource.
type RetrySourceOption func(*RetryableSource)

// WithRetryLogger logs each retried fetch at warn level.
func WithRetryLogger(logger zerolog.Logger) RetrySourceOption {
	return func(s *RetryableSource) {
		s.logger = logger.With().Str("sys", "retry").Logger()
	}
}

// NewRetryableSource creates a new source with retry logic.
func NewRetryableSource(source BundleSource, cfg RetryConfig, opts ...RetrySourceOption) *RetryableSource {
	s := &RetryableSource{
		source: source,
		config: cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchBundle implements BundleSource with retry logic.
func (s *RetryableSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	attempt := 0
	notify := func(err error, next time.Duration) {
		attempt++
		s.logger.Warn().
			Err(err).
			Str("locale", locale).
			Str("module", module).
			Int("attempt", attempt).
			Dur("backoff", next).
			Msg("retrying bundle fetch")
	}

	return retry(ctx, s.config, func() (Bundle, error) {
		return s.source.FetchBundle(ctx, locale, module)
	}, notify)
}

var _ BundleSource = (*RetryableSource)(nil)
