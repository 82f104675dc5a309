package gotlres

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum fetches per minute
	BurstSize         int // Maximum burst size (default: same as RPM)
}

// NewRateLimiter creates a token-bucket limiter from cfg.
func NewRateLimiter(cfg RateLimitConfig) *rate.Limiter {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60 // Default: 60 RPM
	}

	burst := cfg.BurstSize
	if burst <= 0 {
		burst = rpm
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}

// RateLimitedSource wraps a BundleSource with rate limiting. Useful in front
// of metered sources such as MachineSource.
type RateLimitedSource struct {
	source  BundleSource
	limiter *rate.Limiter
}

// NewRateLimitedSource creates a new rate-limited source.
func NewRateLimitedSource(source BundleSource, cfg RateLimitConfig) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: NewRateLimiter(cfg),
	}
}

// FetchBundle implements BundleSource with rate limiting.
func (s *RateLimitedSource) FetchBundle(ctx context.Context, locale, module string) (Bundle, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &SourceError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}

	return s.source.FetchBundle(ctx, locale, module)
}

// Limiter returns the underlying rate limiter for inspection.
func (s *RateLimitedSource) Limiter() *rate.Limiter {
	return s.limiter
}

var _ BundleSource = (*RateLimitedSource)(nil)
