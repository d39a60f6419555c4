// Package liveness estimates capture motion from a video resource.
//
// The signal is a placeholder: it only looks at the declared size of the
// resource, never at frames, and should be treated as low confidence until
// it is replaced by frame-difference analysis.
package liveness

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

const (
	likelyMotionScore   = 0.7
	unlikelyMotionScore = 0.2
)

// HTTPClient is the subset of *http.Client used by the prober.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds the prober settings.
type Config struct {
	MotionSizeThresholdBytes int64
	Timeout                  time.Duration
}

// DefaultConfig returns the documented defaults. Timeout is zero: deadlines
// belong to the caller's context.
func DefaultConfig() Config {
	return Config{
		MotionSizeThresholdBytes: domain.DefaultThresholds().MotionSizeThresholdBytes,
	}
}

// Prober issues HEAD requests to size video resources.
type Prober struct {
	client    HTTPClient
	threshold int64
	logger    *slog.Logger
}

// Option customizes a Prober.
type Option func(*Prober)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client HTTPClient) Option {
	return func(p *Prober) {
		p.client = client
	}
}

// WithLogger sets the logger used for degraded probes.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober.
func NewProber(cfg Config, opts ...Option) *Prober {
	p := &Prober{
		client:    &http.Client{Timeout: cfg.Timeout},
		threshold: cfg.MotionSizeThresholdBytes,
		logger:    slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Analyze probes resourceURL without downloading the body. Any failure
// yields MotionLikely=false with no score.
func (p *Prober) Analyze(ctx context.Context, resourceURL string) domain.VideoLiveness {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, resourceURL, nil)
	if err != nil {
		p.logger.WarnContext(ctx, "liveness probe: invalid url", slog.Any("error", err))
		return domain.VideoLiveness{}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.WarnContext(ctx, "liveness probe: request failed", slog.Any("error", err))
		return domain.VideoLiveness{}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.WarnContext(ctx, "liveness probe: unexpected status",
			slog.Int("status", resp.StatusCode),
		)
		return domain.VideoLiveness{}
	}

	size := resp.ContentLength
	if size < 0 {
		size = 0
	}

	result := domain.VideoLiveness{
		MotionLikely:  size > p.threshold,
		ContentLength: size,
	}

	score := unlikelyMotionScore
	if result.MotionLikely {
		score = likelyMotionScore
	}
	result.MotionScore = &score

	return result
}
