package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
)

// DefaultCacheTTL is used when CachedExtractor gets a non-positive ttl
const DefaultCacheTTL = 24 * time.Hour

// Cache is the key/value store behind CachedExtractor (cache.PGCache in production)
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedExtractor memoizes OCR output by image digest.
// Cache failures never fail the extraction; they only cost a provider call.
type CachedExtractor struct {
	next   provider.TextExtractor
	cache  Cache
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedExtractor wraps next. name scopes the keys so switching providers
// does not serve another backend's output.
func NewCachedExtractor(next provider.TextExtractor, cache Cache, name string, ttl time.Duration, logger *slog.Logger) *CachedExtractor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedExtractor{
		next:   next,
		cache:  cache,
		prefix: "ocr:" + name + ":",
		ttl:    ttl,
		logger: logger,
	}
}

// ExtractText implements provider.TextExtractor
func (e *CachedExtractor) ExtractText(ctx context.Context, image []byte) (string, error) {
	key := e.key(image)

	if cached, err := e.cache.Get(ctx, key); err == nil {
		return string(cached), nil
	}

	text, err := e.next.ExtractText(ctx, image)
	if err != nil {
		return "", err
	}

	if err := e.cache.Set(ctx, key, []byte(text), e.ttl); err != nil {
		e.logger.Warn("failed to cache OCR result", slog.String("key", key), slog.Any("error", err))
	}
	return text, nil
}

func (e *CachedExtractor) key(image []byte) string {
	sum := sha256.Sum256(image)
	return e.prefix + hex.EncodeToString(sum[:])
}
