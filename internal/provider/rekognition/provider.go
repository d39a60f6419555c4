package rekognition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.TextExtractor using Rekognition DetectText
type Provider struct {
	client      *Client
	auditLogger audit.Logger
}

// ProviderOption defines optional configuration for Provider
type ProviderOption func(*Provider)

// WithAuditLogger sets the audit logger for the provider
func WithAuditLogger(logger audit.Logger) ProviderOption {
	return func(p *Provider) {
		p.auditLogger = logger
	}
}

// Ensure Provider implements provider.TextExtractor interface at compile time
var _ provider.TextExtractor = (*Provider)(nil)

// NewProvider creates a Rekognition text extractor using the default credential chain
func NewProvider(ctx context.Context, cfg Config, opts ...ProviderOption) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithClient(client, opts...), nil
}

// NewProviderWithClient creates a provider around an existing client
func NewProviderWithClient(client *Client, opts ...ProviderOption) *Provider {
	p := &Provider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// logAudit logs an audit event if an audit logger is configured
// Audit failure does not affect the operation (fire-and-forget)
func (p *Provider) logAudit(ctx context.Context, success bool, err error, metadata map[string]string) {
	if p.auditLogger == nil {
		return
	}

	event := audit.Event{
		EventType: audit.EventTextExtracted,
		Provider:  "rekognition",
		Success:   success,
		Metadata:  metadata,
	}

	if err != nil {
		event.Error = err.Error()
	}

	_ = p.auditLogger.Log(ctx, event)
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// ExtractText returns the detected LINE entries joined by newlines, in the
// order Rekognition reports them. Words are ignored since every word also
// belongs to a line.
func (p *Provider) ExtractText(ctx context.Context, image []byte) (string, error) {
	if err := validateImage(image); err != nil {
		p.logAudit(ctx, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return "", err
	}

	output, err := p.client.rekognition.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		err = ParseAPIError(err)
		p.logAudit(ctx, false, err, map[string]string{
			"image_size": strconv.Itoa(len(image)),
		})
		return "", fmt.Errorf("detect text: %w", err)
	}

	lines := make([]string, 0, len(output.TextDetections))
	for _, detection := range output.TextDetections {
		if detection.Type != types.TextTypesLine || detection.DetectedText == nil {
			continue
		}
		if detection.Confidence != nil && *detection.Confidence < p.client.config.MinLineConfidence {
			continue
		}
		lines = append(lines, *detection.DetectedText)
	}

	p.logAudit(ctx, true, nil, map[string]string{
		"image_size":  strconv.Itoa(len(image)),
		"lines_count": strconv.Itoa(len(lines)),
	})

	return strings.Join(lines, "\n"), nil
}
