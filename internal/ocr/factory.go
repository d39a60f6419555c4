package ocr

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/config"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider/rekognition"
)

// ProviderType defines supported OCR backends
type ProviderType string

const (
	// ProviderTypeNone disables OCR; clients send ocr_text themselves
	ProviderTypeNone ProviderType = config.OCRProviderNone
	// ProviderTypeRekognition is AWS Rekognition DetectText
	ProviderTypeRekognition ProviderType = config.OCRProviderRekognition
)

// NewTextExtractor creates the TextExtractor selected by configuration.
// It returns (nil, nil) when OCR is disabled.
//
// Environment variables:
//   - OCR_PROVIDER: "none" or "rekognition" (default: "none")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via the AWS SDK credential chain
func NewTextExtractor(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.TextExtractor, error) {
	switch ProviderType(cfg.OCRProvider) {
	case ProviderTypeNone, "":
		return nil, nil

	case ProviderTypeRekognition:
		return createRekognitionExtractor(ctx, cfg, auditLogger)

	default:
		return nil, fmt.Errorf("unknown OCR provider: %s (supported: %s, %s)",
			cfg.OCRProvider, ProviderTypeNone, ProviderTypeRekognition)
	}
}

func createRekognitionExtractor(ctx context.Context, cfg *config.Config, auditLogger audit.Logger) (provider.TextExtractor, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	var opts []rekognition.ProviderOption
	if auditLogger != nil {
		opts = append(opts, rekognition.WithAuditLogger(auditLogger))
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("create rekognition extractor in %s: %w", rekogConfig.Region, err)
	}

	return prov, nil
}
