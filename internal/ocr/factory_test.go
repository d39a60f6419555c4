package ocr

import (
	"context"
	"strings"
	"testing"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/config"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider/rekognition"
)

func TestNewTextExtractor_Disabled(t *testing.T) {
	for _, name := range []string{"none", ""} {
		t.Run("provider="+name, func(t *testing.T) {
			extractor, err := NewTextExtractor(context.Background(), &config.Config{OCRProvider: name}, nil)
			if err != nil {
				t.Fatalf("NewTextExtractor() error = %v", err)
			}
			if extractor != nil {
				t.Errorf("NewTextExtractor() = %T, want nil", extractor)
			}
		})
	}
}

func TestNewTextExtractor_Rekognition(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Rekognition test in short mode (loads AWS configuration)")
	}

	cfg := &config.Config{
		OCRProvider: "rekognition",
		AWSRegion:   "eu-west-1",
	}

	extractor, err := NewTextExtractor(context.Background(), cfg, &audit.NoOpLogger{})
	if err != nil {
		t.Skipf("Skipping Rekognition test (AWS configuration unavailable): %v", err)
	}

	if _, ok := extractor.(*rekognition.Provider); !ok {
		t.Errorf("NewTextExtractor() returned type %T, want *rekognition.Provider", extractor)
	}
}

func TestNewTextExtractor_UnknownProvider(t *testing.T) {
	_, err := NewTextExtractor(context.Background(), &config.Config{OCRProvider: "tesseract"}, nil)
	if err == nil {
		t.Fatal("NewTextExtractor() expected error for unknown provider, got nil")
	}

	if !strings.HasPrefix(err.Error(), "unknown OCR provider: tesseract") {
		t.Errorf("NewTextExtractor() error = %v", err)
	}
}

func TestProviderType_Constants(t *testing.T) {
	if ProviderTypeNone != "none" {
		t.Errorf("ProviderTypeNone = %q, want %q", ProviderTypeNone, "none")
	}

	if ProviderTypeRekognition != "rekognition" {
		t.Errorf("ProviderTypeRekognition = %q, want %q", ProviderTypeRekognition, "rekognition")
	}
}
