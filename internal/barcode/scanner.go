// Package barcode looks for machine readable codes printed on a document
// image. Driver licenses and national ID cards commonly carry a QR code or
// a Code 128 strip with the same data as the visual zone.
package barcode

import (
	"context"
	"image"
	"log/slog"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/imaging"
)

// Scanner tries each configured reader in order and reports the first hit.
// Readers keep decoding state, so a fresh one is built per scan.
type Scanner struct {
	readers []func() gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
	logger  *slog.Logger
}

// NewScanner builds a scanner for QR and Code 128 symbols
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{
		readers: []func() gozxing.Reader{
			qrcode.NewQRCodeReader,
			oned.NewCode128Reader,
		},
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
		logger: logger.With("component", "barcode"),
	}
}

// ScanBytes decodes raw image bytes and scans them.
// Undecodable input yields an empty result.
func (s *Scanner) ScanBytes(ctx context.Context, data []byte) domain.BarcodeResult {
	img, _, err := imaging.Decode(data)
	if err != nil {
		s.logger.DebugContext(ctx, "barcode scan skipped", slog.String("error", err.Error()))
		return domain.BarcodeResult{}
	}
	return s.Scan(ctx, img)
}

// Scan returns the first symbol any reader can decode
func (s *Scanner) Scan(ctx context.Context, img image.Image) domain.BarcodeResult {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		s.logger.DebugContext(ctx, "failed to create binary bitmap", slog.String("error", err.Error()))
		return domain.BarcodeResult{}
	}

	for _, newReader := range s.readers {
		if ctx.Err() != nil {
			return domain.BarcodeResult{}
		}

		result, err := newReader().Decode(bmp, s.hints)
		if err != nil {
			continue
		}

		s.logger.DebugContext(ctx, "barcode decoded",
			slog.String("format", result.GetBarcodeFormat().String()),
			slog.Int("payload_length", len(result.GetText())),
		)

		return domain.BarcodeResult{
			Detected: true,
			Format:   result.GetBarcodeFormat().String(),
			Payload:  result.GetText(),
		}
	}

	return domain.BarcodeResult{}
}
