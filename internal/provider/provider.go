package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

// DocumentAnalyzer define a interface para provedores de análise de documentos
type DocumentAnalyzer interface {
	// Process analisa os assets enviados e retorna o bloco de documento e de face.
	// Confidences are in [0,100]; normalized signals are in [0,1].
	Process(ctx context.Context, assets []domain.Asset) (*domain.AnalysisResult, error)
}

// ProfileKind is the variant tag of a DocumentProfile.
type ProfileKind string

const (
	ProfileInvoice  ProfileKind = "invoice"
	ProfilePassport ProfileKind = "passport"
	ProfileUnknown  ProfileKind = "unknown"
)

// DocumentProfile is the outcome of classifying a document asset.
type DocumentProfile struct {
	Kind ProfileKind
	// Reason explains the classification, e.g. which heuristic matched.
	Reason string
}

// Classifier decides what kind of document an asset holds.
type Classifier interface {
	Classify(asset domain.Asset) DocumentProfile
}

// TextExtractor recognises text in a document image. It stands in for the
// external OCR collaborator that feeds the MRZ parser.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte) (string, error)
}
