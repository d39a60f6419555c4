package mock

import (
	"context"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
)

const (
	landmarkCount = 68

	// DefaultDelay simula a latência de um pipeline real
	DefaultDelay = time.Second
)

const passportOCRText = `PASSPORT
UNITED STATES OF AMERICA
Surname: DOE
Given Names: JOHN MICHAEL
Nationality: UNITED STATES
Date of Birth: 15 JAN 1990
Passport No: 123456789
Date of Expiry: 31 DEC 2030`

const invoiceOCRText = `INVOICE
Invoice Number: INV-2024-001
Bill To: ACME Corp
Amount Due: $1,250.00
Due Date: 2024-02-15`

// FilenameClassifier classifica documentos pelo nome do arquivo
type FilenameClassifier struct{}

// Classify marks names containing "invoice" (any case) as invoices and
// everything else as a passport.
func (FilenameClassifier) Classify(asset domain.Asset) provider.DocumentProfile {
	if strings.Contains(strings.ToLower(asset.Name), "invoice") {
		return provider.DocumentProfile{Kind: provider.ProfileInvoice, Reason: "filename contains invoice"}
	}
	return provider.DocumentProfile{Kind: provider.ProfilePassport, Reason: "default profile"}
}

// Analyzer implementa provider.DocumentAnalyzer com resultados roteirizados.
// The canned values document the output contract; they are not claims about
// document authenticity.
type Analyzer struct {
	classifier provider.Classifier
	delay      time.Duration
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

// WithClassifier swaps the document classification step.
func WithClassifier(c provider.Classifier) Option {
	return func(a *Analyzer) {
		a.classifier = c
	}
}

// WithDelay sets the simulated processing delay.
func WithDelay(d time.Duration) Option {
	return func(a *Analyzer) {
		a.delay = d
	}
}

// New cria uma nova instância do mock Analyzer
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		classifier: FilenameClassifier{},
		delay:      DefaultDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process picks the first id_document asset and the first face_photo or
// face_video asset; later assets of the same role are ignored. It waits for
// the configured delay and returns ctx.Err() if the caller gives up first.
func (a *Analyzer) Process(ctx context.Context, assets []domain.Asset) (*domain.AnalysisResult, error) {
	if a.delay > 0 {
		timer := time.NewTimer(a.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	document, face := selectAssets(assets)

	result := &domain.AnalysisResult{
		DocumentAnalysis: emptyDocumentAnalysis(),
		FaceAnalysis:     emptyFaceAnalysis(),
	}

	if document != nil {
		result.DocumentAnalysis = documentAnalysis(a.classifier.Classify(*document))
	}
	if face != nil {
		result.FaceAnalysis = faceAnalysis()
	}

	return result, nil
}

func selectAssets(assets []domain.Asset) (document, face *domain.Asset) {
	for i := range assets {
		switch {
		case document == nil && assets[i].Category == domain.AssetIDDocument:
			document = &assets[i]
		case face == nil && assets[i].IsFace():
			face = &assets[i]
		}
	}
	return document, face
}

func documentAnalysis(profile provider.DocumentProfile) domain.DocumentAnalysis {
	switch profile.Kind {
	case provider.ProfileInvoice:
		return invoiceAnalysis()
	case provider.ProfilePassport:
		return passportAnalysis()
	default:
		return unclassifiedAnalysis()
	}
}

func emptyDocumentAnalysis() domain.DocumentAnalysis {
	return domain.DocumentAnalysis{
		FraudDetection: domain.FraudDetection{
			RiskScore: domain.MaxRiskScore,
			RiskLevel: domain.RiskHigh,
		},
	}
}

func emptyFaceAnalysis() domain.FaceAnalysis {
	return domain.FaceAnalysis{}
}

func invoiceAnalysis() domain.DocumentAnalysis {
	return domain.DocumentAnalysis{
		DocumentValidation: domain.DocumentValidation{
			IsValid:           false,
			DocumentType:      "invoice",
			Confidence:        0.85,
			AuthenticityScore: 0.1,
			Issues:            []string{"document is not an identity document"},
		},
		OCR: domain.OCRResult{
			Text:       invoiceOCRText,
			Confidence: 0.92,
			ExtractedFields: map[string]string{
				"documentType":  "invoice",
				"invoiceNumber": "INV-2024-001",
			},
		},
		FraudDetection: domain.FraudDetection{
			RiskScore: 95,
			RiskLevel: domain.RiskHigh,
			Flags:     []string{"document_type_mismatch", "no_face_on_document"},
		},
		OverallConfidence: 10,
	}
}

func passportAnalysis() domain.DocumentAnalysis {
	return domain.DocumentAnalysis{
		FaceDetection: domain.FaceDetection{
			Detected:    true,
			Confidence:  0.98,
			BoundingBox: &domain.BoundingBox{X: 50, Y: 30, Width: 120, Height: 150},
			Landmarks:   landmarks(),
		},
		DocumentValidation: domain.DocumentValidation{
			IsValid:           true,
			DocumentType:      "passport",
			Confidence:        0.9,
			AuthenticityScore: 0.95,
		},
		OCR: domain.OCRResult{
			Text:       passportOCRText,
			Confidence: 0.94,
			ExtractedFields: map[string]string{
				"documentType":             "passport",
				domain.FieldLastName:       "DOE",
				domain.FieldFirstName:      "JOHN MICHAEL",
				domain.FieldNationality:    "UNITED STATES",
				domain.FieldDateOfBirth:    "1990-01-15",
				domain.FieldDocumentNumber: "123456789",
				domain.FieldExpiryDate:     "2030-12-31",
			},
		},
		FraudDetection: domain.FraudDetection{
			RiskScore: 25,
			RiskLevel: domain.RiskLow,
		},
		Liveness: domain.LivenessCheck{
			IsLive:     true,
			Confidence: 0.88,
		},
		OverallConfidence: 85,
	}
}

// unclassifiedAnalysis is returned when a classifier cannot name the document.
func unclassifiedAnalysis() domain.DocumentAnalysis {
	return domain.DocumentAnalysis{
		DocumentValidation: domain.DocumentValidation{
			IsValid: false,
			Issues:  []string{"document type could not be determined"},
		},
		FraudDetection: domain.FraudDetection{
			RiskScore: 50,
			RiskLevel: domain.RiskMedium,
		},
	}
}

func faceAnalysis() domain.FaceAnalysis {
	return domain.FaceAnalysis{
		FaceDetection: domain.FaceDetection{
			Detected:    true,
			Confidence:  0.97,
			BoundingBox: &domain.BoundingBox{X: 100, Y: 80, Width: 200, Height: 250},
			Landmarks:   landmarks(),
		},
		FaceRecognition: domain.FaceRecognition{
			Similarity: 75.5,
			MatchFound: false,
		},
		OverallConfidence: 90,
	}
}

// landmarks gera o conjunto sintético de 68 pontos
func landmarks() []domain.Point {
	points := make([]domain.Point, landmarkCount)
	for i := range points {
		points[i] = domain.Point{X: float64(50 + i), Y: float64(30 + i)}
	}
	return points
}

var (
	_ provider.DocumentAnalyzer = (*Analyzer)(nil)
	_ provider.Classifier       = FilenameClassifier{}
)
