package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationStatus is the final decision of the pipeline.
type VerificationStatus string

const (
	StatusApproved VerificationStatus = "approved"
	StatusReview   VerificationStatus = "review"
	StatusRejected VerificationStatus = "rejected"
)

// Verification representa o relatório completo de uma verificação de documento
type Verification struct {
	ID                 uuid.UUID          `json:"id"`
	Country            string             `json:"country"`
	DocumentType       string             `json:"document_type"`
	Status             VerificationStatus `json:"status"`
	Reasons            []string           `json:"reasons,omitempty"`
	DocumentConfidence float64            `json:"document_confidence"`
	FaceConfidence     float64            `json:"face_confidence"`
	MRZ                *MRZRecord         `json:"mrz,omitempty"`
	ImageQuality       *ImageQuality      `json:"image_quality,omitempty"`
	Barcode            *BarcodeResult     `json:"barcode,omitempty"`
	Liveness           *VideoLiveness     `json:"liveness,omitempty"`
	Rules              *RuleValidation    `json:"rules,omitempty"`
	Analysis           *AnalysisResult    `json:"analysis,omitempty"`
	LatencyMs          int64              `json:"latency_ms"`
	CreatedAt          time.Time          `json:"created_at"`
}
