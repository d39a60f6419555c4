package ws

import (
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

type EventType string

const (
	EventVerificationCompleted EventType = "verification.completed"
)

type Event struct {
	// Country routes the event to subscribers filtering on it
	Country   string      `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// VerificationSummary is the payload of verification.completed. The full
// report stays behind GET /v1/verifications/:id.
type VerificationSummary struct {
	ID                 uuid.UUID                 `json:"id"`
	Country            string                    `json:"country"`
	DocumentType       string                    `json:"document_type"`
	Status             domain.VerificationStatus `json:"status"`
	Reasons            []string                  `json:"reasons,omitempty"`
	DocumentConfidence float64                   `json:"document_confidence"`
	FaceConfidence     float64                   `json:"face_confidence"`
	LatencyMs          int64                     `json:"latency_ms"`
}

func summarize(v *domain.Verification) VerificationSummary {
	return VerificationSummary{
		ID:                 v.ID,
		Country:            v.Country,
		DocumentType:       v.DocumentType,
		Status:             v.Status,
		Reasons:            v.Reasons,
		DocumentConfidence: v.DocumentConfidence,
		FaceConfidence:     v.FaceConfidence,
		LatencyMs:          v.LatencyMs,
	}
}
