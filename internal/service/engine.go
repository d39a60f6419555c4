package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/mrz"
)

// ParseMRZ exposes the MRZ parser on its own. Returns nil when the text has no MRZ lines.
func (s *VerificationService) ParseMRZ(ctx context.Context, text string) *domain.MRZRecord {
	start := time.Now()
	record := mrz.Parse(text)
	s.metrics.IncrementMRZ(mrzFormatLabel(record))
	s.metrics.ObserveStage("mrz", time.Since(start))

	s.logAudit(ctx, audit.Event{
		EventType: audit.EventMRZParsed,
		Provider:  "mrz",
		Success:   record.Decoded(),
		Metadata:  map[string]string{"format": mrzFormatLabel(record)},
	})

	return record
}

// AnalyzeQuality runs the image quality heuristics on a single image
func (s *VerificationService) AnalyzeQuality(ctx context.Context, image []byte) domain.ImageQuality {
	start := time.Now()
	q := s.quality.Analyze(ctx, image)
	s.metrics.ObserveStage("quality", time.Since(start))

	s.logAudit(ctx, audit.Event{
		EventType: audit.EventQualityAnalyzed,
		Provider:  "quality",
		Success:   q.BlurScore != nil,
		Metadata: map[string]string{
			"blur_likely": strconv.FormatBool(q.BlurLikely),
			"crop_likely": strconv.FormatBool(q.CropLikely),
		},
	})

	return q
}

// ValidateRules checks caller-supplied fields against the country rule table.
// Returns nil when no rule exists for the pair.
func (s *VerificationService) ValidateRules(ctx context.Context, country, documentType string, fields map[string]string, mrzPresent bool) *domain.RuleValidation {
	result := s.validator.Validate(strings.TrimSpace(country), strings.TrimSpace(documentType), fields, mrzPresent)
	s.metrics.IncrementRuleCheck(ruleResultLabel(result))

	event := audit.Event{
		EventType:    audit.EventRulesValidated,
		Country:      strings.ToUpper(strings.TrimSpace(country)),
		DocumentType: strings.ToLower(strings.TrimSpace(documentType)),
		Provider:     "rules",
		Success:      result != nil && result.Passed,
		Metadata:     map[string]string{"result": ruleResultLabel(result)},
	}
	if result != nil {
		event.Metadata["missing_fields"] = strconv.Itoa(len(result.MissingFields))
	}
	s.logAudit(ctx, event)

	return result
}
