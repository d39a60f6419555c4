package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/imaging"
	"github.com/saturnino-fabrica-de-software/docverify/internal/metrics"
	"github.com/saturnino-fabrica-de-software/docverify/internal/mrz"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
)

// ApprovalConfidence is the minimum document confidence (0-100) for approval
const ApprovalConfidence = 70.0

// Decision reasons
const (
	ReasonDocumentInvalid = "document validation failed"
	ReasonHighFraudRisk   = "fraud risk is high"
	ReasonLowConfidence   = "document confidence below approval threshold"
	ReasonRulesFailed     = "country rules not satisfied"
	ReasonBlurry          = "document image appears blurry"
	ReasonCropped         = "document image appears cropped"
	ReasonLivenessFailed  = "video shows no likely motion"
)

const defaultDocumentName = "document"

// QualityAnalyzer scores raw uploads (Analyze) or an image Verify already decoded
type QualityAnalyzer interface {
	Analyze(ctx context.Context, imageBytes []byte) domain.ImageQuality
	AnalyzeImage(ctx context.Context, img image.Image) domain.ImageQuality
}

type LivenessProber interface {
	Analyze(ctx context.Context, resourceURL string) domain.VideoLiveness
}

type BarcodeScanner interface {
	Scan(ctx context.Context, img image.Image) domain.BarcodeResult
}

type RuleValidator interface {
	Validate(country, documentType string, fields map[string]string, mrzPresent bool) *domain.RuleValidation
}

// EventPublisher receives every completed verification
type EventPublisher interface {
	VerificationCompleted(v *domain.Verification)
}

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Verification, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Verification, error)
}

// VerifyRequest carries everything a client submits for one document check
type VerifyRequest struct {
	Country       string
	DocumentType  string
	OCRText       string
	DocumentImage []byte
	DocumentName  string
	FaceImage     []byte
	FaceName      string
	FaceCategory  domain.AssetCategory
	VideoURL      string
	// Assets are appended after the document and face assets
	Assets []domain.Asset

	// Client metadata, only recorded in the audit trail
	ClientIP  string
	UserAgent string
}

// VerificationService runs the verification pipeline:
// OCR -> MRZ -> quality -> barcode -> liveness -> rules -> analysis -> decision.
type VerificationService struct {
	analyzer  provider.DocumentAnalyzer
	quality   QualityAnalyzer
	prober    LivenessProber
	validator RuleValidator

	extractor provider.TextExtractor
	scanner   BarcodeScanner
	repo      VerificationRepositoryInterface
	events    EventPublisher
	metrics   *metrics.Metrics
	audit     audit.Logger
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures optional collaborators
type Option func(*VerificationService)

func WithTextExtractor(e provider.TextExtractor) Option {
	return func(s *VerificationService) { s.extractor = e }
}

func WithBarcodeScanner(b BarcodeScanner) Option {
	return func(s *VerificationService) { s.scanner = b }
}

// WithRepository enables persistence of verification reports
func WithRepository(r VerificationRepositoryInterface) Option {
	return func(s *VerificationService) { s.repo = r }
}

// WithEventPublisher streams completed verifications to live subscribers
func WithEventPublisher(p EventPublisher) Option {
	return func(s *VerificationService) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *VerificationService) { s.metrics = m }
}

func WithAuditLogger(l audit.Logger) Option {
	return func(s *VerificationService) { s.audit = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *VerificationService) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *VerificationService) { s.now = now }
}

func NewVerificationService(
	analyzer provider.DocumentAnalyzer,
	quality QualityAnalyzer,
	prober LivenessProber,
	validator RuleValidator,
	opts ...Option,
) *VerificationService {
	s := &VerificationService{
		analyzer:  analyzer,
		quality:   quality,
		prober:    prober,
		validator: validator,
		audit:     &audit.NoOpLogger{},
		logger:    slog.New(slog.DiscardHandler),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify runs the full pipeline. Engine stages never fail; only request
// validation and the analyzer (cancellation) can return an error.
// Persistence failures are logged and the report is still returned.
func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (*domain.Verification, error) {
	start := s.now()

	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))
	req.DocumentType = strings.ToLower(strings.TrimSpace(req.DocumentType))

	if len(req.DocumentImage) == 0 && strings.TrimSpace(req.OCRText) == "" && req.DocumentName == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("document image or ocr_text is required"))
	}

	v := &domain.Verification{
		ID:           uuid.New(),
		Country:      req.Country,
		DocumentType: req.DocumentType,
	}

	text := s.resolveText(ctx, req)

	stageStart := time.Now()
	record := mrz.Parse(text)
	v.MRZ = record
	s.metrics.IncrementMRZ(mrzFormatLabel(record))
	s.metrics.ObserveStage("mrz", time.Since(stageStart))

	if len(req.DocumentImage) > 0 {
		s.inspectImage(ctx, v, req.DocumentImage)
	}

	if req.VideoURL != "" {
		stageStart = time.Now()
		l := s.prober.Analyze(ctx, req.VideoURL)
		v.Liveness = &l
		s.metrics.ObserveStage("liveness", time.Since(stageStart))
		s.logAudit(ctx, audit.Event{
			VerificationID: v.ID,
			EventType:      audit.EventLivenessProbed,
			Provider:       "http",
			Success:        l.MotionScore != nil,
			Metadata: map[string]string{
				"motion_likely":  strconv.FormatBool(l.MotionLikely),
				"content_length": strconv.FormatInt(l.ContentLength, 10),
			},
		})
	}

	stageStart = time.Now()
	v.Rules = s.validator.Validate(req.Country, req.DocumentType, record.Fields(), record.Decoded())
	s.metrics.IncrementRuleCheck(ruleResultLabel(v.Rules))
	s.metrics.ObserveStage("rules", time.Since(stageStart))

	stageStart = time.Now()
	analysis, err := s.analyzer.Process(ctx, buildAssets(req))
	if err != nil {
		s.logAudit(ctx, audit.Event{
			VerificationID: v.ID,
			EventType:      audit.EventVerificationCompleted,
			Country:        req.Country,
			DocumentType:   req.DocumentType,
			Provider:       "analyzer",
			Success:        false,
			Error:          err.Error(),
		})
		return nil, fmt.Errorf("verification %s: analyze assets: %w", v.ID, err)
	}
	v.Analysis = analysis
	s.metrics.ObserveStage("analysis", time.Since(stageStart))

	decide(v)

	v.LatencyMs = s.now().Sub(start).Milliseconds()
	v.CreatedAt = s.now().UTC()

	s.persist(ctx, v)
	if s.events != nil {
		s.events.VerificationCompleted(v)
	}

	s.metrics.ObserveVerification(string(v.Status), v.Country, s.now().Sub(start))
	s.logAudit(ctx, audit.Event{
		VerificationID: v.ID,
		EventType:      audit.EventVerificationCompleted,
		Country:        v.Country,
		DocumentType:   v.DocumentType,
		Provider:       "pipeline",
		Success:        true,
		Metadata: map[string]string{
			"status":     string(v.Status),
			"mrz_format": mrzFormatLabel(record),
			"reasons":    strconv.Itoa(len(v.Reasons)),
		},
		IPAddress: req.ClientIP,
		UserAgent: req.UserAgent,
	})

	s.logger.InfoContext(ctx, "verification completed",
		slog.String("verification_id", v.ID.String()),
		slog.String("status", string(v.Status)),
		slog.String("country", v.Country),
		slog.String("document_type", v.DocumentType),
		slog.Int64("latency_ms", v.LatencyMs),
	)

	return v, nil
}

// Get loads a stored verification report
func (s *VerificationService) Get(ctx context.Context, id uuid.UUID) (*domain.Verification, error) {
	if s.repo == nil {
		return nil, domain.ErrPersistenceDisabled
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the newest stored verification reports
func (s *VerificationService) List(ctx context.Context, limit int) ([]*domain.Verification, error) {
	if s.repo == nil {
		return nil, domain.ErrPersistenceDisabled
	}
	return s.repo.ListRecent(ctx, limit)
}

// inspectImage decodes the document once for the quality and barcode stages.
// An undecodable or oversized image gets the zero quality result and no barcode.
func (s *VerificationService) inspectImage(ctx context.Context, v *domain.Verification, data []byte) {
	stageStart := time.Now()
	img, format, err := imaging.Decode(data)
	s.metrics.ObserveStage("decode", time.Since(stageStart))
	if err != nil {
		s.logger.WarnContext(ctx, "document image not decoded, quality and barcode skipped",
			slog.String("verification_id", v.ID.String()),
			slog.Any("error", err),
		)
		v.ImageQuality = &domain.ImageQuality{}
		return
	}
	s.logger.DebugContext(ctx, "document image decoded",
		slog.String("format", format),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()),
	)

	stageStart = time.Now()
	q := s.quality.AnalyzeImage(ctx, img)
	v.ImageQuality = &q
	s.metrics.ObserveStage("quality", time.Since(stageStart))

	if s.scanner != nil {
		stageStart = time.Now()
		b := s.scanner.Scan(ctx, img)
		v.Barcode = &b
		s.metrics.ObserveStage("barcode", time.Since(stageStart))
	}
}

func (s *VerificationService) resolveText(ctx context.Context, req VerifyRequest) string {
	if strings.TrimSpace(req.OCRText) != "" {
		return req.OCRText
	}
	if s.extractor == nil || len(req.DocumentImage) == 0 {
		return ""
	}

	stageStart := time.Now()
	text, err := s.extractor.ExtractText(ctx, req.DocumentImage)
	s.metrics.ObserveStage("ocr", time.Since(stageStart))
	if err != nil {
		s.logger.WarnContext(ctx, "text extraction failed, continuing without OCR text",
			slog.String("error", err.Error()),
		)
		return ""
	}
	return text
}

func (s *VerificationService) persist(ctx context.Context, v *domain.Verification) {
	if s.repo == nil {
		return
	}

	stageStart := time.Now()
	if err := s.repo.Create(ctx, v); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist verification",
			slog.String("verification_id", v.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}
	s.metrics.ObserveStage("persist", time.Since(stageStart))
}

func (s *VerificationService) logAudit(ctx context.Context, event audit.Event) {
	// Audit failure does not affect the verification result
	_ = s.audit.Log(ctx, event)
}

func buildAssets(req VerifyRequest) []domain.Asset {
	assets := make([]domain.Asset, 0, 2+len(req.Assets))

	if len(req.DocumentImage) > 0 || req.DocumentName != "" || strings.TrimSpace(req.OCRText) != "" {
		name := req.DocumentName
		if name == "" {
			name = defaultDocumentName
		}
		assets = append(assets, domain.Asset{
			Category: domain.AssetIDDocument,
			Name:     name,
			Size:     int64(len(req.DocumentImage)),
		})
	}

	if len(req.FaceImage) > 0 || req.FaceName != "" {
		category := req.FaceCategory
		if category == "" {
			category = domain.AssetFacePhoto
		}
		assets = append(assets, domain.Asset{
			Category: category,
			Name:     req.FaceName,
			Size:     int64(len(req.FaceImage)),
		})
	}

	return append(assets, req.Assets...)
}

// decide derives status, reasons and clamped scores from the collected signals
func decide(v *domain.Verification) {
	doc := v.Analysis.DocumentAnalysis
	v.DocumentConfidence = domain.Clamp(doc.OverallConfidence, 0, 100)
	v.FaceConfidence = domain.Clamp(v.Analysis.FaceAnalysis.OverallConfidence, 0, 100)

	var reasons []string
	rejected := false

	if !doc.DocumentValidation.IsValid {
		rejected = true
		reasons = append(reasons, ReasonDocumentInvalid)
	}
	if doc.FraudDetection.RiskLevel == domain.RiskHigh {
		rejected = true
		reasons = append(reasons, ReasonHighFraudRisk)
	}
	if v.DocumentConfidence < ApprovalConfidence {
		reasons = append(reasons, ReasonLowConfidence)
	}
	if v.Rules != nil && !v.Rules.Passed {
		reasons = append(reasons, ReasonRulesFailed)
		reasons = append(reasons, v.Rules.Messages...)
	}
	if v.ImageQuality != nil {
		if v.ImageQuality.BlurLikely {
			reasons = append(reasons, ReasonBlurry)
		}
		if v.ImageQuality.CropLikely {
			reasons = append(reasons, ReasonCropped)
		}
	}
	if livenessFailed(v.Liveness) {
		reasons = append(reasons, ReasonLivenessFailed)
	}

	switch {
	case rejected:
		v.Status = domain.StatusRejected
	case len(reasons) == 0:
		v.Status = domain.StatusApproved
	default:
		v.Status = domain.StatusReview
	}
	v.Reasons = reasons
}

// livenessFailed is true only for a completed probe that found no motion.
// An unreachable resource is not counted against the document.
func livenessFailed(l *domain.VideoLiveness) bool {
	return l != nil && l.MotionScore != nil && !l.MotionLikely
}

func mrzFormatLabel(record *domain.MRZRecord) string {
	if record == nil {
		return "none"
	}
	return strings.ToLower(string(record.Format))
}

func ruleResultLabel(r *domain.RuleValidation) string {
	switch {
	case r == nil:
		return "no_rule"
	case r.Passed:
		return "passed"
	default:
		return "failed"
	}
}
