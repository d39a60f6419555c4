package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/service"
)

const defaultListLimit = 20

// VerificationService interface for the service
type VerificationService interface {
	Verify(ctx context.Context, req service.VerifyRequest) (*domain.Verification, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Verification, error)
	List(ctx context.Context, limit int) ([]*domain.Verification, error)
}

// VerificationHandler handles verification requests
type VerificationHandler struct {
	service        VerificationService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewVerificationHandler creates a new VerificationHandler instance
func NewVerificationHandler(service VerificationService, maxUploadBytes int64, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListResponse response for the list endpoint
type ListResponse struct {
	Verifications []*domain.Verification `json:"verifications"`
	Count         int                    `json:"count"`
}

// Create POST /v1/verifications - run the verification pipeline
func (h *VerificationHandler) Create(c *fiber.Ctx) error {
	// 1. Extract uploads
	document, err := readUpload(c, "document", h.maxUploadBytes, false)
	if err != nil {
		return fmt.Errorf("verify document: %w", err)
	}
	face, err := readUpload(c, "face", h.maxUploadBytes, true)
	if err != nil {
		return fmt.Errorf("verify face: %w", err)
	}

	// 2. Build request from form values
	req := service.VerifyRequest{
		Country:      c.FormValue("country"),
		DocumentType: c.FormValue("document_type"),
		OCRText:      c.FormValue("ocr_text"),
		VideoURL:     strings.TrimSpace(c.FormValue("video_url")),
		ClientIP:     c.IP(),
		UserAgent:    c.Get(fiber.HeaderUserAgent),
	}
	if document != nil {
		req.DocumentImage = document.Data
		req.DocumentName = document.Name
	}
	if face != nil {
		req.FaceImage = face.Data
		req.FaceName = face.Name
		req.FaceCategory = domain.AssetFacePhoto
		if face.isVideo() {
			req.FaceCategory = domain.AssetFaceVideo
		}
	}

	// 3. Run pipeline
	verification, err := h.service.Verify(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.logger.Debug("verification created",
		slog.String("verification_id", verification.ID.String()),
		slog.String("status", string(verification.Status)),
	)

	return c.Status(fiber.StatusCreated).JSON(verification)
}

// Get GET /v1/verifications/:id - fetch a stored report
func (h *VerificationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("invalid verification id"))
	}

	verification, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(verification)
}

// List GET /v1/verifications - most recent reports first
func (h *VerificationHandler) List(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.ErrValidationFailed.WithError(errors.New("limit must be an integer"))
		}
		limit = n
	}

	verifications, err := h.service.List(c.UserContext(), limit)
	if err != nil {
		return err
	}
	if verifications == nil {
		verifications = []*domain.Verification{}
	}

	return c.JSON(ListResponse{
		Verifications: verifications,
		Count:         len(verifications),
	})
}
