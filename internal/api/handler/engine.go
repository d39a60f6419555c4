package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
)

// EngineService exposes the individual analyzers
type EngineService interface {
	ParseMRZ(ctx context.Context, text string) *domain.MRZRecord
	AnalyzeQuality(ctx context.Context, image []byte) domain.ImageQuality
	ValidateRules(ctx context.Context, country, documentType string, fields map[string]string, mrzPresent bool) *domain.RuleValidation
}

// RuleCatalog lists the loaded country rules
type RuleCatalog interface {
	Countries() []domain.CountryRule
}

// EngineHandler serves the standalone MRZ, quality and rule endpoints
type EngineHandler struct {
	service        EngineService
	catalog        RuleCatalog
	maxUploadBytes int64
}

func NewEngineHandler(service EngineService, catalog RuleCatalog, maxUploadBytes int64) *EngineHandler {
	return &EngineHandler{
		service:        service,
		catalog:        catalog,
		maxUploadBytes: maxUploadBytes,
	}
}

type MRZParseRequest struct {
	Text string `json:"text"`
}

type MRZParseResponse struct {
	Found bool              `json:"found"`
	MRZ   *domain.MRZRecord `json:"mrz,omitempty"`
}

type RuleValidateRequest struct {
	Country      string            `json:"country"`
	DocumentType string            `json:"document_type"`
	Fields       map[string]string `json:"fields"`
	MRZPresent   bool              `json:"mrz_present"`
}

type RuleValidateResponse struct {
	Applicable bool                   `json:"applicable"`
	Result     *domain.RuleValidation `json:"result,omitempty"`
}

type RulesResponse struct {
	Countries []domain.CountryRule `json:"countries"`
}

// ParseMRZ POST /v1/mrz/parse
func (h *EngineHandler) ParseMRZ(c *fiber.Ctx) error {
	var req MRZParseRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	record := h.service.ParseMRZ(c.UserContext(), req.Text)

	return c.JSON(MRZParseResponse{
		Found: record != nil,
		MRZ:   record,
	})
}

// AnalyzeQuality POST /v1/quality
func (h *EngineHandler) AnalyzeQuality(c *fiber.Ctx) error {
	image, err := readUpload(c, "image", h.maxUploadBytes, false)
	if err != nil {
		return err
	}
	if image == nil {
		return domain.ErrValidationFailed.WithError(errors.New("image is required"))
	}

	quality := h.service.AnalyzeQuality(c.UserContext(), image.Data)
	if quality.Width == 0 {
		// zero result: the bytes did not decode or declared more than imaging.MaxPixels
		return domain.ErrInvalidDocument
	}

	return c.JSON(quality)
}

// ValidateRules POST /v1/rules/validate
func (h *EngineHandler) ValidateRules(c *fiber.Ctx) error {
	var req RuleValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	if strings.TrimSpace(req.Country) == "" || strings.TrimSpace(req.DocumentType) == "" {
		return domain.ErrValidationFailed.WithError(errors.New("country and document_type are required"))
	}

	result := h.service.ValidateRules(c.UserContext(), req.Country, req.DocumentType, req.Fields, req.MRZPresent)

	return c.JSON(RuleValidateResponse{
		Applicable: result != nil,
		Result:     result,
	})
}

// Rules GET /v1/rules
func (h *EngineHandler) Rules(c *fiber.Ctx) error {
	countries := h.catalog.Countries()
	if countries == nil {
		countries = []domain.CountryRule{}
	}
	return c.JSON(RulesResponse{Countries: countries})
}
