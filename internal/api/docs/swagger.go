package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// MRZData mirrors the decoded machine readable zone
type MRZData struct {
	Format         string `json:"format" example:"TD3"`
	DocumentType   string `json:"document_type,omitempty" example:"P"`
	IssuingCountry string `json:"issuing_country,omitempty" example:"UTO"`
	LastName       string `json:"last_name,omitempty" example:"ERIKSSON"`
	FirstName      string `json:"first_name,omitempty" example:"ANNA MARIA"`
	DocumentNumber string `json:"document_number,omitempty" example:"L898902C3"`
	Nationality    string `json:"nationality,omitempty" example:"UTO"`
	DateOfBirth    string `json:"date_of_birth,omitempty" example:"1974-08-12"`
	Sex            string `json:"sex,omitempty" example:"F"`
	ExpiryDate     string `json:"expiry_date,omitempty" example:"2012-04-15"`
	PersonalNumber string `json:"personal_number,omitempty" example:"ZE184226B"`
}

// MRZParseRequest is the body of POST /v1/mrz/parse
type MRZParseRequest struct {
	Text string `json:"text" example:"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\\nL898902C36UTO7408122F1204159ZE184226B<<<<<10"`
}

// MRZParseResponse is returned by POST /v1/mrz/parse
type MRZParseResponse struct {
	Found bool     `json:"found" example:"true"`
	MRZ   *MRZData `json:"mrz,omitempty"`
}

// ImageQualityData contains the quality heuristics of one image
type ImageQualityData struct {
	BlurScore  *float64 `json:"blur_score,omitempty" example:"312.4"`
	BlurLikely bool     `json:"blur_likely" example:"false"`
	Brightness *float64 `json:"brightness,omitempty" example:"131.2"`
	Contrast   *float64 `json:"contrast,omitempty" example:"58.9"`
	CropLikely bool     `json:"crop_likely" example:"false"`
	Width      int      `json:"width,omitempty" example:"1280"`
	Height     int      `json:"height,omitempty" example:"800"`
}

// RuleValidateRequest is the body of POST /v1/rules/validate
type RuleValidateRequest struct {
	Country      string            `json:"country" example:"BRA"`
	DocumentType string            `json:"document_type" example:"passport"`
	Fields       map[string]string `json:"fields"`
	MRZPresent   bool              `json:"mrz_present" example:"true"`
}

// RuleValidationData is the outcome of a rule check
type RuleValidationData struct {
	Country       string   `json:"country" example:"BRA"`
	DocumentType  string   `json:"document_type" example:"passport"`
	Passed        bool     `json:"passed" example:"false"`
	MissingFields []string `json:"missing_fields"`
	Messages      []string `json:"messages"`
}

// RuleValidateResponse is returned by POST /v1/rules/validate
type RuleValidateResponse struct {
	Applicable bool                `json:"applicable" example:"true"`
	Result     *RuleValidationData `json:"result,omitempty"`
}

// DocumentRuleData describes what one document type requires
type DocumentRuleData struct {
	DocumentType       string   `json:"document_type" example:"passport"`
	RequiredFields     []string `json:"required_fields"`
	MRZRequired        bool     `json:"mrz_required" example:"true"`
	ExpiryMustBeFuture bool     `json:"expiry_must_be_future" example:"true"`
}

// CountryRuleData groups the document rules of one country
type CountryRuleData struct {
	Country   string             `json:"country" example:"BRA"`
	Documents []DocumentRuleData `json:"documents"`
}

// RulesResponse is returned by GET /v1/rules
type RulesResponse struct {
	Countries []CountryRuleData `json:"countries"`
}

// VerificationData is the full verification report
type VerificationData struct {
	ID                 string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Country            string            `json:"country" example:"BRA"`
	DocumentType       string            `json:"document_type" example:"passport"`
	Status             string            `json:"status" example:"approved"`
	Reasons            []string          `json:"reasons,omitempty"`
	DocumentConfidence float64           `json:"document_confidence" example:"91.5"`
	FaceConfidence     float64           `json:"face_confidence" example:"88.2"`
	MRZ                *MRZData          `json:"mrz,omitempty"`
	ImageQuality       *ImageQualityData `json:"image_quality,omitempty"`
	LatencyMs          int64             `json:"latency_ms" example:"1012"`
	CreatedAt          string            `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// VerificationListResponse is returned by GET /v1/verifications
type VerificationListResponse struct {
	Verifications []VerificationData `json:"verifications"`
	Count         int                `json:"count" example:"1"`
}

// HealthResponse is returned by /health and /ready
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

func multipart() []mime.MIME {
	return []mime.MIME{mime.MIME("multipart/form-data")}
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "DocVerify API",
		Version:     "v1.0.0",
		Description: "Identity document verification: MRZ parsing, image quality, video liveness, country rules and simulated analysis",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	internalError := response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error")

	endpoints := []*endpoint.EndPoint{
		// POST /v1/verifications - Run a verification
		endpoint.New(
			endpoint.POST,
			"/verifications",
			endpoint.WithTags("Verifications"),
			endpoint.WithSummary("Verify an identity document"),
			endpoint.WithDescription("Runs the full pipeline (OCR, MRZ, image quality, barcode, video liveness, country rules, analysis) and returns the decision with its report. Form fields: country, document_type, ocr_text, video_url. Files: document, face."),
			endpoint.WithConsume(multipart()),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationData{}, "201", "Verification completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "PAYLOAD_TOO_LARGE", Message: "Uploaded file exceeds the maximum allowed size"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "UNSUPPORTED_MEDIA", Message: "Unsupported media type"}, "415", "Unsupported Media Type"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "document, ocr_text or face is required"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		// GET /v1/verifications - List recent verifications
		endpoint.New(
			endpoint.GET,
			"/verifications",
			endpoint.WithTags("Verifications"),
			endpoint.WithSummary("List recent verifications"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of results (1-100, default 20)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationListResponse{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "PERSISTENCE_DISABLED", Message: "Verification storage is not configured"}, "503", "Service Unavailable"),
				internalError,
			}),
		),

		// GET /v1/verifications/{id} - Fetch one verification
		endpoint.New(
			endpoint.GET,
			"/verifications/{id}",
			endpoint.WithTags("Verifications"),
			endpoint.WithSummary("Get a verification report"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithRequired(), parameter.WithDescription("Verification ID (UUID)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerificationData{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VERIFICATION_NOT_FOUND", Message: "Verification not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "invalid verification id"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "PERSISTENCE_DISABLED", Message: "Verification storage is not configured"}, "503", "Service Unavailable"),
				internalError,
			}),
		),

		// POST /v1/mrz/parse - Parse MRZ text
		endpoint.New(
			endpoint.POST,
			"/mrz/parse",
			endpoint.WithTags("Engine"),
			endpoint.WithSummary("Parse a machine readable zone"),
			endpoint.WithDescription("Finds TD3 or TD1 lines in free OCR text and decodes them"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(MRZParseRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(MRZParseResponse{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				internalError,
			}),
		),

		// POST /v1/quality - Analyze image quality
		endpoint.New(
			endpoint.POST,
			"/quality",
			endpoint.WithTags("Engine"),
			endpoint.WithSummary("Analyze image quality"),
			endpoint.WithDescription("Computes blur, exposure and crop heuristics for the uploaded image. Images that do not decode or declare more than 25 megapixels are rejected with 422 INVALID_DOCUMENT"),
			endpoint.WithConsume(multipart()),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ImageQualityData{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "PAYLOAD_TOO_LARGE", Message: "Uploaded file exceeds the maximum allowed size"}, "413", "Payload Too Large"),
				response.New(ErrorResponse{Code: "UNSUPPORTED_MEDIA", Message: "Unsupported media type"}, "415", "Unsupported Media Type"),
				response.New(ErrorResponse{Code: "INVALID_DOCUMENT", Message: "Invalid document format or corrupted file"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		// POST /v1/rules/validate - Validate fields against country rules
		endpoint.New(
			endpoint.POST,
			"/rules/validate",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("Validate document fields"),
			endpoint.WithDescription("Checks required fields, MRZ presence and expiry for a country and document type"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RuleValidateRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RuleValidateResponse{}, "200", "OK"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "country and document_type are required"}, "422", "Unprocessable Entity"),
				internalError,
			}),
		),

		// GET /v1/rules - Dump the rule table
		endpoint.New(
			endpoint.GET,
			"/rules",
			endpoint.WithTags("Rules"),
			endpoint.WithSummary("List country rules"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RulesResponse{}, "200", "OK"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
