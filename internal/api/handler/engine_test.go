package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/rules"
)

// MockEngineService is a mock implementation of EngineService
type MockEngineService struct {
	mock.Mock
}

func (m *MockEngineService) ParseMRZ(ctx context.Context, text string) *domain.MRZRecord {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.MRZRecord)
}

func (m *MockEngineService) AnalyzeQuality(ctx context.Context, image []byte) domain.ImageQuality {
	args := m.Called(ctx, image)
	return args.Get(0).(domain.ImageQuality)
}

func (m *MockEngineService) ValidateRules(ctx context.Context, country, documentType string, fields map[string]string, mrzPresent bool) *domain.RuleValidation {
	args := m.Called(ctx, country, documentType, fields, mrzPresent)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.RuleValidation)
}

func newEngineApp(svc EngineService) *fiber.App {
	h := NewEngineHandler(svc, rules.DefaultTable(), 0)
	app := createTestApp()
	app.Post("/v1/mrz/parse", h.ParseMRZ)
	app.Post("/v1/quality", h.AnalyzeQuality)
	app.Post("/v1/rules/validate", h.ValidateRules)
	app.Get("/v1/rules", h.Rules)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}

func TestEngineHandler_ParseMRZ(t *testing.T) {
	t.Run("record found", func(t *testing.T) {
		svc := &MockEngineService{}
		svc.On("ParseMRZ", mock.Anything, "P<UTO...").Return(&domain.MRZRecord{
			Format:         domain.MRZFormatTD3,
			DocumentNumber: "L898902C3",
		})

		status, body := postJSON(t, newEngineApp(svc), "/v1/mrz/parse", `{"text":"P<UTO..."}`)
		assert.Equal(t, 200, status)

		var resp MRZParseResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.True(t, resp.Found)
		require.NotNil(t, resp.MRZ)
		assert.Equal(t, domain.MRZFormatTD3, resp.MRZ.Format)
		assert.Equal(t, "L898902C3", resp.MRZ.DocumentNumber)
		svc.AssertExpectations(t)
	})

	t.Run("no record", func(t *testing.T) {
		svc := &MockEngineService{}
		svc.On("ParseMRZ", mock.Anything, "hello").Return(nil)

		status, body := postJSON(t, newEngineApp(svc), "/v1/mrz/parse", `{"text":"hello"}`)
		assert.Equal(t, 200, status)
		assert.JSONEq(t, `{"found":false}`, string(body))
	})

	t.Run("malformed body", func(t *testing.T) {
		svc := &MockEngineService{}
		status, _ := postJSON(t, newEngineApp(svc), "/v1/mrz/parse", `{"text":`)
		assert.Equal(t, 400, status)
		svc.AssertNotCalled(t, "ParseMRZ", mock.Anything, mock.Anything)
	})
}

func TestEngineHandler_AnalyzeQuality(t *testing.T) {
	blur := 320.5
	brightness := 128.0
	contrast := 40.0

	tests := []struct {
		name           string
		files          []formFile
		setupMock      func(*MockEngineService)
		expectedStatus int
	}{
		{
			name: "decoded image",
			files: []formFile{
				{field: "image", filename: "doc.png", contentType: "image/png", content: make([]byte, 4096)},
			},
			setupMock: func(m *MockEngineService) {
				m.On("AnalyzeQuality", mock.Anything, mock.Anything).Return(domain.ImageQuality{
					BlurScore:  &blur,
					Brightness: &brightness,
					Contrast:   &contrast,
					Width:      640,
					Height:     400,
				})
			},
			expectedStatus: 200,
		},
		{
			name: "undecodable image",
			files: []formFile{
				{field: "image", filename: "doc.png", contentType: "image/png", content: []byte("not really a png")},
			},
			setupMock: func(m *MockEngineService) {
				m.On("AnalyzeQuality", mock.Anything, mock.Anything).Return(domain.ImageQuality{})
			},
			expectedStatus: 422,
		},
		{
			name:           "missing image",
			setupMock:      func(m *MockEngineService) {},
			expectedStatus: 422,
		},
		{
			name: "unsupported content type",
			files: []formFile{
				{field: "image", filename: "doc.txt", contentType: "text/plain", content: []byte("hello")},
			},
			setupMock:      func(m *MockEngineService) {},
			expectedStatus: 415,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockEngineService{}
			tt.setupMock(svc)
			app := newEngineApp(svc)

			body, contentType := createMultipartRequest(nil, tt.files...)
			req := httptest.NewRequest("POST", "/v1/quality", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == 200 {
				var q domain.ImageQuality
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&q))
				require.NotNil(t, q.BlurScore)
				assert.Equal(t, blur, *q.BlurScore)
				assert.Equal(t, 640, q.Width)
			}

			svc.AssertExpectations(t)
		})
	}
}

func TestEngineHandler_ValidateRules(t *testing.T) {
	t.Run("applicable rule", func(t *testing.T) {
		svc := &MockEngineService{}
		fields := map[string]string{"documentNumber": "X1"}
		svc.On("ValidateRules", mock.Anything, "BR", "passport", fields, true).Return(&domain.RuleValidation{
			Country:       "BR",
			DocumentType:  "passport",
			Passed:        false,
			MissingFields: []string{"expiryDate"},
			Messages:      []string{},
		})

		status, body := postJSON(t, newEngineApp(svc), "/v1/rules/validate",
			`{"country":"BR","document_type":"passport","fields":{"documentNumber":"X1"},"mrz_present":true}`)
		assert.Equal(t, 200, status)

		var resp RuleValidateResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.True(t, resp.Applicable)
		require.NotNil(t, resp.Result)
		assert.False(t, resp.Result.Passed)
		assert.Equal(t, []string{"expiryDate"}, resp.Result.MissingFields)
		svc.AssertExpectations(t)
	})

	t.Run("no rule for pair", func(t *testing.T) {
		svc := &MockEngineService{}
		svc.On("ValidateRules", mock.Anything, "ZZ", "passport", map[string]string(nil), false).Return(nil)

		status, body := postJSON(t, newEngineApp(svc), "/v1/rules/validate", `{"country":"ZZ","document_type":"passport"}`)
		assert.Equal(t, 200, status)
		assert.JSONEq(t, `{"applicable":false}`, string(body))
	})

	t.Run("missing country", func(t *testing.T) {
		svc := &MockEngineService{}
		status, body := postJSON(t, newEngineApp(svc), "/v1/rules/validate", `{"document_type":"passport"}`)
		assert.Equal(t, 422, status)
		assert.Equal(t, "VALIDATION_FAILED", readAppError(t, body).Code)
	})
}

func TestEngineHandler_Rules(t *testing.T) {
	app := newEngineApp(&MockEngineService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/rules", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var out RulesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, len(rules.DefaultTable().Countries()), len(out.Countries))
	assert.NotEmpty(t, out.Countries)
}
