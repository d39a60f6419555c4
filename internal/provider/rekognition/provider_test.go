package rekognition

import (
	"context"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/mrz"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider"
)

func ptr[T any](v T) *T {
	return &v
}

// fakeImageData returns fake image data with minimum valid size
func fakeImageData() []byte {
	data := make([]byte, 150)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

type recordingAuditLogger struct {
	events []audit.Event
}

func (r *recordingAuditLogger) Log(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func line(text string, confidence float32) types.TextDetection {
	return types.TextDetection{
		DetectedText: ptr(text),
		Type:         types.TextTypesLine,
		Confidence:   ptr(confidence),
	}
}

func word(text string) types.TextDetection {
	return types.TextDetection{
		DetectedText: ptr(text),
		Type:         types.TextTypesWord,
		Confidence:   ptr(float32(99)),
	}
}

func TestProviderImplementsInterface(t *testing.T) {
	var _ provider.TextExtractor = (*Provider)(nil)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, float32(50), cfg.MinLineConfidence)
}

func TestExtractText_Success(t *testing.T) {
	var gotInput *rekognition.DetectTextInput
	mock := &mockRekognitionAPI{
		detectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
			gotInput = params
			return &rekognition.DetectTextOutput{
				TextDetections: []types.TextDetection{
					line("PASSPORT", 99),
					line("P<USADOE<<JOHN<MICHAEL<<<<<<<<<<<<<<<<<<<<<<", 97),
					line("X123456780USA9001151M3012315<<<<<<<<<<<<<<02", 96),
					line("smudge", 12),
					word("PASSPORT"),
				},
			}, nil
		},
	}

	auditLog := &recordingAuditLogger{}
	p := NewProviderWithClient(NewClientWithAPI(mock, DefaultConfig()), WithAuditLogger(auditLog))

	text, err := p.ExtractText(context.Background(), fakeImageData())
	require.NoError(t, err)

	require.NotNil(t, gotInput)
	assert.Equal(t, fakeImageData(), gotInput.Image.Bytes)
	assert.NotContains(t, text, "smudge", "low confidence lines are dropped")

	record := mrz.Parse(text)
	require.NotNil(t, record, "extracted text should feed the MRZ parser")
	assert.Equal(t, "DOE", record.LastName)

	require.Len(t, auditLog.events, 1)
	assert.True(t, auditLog.events[0].Success)
	assert.Equal(t, audit.EventTextExtracted, auditLog.events[0].EventType)
	assert.Equal(t, "3", auditLog.events[0].Metadata["lines_count"])
}

func TestExtractText_InvalidImage(t *testing.T) {
	called := false
	mock := &mockRekognitionAPI{
		detectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
			called = true
			return &rekognition.DetectTextOutput{}, nil
		},
	}
	p := NewProviderWithClient(NewClientWithAPI(mock, DefaultConfig()))

	tests := []struct {
		name  string
		image []byte
	}{
		{"empty", nil},
		{"too small", make([]byte, 10)},
		{"too large", make([]byte, maxImageSize+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ExtractText(context.Background(), tt.image)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}

	assert.False(t, called, "invalid images must not reach the API")
}

func TestExtractText_APIErrors(t *testing.T) {
	tests := []struct {
		name    string
		apiErr  error
		wantErr error
	}{
		{
			name:    "access denied",
			apiErr:  &smithy.GenericAPIError{Code: errCodeAccessDenied, Message: "denied"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "invalid format",
			apiErr:  &smithy.GenericAPIError{Code: errCodeInvalidImageFormat, Message: "bad format"},
			wantErr: ErrInvalidImage,
		},
		{
			name:    "throttled",
			apiErr:  &smithy.GenericAPIError{Code: errCodeThrottling, Message: "slow down"},
			wantErr: ErrThrottled,
		},
		{
			name:    "unknown error passes through",
			apiErr:  assert.AnError,
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRekognitionAPI{
				detectTextFunc: func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
					return nil, tt.apiErr
				},
			}
			auditLog := &recordingAuditLogger{}
			p := NewProviderWithClient(NewClientWithAPI(mock, DefaultConfig()), WithAuditLogger(auditLog))

			text, err := p.ExtractText(context.Background(), fakeImageData())

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, text)
			require.Len(t, auditLog.events, 1)
			assert.False(t, auditLog.events[0].Success)
		})
	}
}

func TestParseAPIError(t *testing.T) {
	assert.NoError(t, ParseAPIError(nil))
	assert.ErrorIs(t, ParseAPIError(assert.AnError), assert.AnError)
}

// skipIfNoAWSCredentials skips the test if AWS credentials are not configured
func skipIfNoAWSCredentials(t *testing.T) {
	t.Helper()

	if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		t.Skip("Skipping integration test: AWS_ACCESS_KEY_ID not set")
	}
}

func TestIntegration_NewProvider(t *testing.T) {
	skipIfNoAWSCredentials(t)

	p, err := NewProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, p)
}
