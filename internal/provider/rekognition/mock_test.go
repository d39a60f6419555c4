package rekognition

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// mockRekognitionAPI is a mock implementation of RekognitionAPI interface for testing
type mockRekognitionAPI struct {
	detectTextFunc func(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

func (m *mockRekognitionAPI) DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error) {
	if m.detectTextFunc != nil {
		return m.detectTextFunc(ctx, params, optFns...)
	}
	return &rekognition.DetectTextOutput{}, nil
}

var _ RekognitionAPI = (*mockRekognitionAPI)(nil)
