package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil))), &buf
}

func TestSlogLogger_Log(t *testing.T) {
	tests := []struct {
		name          string
		event         Event
		wantEventType string
		wantProvider  string
		wantHasError  bool
		wantVerifyID  bool
	}{
		{
			name: "text extracted event",
			event: Event{
				EventType: EventTextExtracted,
				Provider:  "rekognition",
				Success:   true,
				Metadata:  map[string]string{"lines_count": "3"},
			},
			wantEventType: string(EventTextExtracted),
			wantProvider:  "rekognition",
		},
		{
			name: "verification completed with id",
			event: Event{
				VerificationID: uuid.New(),
				EventType:      EventVerificationCompleted,
				Country:        "USA",
				DocumentType:   "passport",
				Provider:       "mock",
				Success:        true,
			},
			wantEventType: string(EventVerificationCompleted),
			wantProvider:  "mock",
			wantVerifyID:  true,
		},
		{
			name: "failed liveness probe",
			event: Event{
				EventType: EventLivenessProbed,
				Provider:  "http",
				Success:   false,
				Error:     "connection refused",
			},
			wantEventType: string(EventLivenessProbed),
			wantProvider:  "http",
			wantHasError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditLogger, buf := newBufferedLogger()

			err := auditLogger.Log(context.Background(), tt.event)
			require.NoError(t, err)

			output := buf.String()
			assert.Contains(t, output, tt.wantEventType)
			assert.Contains(t, output, tt.wantProvider)
			assert.Contains(t, output, "audit_event")
			assert.Contains(t, output, `"component":"audit"`)

			if tt.wantHasError {
				assert.Contains(t, output, tt.event.Error)
			}
			if tt.wantVerifyID {
				assert.Contains(t, output, tt.event.VerificationID.String())
			}
		})
	}
}

func TestSlogLogger_Log_GeneratesIDAndTimestamp(t *testing.T) {
	auditLogger, buf := newBufferedLogger()

	err := auditLogger.Log(context.Background(), Event{
		EventType: EventMRZParsed,
		Provider:  "mrz",
		Success:   true,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &logEntry))

	eventID, ok := logEntry["event_id"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(eventID)
	assert.NoError(t, err)

	var data Event
	require.NoError(t, json.Unmarshal([]byte(logEntry["event_data"].(string)), &data))
	assert.False(t, data.Timestamp.IsZero())
}

func TestSlogLogger_Log_UsesProvidedIDAndTimestamp(t *testing.T) {
	auditLogger, buf := newBufferedLogger()
	expectedID := uuid.New()

	err := auditLogger.Log(context.Background(), Event{
		ID:        expectedID,
		Timestamp: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		EventType: EventRulesValidated,
		Provider:  "rules",
		Success:   true,
	})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), expectedID.String())
	assert.Contains(t, buf.String(), "2026-01-15T10:30:00Z")
}

func TestNoOpLogger_Log(t *testing.T) {
	logger := &NoOpLogger{}

	for i := 0; i < 10; i++ {
		assert.NoError(t, logger.Log(context.Background(), Event{EventType: EventQualityAnalyzed}))
	}
}

func TestLoggerInterface_Compliance(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoOpLogger)(nil)
}

func TestEvent_JSONSerialization_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Event{
		EventType: EventMRZParsed,
		Provider:  "mrz",
		Success:   true,
	})
	require.NoError(t, err)

	jsonStr := string(data)
	assert.NotContains(t, jsonStr, "country")
	assert.NotContains(t, jsonStr, "document_type")
	assert.NotContains(t, jsonStr, "error")
	assert.NotContains(t, jsonStr, "ip_address")
	assert.NotContains(t, jsonStr, "user_agent")
}
