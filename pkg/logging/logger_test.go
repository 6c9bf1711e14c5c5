package logging

import (
	"testing"
)

func TestCaptureLoggingForTest(t *testing.T) {
	captured := CaptureLoggingForTest(t)

	Warn().Str("file", "./a.insert").Msg("skipped")

	captured.AssertContains(t, "skipped")
	captured.AssertNotContains(t, "published")
	if captured.Count() != 1 {
		t.Errorf("Expected 1 log entry, got %d", captured.Count())
	}
}

func TestSetDefault(t *testing.T) {
	original := *Default()
	defer SetDefault(original)

	testLogger := NewTestLogger(t)
	SetDefault(*testLogger.Logger)

	Default().Info().Msg("info message")
	testLogger.AssertContains(t, "info message")
}
