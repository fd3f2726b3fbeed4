package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Currency-Rate-Loader/internal/config"
)

func TestNewWithOutput(t *testing.T) {
	t.Run("json format emits structured fields", func(t *testing.T) {
		// Setup
		var buf bytes.Buffer
		logger, err := NewWithOutput(config.LogConfig{Level: "debug", Format: "json"}, &buf)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		// Execute
		logger.WithField("rate_type", "cbrf").Debug("stage changed")

		// Assert
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("Failed to decode log entry %q: %v", buf.String(), err)
		}
		if entry["rate_type"] != "cbrf" {
			t.Errorf("Expected rate_type cbrf, got %v", entry["rate_type"])
		}
		if entry["msg"] != "stage changed" {
			t.Errorf("Expected msg 'stage changed', got %v", entry["msg"])
		}
	})

	t.Run("level filters lower entries", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewWithOutput(config.LogConfig{Level: "warn"}, &buf)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		logger.Info("hidden")

		if buf.Len() != 0 {
			t.Errorf("Expected no output, got %q", buf.String())
		}
		if logger.GetLevel() != logrus.WarnLevel {
			t.Errorf("Expected level warn, got %v", logger.GetLevel())
		}
	})

	t.Run("unknown level is rejected", func(t *testing.T) {
		if _, err := NewWithOutput(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
			t.Error("Expected an error for level loud")
		}
	})
}
