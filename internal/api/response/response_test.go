package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondError(t *testing.T) {
	t.Run("writes error and details", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, http.StatusNotFound, "rate type not found", "no row")

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}

		var body map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if body["error"] != "rate type not found" || body["details"] != "no row" {
			t.Errorf("Unexpected body: %v", body)
		}
	})

	t.Run("omits empty details", func(t *testing.T) {
		w := httptest.NewRecorder()

		RespondError(w, http.StatusBadRequest, "bad", nil)

		var body map[string]any
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&body)

		if _, ok := body["details"]; ok {
			t.Errorf("Expected no details key, got %v", body)
		}
	})
}
