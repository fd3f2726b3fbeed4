package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/middleware"
)

func TestAPIKeyMiddleware(t *testing.T) {
	testAPIKey := "test-api-key-12345"

	serve := func(t *testing.T, key, header string) (*httptest.ResponseRecorder, bool) {
		t.Helper()
		handlerCalled := false
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		mw := middleware.NewAPIKeyMiddleware(key)(testHandler)

		req := httptest.NewRequest(http.MethodPost, "/test", nil)
		if header != "" {
			req.Header.Set(middleware.APIKeyHeader, header)
		}

		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)
		return w, handlerCalled
	}

	details := func(w *httptest.ResponseRecorder) string {
		var response map[string]string
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)
		return response["details"]
	}

	t.Run("rejects request without API key", func(t *testing.T) {
		w, handlerCalled := serve(t, testAPIKey, "")

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := details(w); got != "Missing API key" {
			t.Errorf("Expected 'Missing API key' error, got '%s'", got)
		}
	})

	t.Run("rejects request with invalid API key", func(t *testing.T) {
		w, handlerCalled := serve(t, testAPIKey, "invalid")

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", w.Code)
		}
		if got := details(w); got != "Invalid API key" {
			t.Errorf("Expected 'Invalid API key' error, got '%s'", got)
		}
	})

	t.Run("allows request with valid API key", func(t *testing.T) {
		w, handlerCalled := serve(t, testAPIKey, testAPIKey)

		if !handlerCalled {
			t.Error("Expected handler to complete.")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	t.Run("fails when no key is configured", func(t *testing.T) {
		w, handlerCalled := serve(t, "", testAPIKey)

		if handlerCalled {
			t.Error("Expected request not to complete.")
		}
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", w.Code)
		}
		if got := details(w); got != "Authentication not loaded" {
			t.Errorf("Expected 'Authentication not loaded' error, got '%s'", got)
		}
	})
}
