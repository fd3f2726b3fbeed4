package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	t.Run("logs method path and status", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		handler := chimw.RequestID(middleware.Logger(logger)(next))

		req := httptest.NewRequest(http.MethodGet, "/api/method", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if len(hook.Entries) != 1 {
			t.Fatalf("Expected 1 log entry, got %d", len(hook.Entries))
		}

		entry := hook.LastEntry()
		if entry.Level != logrus.InfoLevel {
			t.Errorf("Expected info level, got %s", entry.Level)
		}
		if entry.Data["method"] != http.MethodGet {
			t.Errorf("Expected method GET, got %v", entry.Data["method"])
		}
		if entry.Data["path"] != "/api/method" {
			t.Errorf("Expected path /api/method, got %v", entry.Data["path"])
		}
		if entry.Data["status"] != http.StatusTeapot {
			t.Errorf("Expected status 418, got %v", entry.Data["status"])
		}
		if entry.Data["request_id"] == nil {
			t.Error("Expected request_id to be logged")
		}
	})

	t.Run("defaults status to 200", func(t *testing.T) {
		logger, hook := test.NewNullLogger()

		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		middleware.Logger(logger)(next).ServeHTTP(w, req)

		if entry := hook.LastEntry(); entry == nil || entry.Data["status"] != http.StatusOK {
			t.Errorf("Expected status 200 to be logged, got %+v", entry)
		}
	})
}
