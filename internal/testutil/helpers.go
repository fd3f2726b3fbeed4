package testutil

import (
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Currency-Rate-Loader/internal/events"
	"github.com/ndewijer/Currency-Rate-Loader/internal/logging"
	"github.com/ndewijer/Currency-Rate-Loader/internal/metrics"
	"github.com/ndewijer/Currency-Rate-Loader/internal/provider"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
	"github.com/ndewijer/Currency-Rate-Loader/internal/service"
)

func NewTestRateTypeService(t *testing.T, db *sql.DB) *service.RateTypeService {
	t.Helper()

	return service.NewRateTypeService(
		repository.NewRateTypeRepository(db),
		repository.NewCurrencyRateRepository(db),
	)
}

// NewTestRateLoaderService creates a RateLoaderService that talks to transport,
// records metrics on a private registry and reads the clock from now.
func NewTestRateLoaderService(t *testing.T, db *sql.DB, transport provider.Transport, now time.Time) *service.RateLoaderService {
	t.Helper()

	return NewTestRateLoaderServiceWithPublisher(t, db, transport, now, events.NoopPublisher{})
}

// NewTestRateLoaderServiceWithPublisher is NewTestRateLoaderService with a custom event publisher.
func NewTestRateLoaderServiceWithPublisher(
	t *testing.T,
	db *sql.DB,
	transport provider.Transport,
	now time.Time,
	publisher events.Publisher,
) *service.RateLoaderService {
	t.Helper()

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("Failed to register test metrics: %v", err)
	}

	return service.NewRateLoaderService(
		repository.NewRateTypeRepository(db),
		repository.NewCurrencyRateRepository(db),
		transport,
		publisher,
		m,
		TestLogger(),
		service.WithClock(func() time.Time { return now }),
	)
}

func NewTestSchedulerService(t *testing.T, db *sql.DB, loader *service.RateLoaderService, workers int) *service.SchedulerService {
	t.Helper()

	return service.NewSchedulerService(
		repository.NewRateTypeRepository(db),
		loader,
		"@every 1m",
		workers,
		TestLogger(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// TestLogger returns a logger that discards its output.
func TestLogger() *logrus.Logger {
	return logging.Discard()
}

// MakeID generates a new UUID string.
func MakeID() string {
	return uuid.New().String()
}

// MakeRateTypeName generates a unique rate type name that fits the
// 20 character column.
//
// Example:
//
//	name := testutil.MakeRateTypeName("CBRF")  // "CBRF a1B2c3"
func MakeRateTypeName(base string) string {
	if base == "" {
		base = "RateType"
	}
	if len(base) > 13 {
		base = base[:13]
	}
	return base + " " + randomAlphanumeric(6)
}

func randomAlphanumeric(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		//nolint:gosec // G404: Test data generation doesn't need crypto-grade randomness
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
