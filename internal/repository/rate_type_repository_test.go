package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
	"github.com/ndewijer/Currency-Rate-Loader/internal/testutil"
)

func TestRateTypeRepository_ListRateTypes(t *testing.T) {
	t.Run("returns empty slice when no rate types exist", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)

		rateTypes, err := repo.ListRateTypes(context.Background())

		if err != nil {
			t.Fatalf("ListRateTypes() returned unexpected error: %v", err)
		}
		if rateTypes == nil || len(rateTypes) != 0 {
			t.Errorf("Expected empty slice, got %v", rateTypes)
		}
	})

	t.Run("active listing skips inactive rate types", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)
		testutil.NewRateType().WithName("a").Build(t, db)
		testutil.NewRateType().WithName("b").Inactive().Build(t, db)

		all, err := repo.ListRateTypes(context.Background())
		if err != nil {
			t.Fatalf("ListRateTypes() returned unexpected error: %v", err)
		}
		active, err := repo.ListActiveRateTypes(context.Background())
		if err != nil {
			t.Fatalf("ListActiveRateTypes() returned unexpected error: %v", err)
		}

		if len(all) != 2 {
			t.Errorf("Expected 2 rate types, got %d", len(all))
		}
		if len(active) != 1 || active[0].Name != "a" {
			t.Errorf("Expected only rate type a, got %+v", active)
		}
	})
}

func TestRateTypeRepository_GetRateType(t *testing.T) {
	t.Run("reads every column", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)
		lastRun := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		result := model.RunResult{Failure: &model.RunFailure{StatusCode: 503, Reason: "Service Unavailable"}}
		built := testutil.NewRateType().
			WithMethod(model.MethodGarantex).
			WithBaseCurrency("USDT").
			WithTickers("*RUB").
			WithInterval(30).
			WithLastRun(lastRun).
			WithLastResult(result).
			Build(t, db)

		rt, err := repo.GetRateType(context.Background(), built.ID)

		if err != nil {
			t.Fatalf("GetRateType() returned unexpected error: %v", err)
		}
		if rt.AutoloadMethod != model.MethodGarantex || rt.BaseCurrency != "USDT" || rt.Tickers != "*RUB" || rt.IntervalValue != 30 {
			t.Errorf("Unexpected rate type: %+v", rt)
		}
		if rt.LastRun == nil || !rt.LastRun.Equal(lastRun) {
			t.Errorf("Expected lastRun %v, got %v", lastRun, rt.LastRun)
		}
		if rt.LastResult == nil || rt.LastResult.Failure == nil || rt.LastResult.Failure.StatusCode != 503 {
			t.Errorf("Expected 503 failure result, got %+v", rt.LastResult)
		}
		if rt.CreatedAt.IsZero() {
			t.Error("Expected createdAt to be set")
		}
	})

	t.Run("never ran", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)
		built := testutil.NewRateType().Build(t, db)

		rt, err := repo.GetRateType(context.Background(), built.ID)

		if err != nil {
			t.Fatalf("GetRateType() returned unexpected error: %v", err)
		}
		if rt.LastRun != nil || rt.LastResult != nil || rt.BaseCurrency != "" {
			t.Errorf("Expected empty run fields and base, got %+v", rt)
		}
	})

	t.Run("missing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)

		_, err := repo.GetRateType(context.Background(), testutil.MakeID())

		if !errors.Is(err, apperrors.ErrRateTypeNotFound) {
			t.Errorf("Expected ErrRateTypeNotFound, got %v", err)
		}
	})
}

func TestRateTypeRepository_SaveRunResult(t *testing.T) {
	t.Run("stores records summary", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)
		built := testutil.NewRateType().Build(t, db)
		now := time.Date(2023, 6, 9, 12, 0, 0, 0, time.UTC)
		result := model.RunResult{Records: []model.RateRecord{
			{RateDate: "09.06.2023", CurrencyFrom: "USD", CurrencyTo: "RUB", Rate: "82.03", Nominal: 1},
			model.NotFoundRecord("09.06.2023", "XXX", "RUB"),
		}}

		if err := repo.SaveRunResult(context.Background(), built.ID, now, result); err != nil {
			t.Fatalf("SaveRunResult() returned unexpected error: %v", err)
		}

		rt, _ := repo.GetRateType(context.Background(), built.ID)
		if rt.LastRun == nil || !rt.LastRun.Equal(now) {
			t.Errorf("Expected lastRun %v, got %v", now, rt.LastRun)
		}
		if rt.LastResult == nil || len(rt.LastResult.Records) != 2 {
			t.Fatalf("Expected 2 stored records, got %+v", rt.LastResult)
		}
		if rt.LastResult.Records[1].Error == nil || rt.LastResult.Records[1].Error.Code != model.CodeNotFound {
			t.Errorf("Expected placeholder to survive, got %+v", rt.LastResult.Records[1])
		}
	})

	t.Run("missing rate type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)

		err := repo.SaveRunResult(context.Background(), testutil.MakeID(), time.Now(), model.RunResult{})

		if !errors.Is(err, apperrors.ErrRateTypeNotFound) {
			t.Errorf("Expected ErrRateTypeNotFound, got %v", err)
		}
	})
}

func TestRateTypeRepository_InsertRateType(t *testing.T) {
	t.Run("rejects duplicate names", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewRateTypeRepository(db)
		testutil.NewRateType().WithName("dup").Build(t, db)

		err := repo.InsertRateType(context.Background(), model.RateType{
			ID:             testutil.MakeID(),
			Name:           "dup",
			AutoloadMethod: model.MethodECB,
			Active:         true,
			IntervalValue:  1,
			CreatedAt:      time.Now(),
		})

		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}
