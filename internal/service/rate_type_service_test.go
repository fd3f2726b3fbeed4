package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/request"
	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/testutil"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

func strPtr(s string) *string { return &s }

func TestRateTypeService_CreateRateType(t *testing.T) {
	t.Run("applies defaults and uppercases base currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		rt, err := svc.CreateRateType(context.Background(), request.CreateRateTypeRequest{
			Name:           "Binance",
			AutoloadMethod: model.MethodBinance,
			BaseCurrency:   " usdt ",
			Tickers:        "BTCUSDT, ETH*",
		})

		if err != nil {
			t.Fatalf("CreateRateType() returned unexpected error: %v", err)
		}
		if rt.ID == "" {
			t.Error("Expected ID to be set")
		}
		if rt.BaseCurrency != "USDT" {
			t.Errorf("Expected base currency USDT, got %q", rt.BaseCurrency)
		}
		if !rt.Active || rt.IntervalValue != 1 {
			t.Errorf("Expected active with interval 1, got active=%v interval=%d", rt.Active, rt.IntervalValue)
		}
		testutil.AssertRowCount(t, db, "rate_type", 1)
	})

	t.Run("rejects tickers the provider cannot serve", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		_, err := svc.CreateRateType(context.Background(), request.CreateRateTypeRequest{
			Name:           "ECB",
			AutoloadMethod: model.MethodECB,
			Tickers:        "USD, DOLLAR",
		})

		if !errors.Is(err, ticker.ErrTickerFormat) {
			t.Errorf("Expected ticker format error, got %v", err)
		}
		testutil.AssertRowCount(t, db, "rate_type", 0)
	})

	t.Run("empty method skips ticker checks", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		_, err := svc.CreateRateType(context.Background(), request.CreateRateTypeRequest{
			Name:           "Manual",
			AutoloadMethod: model.MethodEmpty,
			Tickers:        "anything goes",
		})

		if err != nil {
			t.Errorf("CreateRateType() returned unexpected error: %v", err)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)
		testutil.NewRateType().WithName("CBRF").Build(t, db)

		_, err := svc.CreateRateType(context.Background(), request.CreateRateTypeRequest{
			Name:           "CBRF",
			AutoloadMethod: model.MethodCBRF,
		})

		if !errors.Is(err, apperrors.ErrDuplicateEntry) {
			t.Errorf("Expected ErrDuplicateEntry, got %v", err)
		}
	})
}

func TestRateTypeService_UpdateRateType(t *testing.T) {
	t.Run("updates only provided fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)
		existing := testutil.NewRateType().WithName("Old").WithTickers("USD").Build(t, db)

		interval := 15
		updated, err := svc.UpdateRateType(context.Background(), existing.ID, request.UpdateRateTypeRequest{
			Name:          strPtr("New"),
			IntervalValue: &interval,
		})

		if err != nil {
			t.Fatalf("UpdateRateType() returned unexpected error: %v", err)
		}
		if updated.Name != "New" || updated.IntervalValue != 15 {
			t.Errorf("Expected name New and interval 15, got %+v", updated)
		}
		if updated.Tickers != "USD" || updated.AutoloadMethod != model.MethodCBRF {
			t.Errorf("Expected untouched fields to persist, got %+v", updated)
		}

		reloaded, _ := svc.GetRateType(context.Background(), existing.ID)
		if reloaded.Name != "New" {
			t.Errorf("Expected stored name New, got %s", reloaded.Name)
		}
	})

	t.Run("switching method revalidates tickers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)
		existing := testutil.NewRateType().WithMethod(model.MethodBinance).WithTickers("BTCUSDT").Build(t, db)

		_, err := svc.UpdateRateType(context.Background(), existing.ID, request.UpdateRateTypeRequest{
			AutoloadMethod: strPtr(model.MethodCBRF),
		})

		if !errors.Is(err, ticker.ErrTickerFormat) {
			t.Errorf("Expected ticker format error, got %v", err)
		}
	})

	t.Run("missing rate type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		_, err := svc.UpdateRateType(context.Background(), testutil.MakeID(), request.UpdateRateTypeRequest{})

		if !errors.Is(err, apperrors.ErrRateTypeNotFound) {
			t.Errorf("Expected ErrRateTypeNotFound, got %v", err)
		}
	})
}

func TestRateTypeService_DeleteRateType(t *testing.T) {
	t.Run("cascades to stored rates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)
		rt := testutil.NewRateType().Build(t, db)
		testutil.NewCurrencyRate(rt.ID).Build(t, db)

		if err := svc.DeleteRateType(context.Background(), rt.ID); err != nil {
			t.Fatalf("DeleteRateType() returned unexpected error: %v", err)
		}

		testutil.AssertRowCount(t, db, "rate_type", 0)
		testutil.AssertRowCount(t, db, "currency_rate", 0)
	})

	t.Run("missing rate type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		err := svc.DeleteRateType(context.Background(), testutil.MakeID())

		if !errors.Is(err, apperrors.ErrRateTypeNotFound) {
			t.Errorf("Expected ErrRateTypeNotFound, got %v", err)
		}
	})
}

func TestRateTypeService_GetRates(t *testing.T) {
	t.Run("filters and orders newest first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)
		rt := testutil.NewRateType().Build(t, db)
		day1 := time.Date(2023, 6, 8, 0, 0, 0, 0, time.UTC)
		day2 := time.Date(2023, 6, 9, 0, 0, 0, 0, time.UTC)
		testutil.NewCurrencyRate(rt.ID).WithPair("USD", "RUB").WithDate(day1).WithRate("81.5").Build(t, db)
		testutil.NewCurrencyRate(rt.ID).WithPair("USD", "RUB").WithDate(day2).WithRate("82.03").Build(t, db)
		testutil.NewCurrencyRate(rt.ID).WithPair("EUR", "RUB").WithDate(day2).WithRate("88.151").Build(t, db)

		all, err := svc.GetRates(context.Background(), rt.ID, model.CurrencyRateFilter{})
		if err != nil {
			t.Fatalf("GetRates() returned unexpected error: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("Expected 3 rates, got %d", len(all))
		}
		if !all[0].RateDate.Equal(day2) || !all[2].RateDate.Equal(day1) {
			t.Errorf("Expected newest first, got %v .. %v", all[0].RateDate, all[2].RateDate)
		}

		usd, err := svc.GetRates(context.Background(), rt.ID, model.CurrencyRateFilter{CurrencyFrom: "usd", RateDate: day2})
		if err != nil {
			t.Fatalf("GetRates() returned unexpected error: %v", err)
		}
		if len(usd) != 1 || usd[0].Rate.String() != "82.03" {
			t.Errorf("Expected single USD rate 82.03, got %+v", usd)
		}
	})

	t.Run("missing rate type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestRateTypeService(t, db)

		_, err := svc.GetRates(context.Background(), testutil.MakeID(), model.CurrencyRateFilter{})

		if !errors.Is(err, apperrors.ErrRateTypeNotFound) {
			t.Errorf("Expected ErrRateTypeNotFound, got %v", err)
		}
	})
}

func TestRateTypeService_Methods(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestRateTypeService(t, db)

	methods := svc.Methods()

	if len(methods) != len(model.AutoloadMethods) {
		t.Fatalf("Expected %d methods, got %d", len(model.AutoloadMethods), len(methods))
	}
	for _, m := range methods {
		if m.Runnable == (m.Method == model.MethodEmpty) {
			t.Errorf("Unexpected runnable flag for %s: %v", m.Method, m.Runnable)
		}
	}
}
