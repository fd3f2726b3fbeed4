package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/request"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/provider"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// RateTypeService handles rate type configuration and the rates stored for it.
type RateTypeService struct {
	rateTypeRepo *repository.RateTypeRepository
	rateRepo     *repository.CurrencyRateRepository
}

// NewRateTypeService creates a new RateTypeService with the provided repository dependencies.
func NewRateTypeService(
	rateTypeRepo *repository.RateTypeRepository,
	rateRepo *repository.CurrencyRateRepository,
) *RateTypeService {
	return &RateTypeService{
		rateTypeRepo: rateTypeRepo,
		rateRepo:     rateRepo,
	}
}

// GetRateTypes retrieves all rate types.
func (s *RateTypeService) GetRateTypes(ctx context.Context) ([]model.RateType, error) {
	return s.rateTypeRepo.ListRateTypes(ctx)
}

// GetRateType retrieves a single rate type.
// Returns apperrors.ErrRateTypeNotFound if it does not exist.
func (s *RateTypeService) GetRateType(ctx context.Context, id string) (model.RateType, error) {
	return s.rateTypeRepo.GetRateType(ctx, id)
}

// CreateRateType stores a new rate type. New rate types are active and
// run every minute unless the request says otherwise.
//
// Tickers are checked against the selected provider before saving; a
// *ticker.FormatError is returned for tickers it would reject at run time.
func (s *RateTypeService) CreateRateType(ctx context.Context, req request.CreateRateTypeRequest) (*model.RateType, error) {
	rt := model.RateType{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		AutoloadMethod: req.AutoloadMethod,
		BaseCurrency:   normalizeCurrency(req.BaseCurrency),
		Active:         true,
		IntervalValue:  1,
		Tickers:        strings.TrimSpace(req.Tickers),
		CreatedAt:      time.Now().UTC(),
	}
	if req.Active != nil {
		rt.Active = *req.Active
	}
	if req.IntervalValue > 0 {
		rt.IntervalValue = req.IntervalValue
	}

	if err := checkTickers(rt); err != nil {
		return nil, err
	}

	if err := s.rateTypeRepo.InsertRateType(ctx, rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// UpdateRateType applies the provided fields to an existing rate type.
func (s *RateTypeService) UpdateRateType(ctx context.Context, id string, req request.UpdateRateTypeRequest) (*model.RateType, error) {
	rt, err := s.rateTypeRepo.GetRateType(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rt.Name = strings.TrimSpace(*req.Name)
	}
	if req.AutoloadMethod != nil {
		rt.AutoloadMethod = *req.AutoloadMethod
	}
	if req.BaseCurrency != nil {
		rt.BaseCurrency = normalizeCurrency(*req.BaseCurrency)
	}
	if req.Active != nil {
		rt.Active = *req.Active
	}
	if req.IntervalValue != nil {
		rt.IntervalValue = *req.IntervalValue
	}
	if req.Tickers != nil {
		rt.Tickers = strings.TrimSpace(*req.Tickers)
	}

	if err := checkTickers(rt); err != nil {
		return nil, err
	}

	if err := s.rateTypeRepo.UpdateRateType(ctx, rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

// DeleteRateType removes a rate type together with its stored rates.
func (s *RateTypeService) DeleteRateType(ctx context.Context, id string) error {
	return s.rateTypeRepo.DeleteRateType(ctx, id)
}

// GetRates retrieves the stored rates of a rate type.
// Returns apperrors.ErrRateTypeNotFound if the rate type does not exist.
func (s *RateTypeService) GetRates(ctx context.Context, rateTypeID string, filter model.CurrencyRateFilter) ([]model.CurrencyRate, error) {
	if _, err := s.rateTypeRepo.GetRateType(ctx, rateTypeID); err != nil {
		return nil, err
	}

	rates, err := s.rateRepo.ListByRateType(ctx, rateTypeID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return rates, nil
}

// Methods returns the selectable autoload methods and whether each one can run.
func (s *RateTypeService) Methods() []MethodInfo {
	methods := make([]MethodInfo, 0, len(model.AutoloadMethods))
	for _, m := range model.AutoloadMethods {
		methods = append(methods, MethodInfo{Method: m, Runnable: provider.IsRegistered(m)})
	}
	return methods
}

// MethodInfo describes an autoload method.
type MethodInfo struct {
	Method   string `json:"method"`
	Runnable bool   `json:"runnable"`
}

func normalizeCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// checkTickers validates the tickers of rt against its provider.
// Rate types without a runnable method are not checked.
func checkTickers(rt model.RateType) error {
	if !provider.IsRegistered(rt.AutoloadMethod) {
		return nil
	}
	adapter, err := provider.New(rt.AutoloadMethod, provider.Options{BaseCurrency: rt.BaseCurrency})
	if err != nil {
		return err
	}
	return adapter.ValidateTickers(ticker.Parse(rt.Tickers))
}
