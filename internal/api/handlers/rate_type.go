package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api/request"
	"github.com/ndewijer/Currency-Rate-Loader/internal/api/response"
	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/service"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
	"github.com/ndewijer/Currency-Rate-Loader/internal/validation"
)

// RateTypeHandler handles rate type HTTP requests.
type RateTypeHandler struct {
	rateTypeService *service.RateTypeService
	loaderService   *service.RateLoaderService
}

// NewRateTypeHandler creates a new RateTypeHandler with the provided service dependencies.
func NewRateTypeHandler(rateTypeService *service.RateTypeService, loaderService *service.RateLoaderService) *RateTypeHandler {
	return &RateTypeHandler{
		rateTypeService: rateTypeService,
		loaderService:   loaderService,
	}
}

// Methods handles GET requests listing the selectable autoload methods.
//
// Endpoint: GET /api/method
// Response: 200 OK with array of MethodInfo
func (h *RateTypeHandler) Methods(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.rateTypeService.Methods())
}

// RateTypes handles GET requests to retrieve all rate types.
//
// Endpoint: GET /api/rate-type
// Response: 200 OK with array of RateType
// Error: 500 Internal Server Error if retrieval fails
func (h *RateTypeHandler) RateTypes(w http.ResponseWriter, r *http.Request) {
	rateTypes, err := h.rateTypeService.GetRateTypes(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRateTypes.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rateTypes)
}

// GetRateType handles GET requests to retrieve a single rate type.
//
// Endpoint: GET /api/rate-type/{uuid}
// Response: 200 OK with RateType
// Error: 400 Bad Request if the ID is invalid (validated by middleware)
// Error: 404 Not Found if the rate type does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *RateTypeHandler) GetRateType(w http.ResponseWriter, r *http.Request) {
	rateTypeID := chi.URLParam(r, "uuid")

	rt, err := h.rateTypeService.GetRateType(r.Context(), rateTypeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateTypeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRateTypeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRateType.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rt)
}

// CreateRateType handles POST requests to create a rate type.
//
// Endpoint: POST /api/rate-type
// Request Body: CreateRateTypeRequest (name, autoloadMethod required)
// Response: 201 Created with RateType
// Error: 400 Bad Request if the body is invalid, validation fails or the tickers are rejected by the provider
// Error: 409 Conflict if the name is taken
// Error: 500 Internal Server Error if creation fails
func (h *RateTypeHandler) CreateRateType(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateRateTypeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateRateType(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rt, err := h.rateTypeService.CreateRateType(r.Context(), req)
	if err != nil {
		h.respondWriteError(w, err, apperrors.ErrFailedToCreateRateType)
		return
	}

	response.RespondJSON(w, http.StatusCreated, rt)
}

// UpdateRateType handles PUT requests to update a rate type.
//
// Endpoint: PUT /api/rate-type/{uuid}
// Request Body: UpdateRateTypeRequest (all fields optional)
// Response: 200 OK with updated RateType
// Error: 400 Bad Request if validation fails or the tickers are rejected by the provider
// Error: 404 Not Found if the rate type does not exist
// Error: 409 Conflict if the new name is taken
// Error: 500 Internal Server Error if update fails
func (h *RateTypeHandler) UpdateRateType(w http.ResponseWriter, r *http.Request) {
	rateTypeID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.UpdateRateTypeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateRateType(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rt, err := h.rateTypeService.UpdateRateType(r.Context(), rateTypeID, req)
	if err != nil {
		h.respondWriteError(w, err, apperrors.ErrFailedToUpdateRateType)
		return
	}

	response.RespondJSON(w, http.StatusOK, rt)
}

// DeleteRateType handles DELETE requests to remove a rate type and its stored rates.
//
// Endpoint: DELETE /api/rate-type/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the rate type does not exist
// Error: 500 Internal Server Error if deletion fails
func (h *RateTypeHandler) DeleteRateType(w http.ResponseWriter, r *http.Request) {
	rateTypeID := chi.URLParam(r, "uuid")

	if err := h.rateTypeService.DeleteRateType(r.Context(), rateTypeID); err != nil {
		if errors.Is(err, apperrors.ErrRateTypeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRateTypeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToDeleteRateType.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// RunRateType handles POST requests to run one fetch cycle immediately.
// Upstream failures are part of the returned report, not HTTP errors.
//
// Endpoint: POST /api/rate-type/{uuid}/run
// Response: 200 OK with RunReport
// Error: 400 Bad Request if the stored tickers are invalid for the provider
// Error: 404 Not Found if the rate type does not exist
// Error: 422 Unprocessable Entity if the autoload method cannot run
// Error: 500 Internal Server Error if the cycle fails
func (h *RateTypeHandler) RunRateType(w http.ResponseWriter, r *http.Request) {
	rateTypeID := chi.URLParam(r, "uuid")

	report, err := h.loaderService.Run(r.Context(), rateTypeID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRateTypeNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRateTypeNotFound.Error(), err.Error())
		case errors.Is(err, ticker.ErrTickerFormat):
			response.RespondError(w, http.StatusBadRequest, ticker.ErrTickerFormat.Error(), err.Error())
		case errors.Is(err, apperrors.ErrUnknownMethod):
			response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrUnknownMethod.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRunRateType.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

// Rates handles GET requests to retrieve the rates stored for a rate type, newest first.
//
// Endpoint: GET /api/rate-type/{uuid}/rate
// Query Parameters: from, to (currency codes), date (YYYY-MM-DD), limit
// Response: 200 OK with array of CurrencyRate
// Error: 400 Bad Request if a filter is invalid
// Error: 404 Not Found if the rate type does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *RateTypeHandler) Rates(w http.ResponseWriter, r *http.Request) {
	rateTypeID := chi.URLParam(r, "uuid")
	query := r.URL.Query()

	req := request.RateFilterRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
		Date: query.Get("date"),
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "validation failed", "limit: must be a number")
			return
		}
		req.Limit = n
	}

	if err := validation.ValidateRateFilter(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	filter := model.CurrencyRateFilter{
		CurrencyFrom: req.From,
		CurrencyTo:   req.To,
		Limit:        req.Limit,
	}
	if req.Date != "" {
		// format checked by the validator
		filter.RateDate, _ = time.Parse("2006-01-02", req.Date)
	}

	rates, err := h.rateTypeService.GetRates(r.Context(), rateTypeID, filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrRateTypeNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrRateTypeNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveRates.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, rates)
}

// respondWriteError maps errors of create and update to HTTP statuses.
func (h *RateTypeHandler) respondWriteError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrRateTypeNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrRateTypeNotFound.Error(), err.Error())
	case errors.Is(err, ticker.ErrTickerFormat):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateEntry.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
