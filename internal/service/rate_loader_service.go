package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/events"
	"github.com/ndewijer/Currency-Rate-Loader/internal/metrics"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/provider"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
	"github.com/ndewijer/Currency-Rate-Loader/internal/ticker"
)

// Stored rates are DECIMAL(20,10): at most ten integer digits.
var (
	maxRateMagnitude = decimal.New(1, 10)
	rateScale        = int32(10)
)

var rateDateLayouts = []string{
	provider.DateLayout,
	"2006-01-02",
	time.RFC3339,
}

// DefaultCycleTimeout bounds a single fetch cycle.
const DefaultCycleTimeout = 10 * time.Minute

// RateLoaderOption customizes a RateLoaderService.
type RateLoaderOption func(*RateLoaderService)

// WithCycleTimeout sets how long one fetch cycle may take.
func WithCycleTimeout(d time.Duration) RateLoaderOption {
	return func(s *RateLoaderService) {
		if d > 0 {
			s.cycleTimeout = d
		}
	}
}

// WithClock sets the clock used for run timestamps and adapter dates.
func WithClock(now func() time.Time) RateLoaderOption {
	return func(s *RateLoaderService) {
		s.now = now
	}
}

// RateLoaderService runs fetch cycles: it loads a rate type, fetches its
// rates from the configured provider, stores the new ones and writes the
// run summary back to the rate type.
type RateLoaderService struct {
	rateTypeRepo *repository.RateTypeRepository
	rateRepo     *repository.CurrencyRateRepository
	transport    provider.Transport
	publisher    events.Publisher
	metrics      *metrics.Metrics
	logger       logrus.FieldLogger
	now          func() time.Time
	cycleTimeout time.Duration
	inflight     singleflight.Group
	running      sync.WaitGroup
}

// NewRateLoaderService creates a new RateLoaderService.
func NewRateLoaderService(
	rateTypeRepo *repository.RateTypeRepository,
	rateRepo *repository.CurrencyRateRepository,
	transport provider.Transport,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger logrus.FieldLogger,
	opts ...RateLoaderOption,
) *RateLoaderService {
	s := &RateLoaderService{
		rateTypeRepo: rateTypeRepo,
		rateRepo:     rateRepo,
		transport:    transport,
		publisher:    publisher,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
		cycleTimeout: DefaultCycleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trigger runs one cycle for the rate type and logs the outcome.
// It is what the scheduler calls.
func (s *RateLoaderService) Trigger(ctx context.Context, rateTypeID string) {
	report, err := s.Run(ctx, rateTypeID)
	if err != nil {
		s.logger.WithError(err).WithField("rate_type_id", rateTypeID).Error("fetch cycle aborted")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"rate_type_id": rateTypeID,
		"stage":        report.Stage,
		"inserted":     report.Inserted,
		"duplicates":   report.Duplicates,
		"not_found":    report.NotFound,
	}).Info("fetch cycle finished")
}

// Run performs one fetch cycle and returns its report.
//
// Concurrent calls for the same rate type share a single cycle. The cycle
// is not tied to any one caller: a caller whose ctx ends gets ctx.Err()
// while the cycle carries on for the others, bounded by the cycle timeout.
//
// An upstream failure is not an error: it ends the cycle in StageFailed and
// is recorded as the rate type's last result. Errors are returned for a
// missing rate type, an unknown method, invalid tickers and store failures;
// none of these are written back.
func (s *RateLoaderService) Run(ctx context.Context, rateTypeID string) (model.RunReport, error) {
	s.running.Add(1)
	ch := s.inflight.DoChan(rateTypeID, func() (any, error) {
		cycleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cycleTimeout)
		defer cancel()
		return s.run(cycleCtx, rateTypeID)
	})

	select {
	case <-ctx.Done():
		go func() {
			<-ch
			s.running.Done()
		}()
		return model.RunReport{RateTypeID: rateTypeID, Stage: model.StagePending}, ctx.Err()
	case res := <-ch:
		s.running.Done()
		report, _ := res.Val.(model.RunReport)
		return report, res.Err
	}
}

// Wait blocks until every started cycle has returned, including cycles
// whose callers have already gone.
func (s *RateLoaderService) Wait() {
	s.running.Wait()
}

func (s *RateLoaderService) run(ctx context.Context, rateTypeID string) (model.RunReport, error) {
	report := model.RunReport{RateTypeID: rateTypeID, Stage: model.StagePending}

	rt, err := s.rateTypeRepo.GetRateType(ctx, rateTypeID)
	if err != nil {
		report.Stage = model.StageFailed
		return report, err
	}

	started := time.Now()
	log := s.logger.WithFields(logrus.Fields{
		"rate_type":    rt.Name,
		"rate_type_id": rt.ID,
		"method":       rt.AutoloadMethod,
	})
	enter := func(stage model.RunStage) {
		report.Stage = stage
		log.WithField("stage", stage).Debug("fetch cycle stage")
	}
	finish := func(outcome string) {
		s.metrics.ObserveCycle(rt.AutoloadMethod, outcome, time.Since(started).Seconds())
	}

	enter(model.StagePending)

	adapter, err := provider.New(rt.AutoloadMethod, provider.Options{
		BaseCurrency: rt.BaseCurrency,
		Now:          s.now,
	})
	if err != nil {
		enter(model.StageFailed)
		finish(metrics.OutcomeInvalid)
		return report, err
	}

	enter(model.StageValidating)
	spec := ticker.Parse(rt.Tickers)
	if err := adapter.ValidateTickers(spec); err != nil {
		enter(model.StageFailed)
		log.WithError(err).Warn("rate type has invalid tickers")
		finish(metrics.OutcomeInvalid)
		return report, err
	}

	enter(model.StageRequesting)
	records, err := provider.Fetch(ctx, adapter, s.transport, spec)
	if err != nil {
		failure, ok := provider.Failure(err)
		if !ok {
			enter(model.StageFailed)
			finish(metrics.OutcomeFailed)
			return report, fmt.Errorf("failed to fetch rates: %w", err)
		}

		log.WithError(err).Warn("upstream request failed")
		report.Result = model.RunResult{Failure: &failure}
		if err := s.rateTypeRepo.SaveRunResult(ctx, rt.ID, s.now(), report.Result); err != nil {
			enter(model.StageFailed)
			finish(metrics.OutcomeFailed)
			return report, err
		}
		enter(model.StageFailed)
		finish(metrics.OutcomeFailed)
		return report, nil
	}

	enter(model.StageNormalizing)
	for _, rec := range records {
		if rec.Error != nil && rec.Error.Code == model.CodeNotFound {
			report.NotFound++
		}
	}
	s.metrics.RecordsNotFound.WithLabelValues(rt.AutoloadMethod).Add(float64(report.NotFound))

	enter(model.StagePersisting)
	summary := make([]model.RateRecord, 0, len(records))
	for _, rec := range records {
		annotated, err := s.persist(ctx, rt, rec, &report)
		if err != nil {
			enter(model.StageFailed)
			finish(metrics.OutcomeFailed)
			return report, err
		}
		summary = append(summary, annotated)
	}
	report.Result = model.RunResult{Records: summary}

	if err := s.rateTypeRepo.SaveRunResult(ctx, rt.ID, s.now(), report.Result); err != nil {
		enter(model.StageFailed)
		finish(metrics.OutcomeFailed)
		return report, err
	}

	enter(model.StageDone)
	finish(metrics.OutcomeDone)
	return report, nil
}

// persist stores rec unless it is a placeholder, invalid or already stored,
// and returns the record as it appears in the run summary.
func (s *RateLoaderService) persist(ctx context.Context, rt model.RateType, rec model.RateRecord, report *model.RunReport) (model.RateRecord, error) {
	if rec.IsPlaceholder() {
		return rec, nil
	}

	rate, err := toCurrencyRate(rt.ID, rec)
	if err != nil {
		return rec.Annotated(model.CodeInvalidRate, "Invalid rate"), nil
	}

	exists, err := s.rateRepo.Exists(ctx, rate.Key())
	if err != nil {
		return rec, err
	}
	if exists {
		report.Duplicates++
		s.metrics.RecordsDuplicate.WithLabelValues(rt.AutoloadMethod).Inc()
		return rec.Annotated(model.CodeDuplicate, "Duplicate"), nil
	}

	rate.ID = uuid.New().String()
	rate.CreatedAt = s.now().UTC()
	if err := s.rateRepo.Insert(ctx, rate); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			report.Duplicates++
			s.metrics.RecordsDuplicate.WithLabelValues(rt.AutoloadMethod).Inc()
			return rec.Annotated(model.CodeDuplicate, "Duplicate"), nil
		}
		return rec, err
	}

	report.Inserted++
	s.metrics.RecordsInserted.WithLabelValues(rt.AutoloadMethod).Inc()

	event := events.RateEvent{
		RateTypeID:   rt.ID,
		RateType:     rt.Name,
		CurrencyFrom: rate.CurrencyFrom,
		CurrencyTo:   rate.CurrencyTo,
		Rate:         rate.Rate.String(),
		Nominal:      rate.Nominal,
		RateDate:     rate.RateDate.Format("2006-01-02"),
	}
	if err := s.publisher.PublishRate(ctx, event); err != nil {
		s.logger.WithError(err).WithField("pair", event.Key()).Warn("failed to publish rate event")
	}

	return rec, nil
}

// toCurrencyRate converts a fetched record into a storable row.
func toCurrencyRate(rateTypeID string, rec model.RateRecord) (model.CurrencyRate, error) {
	date, err := parseRateDate(rec.RateDate)
	if err != nil {
		return model.CurrencyRate{}, err
	}

	rate, err := decimal.NewFromString(rec.Rate)
	if err != nil {
		return model.CurrencyRate{}, fmt.Errorf("%w: %q", apperrors.ErrInvalidRate, rec.Rate)
	}
	rate = rate.Round(rateScale)
	if rate.Abs().GreaterThanOrEqual(maxRateMagnitude) {
		return model.CurrencyRate{}, fmt.Errorf("%w: %q out of range", apperrors.ErrInvalidRate, rec.Rate)
	}

	return model.CurrencyRate{
		RateTypeID:   rateTypeID,
		CurrencyFrom: rec.CurrencyFrom,
		CurrencyTo:   rec.CurrencyTo,
		Rate:         rate,
		RateDate:     date,
		Nominal:      rec.Nominal,
	}, nil
}

func parseRateDate(s string) (time.Time, error) {
	for _, layout := range rateDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable date %q", apperrors.ErrInvalidRate, s)
}
