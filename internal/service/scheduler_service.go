package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
)

// SchedulerService triggers fetch cycles for active rate types whose
// interval has elapsed. Each tick runs the due rate types concurrently,
// at most workers at a time.
type SchedulerService struct {
	rateTypeRepo *repository.RateTypeRepository
	loader       *RateLoaderService
	spec         string
	workers      int
	logger       logrus.FieldLogger

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSchedulerService creates a scheduler ticking on the robfig/cron spec.
func NewSchedulerService(
	rateTypeRepo *repository.RateTypeRepository,
	loader *RateLoaderService,
	spec string,
	workers int,
	logger logrus.FieldLogger,
) *SchedulerService {
	if workers < 1 {
		workers = 1
	}
	return &SchedulerService{
		rateTypeRepo: rateTypeRepo,
		loader:       loader,
		spec:         spec,
		workers:      workers,
		logger:       logger,
	}
}

// Start schedules the ticks. Cycles started by a tick are cancelled by Stop.
func (s *SchedulerService) Start() error {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.Tick(s.ctx, time.Now()); err != nil {
			s.logger.WithError(err).Error("scheduler tick failed")
		}
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("invalid scheduler spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{"spec": s.spec, "workers": s.workers}).Info("scheduler started")
	return nil
}

// Stop cancels running cycles and waits for the current tick to return.
func (s *SchedulerService) Stop() {
	if s.cron == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Tick triggers every rate type due at now and waits for their cycles.
// It returns the IDs of the rate types it triggered.
func (s *SchedulerService) Tick(ctx context.Context, now time.Time) ([]string, error) {
	rateTypes, err := s.rateTypeRepo.ListActiveRateTypes(ctx)
	if err != nil {
		return nil, err
	}

	due := Due(rateTypes, now)
	if len(due) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	ids := make([]string, 0, len(due))
	for _, rt := range due {
		ids = append(ids, rt.ID)
		g.Go(func() error {
			s.loader.Trigger(gctx, rt.ID)
			return nil
		})
	}

	return ids, g.Wait()
}

// Due returns the rate types that should run at now.
func Due(rateTypes []model.RateType, now time.Time) []model.RateType {
	var due []model.RateType
	for _, rt := range rateTypes {
		if rt.IsDue(now) {
			due = append(due, rt)
		}
	}
	return due
}
