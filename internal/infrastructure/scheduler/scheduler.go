package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
)

// Scheduler runs the overdue sweep on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	sweep  *usecase.OverdueSweepUseCase
	logger *slog.Logger
}

// New creates a scheduler that runs the sweep per the given cron spec
// (standard five-field syntax, UTC).
func New(sweep *usecase.OverdueSweepUseCase, spec string, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		sweep:  sweep,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start begins executing scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels future runs and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.sweep.Execute(ctx, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "overdue sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.InfoContext(ctx, "scheduled overdue sweep completed",
		slog.Int("late", len(result.LateInstallments)),
		slog.Int("fees_applied", len(result.FeeAppliedInstallments)),
	)
}
