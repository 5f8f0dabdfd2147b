// Package scheduler runs due payouts on a timer.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/xoulomon/stellarsave/internal/engine"
	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/middleware"
	"github.com/xoulomon/stellarsave/internal/models"
)

// Engine is the part of the engine the scheduler drives.
type Engine interface {
	ListGroups(ctx context.Context, statuses ...models.GroupStatus) ([]*models.Group, error)
	RunPayoutCycle(ctx context.Context, caller string, groupID uint64) (*models.PayoutRecord, error)
}

// Scheduler periodically pays out every active group whose current cycle is
// due. It acts as the operator principal.
type Scheduler struct {
	engine   Engine
	operator string
	interval time.Duration
	clock    engine.Clock
	logger   *slog.Logger
}

// New creates a scheduler. A nil clock uses the wall clock and a nil logger
// uses slog.Default().
func New(e Engine, operator string, interval time.Duration, clock engine.Clock, logger *slog.Logger) *Scheduler {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		engine:   e,
		operator: operator,
		interval: interval,
		clock:    clock,
		logger:   logger,
	}
}

// Run ticks until ctx is cancelled. It returns immediately when the
// interval is not positive.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Payout scheduler disabled")
		return
	}
	s.logger.Info("Payout scheduler started", "interval", s.interval, "operator", s.operator)

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Payout scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one pass and returns the number of payouts made. Failures are
// logged and retried on the next pass.
func (s *Scheduler) Tick(ctx context.Context) int {
	groups, err := s.engine.ListGroups(ctx, models.StatusActive)
	if err != nil {
		s.logger.Error("Failed to list active groups", "error", err)
		return 0
	}

	ctx = middleware.WithPrincipal(ctx, s.operator)
	now := s.clock.Now().Unix()
	paid := 0
	for _, g := range groups {
		if due := g.NextPayoutAt(); due == 0 || due > now {
			continue
		}

		record, err := s.engine.RunPayoutCycle(ctx, s.operator, g.ID)
		switch {
		case err == nil:
			paid++
			s.logger.Info("Scheduled payout completed",
				"group_id", g.ID,
				"cycle", record.CycleIndex,
				"recipient", record.Recipient,
				"amount", record.Amount,
			)
		case apperrors.IsCode(err, apperrors.CodeNoBalanceToTransfer):
			s.logger.Debug("Payout due but pool incomplete", "group_id", g.ID, "cycle", g.CurrentCycle)
		default:
			s.logger.Warn("Scheduled payout failed", "group_id", g.ID, "cycle", g.CurrentCycle, "error", err)
		}
	}
	return paid
}
