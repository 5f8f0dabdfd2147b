package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/xoulomon/stellarsave/internal/calculator"
	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// Contribute moves one cycle's contribution from member into custody and
// credits the group's pool.
func (e *Engine) Contribute(ctx context.Context, member string, groupID uint64, amount int64) (err error) {
	ctx, span := e.startSpan(ctx, "Contribute", groupID)
	defer func() { endSpan(span, err) }()

	if err := e.requireAuth(ctx, member); err != nil {
		return err
	}

	var contribution *models.Contribution
	err = e.update(ctx, func(rw storage.ReadWriter, j *journal) error {
		g, err := loadGroup(ctx, rw, groupID)
		if err != nil {
			return err
		}
		if err := requireActive(g); err != nil {
			return err
		}

		if _, err := storage.FindMember(ctx, rw, groupID, member); errors.Is(err, storage.ErrNotFound) {
			return apperrors.ErrNotMember.With("member", member).With("group_id", groupIDString(groupID))
		} else if err != nil {
			return fmt.Errorf("failed to look up member: %w", err)
		}
		if amount != g.ContributionAmount {
			return apperrors.ErrInvalidAmount.
				With("amount", fmt.Sprint(amount)).
				With("expected", fmt.Sprint(g.ContributionAmount))
		}
		if _, err := storage.LoadContribution(ctx, rw, groupID, g.CurrentCycle, member); err == nil {
			return apperrors.ErrAlreadyContributed.
				With("member", member).
				With("cycle", fmt.Sprint(g.CurrentCycle))
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to load contribution: %w", err)
		}

		if err := j.Transfer(ctx, member, e.custody, amount); err != nil {
			return apperrors.Wrap(apperrors.CodeFailedToTransferFromMember, "contribution transfer failed", err).
				With("member", member)
		}

		contribution = &models.Contribution{
			GroupID:   groupID,
			Cycle:     g.CurrentCycle,
			Member:    member,
			Amount:    amount,
			Timestamp: e.now(),
		}
		if err := storage.SaveContribution(ctx, rw, contribution); err != nil {
			return fmt.Errorf("failed to save contribution: %w", err)
		}
		g.PoolBalance += amount
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	evt := e.event(events.ContributionReceived, groupID, member)
	evt.Amount = contribution.Amount
	evt.Cycle = contribution.Cycle
	e.emit(ctx, evt)
	return nil
}

// RunPayoutCycle pays the whole pool to the next member in join order. The
// cursor advances only when the transfer succeeds; after the last member is
// paid the group is Completed.
func (e *Engine) RunPayoutCycle(ctx context.Context, caller string, groupID uint64) (record *models.PayoutRecord, err error) {
	ctx, span := e.startSpan(ctx, "RunPayoutCycle", groupID)
	defer func() { endSpan(span, err) }()

	if err := e.requireAuth(ctx, caller); err != nil {
		return nil, err
	}

	var completed bool
	err = e.update(ctx, func(rw storage.ReadWriter, j *journal) error {
		g, err := loadGroup(ctx, rw, groupID)
		if err != nil {
			return err
		}
		if err := requireActive(g); err != nil {
			return err
		}

		pool, err := calculator.PoolAmount(g.ContributionAmount, g.MemberCount)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInvalidAmount, "cannot compute pool amount", err)
		}
		if !calculator.Covers(g.PoolBalance, pool) {
			return apperrors.ErrNoBalanceToTransfer.
				With("group_id", groupIDString(groupID)).
				With("balance", fmt.Sprint(g.PoolBalance)).
				With("required", fmt.Sprint(pool))
		}

		recipient, err := storage.LoadMember(ctx, rw, groupID, g.CurrentCycle)
		if err != nil {
			return fmt.Errorf("failed to load recipient at position %d: %w", g.CurrentCycle, err)
		}

		if err := j.Transfer(ctx, e.custody, recipient.Address, pool); err != nil {
			return apperrors.Wrap(apperrors.CodeFailedToTransferToRecipient, "payout transfer failed", err).
				With("recipient", recipient.Address).
				With("cycle", fmt.Sprint(g.CurrentCycle))
		}

		record = &models.PayoutRecord{
			GroupID:    groupID,
			CycleIndex: g.CurrentCycle,
			Recipient:  recipient.Address,
			Amount:     pool,
			Timestamp:  e.now(),
		}
		if err := storage.AppendPayout(ctx, rw, record); err != nil {
			return fmt.Errorf("failed to append payout record: %w", err)
		}

		completed = calculator.IsFinalCycle(g.CurrentCycle, g.MemberCount)
		g.PoolBalance -= pool
		g.CurrentCycle++
		if completed {
			if err := transitionError(groupID, g.Status, models.StatusCompleted); err != nil {
				return err
			}
			g.Status = models.StatusCompleted
			g.CompletedAt = record.Timestamp
			if err := storage.RemoveActiveGroup(ctx, rw, groupID); err != nil {
				return fmt.Errorf("failed to unindex active group: %w", err)
			}
		}
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt := e.event(events.PayoutCompleted, groupID, caller)
	evt.Subject = record.Recipient
	evt.Amount = record.Amount
	evt.Cycle = record.CycleIndex
	e.emit(ctx, evt)
	if completed {
		e.emit(ctx, e.event(events.GroupCompleted, groupID, caller))
	}
	return record, nil
}

// requireActive gates contributions and payouts.
func requireActive(g *models.Group) error {
	if g.Status == models.StatusCompleted {
		return apperrors.ErrGroupCompleted.With("group_id", groupIDString(g.ID))
	}
	if !g.IsActive() {
		return apperrors.ErrGroupNotActive.
			With("group_id", groupIDString(g.ID)).
			With("status", g.Status.String())
	}
	return nil
}
