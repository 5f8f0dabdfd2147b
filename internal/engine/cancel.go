package engine

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// CancelGroup returns every contribution held in custody for the current
// cycle and then moves the group to Cancelled.
//
// Each refund commits on its own. If one fails the group keeps its status,
// refunds already made stay recorded, and calling CancelGroup again resumes
// with the contributions not yet returned. Contributions that land while the
// refunds run are returned in the same transaction that cancels the group.
func (e *Engine) CancelGroup(ctx context.Context, caller string, groupID uint64) (err error) {
	ctx, span := e.startSpan(ctx, "CancelGroup", groupID)
	defer func() { endSpan(span, err) }()

	var members []*models.Member
	err = e.store.View(ctx, func(r storage.Reader) error {
		g, err := e.cancellable(ctx, r, caller, groupID)
		if err != nil {
			return err
		}
		members, err = storage.ListMembers(ctx, r, groupID, g.MemberCount)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, m := range members {
		if err := e.refund(ctx, caller, groupID, m.Address); err != nil {
			return err
		}
	}

	var late []*models.Contribution
	err = e.update(ctx, func(rw storage.ReadWriter, j *journal) error {
		late = nil
		g, err := e.cancellable(ctx, rw, caller, groupID)
		if err != nil {
			return err
		}
		members, err := storage.ListMembers(ctx, rw, groupID, g.MemberCount)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		for _, m := range members {
			c, err := e.refundHeld(ctx, rw, j, g, m.Address)
			if err != nil {
				return err
			}
			if c != nil {
				late = append(late, c)
			}
		}
		if g.PoolBalance != 0 {
			return apperrors.ErrInvalidGroupStatus.
				With("group_id", groupIDString(groupID)).
				With("reason", "custody balance left after refunds").
				With("pool_balance", fmt.Sprint(g.PoolBalance))
		}

		g.Status = models.StatusCancelled
		g.CancelledAt = e.now()
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		if err := storage.RemoveActiveGroup(ctx, rw, groupID); err != nil {
			return fmt.Errorf("failed to unindex active group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, c := range late {
		e.emitRefund(ctx, caller, c)
	}
	e.emit(ctx, e.event(events.GroupCancelled, groupID, caller))
	return nil
}

// cancellable loads the group and checks caller may cancel it now.
func (e *Engine) cancellable(ctx context.Context, r storage.Reader, caller string, groupID uint64) (*models.Group, error) {
	g, err := loadGroup(ctx, r, groupID)
	if err != nil {
		return nil, err
	}
	if err := e.requireAdmin(ctx, caller, g); err != nil {
		return nil, err
	}
	if g.Status == models.StatusCompleted {
		return nil, apperrors.ErrGroupCompleted.With("group_id", groupIDString(groupID))
	}
	if err := transitionError(groupID, g.Status, models.StatusCancelled); err != nil {
		return nil, err
	}
	return g, nil
}

// refund returns one member's contribution for the current cycle in its own
// transaction, if any is still held.
func (e *Engine) refund(ctx context.Context, caller string, groupID uint64, member string) error {
	var refunded *models.Contribution
	err := e.update(ctx, func(rw storage.ReadWriter, j *journal) error {
		refunded = nil
		g, err := e.cancellable(ctx, rw, caller, groupID)
		if err != nil {
			return err
		}
		refunded, err = e.refundHeld(ctx, rw, j, g, member)
		if err != nil || refunded == nil {
			return err
		}
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return nil
	})
	if err != nil || refunded == nil {
		return err
	}

	e.emitRefund(ctx, caller, refunded)
	return nil
}

// refundHeld transfers member's current-cycle contribution back out of
// custody and debits g.PoolBalance. It returns nil when nothing is held. The
// caller saves g.
func (e *Engine) refundHeld(ctx context.Context, rw storage.ReadWriter, j *journal, g *models.Group, member string) (*models.Contribution, error) {
	c, err := storage.LoadContribution(ctx, rw, g.ID, g.CurrentCycle, member)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contribution: %w", err)
	}
	if c.Refunded {
		return nil, nil
	}

	if err := j.Transfer(ctx, e.custody, member, c.Amount); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFailedToTransferToRecipient, "refund transfer failed", err).
			With("recipient", member).
			With("group_id", groupIDString(g.ID))
	}

	c.Refunded = true
	c.RefundedAt = e.now()
	if err := storage.SaveContribution(ctx, rw, c); err != nil {
		return nil, fmt.Errorf("failed to save contribution: %w", err)
	}
	g.PoolBalance -= c.Amount
	return c, nil
}

func (e *Engine) emitRefund(ctx context.Context, caller string, c *models.Contribution) {
	evt := e.event(events.ContributionRefunded, c.GroupID, caller)
	evt.Subject = c.Member
	evt.Amount = c.Amount
	evt.Cycle = c.Cycle
	e.emit(ctx, evt)
}
