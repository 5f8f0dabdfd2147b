package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xoulomon/stellarsave/internal/calculator"
	apperrors "github.com/xoulomon/stellarsave/internal/errors"
	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// CreateGroup creates a forming group administered by caller and returns
// its id. Ids come from the global counter, so they start at 1 and are never
// reused.
func (e *Engine) CreateGroup(ctx context.Context, caller, name string, contribution, cycleDuration int64, maxMembers uint32) (id uint64, err error) {
	ctx, span := e.startSpan(ctx, "CreateGroup", 0)
	defer func() {
		span.SetAttributes(attribute.Int64("group.id", int64(id)))
		endSpan(span, err)
	}()

	if err := e.requireAuth(ctx, caller); err != nil {
		return 0, err
	}
	if err := validateTerms(contribution, cycleDuration, maxMembers); err != nil {
		return 0, err
	}

	var group *models.Group
	err = e.update(ctx, func(rw storage.ReadWriter, _ *journal) error {
		next, err := storage.IncrementCounter(ctx, rw)
		if err != nil {
			return fmt.Errorf("failed to increment group counter: %w", err)
		}
		group = models.NewGroup(next, caller, name, contribution, cycleDuration, maxMembers, e.now())
		if err := storage.SaveGroup(ctx, rw, group); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	evt := e.event(events.GroupCreated, group.ID, caller)
	evt.Amount = group.ContributionAmount
	e.emit(ctx, evt)
	return group.ID, nil
}

// validateTerms rejects non-positive group terms, and terms whose full pool
// or full rotation length does not fit in an int64. These are reported as
// InvalidGroupStatus, the error group creation has always used for bad terms.
func validateTerms(contribution, cycleDuration int64, maxMembers uint32) error {
	switch {
	case contribution <= 0:
		return apperrors.ErrInvalidGroupStatus.With("field", "contribution_amount")
	case cycleDuration <= 0:
		return apperrors.ErrInvalidGroupStatus.With("field", "cycle_duration")
	case maxMembers == 0:
		return apperrors.ErrInvalidGroupStatus.With("field", "max_members")
	}
	if _, err := calculator.PoolAmount(contribution, maxMembers); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidGroupStatus, "pool amount out of range", err).
			With("field", "contribution_amount")
	}
	if _, err := calculator.RotationLength(cycleDuration, maxMembers); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidGroupStatus, "rotation length out of range", err).
			With("field", "cycle_duration")
	}
	return nil
}

// JoinGroup adds caller to a forming group. The join order fixes the
// caller's position in the payout rotation.
func (e *Engine) JoinGroup(ctx context.Context, caller string, groupID uint64) (err error) {
	ctx, span := e.startSpan(ctx, "JoinGroup", groupID)
	defer func() { endSpan(span, err) }()

	if err := e.requireAuth(ctx, caller); err != nil {
		return err
	}

	var member *models.Member
	err = e.update(ctx, func(rw storage.ReadWriter, _ *journal) error {
		g, err := loadGroup(ctx, rw, groupID)
		if err != nil {
			return err
		}
		switch {
		case g.Status == models.StatusCompleted:
			return apperrors.ErrGroupCompleted.With("group_id", groupIDString(groupID))
		case g.Status != models.StatusForming:
			return apperrors.ErrInvalidGroupStatus.
				With("group_id", groupIDString(groupID)).
				With("status", g.Status.String())
		}

		if _, err := storage.FindMember(ctx, rw, groupID, caller); err == nil {
			return apperrors.ErrAlreadyMember.With("member", caller)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("failed to look up member: %w", err)
		}
		if g.IsFull() {
			return apperrors.ErrMemberCountExceeded.
				With("group_id", groupIDString(groupID)).
				With("max_members", fmt.Sprint(g.MaxMembers))
		}

		member = &models.Member{
			GroupID:  groupID,
			Address:  caller,
			Index:    g.MemberCount,
			JoinedAt: e.now(),
		}
		if err := storage.AddMember(ctx, rw, member); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		g.MemberCount++
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	evt := e.event(events.MemberJoined, groupID, caller)
	evt.Cycle = member.Index
	e.emit(ctx, evt)
	return nil
}

// ActivateGroup moves a forming group with at least one member to Active and
// stamps its start time. Only the admin may activate.
func (e *Engine) ActivateGroup(ctx context.Context, caller string, groupID uint64) (err error) {
	ctx, span := e.startSpan(ctx, "ActivateGroup", groupID)
	defer func() { endSpan(span, err) }()

	err = e.update(ctx, func(rw storage.ReadWriter, _ *journal) error {
		g, err := loadGroup(ctx, rw, groupID)
		if err != nil {
			return err
		}
		if err := e.requireAdmin(ctx, caller, g); err != nil {
			return err
		}
		if err := transitionError(groupID, g.Status, models.StatusActive); err != nil {
			return err
		}
		if g.MemberCount == 0 {
			return apperrors.ErrGroupNotActive.
				With("group_id", groupIDString(groupID)).
				With("reason", "group has no members")
		}

		g.Status = models.StatusActive
		g.StartTime = e.now()
		if err := storage.SaveGroup(ctx, rw, g); err != nil {
			return fmt.Errorf("failed to save group: %w", err)
		}
		if err := storage.AddActiveGroup(ctx, rw, groupID); err != nil {
			return fmt.Errorf("failed to index active group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.emit(ctx, e.event(events.GroupActivated, groupID, caller))
	return nil
}

// IsGroupActive reports whether the group exists, is Active, and has between
// 1 and MaxMembers members. An unknown group is simply not active; only a
// storage failure produces an error.
func (e *Engine) IsGroupActive(ctx context.Context, groupID uint64) (bool, error) {
	var active bool
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := storage.LoadGroup(ctx, r, groupID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load group: %w", err)
		}
		active = g.IsActive()
		return nil
	})
	return active, err
}

// GetGroup returns a copy of the group record.
func (e *Engine) GetGroup(ctx context.Context, groupID uint64) (*models.Group, error) {
	var g *models.Group
	err := e.store.View(ctx, func(r storage.Reader) error {
		var err error
		g, err = loadGroup(ctx, r, groupID)
		return err
	})
	return g, err
}

// GetTotalGroupsCreated returns how many groups were ever created.
func (e *Engine) GetTotalGroupsCreated(ctx context.Context) (uint64, error) {
	var n uint64
	err := e.store.View(ctx, func(r storage.Reader) error {
		var err error
		n, err = storage.LoadCounter(ctx, r)
		return err
	})
	return n, err
}
