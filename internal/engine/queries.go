package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/xoulomon/stellarsave/internal/calculator"
	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

// ListMembers returns the group's members in join order.
func (e *Engine) ListMembers(ctx context.Context, groupID uint64) ([]*models.Member, error) {
	var members []*models.Member
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		members, err = storage.ListMembers(ctx, r, groupID, g.MemberCount)
		return err
	})
	return members, err
}

// ListPayouts returns the payout history of a group, oldest first.
func (e *Engine) ListPayouts(ctx context.Context, groupID uint64) ([]*models.PayoutRecord, error) {
	var payouts []*models.PayoutRecord
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		payouts, err = storage.ListPayouts(ctx, r, groupID, g.CurrentCycle)
		return err
	})
	return payouts, err
}

// GetPayout returns the payout record of one cycle. A cycle that has not
// been paid yields storage.ErrNotFound.
func (e *Engine) GetPayout(ctx context.Context, groupID uint64, cycle uint32) (*models.PayoutRecord, error) {
	var payout *models.PayoutRecord
	err := e.store.View(ctx, func(r storage.Reader) error {
		if _, err := loadGroup(ctx, r, groupID); err != nil {
			return err
		}
		var err error
		payout, err = storage.LoadPayout(ctx, r, groupID, cycle)
		if err != nil {
			return fmt.Errorf("payout for cycle %d: %w", cycle, err)
		}
		return nil
	})
	return payout, err
}

// ListContributions returns the contributions made for one cycle, in the
// members' join order.
func (e *Engine) ListContributions(ctx context.Context, groupID uint64, cycle uint32) ([]*models.Contribution, error) {
	var contributions []*models.Contribution
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		members, err := storage.ListMembers(ctx, r, groupID, g.MemberCount)
		if err != nil {
			return err
		}
		for _, m := range members {
			c, err := storage.LoadContribution(ctx, r, groupID, cycle, m.Address)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load contribution: %w", err)
			}
			contributions = append(contributions, c)
		}
		return nil
	})
	return contributions, err
}

// ListGroups returns every group whose status is one of statuses, or every
// group when none is given, ordered by id. Listing only active groups reads
// the active index instead of every group ever created.
func (e *Engine) ListGroups(ctx context.Context, statuses ...models.GroupStatus) ([]*models.Group, error) {
	want := make(map[models.GroupStatus]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}

	var groups []*models.Group
	err := e.store.View(ctx, func(r storage.Reader) error {
		ids, err := e.candidateIDs(ctx, r, want)
		if err != nil {
			return err
		}
		for _, id := range ids {
			g, err := loadGroup(ctx, r, id)
			if err != nil {
				return err
			}
			if len(want) == 0 || want[g.Status] {
				groups = append(groups, g)
			}
		}
		return nil
	})
	return groups, err
}

func (e *Engine) candidateIDs(ctx context.Context, r storage.Reader, want map[models.GroupStatus]bool) ([]uint64, error) {
	if len(want) == 1 && want[models.StatusActive] {
		ids, err := storage.LoadActiveGroups(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("failed to load active index: %w", err)
		}
		return ids, nil
	}

	total, err := storage.LoadCounter(ctx, r)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, total)
	for id := uint64(1); id <= total; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

// Schedule returns the payout rotation of a group with paid slots marked.
func (e *Engine) Schedule(ctx context.Context, groupID uint64) ([]calculator.ScheduledPayout, error) {
	var slots []calculator.ScheduledPayout
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		members, err := storage.ListMembers(ctx, r, groupID, g.MemberCount)
		if err != nil {
			return err
		}
		addresses := make([]string, len(members))
		for i, m := range members {
			addresses[i] = m.Address
		}
		slots = calculator.Schedule(addresses, g.StartTime, g.CycleDuration, g.CurrentCycle)
		return nil
	})
	return slots, err
}

// Standings returns what each member has paid in, been paid out and been
// refunded so far.
func (e *Engine) Standings(ctx context.Context, groupID uint64) ([]calculator.MemberStanding, error) {
	var standings []calculator.MemberStanding
	err := e.store.View(ctx, func(r storage.Reader) error {
		g, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		members, err := storage.ListMembers(ctx, r, groupID, g.MemberCount)
		if err != nil {
			return err
		}
		payouts, err := storage.ListPayouts(ctx, r, groupID, g.CurrentCycle)
		if err != nil {
			return err
		}

		addresses := make([]string, len(members))
		var contributions []*models.Contribution
		for i, m := range members {
			addresses[i] = m.Address
			for cycle := uint32(0); cycle <= g.CurrentCycle; cycle++ {
				c, err := storage.LoadContribution(ctx, r, groupID, cycle, m.Address)
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to load contribution: %w", err)
				}
				contributions = append(contributions, c)
			}
		}

		standings = calculator.Standings(addresses, contributions, payouts)
		return nil
	})
	return standings, err
}
