package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/xoulomon/stellarsave/internal/models"
)

// ErrAlreadyExists is returned when an append-only record would be overwritten.
var ErrAlreadyExists = errors.New("storage: record already exists")

func getJSON(ctx context.Context, r Reader, key Key, v any) error {
	data, err := r.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func putJSON(ctx context.Context, w ReadWriter, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return w.Put(ctx, key, data)
}

// LoadCounter returns total_groups_created, or zero if nothing was created yet.
func LoadCounter(ctx context.Context, r Reader) (uint64, error) {
	data, err := r.Get(ctx, CounterKey())
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to decode counter: %w", err)
	}
	return n, nil
}

// IncrementCounter bumps total_groups_created and returns the new value.
func IncrementCounter(ctx context.Context, w ReadWriter) (uint64, error) {
	n, err := LoadCounter(ctx, w)
	if err != nil {
		return 0, err
	}
	n++
	if err := w.Put(ctx, CounterKey(), []byte(strconv.FormatUint(n, 10))); err != nil {
		return 0, err
	}
	return n, nil
}

// LoadGroup returns the group record, or ErrNotFound.
func LoadGroup(ctx context.Context, r Reader, groupID uint64) (*models.Group, error) {
	g := &models.Group{}
	if err := getJSON(ctx, r, GroupKey(groupID), g); err != nil {
		return nil, err
	}
	return g, nil
}

// SaveGroup writes the complete group record.
func SaveGroup(ctx context.Context, w ReadWriter, g *models.Group) error {
	return putJSON(ctx, w, GroupKey(g.ID), g)
}

// LoadMember returns the member at a join position, or ErrNotFound.
func LoadMember(ctx context.Context, r Reader, groupID uint64, index uint32) (*models.Member, error) {
	m := &models.Member{}
	if err := getJSON(ctx, r, MemberKey(groupID, index), m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindMember looks a member up by address, or returns ErrNotFound.
func FindMember(ctx context.Context, r Reader, groupID uint64, address string) (*models.Member, error) {
	data, err := r.Get(ctx, MemberIndexKey(groupID, address))
	if err != nil {
		return nil, err
	}
	index, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("failed to decode member index: %w", err)
	}
	return LoadMember(ctx, r, groupID, uint32(index))
}

// AddMember writes the member record and its address index.
func AddMember(ctx context.Context, w ReadWriter, m *models.Member) error {
	if _, err := w.Get(ctx, MemberIndexKey(m.GroupID, m.Address)); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := putJSON(ctx, w, MemberKey(m.GroupID, m.Index), m); err != nil {
		return err
	}
	return w.Put(ctx, MemberIndexKey(m.GroupID, m.Address), []byte(u32(m.Index)))
}

// ListMembers returns the first count members of a group in join order.
func ListMembers(ctx context.Context, r Reader, groupID uint64, count uint32) ([]*models.Member, error) {
	members := make([]*models.Member, 0, count)
	for i := uint32(0); i < count; i++ {
		m, err := LoadMember(ctx, r, groupID, i)
		if err != nil {
			return nil, fmt.Errorf("failed to load member %d: %w", i, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// LoadContribution returns a member's contribution for a cycle, or ErrNotFound.
func LoadContribution(ctx context.Context, r Reader, groupID uint64, cycle uint32, address string) (*models.Contribution, error) {
	c := &models.Contribution{}
	if err := getJSON(ctx, r, ContributionKey(groupID, cycle, address), c); err != nil {
		return nil, err
	}
	return c, nil
}

// SaveContribution writes a contribution record.
func SaveContribution(ctx context.Context, w ReadWriter, c *models.Contribution) error {
	return putJSON(ctx, w, ContributionKey(c.GroupID, c.Cycle, c.Member), c)
}

// LoadPayout returns the payout record of a cycle, or ErrNotFound.
func LoadPayout(ctx context.Context, r Reader, groupID uint64, cycle uint32) (*models.PayoutRecord, error) {
	p := &models.PayoutRecord{}
	if err := getJSON(ctx, r, PayoutKey(groupID, cycle), p); err != nil {
		return nil, err
	}
	return p, nil
}

// AppendPayout writes a payout record. Payout records are immutable, so an
// existing record for the same cycle yields ErrAlreadyExists.
func AppendPayout(ctx context.Context, w ReadWriter, p *models.PayoutRecord) error {
	if _, err := w.Get(ctx, PayoutKey(p.GroupID, p.CycleIndex)); err == nil {
		return ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}
	return putJSON(ctx, w, PayoutKey(p.GroupID, p.CycleIndex), p)
}

// ListPayouts returns the payout records of cycles [0, count).
func ListPayouts(ctx context.Context, r Reader, groupID uint64, count uint32) ([]*models.PayoutRecord, error) {
	payouts := make([]*models.PayoutRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := LoadPayout(ctx, r, groupID, i)
		if err != nil {
			return nil, fmt.Errorf("failed to load payout %d: %w", i, err)
		}
		payouts = append(payouts, p)
	}
	return payouts, nil
}

// LoadActiveGroups returns the ids of active groups in ascending order.
func LoadActiveGroups(ctx context.Context, r Reader) ([]uint64, error) {
	var ids []uint64
	err := getJSON(ctx, r, ActiveGroupsKey(), &ids)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// AddActiveGroup records groupID in the active index. Adding an id twice
// is a no-op.
func AddActiveGroup(ctx context.Context, w ReadWriter, groupID uint64) error {
	ids, err := LoadActiveGroups(ctx, w)
	if err != nil {
		return err
	}
	i, found := slices.BinarySearch(ids, groupID)
	if found {
		return nil
	}
	return putJSON(ctx, w, ActiveGroupsKey(), slices.Insert(ids, i, groupID))
}

// RemoveActiveGroup drops groupID from the active index, if present.
func RemoveActiveGroup(ctx context.Context, w ReadWriter, groupID uint64) error {
	ids, err := LoadActiveGroups(ctx, w)
	if err != nil {
		return err
	}
	i, found := slices.BinarySearch(ids, groupID)
	if !found {
		return nil
	}
	return putJSON(ctx, w, ActiveGroupsKey(), slices.Delete(ids, i, i+1))
}
