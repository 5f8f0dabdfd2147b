package storage

import "strconv"

// Key addresses one stored record. Keys are built only through the
// constructors below so each entity family has a distinct prefix.
type Key string

// Key family prefixes.
const (
	prefixCounter      = "counter/"
	prefixGroup        = "group/"
	prefixPayout       = "payout/"
	prefixMember       = "member/"
	prefixMemberIndex  = "member_index/"
	prefixContribution = "contribution/"
	prefixIndex        = "index/"
)

// CounterKey addresses the global total_groups_created counter.
func CounterKey() Key {
	return Key(prefixCounter + "total_groups_created")
}

// GroupKey addresses the group record with the given id.
func GroupKey(groupID uint64) Key {
	return Key(prefixGroup + u64(groupID))
}

// PayoutKey addresses the payout record of one cycle of a group.
func PayoutKey(groupID uint64, cycle uint32) Key {
	return Key(prefixPayout + u64(groupID) + "/" + u32(cycle))
}

// MemberKey addresses the member at a join position of a group.
func MemberKey(groupID uint64, index uint32) Key {
	return Key(prefixMember + u64(groupID) + "/" + u32(index))
}

// MemberIndexKey maps a member address to its join position.
func MemberIndexKey(groupID uint64, address string) Key {
	return Key(prefixMemberIndex + u64(groupID) + "/" + address)
}

// ContributionKey addresses one member's contribution for one cycle.
func ContributionKey(groupID uint64, cycle uint32, address string) Key {
	return Key(prefixContribution + u64(groupID) + "/" + u32(cycle) + "/" + address)
}

// ActiveGroupsKey addresses the sorted list of active group ids.
func ActiveGroupsKey() Key {
	return Key(prefixIndex + "active_groups")
}

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func u32(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
