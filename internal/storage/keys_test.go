package storage

import "testing"

func TestKeysAreDeterministic(t *testing.T) {
	if GroupKey(7) != GroupKey(7) {
		t.Error("GroupKey not deterministic")
	}
	if PayoutKey(7, 2) != PayoutKey(7, 2) {
		t.Error("PayoutKey not deterministic")
	}
	if ContributionKey(7, 2, "GABC") != ContributionKey(7, 2, "GABC") {
		t.Error("ContributionKey not deterministic")
	}
}

func TestKeysDoNotCollide(t *testing.T) {
	keys := []Key{
		CounterKey(),
		GroupKey(1),
		GroupKey(11),
		GroupKey(12),
		PayoutKey(1, 1),
		PayoutKey(11, 1),
		PayoutKey(1, 11),
		MemberKey(1, 1),
		MemberKey(11, 1),
		MemberKey(1, 11),
		MemberIndexKey(1, "1"),
		MemberIndexKey(1, "11"),
		MemberIndexKey(11, "1"),
		ContributionKey(1, 1, "1"),
		ContributionKey(1, 11, "1"),
		ContributionKey(11, 1, "1"),
		ContributionKey(1, 1, "1/1"),
		ActiveGroupsKey(),
	}

	seen := make(map[Key]int, len(keys))
	for i, k := range keys {
		if j, ok := seen[k]; ok {
			t.Errorf("key %q built twice (entries %d and %d)", k, j, i)
		}
		seen[k] = i
	}
}

func TestKeyFormat(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{"counter", CounterKey(), "counter/total_groups_created"},
		{"group", GroupKey(42), "group/42"},
		{"payout", PayoutKey(42, 3), "payout/42/3"},
		{"member", MemberKey(42, 0), "member/42/0"},
		{"member index", MemberIndexKey(42, "GALICE"), "member_index/42/GALICE"},
		{"contribution", ContributionKey(42, 3, "GALICE"), "contribution/42/3/GALICE"},
		{"active groups", ActiveGroupsKey(), "index/active_groups"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.key) != tt.want {
				t.Errorf("got %q, want %q", tt.key, tt.want)
			}
		})
	}
}
