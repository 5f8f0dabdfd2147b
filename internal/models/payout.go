package models

// PayoutRecord is the audit entry for one pool disbursement.
// Records are written once and never modified or deleted.
type PayoutRecord struct {
	// GroupID is the group the pool belonged to.
	GroupID uint64 `json:"group_id"`

	// CycleIndex is the rotation cursor at the time of payout, starting at 0.
	CycleIndex uint32 `json:"cycle_index"`

	// Recipient is the member that received the pool.
	Recipient string `json:"recipient"`

	// Amount is what was transferred: ContributionAmount x MemberCount.
	Amount int64 `json:"amount"`

	// Timestamp is the Unix time of the successful transfer.
	Timestamp int64 `json:"timestamp"`
}
