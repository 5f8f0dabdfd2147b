package models

// Member is one participant of a group. Index is the join order and fixes
// the position in the payout rotation.
type Member struct {
	GroupID  uint64 `json:"group_id"`
	Address  string `json:"address"`
	Index    uint32 `json:"index"`
	JoinedAt int64  `json:"joined_at"`
}

// Contribution records one member's payment into the pool for a cycle.
// Refunded is set when the funds were returned during cancellation.
type Contribution struct {
	GroupID    uint64 `json:"group_id"`
	Cycle      uint32 `json:"cycle"`
	Member     string `json:"member"`
	Amount     int64  `json:"amount"`
	Timestamp  int64  `json:"timestamp"`
	Refunded   bool   `json:"refunded,omitempty"`
	RefundedAt int64  `json:"refunded_at,omitempty"`
}
