package calculator

// ScheduledPayout is one slot of the payout rotation.
type ScheduledPayout struct {
	Cycle     uint32 `json:"cycle"`
	Recipient string `json:"recipient"`
	// DueAt is the Unix time the slot becomes payable, zero before activation.
	DueAt int64 `json:"due_at"`
	Paid  bool  `json:"paid"`
}

// Schedule lays out the rotation: members are paid in join order, one per
// cycle, each cycle due cycleDuration seconds after the previous one.
// Slots before cursor are marked paid.
func Schedule(members []string, startTime, cycleDuration int64, cursor uint32) []ScheduledPayout {
	slots := make([]ScheduledPayout, len(members))
	for i, member := range members {
		slot := ScheduledPayout{
			Cycle:     uint32(i),
			Recipient: member,
			Paid:      uint32(i) < cursor,
		}
		if startTime > 0 {
			slot.DueAt = startTime + int64(i+1)*cycleDuration
		}
		slots[i] = slot
	}
	return slots
}
