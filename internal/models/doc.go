// Package models defines the core domain records of Stellar-Save.
//
// # Records
//
//   - Group: one savings circle, its terms, lifecycle status and custody balance
//   - Member: a participant and its position in the payout rotation
//   - Contribution: one member's payment into the pool for one cycle
//   - PayoutRecord: append-only audit entry of a pool disbursement
//   - Principal: a registered identity able to sign requests
//
// # Lifecycle
//
// A group is created Forming, becomes Active when its admin activates it,
// and ends either Completed (every member paid once) or Cancelled (custody
// refunded). CanTransition is the single source of truth for which moves are
// legal; the engine consults it before any side effect.
//
// # Relationships
//
// Records reference each other by group ID and address, never by pointer,
// so each one can be stored as an independent blob under its own key.
package models
