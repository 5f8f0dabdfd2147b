package calculator

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a pool amount or rotation length does not fit
// in an int64.
var ErrOverflow = errors.New("amount overflows int64")

// PoolAmount computes the amount paid out per cycle:
// pool = contribution × members.
func PoolAmount(contribution int64, members uint32) (int64, error) {
	if contribution <= 0 {
		return 0, fmt.Errorf("contribution must be positive, got %d", contribution)
	}
	if members == 0 {
		return 0, fmt.Errorf("must have at least one member")
	}
	if contribution > math.MaxInt64/int64(members) {
		return 0, fmt.Errorf("%w: %d x %d", ErrOverflow, contribution, members)
	}
	return contribution * int64(members), nil
}

// RotationLength computes how many seconds a full rotation takes:
// length = cycleDuration × members.
func RotationLength(cycleDuration int64, members uint32) (int64, error) {
	if cycleDuration <= 0 {
		return 0, fmt.Errorf("cycle duration must be positive, got %d", cycleDuration)
	}
	if members == 0 {
		return 0, fmt.Errorf("must have at least one member")
	}
	if cycleDuration > math.MaxInt64/int64(members) {
		return 0, fmt.Errorf("%w: %ds x %d", ErrOverflow, cycleDuration, members)
	}
	return cycleDuration * int64(members), nil
}

// IsFinalCycle reports whether paying out at cursor hands the pool to the
// last member in the rotation.
func IsFinalCycle(cursor, members uint32) bool {
	return members > 0 && cursor+1 >= members
}

// Covers reports whether a custody balance can fund a pool payout.
// An empty balance never covers, even for a zero pool.
func Covers(balance, pool int64) bool {
	return balance > 0 && balance >= pool
}
