package models

import "fmt"

// GroupStatus is the lifecycle state of a savings group.
type GroupStatus uint8

const (
	// StatusForming is the initial state: members may join, no funds move.
	StatusForming GroupStatus = iota
	// StatusActive means contributions are accepted and payouts rotate.
	StatusActive
	// StatusCompleted is terminal: every member has received one payout.
	StatusCompleted
	// StatusCancelled is terminal: the group was abandoned and custody refunded.
	StatusCancelled
)

var statusNames = [...]string{
	StatusForming:   "forming",
	StatusActive:    "active",
	StatusCompleted: "completed",
	StatusCancelled: "cancelled",
}

// String returns the lowercase label of the status.
func (s GroupStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// ParseStatus converts a label produced by String back into a GroupStatus.
func ParseStatus(label string) (GroupStatus, bool) {
	for i, name := range statusNames {
		if name == label {
			return GroupStatus(i), true
		}
	}
	return 0, false
}

// IsTerminal reports whether no further transition is possible from s.
func (s GroupStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether a group may move from one status to another.
func CanTransition(from, to GroupStatus) bool {
	switch from {
	case StatusForming:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From GroupStatus
	To   GroupStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// ValidateTransition returns a *TransitionError when from -> to is not allowed.
func ValidateTransition(from, to GroupStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
