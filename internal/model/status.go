package model

import "fmt"

// Status is the closed lifecycle enumeration for a Subscription. The only
// legal moves are pending→active and pending→failed_or_cancelled; terminal
// states absorb repeated notifications as no-ops.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFailed  Status = "failed_or_cancelled"
)

// ParseStatus rejects anything outside the enumeration so that a bad row
// never flows through the state machine unnoticed.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusActive, StatusFailed:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown subscription status %q", raw)
}

// Terminal reports whether the status absorbs further notifications.
func (s Status) Terminal() bool {
	return s == StatusActive || s == StatusFailed
}

// CanTransition reports whether moving to next is a legal lifecycle step.
// Statuses never regress and terminal states never change.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusActive || next == StatusFailed)
}
