package lifecycle

import (
	"errors"
	"fmt"

	"github.com/tailor-pos/api/internal/enum"
)

// ErrNotDraft is returned when a wizard mutation or completion targets an
// order that has left the draft state.
var ErrNotDraft = errors.New("order is not a draft")

// CheckoutStatus is the financial lifecycle of an order.
type CheckoutStatus string

const (
	StatusDraft     CheckoutStatus = enum.CheckoutStatusDraft
	StatusConfirmed CheckoutStatus = enum.CheckoutStatusConfirmed
	StatusCancelled CheckoutStatus = enum.CheckoutStatusCancelled
)

// IsValid checks if the status is known.
func (s CheckoutStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s CheckoutStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// CanTransitionTo checks if a status transition is valid. Only a draft moves,
// and only once.
func (s CheckoutStatus) CanTransitionTo(next CheckoutStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusConfirmed || next == StatusCancelled
	default:
		return false
	}
}

// Transition validates s → next.
func Transition(s, next CheckoutStatus) error {
	if !s.CanTransitionTo(next) {
		return &TransitionError{From: string(s), To: string(next)}
	}
	return nil
}

// RequireDraft guards financial edits and completion calls.
func RequireDraft(s CheckoutStatus) error {
	if s != StatusDraft {
		return fmt.Errorf("%w: status %s", ErrNotDraft, s)
	}
	return nil
}

// TransitionError is returned when an invalid transition is attempted.
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}
