package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Precondition errors. The operation is blocked and nothing was changed.
var (
	ErrCustomerRequired       = errors.New("a saved customer is required before continuing")
	ErrCustomerNotFound       = errors.New("customer not found")
	ErrOrderNotFoundOrDenied  = errors.New("order not found or access denied")
	ErrOrderTerminal          = errors.New("order is already confirmed or cancelled")
	ErrZeroPaymentUnconfirmed = errors.New("paid amount is zero; confirm to complete without payment")
	ErrNoItems                = errors.New("order has no items")
	ErrUnsavedOrder           = errors.New("order has unsaved changes; confirm to discard")
	ErrSessionNotFound        = errors.New("checkout session not found")
	ErrWrongOrderType         = errors.New("operation not available for this order type")
	ErrLineIndex              = errors.New("line index out of range")
	ErrReviewRequired         = errors.New("order must be reviewed before it is completed")
)

// ValidationError is a recoverable warning. The wizard state is left exactly
// as it was before the rejected call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// LineError is the failure of one line of a settlement batch.
type LineError struct {
	ID  uuid.UUID
	Err error
}

func (e LineError) Error() string {
	return fmt.Sprintf("%s: %v", e.ID, e.Err)
}

func (e LineError) Unwrap() error { return e.Err }

// BatchError reports a partially applied batch. Succeeded lists the lines
// that were written; Failed the ones that were not.
type BatchError struct {
	Succeeded []uuid.UUID
	Failed    []LineError
}

func (e *BatchError) Error() string {
	msgs := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%d of %d stock updates failed: %s",
		len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(msgs, "; "))
}

// Unwrap exposes every line failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// mapBackendError translates the completion procedures' error codes. Other
// backend errors are returned unchanged so their message reaches the user.
func mapBackendError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "P0002":
		if pgErr.Message == ErrOrderNotFoundOrDenied.Error() {
			return ErrOrderNotFoundOrDenied
		}
		return fmt.Errorf("%w: %s", ErrOrderNotFoundOrDenied, pgErr.Message)
	case "23514":
		return &ValidationError{Field: "stock", Message: pgErr.Message}
	}
	return err
}
