package trade

import (
	"errors"
	"fmt"

	"daytrader-client/internal/types"
)

var (
	// ErrNotConfirmable is returned by Confirm outside AwaitingConfirmation,
	// including a repeated confirm while an order is being submitted.
	ErrNotConfirmable = errors.New("trade: nothing awaiting confirmation")

	// ErrBusy is returned by Submit while an order is being submitted.
	ErrBusy = errors.New("trade: order submission in progress")

	// ErrStaleHolding marks a lookup of a holding that was already sold.
	ErrStaleHolding = errors.New("trade: holding already sold")
)

// ValidationError blocks a submission before anything reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LookupError is the outcome of a failed quote or holding resolution.
type LookupError struct {
	Kind string
	Key  string
	Err  error
}

func (e *LookupError) Error() string {
	if e.NotFound() {
		return fmt.Sprintf("%s %s not found", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s %s lookup failed: %v", e.Kind, e.Key, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) NotFound() bool {
	return errors.Is(e.Err, types.ErrNotFound)
}

// Retryable reports whether retrying the lookup could change the answer.
// An unknown symbol or holding stays unknown.
func (e *LookupError) Retryable() bool {
	return !e.NotFound()
}

// SubmissionError is a failed order-creation call. Message is what the user
// sees: the server's message when it sent one.
type SubmissionError struct {
	Action  types.OrderType
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("%s order failed: %s", e.Action, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
