// Package worker runs the fulfilment pipeline: decode a booking intent,
// charge the payment gateway, commit the booking transactionally, and
// resolve the delivery to exactly one disposition.
package worker

import "fmt"

// ExecKind classifies an execution failure.  All kinds are treated as
// transient by the acknowledgment policy; the classification exists for
// logging and for the retry counter.
type ExecKind int

const (
	// PaymentFailed means the gateway rejected or aborted the charge.
	PaymentFailed ExecKind = iota
	// StorageFailed means the booking transaction did not commit.
	// Transient and permanent causes are indistinguishable here.
	StorageFailed
	// TimedOut means the payment or storage step exceeded its deadline.
	TimedOut
)

func (k ExecKind) String() string {
	switch k {
	case PaymentFailed:
		return "payment_failed"
	case StorageFailed:
		return "storage_failed"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// ExecError reports a failed execution attempt.  The intent itself was
// valid; redelivery may succeed once the underlying fault clears.
type ExecError struct {
	Kind ExecKind
	Err  error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute booking (%s): %v", e.Kind, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
