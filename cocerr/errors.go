/*
errors.go - Centralized error types for the COC engine

PURPOSE:
  All error kinds in one place for consistency and discoverability.
  Every public operation in this module returns one of these kinds
  (directly or wrapped) rather than an ad hoc error string, so callers
  at the HTTP boundary can map errors to status codes without string
  matching.

ERROR CATEGORIES:
  1. Validation errors   - malformed input (MissingField, BadDate, BadTime, MonthMismatch)
  2. Not-found errors    - referenced entity absent
  3. Conflict errors     - AlreadyExists, PeriodLocked (Historical/Certified)
  4. Cap errors          - MonthlyCapExceeded, TotalCapExceeded
  5. Precondition errors - e.g. future date-of-issuance, deleting a certified log
  6. Store errors        - StoreUnavailable (retriable), Internal (not)

USAGE:
  Domain packages return structured errors; callers use errors.As/errors.Is:

    var cap *CapExceededError
    if errors.As(err, &cap) {
        respond(w, 409, cap)
    }

SEE ALSO:
  - api package: maps these to HTTP status codes.
*/
package cocerr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAlreadyCertified is returned when certifying a period that already
	// has a certificate on file. The call is a no-op.
	ErrAlreadyCertified = errors.New("period already certified")

	// ErrPeriodLockedHistorical is returned when a historical-import batch
	// already covers the targeted period.
	ErrPeriodLockedHistorical = errors.New("period locked by historical import")

	// ErrPeriodLockedCertified is returned when a certificate already
	// covers the targeted period.
	ErrPeriodLockedCertified = errors.New("period locked by certification")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned for unique-constraint violations
	// (e.g. duplicate certificate, duplicate employee email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrStoreUnavailable is returned on deadline or transport failure
	// against the document store. Retriable.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInternal marks an invariant violation. Not retriable; log for
	// operator attention.
	ErrInternal = errors.New("internal invariant violation")

	// ErrPreconditionFailed is returned when an operation's precondition
	// does not hold (future issuance date, deleting a non-Uncertified log).
	ErrPreconditionFailed = errors.New("precondition failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationSubkind enumerates the malformed-input flavors from §7.
type ValidationSubkind string

const (
	MissingField ValidationSubkind = "MissingField"
	BadDate      ValidationSubkind = "BadDate"
	// BadTime is reserved for a caller that rejects malformed punch-time
	// strings outright. accrual.Compute deliberately treats an unparseable
	// punch as a missing session worth zero credit rather than a hard
	// error (see accrual.go's TIME FORMAT note), so nothing produces this
	// today.
	BadTime       ValidationSubkind = "BadTime"
	MonthMismatch ValidationSubkind = "MonthMismatch"
)

// ValidationError carries the offending field/subkind for malformed input.
type ValidationError struct {
	Subkind ValidationSubkind
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s: %s", e.Subkind, e.Field, e.Message)
}

// CapFlavor distinguishes which cap was exceeded.
type CapFlavor string

const (
	MonthlyCap CapFlavor = "Monthly"
	TotalCap   CapFlavor = "Total"
)

// CapExceededError carries the numbers needed to explain a cap rejection
// without a second round trip to the store.
type CapExceededError struct {
	Flavor  CapFlavor
	Current decimal.Decimal
	Delta   decimal.Decimal
	Limit   decimal.Decimal
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("%s cap exceeded: current=%s delta=%s limit=%s",
		e.Flavor, e.Current, e.Delta, e.Limit)
}

// PeriodLockedError carries which lock flavor applies.
type PeriodLockedError struct {
	EmployeeID string
	Month      string
	Year       int
	Flavor     string // "Historical" or "Certified"
}

func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("period locked (%s): employee=%s %s %d", e.Flavor, e.EmployeeID, e.Month, e.Year)
}

func (e *PeriodLockedError) Unwrap() error {
	if e.Flavor == "Historical" {
		return ErrPeriodLockedHistorical
	}
	return ErrPeriodLockedCertified
}

// NotFoundError names the missing collection/id for quick diagnosis.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s/%s", e.Collection, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the caller may retry the same operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsClientError returns true if the error stems from invalid client input
// rather than a server-side fault.
func IsClientError(err error) bool {
	var ve *ValidationError
	var ce *CapExceededError
	var pe *PeriodLockedError
	return errors.As(err, &ve) || errors.As(err, &ce) || errors.As(err, &pe) ||
		errors.Is(err, ErrAlreadyCertified) || errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrPreconditionFailed)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
