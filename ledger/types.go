/*
Package ledger implements the Credit Batch & Ledger component: batch
creation, FIFO debit, expiration sweep, balance aggregation, and the
append-only transaction journal that balance reconstruction checks
against.
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus is a Credit Batch's lifecycle state.
type BatchStatus string

const (
	BatchActive  BatchStatus = "Active"
	BatchUsed    BatchStatus = "Used"
	BatchExpired BatchStatus = "Expired"
)

// SourceType names where a batch's hours came from.
type SourceType string

const (
	SourceMonthlyCertificate SourceType = "MonthlyCertificate"
	SourceHistoricalImport   SourceType = "HistoricalImport"
)

// Batch is an immutable-except-for-{remaining,used,status} Credit Batch.
type Batch struct {
	ID                  string
	EmployeeID          string
	EarnedMonth         int
	EarnedYear          int
	OriginalHours       decimal.Decimal
	RemainingHours      decimal.Decimal
	UsedHours           decimal.Decimal
	Status              BatchStatus
	DateOfIssuance      time.Time
	ValidUntil          time.Time
	SourceType          SourceType
	SourceCertificateID string
	Notes               string
}

// earnedDate is the FIFO-debit tie-breaker: the first civil date of
// the batch's earned period.
func (b Batch) earnedDate() time.Time {
	return time.Date(b.EarnedYear, time.Month(b.EarnedMonth), 1, 0, 0, 0, 0, time.UTC)
}

// TxType is a Ledger Entry's transaction kind.
type TxType string

const (
	TxCredit     TxType = "Credit"
	TxDebit      TxType = "Debit"
	TxAdjustment TxType = "Adjustment"
	TxExpiration TxType = "Expiration"
)

// Entry is one append-only ledger row. Hours is signed: positive for
// Credit/Adjustment-up, negative for Debit/Expiration/Adjustment-down.
type Entry struct {
	ID              string
	EmployeeID      string
	Type            TxType
	Hours           decimal.Decimal
	BatchID         string
	ReferenceID     string
	Notes           string
	TransactionDate time.Time
	PerformedBy     string
	CorrelationID   string
}

// Allocation is one batch's share of a debit.
type Allocation struct {
	BatchID       string
	HoursConsumed decimal.Decimal
}

// Balance is the aggregate view §4.6 and §4.7 both need.
type Balance struct {
	Active      decimal.Decimal
	Uncertified decimal.Decimal
	TotalEarned decimal.Decimal
	Used        decimal.Decimal
	Expired     decimal.Decimal
}
