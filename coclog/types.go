/*
Package coclog implements the Overtime Log domain type, its
document-store-backed persistence, and the write-path validation
cascade that turns a batch of raw entries into persisted logs.
*/
package coclog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
)

// Status is the Overtime Log lifecycle state.
type Status string

const (
	Uncertified Status = "Uncertified"
	Active      Status = "Active"
	Used        Status = "Used"
	Expired     Status = "Expired"
)

// Log is a single overtime entry.
type Log struct {
	ID         string
	EmployeeID string
	MonthName  string
	Month      int
	Year       int
	DateWorked time.Time
	DayType    calendar.DayType
	AMIn       string
	AMOut      string
	PMIn       string
	PMOut      string
	CocEarned  decimal.Decimal
	Status     Status
	LoggedBy   string
	LoggedAt   time.Time
	ValidUntil *time.Time
}

// Entry is one raw input row of a write-path batch, before
// classification and accrual computation.
type Entry struct {
	DateWorked time.Time
	AMIn       string
	AMOut      string
	PMIn       string
	PMOut      string
}

// Batch is the write-path input: (employee-id, month, year, entries).
type Batch struct {
	EmployeeID string
	Month      int
	Year       int
	MonthName  string
	LoggedBy   string
	Entries    []Entry
}

// SkippedDuplicate names a date skipped as a non-fatal duplicate.
type SkippedDuplicate struct {
	DateWorked time.Time
}

// BatchResult is the success payload of a validated, persisted batch.
type BatchResult struct {
	LogsPersisted     []Log
	TotalCreditHours  decimal.Decimal
	SkippedDuplicates []SkippedDuplicate
}
