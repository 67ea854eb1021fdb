/*
Package query implements the Query & Aggregation Layer: read-side
views that compose the overtime-log, ledger/batch, employee, and
certificate stores under a bounded-query-count discipline — every
operation here pushes known equality predicates to the adapter and
never loads a whole collection to filter in Go.
*/
package query

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/ledger"
)

// LedgerRow is one entry in an employee's detailed ledger view,
// sourced from either a Credit Batch or an Overtime Log.
type LedgerRow struct {
	Month          int
	Year           int
	Date           time.Time
	DayType        string
	Punches        string
	Earned         decimal.Decimal
	Used           decimal.Decimal
	Remaining      decimal.Decimal
	DateOfIssuance time.Time
	ValidUntil     *time.Time
	Status         string
	IsHistorical   bool
}

// EmployeeLedgerView is the §4.7 "employee detailed ledger" result.
type EmployeeLedgerView struct {
	ActiveBalance      decimal.Decimal
	UncertifiedBalance decimal.Decimal
	TotalEarned        decimal.Decimal
	UsedCredits        decimal.Decimal
	Rows               []LedgerRow
}

// UncertifiedStats is the §4.7 global admin stats view.
type UncertifiedStats struct {
	TotalHours      decimal.Decimal
	UniqueEmployees int
	OldestDate      time.Time
}

// NamedUncertifiedLog pairs an Overtime Log with its employee's
// display name, built by an in-memory join rather than a per-row
// employee fetch.
type NamedUncertifiedLog struct {
	Log              coclog.Log
	EmployeeName     string
	EmployeeUnknown  bool
}

// Progress is the §4.7 "progress for (employee, month, year)" view.
type Progress struct {
	MonthlyTotal         decimal.Decimal
	MonthlyCap           decimal.Decimal
	MonthlyRemaining     decimal.Decimal
	ActivePlusUncertified decimal.Decimal
	TotalCap             decimal.Decimal
	TotalRemaining       decimal.Decimal
}

// Limits is the subset of Configuration Progress needs — the same
// shape coclog.Limits exposes for the caps, kept separate so this
// package never has to import the validation cascade for a type.
type Limits struct {
	MonthlyCap decimal.Decimal
	TotalCap   decimal.Decimal
}

func punchString(l coclog.Log) string {
	return l.AMIn + "-" + l.AMOut + " / " + l.PMIn + "-" + l.PMOut
}

func logToRow(l coclog.Log) LedgerRow {
	return LedgerRow{
		Month: l.Month, Year: l.Year, Date: l.DateWorked, DayType: string(l.DayType),
		Punches: punchString(l), Earned: l.CocEarned, Used: decimal.Zero, Remaining: decimal.Zero,
		ValidUntil: l.ValidUntil, Status: string(l.Status), IsHistorical: false,
	}
}

func batchToRow(b ledger.Batch) LedgerRow {
	vu := b.ValidUntil
	return LedgerRow{
		Month: b.EarnedMonth, Year: b.EarnedYear, Date: b.DateOfIssuance, DayType: "",
		Punches: "", Earned: b.OriginalHours, Used: b.UsedHours, Remaining: b.RemainingHours,
		DateOfIssuance: b.DateOfIssuance, ValidUntil: &vu, Status: string(b.Status),
		IsHistorical: b.SourceType == ledger.SourceHistoricalImport,
	}
}
