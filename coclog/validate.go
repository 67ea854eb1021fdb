/*
validate.go - Validation Cascade

Turns a raw write-path Batch into persisted Logs. Eight steps,
short-circuiting on the first hard failure; duplicate dates are
skipped non-fatally rather than failing the batch.
*/
package coclog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/accrual"
	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
)

// EmployeeLookup is the slice of the Employee domain the cascade
// needs: does this employee-id exist, regardless of status.
type EmployeeLookup interface {
	Exists(ctx context.Context, employeeID string) (bool, error)
}

// PeriodLockChecker reports whether a (employee, month, year) period
// is locked by a historical import batch or an existing certificate.
type PeriodLockChecker interface {
	HistoricalLock(ctx context.Context, employeeID string, month, year int) (bool, error)
	CertifiedLock(ctx context.Context, employeeID string, month, year int) (bool, error)
}

// CapChecker supplies the running totals the monthly/total cap steps
// need. ActiveAndUncertifiedTotal excludes the batch currently being
// validated.
type CapChecker interface {
	ActiveAndUncertifiedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error)
}

// Limits is the subset of Configuration the cascade consults.
type Limits struct {
	WeekendDays map[time.Weekday]bool
	MonthlyCap  decimal.Decimal
	TotalCap    decimal.Decimal
}

// Validator runs the eight-step cascade and, on success, persists the
// accepted entries through Store. It holds no calendar config of its
// own — a fresh calendar.Service is built per call from the caller's
// Limits, per the no-process-wide-cache requirement on this layer.
type Validator struct {
	Store     *Store
	Employees EmployeeLookup
	Locks     PeriodLockChecker
	Caps      CapChecker
}

func NewValidator(store *Store, employees EmployeeLookup, locks PeriodLockChecker, caps CapChecker) *Validator {
	return &Validator{Store: store, Employees: employees, Locks: locks, Caps: caps}
}

// Validate runs steps 1-8 against batch and, on success, persists the
// accepted entries atomically. holidays must already be scoped to
// batch.Year (step 5's single holiday pre-fetch).
func (v *Validator) Validate(ctx context.Context, batch Batch, limits Limits, holidays *calendar.HolidaySet) (*BatchResult, error) {
	// Step 1: schema.
	if err := validateSchema(batch); err != nil {
		return nil, err
	}

	// Step 2: employee exists (any status).
	exists, err := v.Employees.Exists(ctx, batch.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &cocerr.NotFoundError{Collection: "employees", ID: batch.EmployeeID}
	}

	// Step 3: historical period lock.
	historicallyLocked, err := v.Locks.HistoricalLock(ctx, batch.EmployeeID, batch.Month, batch.Year)
	if err != nil {
		return nil, err
	}
	if historicallyLocked {
		return nil, &cocerr.PeriodLockedError{EmployeeID: batch.EmployeeID, Month: batch.MonthName, Year: batch.Year, Flavor: "Historical"}
	}

	// Step 4: certified period lock.
	certified, err := v.Locks.CertifiedLock(ctx, batch.EmployeeID, batch.Month, batch.Year)
	if err != nil {
		return nil, err
	}
	if certified {
		return nil, &cocerr.PeriodLockedError{EmployeeID: batch.EmployeeID, Month: batch.MonthName, Year: batch.Year, Flavor: "Certified"}
	}

	// Step 5: pre-fetch — existing dates, holidays (caller-supplied),
	// weekend-days (caller-supplied via limits). One query.
	existing, err := v.Store.QueryByPeriod(ctx, batch.EmployeeID, batch.Month, batch.Year)
	if err != nil {
		return nil, err
	}
	existingDates := make(map[string]bool, len(existing))
	for _, l := range existing {
		// Uniqueness holds across every non-terminal status; Expired and
		// Used are terminal and free up the date for re-entry.
		if l.Status != Expired && l.Status != Used {
			existingDates[civilKey(l.DateWorked)] = true
		}
	}

	cal := calendar.NewService(limits.WeekendDays)

	// Step 6: per-entry classify + accrue + dup-skip, in input order.
	var accepted []Log
	var skipped []SkippedDuplicate
	batchTotal := decimal.Zero
	acceptedDates := map[string]bool{}

	for _, e := range batch.Entries {
		if e.DateWorked.Month() != time.Month(batch.Month) || e.DateWorked.Year() != batch.Year {
			return nil, &cocerr.ValidationError{Subkind: cocerr.MonthMismatch, Field: "dateWorked",
				Message: fmt.Sprintf("%s is not in %s %d", e.DateWorked.Format("2006-01-02"), batch.MonthName, batch.Year)}
		}

		key := civilKey(e.DateWorked)
		if existingDates[key] || acceptedDates[key] {
			skipped = append(skipped, SkippedDuplicate{DateWorked: e.DateWorked})
			continue
		}
		acceptedDates[key] = true

		dayType := cal.DayType(e.DateWorked, holidays)
		credit := accrual.Compute(dayType, e.AMIn, e.AMOut, e.PMIn, e.PMOut)
		batchTotal = batchTotal.Add(credit)

		accepted = append(accepted, Log{
			EmployeeID: batch.EmployeeID,
			MonthName:  batch.MonthName,
			Month:      batch.Month,
			Year:       batch.Year,
			DateWorked: e.DateWorked,
			DayType:    dayType,
			AMIn:       e.AMIn, AMOut: e.AMOut, PMIn: e.PMIn, PMOut: e.PMOut,
			CocEarned: credit,
			Status:    Uncertified,
			LoggedBy:  batch.LoggedBy,
			LoggedAt:  time.Now().UTC(),
		})
	}

	if len(accepted) == 0 {
		return nil, &cocerr.ValidationError{Subkind: cocerr.MissingField, Field: "entries",
			Message: "nothing to do: every entry was a duplicate"}
	}

	// Step 7: monthly cap.
	existingMonthTotal, err := v.Store.QueryUncertifiedMonthTotal(ctx, batch.EmployeeID, batch.Month, batch.Year)
	if err != nil {
		return nil, err
	}
	if existingMonthTotal.Add(batchTotal).GreaterThan(limits.MonthlyCap) {
		return nil, &cocerr.CapExceededError{Flavor: cocerr.MonthlyCap, Current: existingMonthTotal, Delta: batchTotal, Limit: limits.MonthlyCap}
	}

	// Step 8: total cap.
	activeAndUncertified, err := v.Caps.ActiveAndUncertifiedTotal(ctx, batch.EmployeeID)
	if err != nil {
		return nil, err
	}
	if activeAndUncertified.Add(batchTotal).GreaterThan(limits.TotalCap) {
		return nil, &cocerr.CapExceededError{Flavor: cocerr.TotalCap, Current: activeAndUncertified, Delta: batchTotal, Limit: limits.TotalCap}
	}

	// Persist atomically.
	persisted, err := v.Store.CreateMany(ctx, accepted)
	if err != nil {
		return nil, err
	}

	return &BatchResult{LogsPersisted: persisted, TotalCreditHours: batchTotal, SkippedDuplicates: skipped}, nil
}

func validateSchema(batch Batch) error {
	if batch.EmployeeID == "" {
		return &cocerr.ValidationError{Subkind: cocerr.MissingField, Field: "employeeId", Message: "employeeId is required"}
	}
	if batch.Month < 1 || batch.Month > 12 {
		return &cocerr.ValidationError{Subkind: cocerr.BadDate, Field: "month", Message: "month must be 1..12"}
	}
	if batch.Year < 1 {
		return &cocerr.ValidationError{Subkind: cocerr.BadDate, Field: "year", Message: "year is required"}
	}
	if len(batch.Entries) == 0 {
		return &cocerr.ValidationError{Subkind: cocerr.MissingField, Field: "entries", Message: "entries must be non-empty"}
	}
	for i, e := range batch.Entries {
		if e.DateWorked.IsZero() {
			return &cocerr.ValidationError{Subkind: cocerr.BadDate, Field: fmt.Sprintf("entries[%d].dateWorked", i), Message: "unparseable date"}
		}
	}
	return nil
}

func civilKey(t time.Time) string {
	return t.Format("2006-01-02")
}
