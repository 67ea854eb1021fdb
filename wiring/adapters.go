/*
Package wiring composes the domain packages (employees, coclog,
ledger, certify) into the small consumer-defined interfaces each
cascade depends on (coclog.EmployeeLookup, coclog.PeriodLockChecker,
coclog.CapChecker). Keeping this composition in its own package — one
that every domain package is upstream of — is what avoids an import
cycle: coclog never imports employees, ledger, or certify; it only
declares the shape it needs and this package supplies it.
*/
package wiring

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/employees"
	"github.com/yowbhergie2/COCCTO2025/ledger"
)

// EmployeeAdapter satisfies coclog.EmployeeLookup over the real
// employees store.
type EmployeeAdapter struct {
	Employees *employees.Store
}

func (a EmployeeAdapter) Exists(ctx context.Context, employeeID string) (bool, error) {
	return a.Employees.Exists(ctx, employeeID)
}

// PeriodLockAdapter satisfies coclog.PeriodLockChecker by combining
// the ledger store's historical-batch lookup with the certify store's
// certificate lookup.
type PeriodLockAdapter struct {
	Batches      *ledger.Store
	Certificates *certify.Store
}

func (a PeriodLockAdapter) HistoricalLock(ctx context.Context, employeeID string, month, year int) (bool, error) {
	return a.Batches.HistoricalBatchExists(ctx, employeeID, month, year)
}

func (a PeriodLockAdapter) CertifiedLock(ctx context.Context, employeeID string, month, year int) (bool, error) {
	return a.Certificates.Exists(ctx, employeeID, month, year)
}

// CapAdapter satisfies coclog.CapChecker by summing the ledger's
// active balance with the log store's uncertified total. Both inputs
// are per-employee aggregates, not whole-collection scans.
type CapAdapter struct {
	Ledger *ledger.Service
	Logs   *coclog.Store
}

func (a CapAdapter) ActiveAndUncertifiedTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	active, err := a.Ledger.ActiveTotal(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	uncertified, err := a.Logs.QueryUncertifiedTotalByEmployee(ctx, employeeID)
	if err != nil {
		return decimal.Zero, err
	}
	return active.Add(uncertified), nil
}
