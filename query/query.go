package query

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/employees"
	"github.com/yowbhergie2/COCCTO2025/ledger"
)

// Service composes the domain stores into the read-side views.
type Service struct {
	Logs         *coclog.Store
	Batches      *ledger.Store
	Employees    *employees.Store
	Certificates *certify.Store
	LedgerSvc    *ledger.Service
}

func NewService(logs *coclog.Store, batches *ledger.Store, emps *employees.Store, certs *certify.Store, ledgerSvc *ledger.Service) *Service {
	return &Service{Logs: logs, Batches: batches, Employees: emps, Certificates: certs, LedgerSvc: ledgerSvc}
}

// EmployeeLedger builds the §4.7 detailed ledger view with exactly
// two store queries: batches-by-employee and logs-by-employee.
func (s *Service) EmployeeLedger(ctx context.Context, employeeID string, asOf time.Time) (*EmployeeLedgerView, error) {
	batches, err := s.Batches.QueryBatchesByEmployee(ctx, employeeID) // query 1
	if err != nil {
		return nil, err
	}
	logs, err := s.Logs.QueryByEmployee(ctx, employeeID) // query 2
	if err != nil {
		return nil, err
	}

	bal := ledger.AggregateBalance(batches, asOf)

	uncertified := decimal.Zero
	rows := make([]LedgerRow, 0, len(batches)+len(logs))
	for _, b := range batches {
		rows = append(rows, batchToRow(b))
	}
	for _, l := range logs {
		if l.Status == coclog.Uncertified {
			uncertified = uncertified.Add(l.CocEarned)
		}
		rows = append(rows, logToRow(l))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.After(rows[j].Date) })

	return &EmployeeLedgerView{
		ActiveBalance: bal.Active, UncertifiedBalance: uncertified,
		TotalEarned: bal.TotalEarned, UsedCredits: bal.Used, Rows: rows,
	}, nil
}

// UncertifiedStats runs the §4.7 global admin aggregate with one
// pushed-down equality query (status=Uncertified).
func (s *Service) UncertifiedStats(ctx context.Context) (*UncertifiedStats, error) {
	logs, err := s.Logs.QueryByStatus(ctx, coclog.Uncertified)
	if err != nil {
		return nil, err
	}
	stats := &UncertifiedStats{TotalHours: decimal.Zero}
	seen := map[string]bool{}
	for _, l := range logs {
		stats.TotalHours = stats.TotalHours.Add(l.CocEarned)
		seen[l.EmployeeID] = true
		if stats.OldestDate.IsZero() || l.DateWorked.Before(stats.OldestDate) {
			stats.OldestDate = l.DateWorked
		}
	}
	stats.UniqueEmployees = len(seen)
	return stats, nil
}

// UncertifiedLogsWithNames joins §4.7's uncertified-logs query against
// the active-employee directory in memory: one query per side, no
// per-row employee fetch.
func (s *Service) UncertifiedLogsWithNames(ctx context.Context) ([]NamedUncertifiedLog, error) {
	logs, err := s.Logs.QueryByStatus(ctx, coclog.Uncertified)
	if err != nil {
		return nil, err
	}
	active, err := s.Employees.QueryActive(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(active))
	for _, e := range active {
		names[e.ID] = e.FirstName + " " + e.LastName
	}

	out := make([]NamedUncertifiedLog, 0, len(logs))
	for _, l := range logs {
		name, ok := names[l.EmployeeID]
		out = append(out, NamedUncertifiedLog{Log: l, EmployeeName: name, EmployeeUnknown: !ok})
	}
	return out, nil
}

// CertifiedMonths delegates to the certificates store's compound
// equality query on (employeeId, year).
func (s *Service) CertifiedMonths(ctx context.Context, employeeID string, year int) ([]certify.Certificate, error) {
	return s.Certificates.QueryByEmployeeAndYear(ctx, employeeID, year)
}

// Progress runs the §4.7 balance-progress view for (employee, month,
// year): monthly-total and monthly-cap headroom, plus the employee's
// active+uncertified standing against the total cap.
func (s *Service) Progress(ctx context.Context, employeeID string, month, year int, limits Limits) (*Progress, error) {
	monthlyTotal, err := s.Logs.QueryUncertifiedMonthTotal(ctx, employeeID, month, year)
	if err != nil {
		return nil, err
	}
	active, err := s.LedgerSvc.ActiveTotal(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	uncertifiedTotal, err := s.Logs.QueryUncertifiedTotalByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	activePlusUncertified := active.Add(uncertifiedTotal)

	return &Progress{
		MonthlyTotal:          monthlyTotal,
		MonthlyCap:            limits.MonthlyCap,
		MonthlyRemaining:      limits.MonthlyCap.Sub(monthlyTotal),
		ActivePlusUncertified: activePlusUncertified,
		TotalCap:              limits.TotalCap,
		TotalRemaining:        limits.TotalCap.Sub(activePlusUncertified),
	}, nil
}
