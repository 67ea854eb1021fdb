package certify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/ledger"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

func newEngine() (*certify.Engine, *coclog.Store, *ledger.Store, *certify.Store) {
	adapter := docstore.NewMemory()
	logStore := coclog.NewStore(adapter)
	ledgerStore := ledger.NewStore(adapter)
	certStore := certify.NewStore(adapter)
	engine := certify.NewEngine(adapter, logStore, certStore)
	return engine, logStore, ledgerStore, certStore
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Scenario 5: certification.
func TestCertify_ThreeLogsTotaling7Point5_Scenario5(t *testing.T) {
	engine, logStore, ledgerStore, certStore := newEngine()
	ctx := context.Background()

	_, err := logStore.CreateMany(ctx, []coclog.Log{
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 10),
			DayType: calendar.Weekday, CocEarned: decimal.RequireFromString("1.5"), Status: coclog.Uncertified, LoggedAt: time.Now()},
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 11),
			DayType: calendar.Weekday, CocEarned: decimal.RequireFromString("2.0"), Status: coclog.Uncertified, LoggedAt: time.Now()},
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 12),
			DayType: calendar.Weekday, CocEarned: decimal.RequireFromString("4.0"), Status: coclog.Uncertified, LoggedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	issuance := date(2025, 4, 1)
	result, err := engine.Certify(ctx, "e1", 3, 2025, "March", issuance, date(2025, 4, 2), 12)
	if err != nil {
		t.Fatalf("Certify: %v", err)
	}

	wantValidUntil := date(2026, 3, 31)
	if !result.Certificate.ValidUntil.Equal(wantValidUntil) {
		t.Errorf("valid-until = %s, want %s", result.Certificate.ValidUntil, wantValidUntil)
	}
	if !result.Batch.OriginalHours.Equal(decimal.RequireFromString("7.5")) || !result.Batch.RemainingHours.Equal(decimal.RequireFromString("7.5")) {
		t.Errorf("batch hours mismatch: %+v", result.Batch)
	}
	if result.Batch.Status != ledger.BatchActive || !result.Batch.UsedHours.IsZero() {
		t.Errorf("expected fresh Active batch with zero used hours: %+v", result.Batch)
	}
	if !result.LedgerEntry.Hours.Equal(decimal.RequireFromString("7.5")) || result.LedgerEntry.Type != ledger.TxCredit {
		t.Errorf("expected +7.5 Credit entry, got %+v", result.LedgerEntry)
	}
	if len(result.LogsUpdated) != 3 {
		t.Fatalf("expected 3 logs updated, got %d", len(result.LogsUpdated))
	}

	// C2: every covered log has the same valid-until.
	for _, id := range result.LogsUpdated {
		l, err := logStore.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get log %s: %v", id, err)
		}
		if l.Status != coclog.Active {
			t.Errorf("log %s status = %s, want Active", id, l.Status)
		}
		if l.ValidUntil == nil || !l.ValidUntil.Equal(wantValidUntil) {
			t.Errorf("log %s valid-until mismatch: %+v", id, l.ValidUntil)
		}
	}

	gotBatch, err := ledgerStore.GetBatch(ctx, result.Batch.ID)
	if err != nil || gotBatch.ID == "" {
		t.Errorf("batch not persisted: %v / %v", gotBatch, err)
	}
	gotCert, err := certStore.Get(ctx, result.Certificate.ID)
	if err != nil || gotCert.ID == "" {
		t.Errorf("certificate not persisted: %v / %v", gotCert, err)
	}
}

// C1: certification-atomicity / idempotency.
func TestCertify_SecondCallIsAlreadyCertifiedNoOp(t *testing.T) {
	engine, logStore, _, _ := newEngine()
	ctx := context.Background()

	_, err := logStore.CreateMany(ctx, []coclog.Log{
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 10),
			CocEarned: decimal.RequireFromString("1.5"), Status: coclog.Uncertified, LoggedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	issuance := date(2025, 4, 1)
	if _, err := engine.Certify(ctx, "e1", 3, 2025, "March", issuance, date(2025, 4, 2), 12); err != nil {
		t.Fatalf("first Certify: %v", err)
	}

	_, err = engine.Certify(ctx, "e1", 3, 2025, "March", issuance, date(2025, 4, 2), 12)
	if !errors.Is(err, cocerr.ErrAlreadyCertified) {
		t.Fatalf("expected AlreadyCertified on repeat call, got %v", err)
	}
}

func TestCertify_NoUncertifiedLogs_PreconditionFailed(t *testing.T) {
	engine, _, _, _ := newEngine()
	ctx := context.Background()

	_, err := engine.Certify(ctx, "e1", 3, 2025, "March", date(2025, 4, 1), date(2025, 4, 2), 12)
	if !errors.Is(err, cocerr.ErrPreconditionFailed) {
		t.Fatalf("expected PreconditionFailed for empty period, got %v", err)
	}
}

func TestCertify_FutureIssuanceDate_PreconditionFailed(t *testing.T) {
	engine, logStore, _, _ := newEngine()
	ctx := context.Background()

	_, err := logStore.CreateMany(ctx, []coclog.Log{
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 10),
			CocEarned: decimal.RequireFromString("1.5"), Status: coclog.Uncertified, LoggedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	_, err = engine.Certify(ctx, "e1", 3, 2025, "March", date(2025, 5, 1), date(2025, 4, 2), 12)
	if !errors.Is(err, cocerr.ErrPreconditionFailed) {
		t.Fatalf("expected PreconditionFailed for future date-of-issuance, got %v", err)
	}
}

func TestRecoverIncomplete_DetectsActiveLogsWithoutCertificate(t *testing.T) {
	engine, logStore, _, _ := newEngine()
	ctx := context.Background()

	validUntil := date(2026, 3, 31)
	_, err := logStore.CreateMany(ctx, []coclog.Log{
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 10),
			CocEarned: decimal.RequireFromString("1.5"), Status: coclog.Active, ValidUntil: &validUntil, LoggedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	err = engine.RecoverIncomplete(ctx, "e1", 3, 2025)
	if !errors.Is(err, cocerr.ErrInternal) {
		t.Fatalf("expected Internal inconsistency error, got %v", err)
	}
}
