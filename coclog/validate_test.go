package coclog_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

type fakeEmployees struct{ known map[string]bool }

func (f fakeEmployees) Exists(_ context.Context, id string) (bool, error) { return f.known[id], nil }

type fakeLocks struct{ historical, certified bool }

func (f fakeLocks) HistoricalLock(_ context.Context, _ string, _, _ int) (bool, error) { return f.historical, nil }
func (f fakeLocks) CertifiedLock(_ context.Context, _ string, _, _ int) (bool, error)  { return f.certified, nil }

type fakeCaps struct{ total decimal.Decimal }

func (f fakeCaps) ActiveAndUncertifiedTotal(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.total, nil
}

func defaultLimits() coclog.Limits {
	return coclog.Limits{
		WeekendDays: calendar.DefaultWeekendDays(),
		MonthlyCap:  decimal.RequireFromString("40.0"),
		TotalCap:    decimal.RequireFromString("120.0"),
	}
}

func newValidator(t *testing.T) (*coclog.Validator, *coclog.Store) {
	t.Helper()
	store := coclog.NewStore(docstore.NewMemory())
	v := coclog.NewValidator(store, fakeEmployees{known: map[string]bool{"e1": true}}, fakeLocks{}, fakeCaps{})
	return v, store
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Scenario 1: Weekday single session -> 1.5 hours, log created Uncertified.
func TestValidate_WeekdaySingleSession(t *testing.T) {
	v, _ := newValidator(t)
	batch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{{DateWorked: date(2025, 3, 10), AMIn: "8:00 AM", AMOut: "12:00 PM", PMIn: "1:00 PM", PMOut: "6:30 PM"}},
	}
	result, err := v.Validate(context.Background(), batch, defaultLimits(), calendar.NewHolidaySet(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.LogsPersisted) != 1 {
		t.Fatalf("expected 1 log, got %d", len(result.LogsPersisted))
	}
	if !result.LogsPersisted[0].CocEarned.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("got %s, want 1.5", result.LogsPersisted[0].CocEarned)
	}
	if result.LogsPersisted[0].Status != coclog.Uncertified {
		t.Errorf("expected Uncertified status, got %s", result.LogsPersisted[0].Status)
	}
}

// Scenario 4: monthly cap rejection with zero logs persisted.
func TestValidate_MonthlyCapRejection_NoLogsPersisted(t *testing.T) {
	v, store := newValidator(t)
	ctx := context.Background()

	// Seed 12.0 hours via a full weekend day (March 8, 2025 is a Saturday).
	seedBatch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{{DateWorked: date(2025, 3, 8), AMIn: "8:00 AM", AMOut: "12:00 PM", PMIn: "1:00 PM", PMOut: "5:00 PM"}},
	}
	if _, err := v.Validate(ctx, seedBatch, defaultLimits(), calendar.NewHolidaySet(nil)); err != nil {
		t.Fatalf("seed validate: %v", err)
	}
	// 12.0 persisted so far. Seed 17 more weekday logs directly (1.5 each)
	// to reach 37.5 without going through the cascade a second time.
	seedLogs := []coclog.Log{}
	for i := 0; i < 17; i++ {
		seedLogs = append(seedLogs, coclog.Log{
			EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025,
			DateWorked: date(2025, 3, 11+i), DayType: calendar.Weekday,
			CocEarned: decimal.RequireFromString("1.5"), Status: coclog.Uncertified, LoggedAt: time.Now(),
		})
	}
	if _, err := store.CreateMany(ctx, seedLogs); err != nil {
		t.Fatalf("seed logs: %v", err)
	}
	existingTotal, _ := store.QueryUncertifiedMonthTotal(ctx, "e1", 3, 2025)
	if !existingTotal.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("seed total = %s, want 37.5", existingTotal)
	}

	// New batch: two weekday sessions spanning the full 5-7pm window,
	// 2.0 hours each (the whole window) -> batch total 4.0, pushing 37.5+4.0=41.5
	// past the 40.0 monthly cap.
	newBatch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{
			{DateWorked: date(2025, 3, 3), PMIn: "5:00 PM", PMOut: "7:00 PM"},
			{DateWorked: date(2025, 3, 4), PMIn: "5:00 PM", PMOut: "7:00 PM"},
		},
	}
	_, err := v.Validate(ctx, newBatch, defaultLimits(), calendar.NewHolidaySet(nil))
	if err == nil {
		t.Fatal("expected monthly cap rejection")
	}
	var capErr *cocerr.CapExceededError
	ok := asCapErr(err, &capErr)
	if !ok || capErr.Flavor != cocerr.MonthlyCap {
		t.Fatalf("expected MonthlyCap error, got %v", err)
	}

	// Zero logs from the rejected batch should be persisted: the new
	// batch's dates (3/3 and 3/4) must not exist in the store.
	logs, _ := store.QueryByPeriod(ctx, "e1", 3, 2025)
	for _, l := range logs {
		if l.DateWorked.Equal(date(2025, 3, 3)) || l.DateWorked.Equal(date(2025, 3, 4)) {
			t.Errorf("rejected batch entry was persisted: %v", l)
		}
	}
}

func asCapErr(err error, target **cocerr.CapExceededError) bool {
	if ce, ok := err.(*cocerr.CapExceededError); ok {
		*target = ce
		return true
	}
	return false
}

// Expired and Used are terminal states: a date covered only by a
// terminal-status log is free for re-entry, per the uniqueness rule
// holding across non-terminal statuses only.
func TestValidate_DateFreedByTerminalStatus_NotTreatedAsDuplicate(t *testing.T) {
	v, store := newValidator(t)
	ctx := context.Background()

	_, err := store.CreateMany(ctx, []coclog.Log{
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 10),
			DayType: calendar.Weekday, CocEarned: decimal.RequireFromString("1.0"), Status: coclog.Expired, LoggedAt: time.Now()},
		{EmployeeID: "e1", MonthName: "March", Month: 3, Year: 2025, DateWorked: date(2025, 3, 11),
			DayType: calendar.Weekday, CocEarned: decimal.RequireFromString("1.0"), Status: coclog.Used, LoggedAt: time.Now()},
	})
	if err != nil {
		t.Fatalf("seed logs: %v", err)
	}

	batch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{
			{DateWorked: date(2025, 3, 10), PMIn: "5:00 PM", PMOut: "6:00 PM"},
			{DateWorked: date(2025, 3, 11), PMIn: "5:00 PM", PMOut: "6:00 PM"},
		},
	}
	result, err := v.Validate(ctx, batch, defaultLimits(), calendar.NewHolidaySet(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.LogsPersisted) != 2 || len(result.SkippedDuplicates) != 0 {
		t.Errorf("expected both dates re-enterable, got %d persisted / %d skipped", len(result.LogsPersisted), len(result.SkippedDuplicates))
	}
}

// V2: duplicate-idempotence — same (employee, date) twice in one batch
// yields exactly one persisted log.
func TestValidate_DuplicateWithinBatch_SkippedNotFailed(t *testing.T) {
	v, _ := newValidator(t)
	batch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{
			{DateWorked: date(2025, 3, 10), AMIn: "8:00 AM", AMOut: "12:00 PM"},
			{DateWorked: date(2025, 3, 10), PMIn: "5:00 PM", PMOut: "6:00 PM"},
		},
	}
	result, err := v.Validate(context.Background(), batch, defaultLimits(), calendar.NewHolidaySet(nil))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(result.LogsPersisted) != 1 {
		t.Errorf("expected exactly 1 persisted log, got %d", len(result.LogsPersisted))
	}
	if len(result.SkippedDuplicates) != 1 {
		t.Errorf("expected exactly 1 skipped duplicate, got %d", len(result.SkippedDuplicates))
	}
}

// V3: period-lock correctness.
func TestValidate_HistoricalPeriodLock(t *testing.T) {
	store := coclog.NewStore(docstore.NewMemory())
	v := coclog.NewValidator(store, fakeEmployees{known: map[string]bool{"e1": true}}, fakeLocks{historical: true}, fakeCaps{})

	batch := coclog.Batch{
		EmployeeID: "e1", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{{DateWorked: date(2025, 3, 10), AMIn: "8:00 AM", AMOut: "12:00 PM"}},
	}
	_, err := v.Validate(context.Background(), batch, defaultLimits(), calendar.NewHolidaySet(nil))
	if err == nil {
		t.Fatal("expected PeriodLocked/Historical")
	}
	pe, ok := err.(*cocerr.PeriodLockedError)
	if !ok || pe.Flavor != "Historical" {
		t.Fatalf("got %v, want PeriodLocked/Historical", err)
	}

	logs, _ := store.QueryByPeriod(context.Background(), "e1", 3, 2025)
	if len(logs) != 0 {
		t.Errorf("expected no logs persisted, got %d", len(logs))
	}
}

func TestValidate_EmployeeNotFound(t *testing.T) {
	store := coclog.NewStore(docstore.NewMemory())
	v := coclog.NewValidator(store, fakeEmployees{known: map[string]bool{}}, fakeLocks{}, fakeCaps{})
	batch := coclog.Batch{EmployeeID: "ghost", Month: 3, Year: 2025, MonthName: "March",
		Entries: []coclog.Entry{{DateWorked: date(2025, 3, 10)}}}
	_, err := v.Validate(context.Background(), batch, defaultLimits(), calendar.NewHolidaySet(nil))
	if !cocerr.IsNotFound(err) {
		t.Fatalf("got %v, want NotFound", err)
	}
}
