package holidays_test

import (
	"context"
	"testing"
	"time"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/holidays"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestCreate_DerivesYearFromDate(t *testing.T) {
	store := holidays.NewStore(docstore.NewMemory())
	ctx := context.Background()

	h, err := store.Create(ctx, calendar.HolidayRecord{Name: "Araw ng Kagitingan", Date: date(2025, 4, 9), Type: "Regular"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Year != 2025 {
		t.Errorf("Year = %d, want 2025 (derived from date)", h.Year)
	}
	if h.ID == "" {
		t.Error("expected a fresh holiday id")
	}
}

func TestCreate_RejectsDuplicateDate(t *testing.T) {
	store := holidays.NewStore(docstore.NewMemory())
	ctx := context.Background()

	if _, err := store.Create(ctx, calendar.HolidayRecord{Name: "A", Date: date(2025, 3, 15), Type: "Special"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := store.Create(ctx, calendar.HolidayRecord{Name: "B", Date: date(2025, 3, 15), Type: "Regular"}); err == nil {
		t.Fatal("expected AlreadyExists for duplicate date")
	}
}

func TestLoadSet_BuildsHolidaySetScopedToYear(t *testing.T) {
	store := holidays.NewStore(docstore.NewMemory())
	ctx := context.Background()

	if _, err := store.Create(ctx, calendar.HolidayRecord{Name: "2025 Holiday", Date: date(2025, 3, 15), Type: "Special"}); err != nil {
		t.Fatalf("create 2025: %v", err)
	}
	if _, err := store.Create(ctx, calendar.HolidayRecord{Name: "2026 Holiday", Date: date(2026, 3, 15), Type: "Special"}); err != nil {
		t.Fatalf("create 2026: %v", err)
	}

	set, err := store.LoadSet(ctx, 2025)
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}
	if !set.IsHoliday(date(2025, 3, 15)) {
		t.Error("expected 2025-03-15 to be a holiday")
	}
	if set.IsHoliday(date(2026, 3, 15)) {
		t.Error("2026 holiday should not leak into a 2025-scoped set")
	}
}
