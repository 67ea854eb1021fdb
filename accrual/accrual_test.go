package accrual_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/accrual"
	"github.com/yowbhergie2/COCCTO2025/calendar"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestParseTime(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantOK  bool
	}{
		{"8:00 AM", 480, true},
		{"12:00 PM", 720, true},
		{"12:00 AM", 0, true},
		{"6:30 PM", 18*60 + 30, true},
		{"", 0, false},
		{"garbage", 0, false},
		{"13:00 AM", 0, false},
		{"8:00 XM", 0, false},
	}
	for _, c := range cases {
		got, ok := accrual.ParseTime(c.in)
		if ok != c.wantOK {
			t.Errorf("ParseTime(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("ParseTime(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

// Scenario 1: Weekday single session.
// am=(8:00 AM->12:00 PM), pm=(1:00 PM->6:30 PM): overlap with 17:00-19:00 = 90 min -> 1.5
func TestCompute_WeekdaySingleSession(t *testing.T) {
	got := accrual.Compute(calendar.Weekday, "8:00 AM", "12:00 PM", "1:00 PM", "6:30 PM")
	if !got.Equal(dec("1.5")) {
		t.Errorf("got %s, want 1.5", got)
	}
}

// Scenario 2: Weekend full day -> 12.0
func TestCompute_WeekendFullDay(t *testing.T) {
	got := accrual.Compute(calendar.Weekend, "8:00 AM", "12:00 PM", "1:00 PM", "5:00 PM")
	if !got.Equal(dec("12.0")) {
		t.Errorf("got %s, want 12.0", got)
	}
}

func TestCompute_WeekdayClampsAtTwoHours(t *testing.T) {
	// Both sessions overlap the whole 17:00-19:00 window: 4.0h of overlap in total.
	got := accrual.Compute(calendar.Weekday, "5:00 PM", "7:00 PM", "4:00 PM", "8:00 PM")
	if !got.Equal(dec("2.0")) {
		t.Errorf("got %s, want clamp of 2.0", got)
	}
}

func TestCompute_InvalidSessionContributesZero(t *testing.T) {
	got := accrual.Compute(calendar.Weekday, "garbage", "12:00 PM", "", "")
	if !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
}

func TestCompute_OutBeforeInContributesZero(t *testing.T) {
	got := accrual.Compute(calendar.Weekday, "6:00 PM", "5:00 PM", "", "")
	if !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
}

// A2: bounds.
func TestCompute_NeverNegative(t *testing.T) {
	got := accrual.Compute(calendar.Weekday, "", "", "", "")
	if got.IsNegative() {
		t.Errorf("got %s, want >= 0", got)
	}
}

func TestCompute_WeekendHolidayUpperBound(t *testing.T) {
	got := accrual.Compute(calendar.Weekend, "8:00 AM", "12:00 PM", "1:00 PM", "5:00 PM")
	if got.GreaterThan(dec("12.0")) {
		t.Errorf("got %s, want <= 12.0", got)
	}
}

// A3: at most one fractional digit.
func TestCompute_RoundsToOneDecimal(t *testing.T) {
	got := accrual.Compute(calendar.Weekday, "8:07 AM", "12:00 PM", "5:03 PM", "6:41 PM")
	if got.Exponent() < -1 {
		t.Errorf("got %s with more than one fractional digit", got)
	}
}

// A1: purity — same inputs, same output, called repeatedly.
func TestCompute_Purity(t *testing.T) {
	a := accrual.Compute(calendar.Weekend, "8:00 AM", "12:00 PM", "1:00 PM", "5:00 PM")
	b := accrual.Compute(calendar.Weekend, "8:00 AM", "12:00 PM", "1:00 PM", "5:00 PM")
	if !a.Equal(b) {
		t.Errorf("non-deterministic result: %s vs %s", a, b)
	}
}
