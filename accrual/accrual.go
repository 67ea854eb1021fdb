/*
accrual.go - Pure accrual rule engine

PURPOSE:
  Translates a day-type classification plus four punch times into a
  credit-hours figure. This package does no I/O and holds no state:
  same inputs always produce the same output. Keep it that way — any
  change that makes this package depend on the clock, the store, or
  configuration other than what is passed explicitly breaks the
  purity property the rest of the engine relies on for testing.

TIME FORMAT:
  Punch times are "HH:MM AM/PM" strings (e.g. "8:00 AM", "5:30 PM").
  Empty or malformed strings contribute zero minutes rather than
  erroring — a missing punch is a missing session, not invalid input.

RULES:
  Weekday:          window 17:00-19:00, multiplier 1.0, clamp at 2.0h.
  Weekend/Holiday:  windows 08:00-12:00 and 13:00-17:00, multiplier 1.5,
                    no per-day clamp (the monthly/total cap bounds the
                    aggregate instead).

Rounding happens exactly once, on the final hours figure, half-away-
from-zero to one decimal place.
*/
package accrual

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
)

// window is a credit-eligible interval expressed in minutes since
// midnight, half-open at neither end (both bounds inclusive of the
// overlap computation's max(0, end-start) semantics).
type window struct {
	startMin, endMin int
}

var weekdayWindows = []window{{17 * 60, 19 * 60}}
var weekendHolidayWindows = []window{{8 * 60, 12 * 60}, {13 * 60, 17 * 60}}

const (
	weekdayMultiplier       = "1.0"
	weekendHolidayMultiplier = "1.5"
	weekdayClampHours       = "2.0"
)

// session is a single punch-in/punch-out pair, in minutes since
// midnight. A malformed or empty punch parses to (0, 0, false) and
// contributes nothing.
type session struct {
	inMin, outMin int
	valid         bool
}

// ParseTime parses an "HH:MM AM/PM" string to minutes since midnight.
// Hours 1..12, minutes 0..59, AM/PM case-insensitive. 12 AM = 0,
// 12 PM = 720. Returns ok=false for empty or malformed input — this
// is never an error at this layer, only a signal to the caller that
// the session contributes zero.
func ParseTime(s string) (minutes int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, false
	}
	marker := strings.ToUpper(parts[1])
	if marker != "AM" && marker != "PM" {
		return 0, false
	}
	hm := strings.SplitN(parts[0], ":", 2)
	if len(hm) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 1 || h > 12 {
		return 0, false
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	if marker == "AM" {
		if h == 12 {
			h = 0
		}
	} else {
		if h != 12 {
			h += 12
		}
	}
	return h*60 + m, true
}

func parseSession(in, out string) session {
	inMin, inOK := ParseTime(in)
	outMin, outOK := ParseTime(out)
	if !inOK || !outOK || outMin <= inMin {
		return session{}
	}
	return session{inMin: inMin, outMin: outMin, valid: true}
}

// overlapMinutes returns the overlap, in minutes, between a session
// and a credit window.
func overlapMinutes(s session, w window) int {
	if !s.valid {
		return 0
	}
	start := max(s.inMin, w.startMin)
	end := min(s.outMin, w.endMin)
	if end <= start {
		return 0
	}
	return end - start
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Compute returns the credit-hours earned for a single day given its
// day-type classification and up to two punch sessions (AM, PM). The
// result is rounded once, half-away-from-zero, to one decimal place,
// and is never negative.
func Compute(dayType calendar.DayType, amIn, amOut, pmIn, pmOut string) decimal.Decimal {
	am := parseSession(amIn, amOut)
	pm := parseSession(pmIn, pmOut)

	var windows []window
	var multiplier decimal.Decimal
	var clamp *decimal.Decimal

	switch dayType {
	case calendar.Weekday:
		windows = weekdayWindows
		multiplier = decimal.RequireFromString(weekdayMultiplier)
		c := decimal.RequireFromString(weekdayClampHours)
		clamp = &c
	default: // Weekend, Holiday
		windows = weekendHolidayWindows
		multiplier = decimal.RequireFromString(weekendHolidayMultiplier)
	}

	totalMinutes := 0
	for _, w := range windows {
		totalMinutes += overlapMinutes(am, w)
		totalMinutes += overlapMinutes(pm, w)
	}

	hours := decimal.NewFromInt(int64(totalMinutes)).Div(decimal.NewFromInt(60))
	credit := hours.Mul(multiplier)

	if clamp != nil && credit.GreaterThan(*clamp) {
		credit = *clamp
	}
	if credit.IsNegative() {
		credit = decimal.Zero
	}

	return credit.Round(1)
}
