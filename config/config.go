/*
Package config implements the typed Configuration surface (§3, §6):
documented defaults plus a loader over the `configuration` collection,
one document per key, keyed by the key name itself. Unrecognized keys
are ignored rather than rejected.

Loaded the way the teacher's cmd/server/main.go loads its two flags —
sane defaults, no external config framework — generalized here to the
full recognized-key surface and backed by documents instead of flags,
since these values are meant to be changed by an administrator at
runtime (§6's PUT /api/configuration/{key}), not only at process start.
*/
package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the configuration store collection name.
const Collection = "configuration"

// Key names a recognized configuration key.
type Key string

const (
	WeekendDays               Key = "WeekendDays"
	MonthlyCap                Key = "MonthlyCap"
	TotalCap                  Key = "TotalCap"
	CertificateValidityMonths Key = "CertificateValidityMonths"
	TimeZone                  Key = "TimeZone"
)

// Config is the resolved, typed view of every recognized key.
type Config struct {
	WeekendDays               map[time.Weekday]bool
	MonthlyCap                decimal.Decimal
	TotalCap                  decimal.Decimal
	CertificateValidityMonths int
	TimeZone                  string
}

// Defaults returns the documented §3 defaults.
func Defaults() Config {
	return Config{
		WeekendDays:               map[time.Weekday]bool{time.Sunday: true, time.Saturday: true},
		MonthlyCap:                decimal.RequireFromString("40.0"),
		TotalCap:                  decimal.RequireFromString("120.0"),
		CertificateValidityMonths: 12,
		TimeZone:                  "Asia/Manila",
	}
}

// Store persists Configuration documents via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

// Load reads every configuration document and overlays recognized
// keys onto Defaults(); unrecognized keys and unparseable values are
// ignored, per §6, not treated as errors.
func (s *Store) Load(ctx context.Context) (Config, error) {
	cfg := Defaults()
	docs, err := s.Adapter.GetMany(ctx, Collection, 64)
	if err != nil {
		return cfg, err
	}
	for _, d := range docs {
		id, _ := d["id"].(string)
		value, _ := d["value"].(string)
		switch Key(id) {
		case WeekendDays:
			if parsed, ok := parseWeekendDays(value); ok {
				cfg.WeekendDays = parsed
			}
		case MonthlyCap:
			if v, err := decimal.NewFromString(value); err == nil {
				cfg.MonthlyCap = v
			}
		case TotalCap:
			if v, err := decimal.NewFromString(value); err == nil {
				cfg.TotalCap = v
			}
		case CertificateValidityMonths:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.CertificateValidityMonths = v
			}
		case TimeZone:
			// Stored and validated (Set, below) but not yet applied: every
			// instant in this codebase is compared/rendered in UTC. Harmless
			// for the date-only civil-date comparisons the cascade and
			// ledger do today; would matter for a "today" derived from the
			// clock rather than a caller-supplied month/year.
			if value != "" {
				cfg.TimeZone = value
			}
		}
	}
	return cfg, nil
}

// Set upserts one configuration document. The raw string is validated
// against key's type before being stored, so a later Load never has
// to silently drop a value this call accepted.
func (s *Store) Set(ctx context.Context, key Key, value string) error {
	switch key {
	case WeekendDays:
		if _, ok := parseWeekendDays(value); !ok {
			return fmt.Errorf("invalid WeekendDays value %q", value)
		}
	case MonthlyCap, TotalCap:
		if _, err := decimal.NewFromString(value); err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, value, err)
		}
	case CertificateValidityMonths:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid CertificateValidityMonths value %q: %w", value, err)
		}
	case TimeZone:
		if _, err := time.LoadLocation(value); err != nil {
			return fmt.Errorf("invalid TimeZone value %q: %w", value, err)
		}
	default:
		return fmt.Errorf("unrecognized configuration key %q", key)
	}
	return s.Adapter.Upsert(ctx, Collection, string(key), docstore.Document{"value": value})
}

// parseWeekendDays delegates to calendar.ParseWeekendDays for the
// actual token parsing and rejects the value only if every token was
// unparseable — the one case that isn't just an administrator typo in
// a single day, per the "unrecognized tokens are ignored" tolerance.
func parseWeekendDays(value string) (map[time.Weekday]bool, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, false
	}
	parsed := calendar.ParseWeekendDays(value)
	if len(parsed) == 0 {
		return nil, false
	}
	return parsed, true
}
