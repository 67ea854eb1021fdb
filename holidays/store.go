/*
Package holidays persists the Holiday registry (§3) and builds the
per-year calendar.HolidaySet the overtime-log write path consults.
No process-wide cache: LoadSet is called fresh per request,
per §5's "no process-wide mutable caches" rule on this layer.
*/
package holidays

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the holidays store collection name.
const Collection = "holidays"

// Store persists Holiday records via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

func toDocument(h calendar.HolidayRecord) docstore.Document {
	return docstore.Document{
		"name": h.Name,
		"date": h.Date,
		"year": int64(h.Year),
		"type": h.Type,
	}
}

func fromDocument(id string, d docstore.Document) (calendar.HolidayRecord, error) {
	h := calendar.HolidayRecord{ID: id}
	date, ok := d["date"].(time.Time)
	if !ok {
		return calendar.HolidayRecord{}, fmt.Errorf("%w: holidays/%s missing date", cocerr.ErrInternal, id)
	}
	h.Date = date
	h.Name, _ = d["name"].(string)
	if y, ok := d["year"].(int64); ok {
		h.Year = int(y)
	}
	h.Type, _ = d["type"].(string)
	return h, nil
}

// Create persists a new holiday. Year is derived from date rather
// than trusted from the caller, per §3 ("year derivable from date").
func (s *Store) Create(ctx context.Context, h calendar.HolidayRecord) (calendar.HolidayRecord, error) {
	h.Year = h.Date.Year()
	existing, err := s.Adapter.Where(ctx, Collection, "year", docstore.Eq, int64(h.Year))
	if err != nil {
		return calendar.HolidayRecord{}, err
	}
	for _, d := range existing {
		if dt, ok := d["date"].(time.Time); ok && dt.Equal(h.Date) {
			return calendar.HolidayRecord{}, fmt.Errorf("%w: a holiday already exists on %s", cocerr.ErrAlreadyExists, h.Date.Format("2006-01-02"))
		}
	}
	id, err := s.Adapter.MaxID(ctx, Collection, "holidayId")
	if err != nil {
		return calendar.HolidayRecord{}, err
	}
	h.ID = strconv.FormatInt(id, 10)
	if err := s.Adapter.Create(ctx, Collection, h.ID, toDocument(h)); err != nil {
		return calendar.HolidayRecord{}, err
	}
	return h, nil
}

// QueryByYear pushes the year equality predicate to the adapter — the
// single pre-fetch the Validation Cascade's step 5 needs.
func (s *Store) QueryByYear(ctx context.Context, year int) ([]calendar.HolidayRecord, error) {
	docs, err := s.Adapter.Where(ctx, Collection, "year", docstore.Eq, int64(year))
	if err != nil {
		return nil, err
	}
	out := make([]calendar.HolidayRecord, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		h, err := fromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// LoadSet fetches year's holidays and builds a calendar.HolidaySet
// from them — the shape the validation cascade's day-type
// classification consumes.
func (s *Store) LoadSet(ctx context.Context, year int) (*calendar.HolidaySet, error) {
	list, err := s.QueryByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	return calendar.NewHolidaySet(list), nil
}
