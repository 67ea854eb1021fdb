/*
store.go - Overtime Log Store

Persists Log records through the Document-Store Adapter and exposes
the query shapes the rest of the system needs. Every multi-record
query here pushes its predicate to the adapter (Where/Match) rather
than loading the collection and filtering in Go.
*/
package coclog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the store collection name for Overtime Logs — exported
// so other domain packages (certify) can build WriteOps against it as
// part of a larger atomic batch write.
const Collection = "overtimeLogs"

const collection = Collection

// Store persists Overtime Logs via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

func toDocument(l Log) docstore.Document {
	doc := docstore.Document{
		"employeeId": l.EmployeeID,
		"monthName":  l.MonthName,
		"month":      int64(l.Month),
		"year":       int64(l.Year),
		"dateWorked": l.DateWorked,
		"dayType":    string(l.DayType),
		"amIn":       l.AMIn,
		"amOut":      l.AMOut,
		"pmIn":       l.PMIn,
		"pmOut":      l.PMOut,
		"cocEarned":  l.CocEarned,
		"status":     string(l.Status),
		"loggedBy":   l.LoggedBy,
		"loggedAt":   l.LoggedAt,
	}
	if l.ValidUntil != nil {
		doc["validUntil"] = *l.ValidUntil
	}
	return doc
}

func fromDocument(id string, d docstore.Document) (Log, error) {
	l := Log{ID: id}
	var ok bool
	if l.EmployeeID, ok = d["employeeId"].(string); !ok {
		return Log{}, fmt.Errorf("%w: overtimeLogs/%s missing employeeId", cocerr.ErrInternal, id)
	}
	l.MonthName, _ = d["monthName"].(string)
	if m, ok := d["month"].(int64); ok {
		l.Month = int(m)
	}
	if y, ok := d["year"].(int64); ok {
		l.Year = int(y)
	}
	if dw, ok := d["dateWorked"].(time.Time); ok {
		l.DateWorked = dw
	}
	if dt, ok := d["dayType"].(string); ok {
		l.DayType = calendar.DayType(dt)
	}
	l.AMIn, _ = d["amIn"].(string)
	l.AMOut, _ = d["amOut"].(string)
	l.PMIn, _ = d["pmIn"].(string)
	l.PMOut, _ = d["pmOut"].(string)
	if ce, ok := d["cocEarned"].(decimal.Decimal); ok {
		l.CocEarned = ce
	}
	if st, ok := d["status"].(string); ok {
		l.Status = Status(st)
	}
	l.LoggedBy, _ = d["loggedBy"].(string)
	if la, ok := d["loggedAt"].(time.Time); ok {
		l.LoggedAt = la
	}
	if vu, ok := d["validUntil"].(time.Time); ok {
		l.ValidUntil = &vu
	}
	return l, nil
}

// CreateMany persists every log in logs, assigning fresh ids from the
// adapter's monotonic generator, as one atomic batch write.
func (s *Store) CreateMany(ctx context.Context, logs []Log) ([]Log, error) {
	ops := make([]docstore.WriteOp, 0, len(logs))
	persisted := make([]Log, len(logs))
	for i, l := range logs {
		id, err := s.Adapter.MaxID(ctx, collection, "logId")
		if err != nil {
			return nil, err
		}
		l.ID = strconv.FormatInt(id, 10)
		persisted[i] = l
		ops = append(ops, docstore.WriteOp{
			Kind: docstore.WriteCreate, Collection: collection, ID: l.ID, Fields: toDocument(l),
		})
	}
	if err := s.Adapter.BatchWrite(ctx, ops); err != nil {
		return nil, err
	}
	return persisted, nil
}

func (s *Store) Get(ctx context.Context, id string) (Log, error) {
	doc, err := s.Adapter.Get(ctx, collection, id)
	if err != nil {
		return Log{}, err
	}
	return fromDocument(id, doc)
}

func (s *Store) Update(ctx context.Context, id string, patch docstore.Document) error {
	return s.Adapter.Update(ctx, collection, id, patch)
}

// Delete removes a log, but only if it is still Uncertified — once
// certified, debited, or expired a log is part of the audit trail.
func (s *Store) Delete(ctx context.Context, id string) error {
	l, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.Status != Uncertified {
		return fmt.Errorf("%w: cannot delete a log with status %s", cocerr.ErrPreconditionFailed, l.Status)
	}
	return s.Adapter.Delete(ctx, collection, id)
}

func (s *Store) decodeAll(docs []docstore.Document) ([]Log, error) {
	out := make([]Log, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		l, err := fromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Store) QueryByEmployee(ctx context.Context, employeeID string) ([]Log, error) {
	docs, err := s.Adapter.Where(ctx, collection, "employeeId", docstore.Eq, employeeID)
	if err != nil {
		return nil, err
	}
	return s.decodeAll(docs)
}

func (s *Store) QueryByPeriod(ctx context.Context, employeeID string, month, year int) ([]Log, error) {
	docs, err := s.Adapter.Match(ctx, collection, docstore.Document{
		"employeeId": employeeID, "month": int64(month), "year": int64(year),
	})
	if err != nil {
		return nil, err
	}
	return s.decodeAll(docs)
}

func (s *Store) QueryByStatus(ctx context.Context, status Status) ([]Log, error) {
	docs, err := s.Adapter.Where(ctx, collection, "status", docstore.Eq, string(status))
	if err != nil {
		return nil, err
	}
	return s.decodeAll(docs)
}

// QueryUncertifiedByPeriod returns every Uncertified log for
// (employee, month, year) — the Certification Engine's input set.
func (s *Store) QueryUncertifiedByPeriod(ctx context.Context, employeeID string, month, year int) ([]Log, error) {
	docs, err := s.Adapter.Match(ctx, collection, docstore.Document{
		"employeeId": employeeID, "month": int64(month), "year": int64(year), "status": string(Uncertified),
	})
	if err != nil {
		return nil, err
	}
	return s.decodeAll(docs)
}

// QueryUncertifiedTotalByEmployee sums coc-earned across every
// Uncertified log for employeeID, across all periods — the total-cap
// check's uncertified-credits input, which unlike the monthly-cap
// check is not scoped to one (month, year).
func (s *Store) QueryUncertifiedTotalByEmployee(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	docs, err := s.Adapter.Match(ctx, collection, docstore.Document{
		"employeeId": employeeID, "status": string(Uncertified),
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range docs {
		if ce, ok := d["cocEarned"].(decimal.Decimal); ok {
			total = total.Add(ce)
		}
	}
	return total, nil
}

// QueryUncertifiedMonthTotal sums coc-earned across all Uncertified
// logs for (employee, month, year) — it is the existing-month-total
// input to the monthly cap check.
func (s *Store) QueryUncertifiedMonthTotal(ctx context.Context, employeeID string, month, year int) (decimal.Decimal, error) {
	docs, err := s.Adapter.Match(ctx, collection, docstore.Document{
		"employeeId": employeeID, "month": int64(month), "year": int64(year), "status": string(Uncertified),
	})
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, d := range docs {
		if ce, ok := d["cocEarned"].(decimal.Decimal); ok {
			total = total.Add(ce)
		}
	}
	return total, nil
}
