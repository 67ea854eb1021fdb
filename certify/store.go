package certify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the certificates store collection name.
const Collection = "certificates"

// Store persists Certificate records via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

// ToDocument exposes the logical-field mapping so the Certification
// Engine can include a certificate-create op in a single atomic
// BatchWrite alongside log updates, a batch create, and a ledger
// append.
func ToDocument(c Certificate) docstore.Document {
	return docstore.Document{
		"employeeId":     c.EmployeeID,
		"monthName":      c.MonthName,
		"month":          int64(c.Month),
		"year":           int64(c.Year),
		"dateOfIssuance": c.DateOfIssuance,
		"validUntil":     c.ValidUntil,
		"batchId":        c.BatchID,
		"totalHours":     c.TotalHours,
		"correlationId":  c.CorrelationID,
	}
}

func fromDocument(id string, d docstore.Document) (Certificate, error) {
	c := Certificate{ID: id}
	var ok bool
	if c.EmployeeID, ok = d["employeeId"].(string); !ok {
		return Certificate{}, fmt.Errorf("%w: certificates/%s missing employeeId", cocerr.ErrInternal, id)
	}
	c.MonthName, _ = d["monthName"].(string)
	if m, ok := d["month"].(int64); ok {
		c.Month = int(m)
	}
	if y, ok := d["year"].(int64); ok {
		c.Year = int(y)
	}
	if t, ok := d["dateOfIssuance"].(time.Time); ok {
		c.DateOfIssuance = t
	}
	if t, ok := d["validUntil"].(time.Time); ok {
		c.ValidUntil = t
	}
	c.BatchID, _ = d["batchId"].(string)
	if v, ok := d["totalHours"].(decimal.Decimal); ok {
		c.TotalHours = v
	}
	c.CorrelationID, _ = d["correlationId"].(string)
	return c, nil
}

// NextID returns a fresh certificate id for use inside a single
// atomic write that also touches logs, a batch, and a ledger entry.
func (s *Store) NextID(ctx context.Context) (string, error) {
	id, err := s.Adapter.MaxID(ctx, Collection, "certificateId")
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) Get(ctx context.Context, id string) (Certificate, error) {
	doc, err := s.Adapter.Get(ctx, Collection, id)
	if err != nil {
		return Certificate{}, err
	}
	return fromDocument(id, doc)
}

// Exists reports whether (employeeID, month, year) already has a
// certificate — the period-lock check §4.3 step 4 and the
// AlreadyCertified idempotency check both need this.
func (s *Store) Exists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	docs, err := s.Adapter.Match(ctx, Collection, docstore.Document{
		"employeeId": employeeID, "month": int64(month), "year": int64(year),
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// QueryByEmployeeAndYear implements the "certified months for
// (employee, year)" query (§4.7) with a single equality query.
func (s *Store) QueryByEmployeeAndYear(ctx context.Context, employeeID string, year int) ([]Certificate, error) {
	docs, err := s.Adapter.Match(ctx, Collection, docstore.Document{
		"employeeId": employeeID, "year": int64(year),
	})
	if err != nil {
		return nil, err
	}
	out := make([]Certificate, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		c, err := fromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
