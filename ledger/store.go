/*
store.go - Credit Batch & Ledger persistence

Pushes every multi-record query down to the adapter. The only
in-Go aggregation is summing decimals across an already-filtered
result set (Where/Match did the filtering).
*/
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// BatchCollection and LedgerCollection are exported so other domain
// packages (certify) can build WriteOps against them as part of a
// larger atomic batch write.
const (
	BatchCollection  = "creditBatches"
	LedgerCollection = "ledger"

	batchCollection  = BatchCollection
	ledgerCollection = LedgerCollection
)

// Store persists Credit Batches and Ledger Entries via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

// BatchToDocument exposes the logical-field mapping for other
// packages composing cross-collection atomic writes.
func BatchToDocument(b Batch) docstore.Document {
	return docstore.Document{
		"employeeId":          b.EmployeeID,
		"earnedMonth":         int64(b.EarnedMonth),
		"earnedYear":          int64(b.EarnedYear),
		"originalHours":       b.OriginalHours,
		"remainingHours":      b.RemainingHours,
		"usedHours":           b.UsedHours,
		"status":              string(b.Status),
		"dateOfIssuance":      b.DateOfIssuance,
		"validUntil":          b.ValidUntil,
		"sourceType":          string(b.SourceType),
		"sourceCertificateId": b.SourceCertificateID,
		"notes":               b.Notes,
	}
}

func batchFromDocument(id string, d docstore.Document) (Batch, error) {
	b := Batch{ID: id}
	var ok bool
	if b.EmployeeID, ok = d["employeeId"].(string); !ok {
		return Batch{}, fmt.Errorf("%w: creditBatches/%s missing employeeId", cocerr.ErrInternal, id)
	}
	if m, ok := d["earnedMonth"].(int64); ok {
		b.EarnedMonth = int(m)
	}
	if y, ok := d["earnedYear"].(int64); ok {
		b.EarnedYear = int(y)
	}
	if v, ok := d["originalHours"].(decimal.Decimal); ok {
		b.OriginalHours = v
	}
	if v, ok := d["remainingHours"].(decimal.Decimal); ok {
		b.RemainingHours = v
	}
	if v, ok := d["usedHours"].(decimal.Decimal); ok {
		b.UsedHours = v
	}
	if s, ok := d["status"].(string); ok {
		b.Status = BatchStatus(s)
	}
	if t, ok := d["dateOfIssuance"].(time.Time); ok {
		b.DateOfIssuance = t
	}
	if t, ok := d["validUntil"].(time.Time); ok {
		b.ValidUntil = t
	}
	if s, ok := d["sourceType"].(string); ok {
		b.SourceType = SourceType(s)
	}
	b.SourceCertificateID, _ = d["sourceCertificateId"].(string)
	b.Notes, _ = d["notes"].(string)
	return b, nil
}

// EntryToDocument exposes the logical-field mapping for other
// packages composing cross-collection atomic writes.
func EntryToDocument(e Entry) docstore.Document {
	seq, _ := strconv.ParseInt(e.ID, 10, 64)
	return docstore.Document{
		"employeeId":      e.EmployeeID,
		"transactionType": string(e.Type),
		"hours":           e.Hours,
		"batchId":         e.BatchID,
		"referenceId":     e.ReferenceID,
		"notes":           e.Notes,
		"transactionDate": e.TransactionDate,
		"performedBy":     e.PerformedBy,
		"sequence":        seq,
		"correlationId":   e.CorrelationID,
	}
}

func entryFromDocument(id string, d docstore.Document) (Entry, error) {
	e := Entry{ID: id}
	var ok bool
	if e.EmployeeID, ok = d["employeeId"].(string); !ok {
		return Entry{}, fmt.Errorf("%w: ledger/%s missing employeeId", cocerr.ErrInternal, id)
	}
	if t, ok := d["transactionType"].(string); ok {
		e.Type = TxType(t)
	}
	if v, ok := d["hours"].(decimal.Decimal); ok {
		e.Hours = v
	}
	e.BatchID, _ = d["batchId"].(string)
	e.ReferenceID, _ = d["referenceId"].(string)
	e.Notes, _ = d["notes"].(string)
	if t, ok := d["transactionDate"].(time.Time); ok {
		e.TransactionDate = t
	}
	e.PerformedBy, _ = d["performedBy"].(string)
	e.CorrelationID, _ = d["correlationId"].(string)
	return e, nil
}

// CreateBatch persists a new batch, assigning it a fresh id. It never
// overwrites: the underlying Create call fails with AlreadyExists if
// the id is somehow already taken.
func (s *Store) CreateBatch(ctx context.Context, b Batch) (Batch, error) {
	id, err := s.Adapter.MaxID(ctx, batchCollection, "batchId")
	if err != nil {
		return Batch{}, err
	}
	b.ID = strconv.FormatInt(id, 10)
	if err := s.Adapter.Create(ctx, batchCollection, b.ID, BatchToDocument(b)); err != nil {
		return Batch{}, err
	}
	return b, nil
}

func (s *Store) GetBatch(ctx context.Context, id string) (Batch, error) {
	doc, err := s.Adapter.Get(ctx, batchCollection, id)
	if err != nil {
		return Batch{}, err
	}
	return batchFromDocument(id, doc)
}

// UpdateBatch applies a partial patch — used only to adjust
// remaining-hours, used-hours, and status; every other field on a
// batch is immutable after creation.
func (s *Store) UpdateBatch(ctx context.Context, id string, patch docstore.Document) error {
	return s.Adapter.Update(ctx, batchCollection, id, patch)
}

func (s *Store) decodeBatches(docs []docstore.Document) ([]Batch, error) {
	out := make([]Batch, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		b, err := batchFromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// QueryActiveBatchesByEmployee returns the employee's Active batches
// ordered by valid-until ascending, then earned-date ascending — the
// FIFO debit order required by §4.6.
func (s *Store) QueryActiveBatchesByEmployee(ctx context.Context, employeeID string) ([]Batch, error) {
	docs, err := s.Adapter.Match(ctx, batchCollection, docstore.Document{
		"employeeId": employeeID, "status": string(BatchActive),
	})
	if err != nil {
		return nil, err
	}
	batches, err := s.decodeBatches(docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(batches, func(i, j int) bool {
		if !batches[i].ValidUntil.Equal(batches[j].ValidUntil) {
			return batches[i].ValidUntil.Before(batches[j].ValidUntil)
		}
		return batches[i].earnedDate().Before(batches[j].earnedDate())
	})
	return batches, nil
}

func (s *Store) QueryBatchesByEmployee(ctx context.Context, employeeID string) ([]Batch, error) {
	docs, err := s.Adapter.Where(ctx, batchCollection, "employeeId", docstore.Eq, employeeID)
	if err != nil {
		return nil, err
	}
	return s.decodeBatches(docs)
}

// HistoricalBatchExists implements the period-lock check §4.3 step 3
// needs — exactly one historical-import batch per (employee, month,
// year) may exist.
func (s *Store) HistoricalBatchExists(ctx context.Context, employeeID string, month, year int) (bool, error) {
	docs, err := s.Adapter.Match(ctx, batchCollection, docstore.Document{
		"employeeId": employeeID, "earnedMonth": int64(month), "earnedYear": int64(year),
		"sourceType": string(SourceHistoricalImport),
	})
	if err != nil {
		return false, err
	}
	return len(docs) > 0, nil
}

// AppendEntry persists one ledger row, assigning it a fresh
// monotonically-increasing transaction-id.
func (s *Store) AppendEntry(ctx context.Context, e Entry) (Entry, error) {
	id, err := s.Adapter.MaxID(ctx, ledgerCollection, "transactionId")
	if err != nil {
		return Entry{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	if err := s.Adapter.Create(ctx, ledgerCollection, e.ID, EntryToDocument(e)); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// AppendEntries persists multiple ledger rows as one atomic write —
// used by debit, which touches several batches at once.
func (s *Store) AppendEntries(ctx context.Context, entries []Entry) ([]Entry, error) {
	ops := make([]docstore.WriteOp, 0, len(entries))
	persisted := make([]Entry, len(entries))
	for i, e := range entries {
		id, err := s.Adapter.MaxID(ctx, ledgerCollection, "transactionId")
		if err != nil {
			return nil, err
		}
		e.ID = strconv.FormatInt(id, 10)
		persisted[i] = e
		ops = append(ops, docstore.WriteOp{Kind: docstore.WriteCreate, Collection: ledgerCollection, ID: e.ID, Fields: EntryToDocument(e)})
	}
	if err := s.Adapter.BatchWrite(ctx, ops); err != nil {
		return nil, err
	}
	return persisted, nil
}

func (s *Store) decodeEntries(docs []docstore.Document) ([]Entry, error) {
	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		e, err := entryFromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// QueryByEmployee returns every ledger row for employeeID, in the
// total order §5 requires: transaction-date then transaction-id.
func (s *Store) QueryByEmployee(ctx context.Context, employeeID string) ([]Entry, error) {
	docs, err := s.Adapter.Where(ctx, ledgerCollection, "employeeId", docstore.Eq, employeeID)
	if err != nil {
		return nil, err
	}
	entries, err := s.decodeEntries(docs)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].TransactionDate.Equal(entries[j].TransactionDate) {
			return entries[i].TransactionDate.Before(entries[j].TransactionDate)
		}
		ni, _ := strconv.ParseInt(entries[i].ID, 10, 64)
		nj, _ := strconv.ParseInt(entries[j].ID, 10, 64)
		return ni < nj
	})
	return entries, nil
}
