/*
ledger.go - FIFO debit, expiration sweep, balance aggregation

Debit is serialized per employee-id. The document store here is a
single local SQLite file reached through one *sql.DB, so the
compare-and-set lock document §5 describes for network-attached
stores without native transactions is unnecessary: debit instead
takes an in-process per-employee mutex and performs its batch updates
and ledger append as a single BatchWrite transaction. The correlation
id is still stamped on every entry so a future non-transactional
adapter backend could run the recovery scan §5 mandates.
*/
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Service runs the batch/ledger operations on top of a Store.
type Service struct {
	Store *Store

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewService(store *Store) *Service {
	return &Service{Store: store, locks: make(map[string]*sync.Mutex)}
}

func (s *Service) lockFor(employeeID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[employeeID] = l
	}
	return l
}

// CreateBatch persists b after checking the §3 invariant
// original-hours = remaining-hours + used-hours.
func (s *Service) CreateBatch(ctx context.Context, b Batch) (Batch, error) {
	if !b.OriginalHours.Equal(b.RemainingHours.Add(b.UsedHours)) {
		return Batch{}, fmt.Errorf("%w: batch original-hours must equal remaining+used", cocerr.ErrInternal)
	}
	if b.Status == "" {
		b.Status = BatchActive
	}
	return s.Store.CreateBatch(ctx, b)
}

// Debit consumes hours from employeeID's Active batches FIFO by
// valid-until ascending, then earned-date ascending. It fails with
// PreconditionFailed if the active balance cannot cover the request —
// no batch is touched in that case.
func (s *Service) Debit(ctx context.Context, employeeID string, hours decimal.Decimal, referenceID, performedBy string) ([]Allocation, error) {
	lock := s.lockFor(employeeID)
	lock.Lock()
	defer lock.Unlock()

	batches, err := s.Store.QueryActiveBatchesByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	remaining := hours
	var allocations []Allocation
	var touched []Batch
	for _, b := range batches {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if b.RemainingHours.LessThanOrEqual(decimal.Zero) {
			continue
		}
		// A batch past its valid-until but not yet swept by ExpireSweep
		// is not part of the active balance (matches AggregateBalance) —
		// skip it so Debit never consumes hours the balance view already
		// treats as forfeited.
		if b.ValidUntil.Before(now) {
			continue
		}
		toConsume := decimal.Min(remaining, b.RemainingHours)
		b.RemainingHours = b.RemainingHours.Sub(toConsume)
		b.UsedHours = b.UsedHours.Add(toConsume)
		if b.RemainingHours.IsZero() {
			b.Status = BatchUsed
		}
		allocations = append(allocations, Allocation{BatchID: b.ID, HoursConsumed: toConsume})
		touched = append(touched, b)
		remaining = remaining.Sub(toConsume)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: insufficient active balance to debit %s hours for employee %s", cocerr.ErrPreconditionFailed, hours, employeeID)
	}

	correlationID := uuid.NewString()
	entries := make([]Entry, 0, len(touched))
	for _, a := range allocations {
		entries = append(entries, Entry{
			EmployeeID: employeeID, Type: TxDebit, Hours: a.HoursConsumed.Neg(),
			BatchID: a.BatchID, ReferenceID: referenceID, TransactionDate: now,
			PerformedBy: performedBy, CorrelationID: correlationID,
		})
	}
	if _, err := s.Store.AppendEntries(ctx, entries); err != nil {
		return nil, err
	}
	for _, b := range touched {
		patch := docstore.Document{
			"remainingHours": b.RemainingHours,
			"usedHours":      b.UsedHours,
			"status":         string(b.Status),
		}
		if err := s.Store.UpdateBatch(ctx, b.ID, patch); err != nil {
			return nil, fmt.Errorf("%w: debit partially committed for employee %s, batch %s not updated: %v", cocerr.ErrInternal, employeeID, b.ID, err)
		}
	}
	return allocations, nil
}

// ExpireSweep transitions every Active batch with valid-until < asOf
// to Expired, emitting one Expiration ledger entry per batch with
// nonzero remaining-hours. remaining-hours is preserved on the batch
// record for audit; it no longer contributes to active balance once
// status=Expired.
func (s *Service) ExpireSweep(ctx context.Context, asOf time.Time) ([]Entry, error) {
	docs, err := s.Store.Adapter.Where(ctx, batchCollection, "status", docstore.Eq, string(BatchActive))
	if err != nil {
		return nil, err
	}
	candidates, err := s.Store.decodeBatches(docs)
	if err != nil {
		return nil, err
	}

	var expiredEntries []Entry
	for _, b := range candidates {
		if !b.ValidUntil.Before(asOf) {
			continue
		}
		forfeited := b.RemainingHours
		if forfeited.GreaterThan(decimal.Zero) {
			entry, err := s.Store.AppendEntry(ctx, Entry{
				EmployeeID: b.EmployeeID, Type: TxExpiration, Hours: forfeited.Neg(),
				BatchID: b.ID, TransactionDate: asOf,
			})
			if err != nil {
				return nil, err
			}
			expiredEntries = append(expiredEntries, entry)
		}
		if err := s.Store.UpdateBatch(ctx, b.ID, docstore.Document{"status": string(BatchExpired)}); err != nil {
			return nil, err
		}
	}
	return expiredEntries, nil
}

// Adjust appends an Adjustment ledger entry for employeeID. Positive
// hours increase balance, negative decrease it. Whether an adjustment
// may retroactively reduce a Used or Expired batch's remaining-hours
// is an open product question (not resolved here): this method only
// appends the ledger row and never mutates a batch record itself.
func (s *Service) Adjust(ctx context.Context, employeeID string, hours decimal.Decimal, reason, performedBy string) (Entry, error) {
	return s.Store.AppendEntry(ctx, Entry{
		EmployeeID: employeeID, Type: TxAdjustment, Hours: hours,
		Notes: reason, TransactionDate: time.Now().UTC(), PerformedBy: performedBy,
	})
}

// Balance aggregates the batch-derived fields of §4.6's balance view.
// Uncertified is left zero here — the query layer combines this with
// the overtime-log store's uncertified total.
func (s *Service) Balance(ctx context.Context, employeeID string, asOf time.Time) (Balance, error) {
	batches, err := s.Store.QueryBatchesByEmployee(ctx, employeeID)
	if err != nil {
		return Balance{}, err
	}
	return AggregateBalance(batches, asOf), nil
}

// AggregateBalance computes the batch-derived Balance fields from an
// already-fetched batch slice. Exported so callers that must fetch
// the employee's batches themselves anyway (the query layer's
// bounded-query-count views) can reuse this arithmetic instead of
// issuing a second, redundant QueryBatchesByEmployee through Balance.
func AggregateBalance(batches []Batch, asOf time.Time) Balance {
	bal := Balance{Active: decimal.Zero, TotalEarned: decimal.Zero, Used: decimal.Zero, Expired: decimal.Zero}
	for _, b := range batches {
		bal.TotalEarned = bal.TotalEarned.Add(b.OriginalHours)
		bal.Used = bal.Used.Add(b.UsedHours)
		switch b.Status {
		case BatchActive:
			if !b.ValidUntil.Before(asOf) {
				bal.Active = bal.Active.Add(b.RemainingHours)
			}
		case BatchExpired:
			bal.Expired = bal.Expired.Add(b.RemainingHours)
		}
	}
	return bal
}

// ActiveTotal is the slice of Balance the total-cap check (§4.3 step
// 8) needs: active credits only, as of now.
func (s *Service) ActiveTotal(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	bal, err := s.Balance(ctx, employeeID, time.Now().UTC())
	if err != nil {
		return decimal.Zero, err
	}
	return bal.Active, nil
}
