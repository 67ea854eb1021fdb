/*
docstore.go - Document-Store Adapter contract

PURPOSE:
  Defines the typed abstraction every domain package uses instead of
  talking to a concrete database directly. Keyed document store: each
  collection holds documents keyed by a string id with named, typed
  fields (string, int, float, decimal, bool, time, array, nested map,
  null).

  This interface is the sole boundary domain packages cross to reach
  storage — nothing above this layer knows whether the concrete
  implementation is SQLite, an in-memory map, or something else.

WHY NOT THE GENERIC APPEND-ONLY STORE:
  This adapter intentionally supports Update/Delete/Upsert in addition
  to Create — Overtime Logs, Credit Batches, and Certificates all need
  in-place field updates (status transitions, remaining-hours
  decrements) that an append-only transaction log would force into an
  awkward event-sourced reconstruction. The Ledger collection itself is
  still treated as append-only by convention at the ledger package
  level (it simply never calls Update/Delete on that collection), not
  because this adapter forbids it.

SEE ALSO:
  - store/sqlite: concrete SQLite-backed implementation.
*/
package docstore

import "context"

// Document is an untyped keyed document. Values are one of: string,
// int64, float64, decimal.Decimal, bool, time.Time, []any,
// map[string]any, or nil.
type Document map[string]any

// Op is a comparison operator for Where queries.
type Op string

const (
	Eq  Op = "=="
	Neq Op = "!="
	Lt  Op = "<"
	Lte Op = "<="
	Gt  Op = ">"
	Gte Op = ">="
)

// WriteKind discriminates the operations a BatchWrite call may mix.
type WriteKind string

const (
	WriteCreate WriteKind = "create"
	WriteUpdate WriteKind = "update"
	WriteUpsert WriteKind = "upsert"
	WriteDelete WriteKind = "delete"
)

// WriteOp is one operation inside an atomic BatchWrite call.
type WriteOp struct {
	Kind       WriteKind
	Collection string
	ID         string
	Fields     Document // ignored for WriteDelete
}

// Adapter is the typed abstraction over the keyed document store.
// Every method returns a cocerr-flavored error (NotFound,
// StoreUnavailable, Internal, AlreadyExists) rather than a bare
// database error; concrete implementations are responsible for that
// translation.
type Adapter interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	GetMany(ctx context.Context, collection string, max int) ([]Document, error)
	Where(ctx context.Context, collection, field string, op Op, value any) ([]Document, error)
	Match(ctx context.Context, collection string, criteria Document) ([]Document, error)

	Create(ctx context.Context, collection, id string, fields Document) error
	Update(ctx context.Context, collection, id string, patch Document) error
	Upsert(ctx context.Context, collection, id string, fields Document) error
	Delete(ctx context.Context, collection, id string) error
	DeleteMany(ctx context.Context, collection string, ids []string) error

	// MaxID returns a fresh identifier strictly greater than any
	// existing value of idField in collection, safe under concurrent
	// callers (the underlying row-level lock or mutex serializes it).
	MaxID(ctx context.Context, collection, idField string) (int64, error)

	// BatchWrite applies ops atomically: either all succeed and are
	// visible, or none are.
	BatchWrite(ctx context.Context, ops []WriteOp) error
}
