/*
store.go - Employee directory persistence

Employee ids are caller-supplied (not monotonic like logs/batches —
they're stable identifiers assigned at hiring, per §3), so Create
rejects a collision instead of minting an id. Email uniqueness is
enforced the same way: a Where lookup before Create.
*/
package employees

import (
	"context"
	"fmt"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

// Collection is the employees store collection name.
const Collection = "employees"

// Store persists Employee records via a docstore.Adapter.
type Store struct {
	Adapter docstore.Adapter
}

func NewStore(adapter docstore.Adapter) *Store {
	return &Store{Adapter: adapter}
}

func toDocument(e Employee) docstore.Document {
	return docstore.Document{
		"firstName": e.FirstName,
		"lastName":  e.LastName,
		"status":    string(e.Status),
		"position":  e.Position,
		"office":    e.Office,
		"email":     e.Email,
	}
}

func fromDocument(id string, d docstore.Document) (Employee, error) {
	e := Employee{ID: id}
	var ok bool
	if e.LastName, ok = d["lastName"].(string); !ok {
		return Employee{}, fmt.Errorf("%w: employees/%s missing lastName", cocerr.ErrInternal, id)
	}
	e.FirstName, _ = d["firstName"].(string)
	if st, ok := d["status"].(string); ok {
		e.Status = Status(st)
	}
	e.Position, _ = d["position"].(string)
	e.Office, _ = d["office"].(string)
	e.Email, _ = d["email"].(string)
	return e, nil
}

// Create persists a new employee. Fails with AlreadyExists if the id
// or the email is already taken.
func (s *Store) Create(ctx context.Context, e Employee) (Employee, error) {
	if e.Status == "" {
		e.Status = Active
	}
	if e.Email != "" {
		existing, err := s.Adapter.Where(ctx, Collection, "email", docstore.Eq, e.Email)
		if err != nil {
			return Employee{}, err
		}
		if len(existing) > 0 {
			return Employee{}, fmt.Errorf("%w: employee email %s already registered", cocerr.ErrAlreadyExists, e.Email)
		}
	}
	if err := s.Adapter.Create(ctx, Collection, e.ID, toDocument(e)); err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	doc, err := s.Adapter.Get(ctx, Collection, id)
	if err != nil {
		return Employee{}, err
	}
	return fromDocument(id, doc)
}

// Exists reports whether id names a known employee, regardless of
// status — the Validation Cascade's step 2 check admits any status.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if cocerr.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

func (s *Store) Update(ctx context.Context, id string, patch docstore.Document) error {
	return s.Adapter.Update(ctx, Collection, id, patch)
}

// SoftDelete sets status=Inactive; the record and every reference to
// it (logs, batches, ledger entries) is preserved.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.Update(ctx, id, docstore.Document{"status": string(Inactive)})
}

// List returns every employee, bounded by max — the directory is
// expected to be small enough that admin listing pages can page
// through it rather than needing a filtered query.
func (s *Store) List(ctx context.Context, max int) ([]Employee, error) {
	docs, err := s.Adapter.GetMany(ctx, Collection, max)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		e, err := fromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// QueryActive returns every Active employee — the in-memory join
// source for uncertified-logs-with-employee-names (§4.7).
func (s *Store) QueryActive(ctx context.Context) ([]Employee, error) {
	docs, err := s.Adapter.Where(ctx, Collection, "status", docstore.Eq, string(Active))
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(docs))
	for _, d := range docs {
		id, _ := d["id"].(string)
		e, err := fromDocument(id, d)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
