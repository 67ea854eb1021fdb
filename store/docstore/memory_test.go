package docstore_test

import (
	"context"
	"testing"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
)

func TestMemory_CreateGet(t *testing.T) {
	m := docstore.NewMemory()
	ctx := context.Background()

	if err := m.Create(ctx, "employees", "e1", docstore.Document{"status": "Active"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	doc, err := m.Get(ctx, "employees", "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["status"] != "Active" {
		t.Errorf("unexpected doc: %v", doc)
	}
}

func TestMemory_GetMissing(t *testing.T) {
	m := docstore.NewMemory()
	_, err := m.Get(context.Background(), "employees", "nope")
	if !cocerr.IsNotFound(err) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestMemory_WhereAndMatch(t *testing.T) {
	m := docstore.NewMemory()
	ctx := context.Background()
	m.Create(ctx, "overtimeLogs", "1", docstore.Document{"employeeId": "e1", "status": "Uncertified"})
	m.Create(ctx, "overtimeLogs", "2", docstore.Document{"employeeId": "e2", "status": "Uncertified"})

	docs, _ := m.Where(ctx, "overtimeLogs", "employeeId", docstore.Eq, "e1")
	if len(docs) != 1 {
		t.Errorf("expected 1 doc, got %d", len(docs))
	}

	docs, _ = m.Match(ctx, "overtimeLogs", docstore.Document{"employeeId": "e2", "status": "Uncertified"})
	if len(docs) != 1 {
		t.Errorf("expected 1 doc, got %d", len(docs))
	}
}

func TestMemory_MaxIDMonotonic(t *testing.T) {
	m := docstore.NewMemory()
	ctx := context.Background()
	a, _ := m.MaxID(ctx, "overtimeLogs", "logId")
	b, _ := m.MaxID(ctx, "overtimeLogs", "logId")
	if b <= a {
		t.Errorf("expected monotonic increase, got %d then %d", a, b)
	}
}

func TestMemory_BatchWriteAllOrNothing(t *testing.T) {
	m := docstore.NewMemory()
	ctx := context.Background()
	m.Create(ctx, "employees", "dup", docstore.Document{"status": "Active"})

	err := m.BatchWrite(ctx, []docstore.WriteOp{
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "new", Fields: docstore.Document{"status": "Active"}},
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "dup", Fields: docstore.Document{"status": "Active"}},
	})
	if err != cocerr.ErrAlreadyExists {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}
	if _, err := m.Get(ctx, "employees", "new"); !cocerr.IsNotFound(err) {
		t.Errorf("expected rollback of first op, got %v", err)
	}
}
