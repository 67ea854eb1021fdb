package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/store/docstore"
	"github.com/yowbhergie2/COCCTO2025/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Create(ctx, "employees", "e1", docstore.Document{
		"firstName": "Juan", "lastName": "Dela Cruz", "status": "Active",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	doc, err := s.Get(ctx, "employees", "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc["firstName"] != "Juan" || doc["status"] != "Active" {
		t.Errorf("unexpected document: %v", doc)
	}
}

func TestCreateDuplicate_IsAlreadyExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Create(ctx, "employees", "e1", docstore.Document{"status": "Active"})

	err := s.Create(ctx, "employees", "e1", docstore.Document{"status": "Active"})
	if err != cocerr.ErrAlreadyExists {
		t.Errorf("got %v, want ErrAlreadyExists", err)
	}
}

func TestGetMissing_IsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "employees", "nope")
	if !cocerr.IsNotFound(err) {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Create(ctx, "employees", "e1", docstore.Document{"firstName": "Juan", "status": "Active", "office": "HR"})

	if err := s.Update(ctx, "employees", "e1", docstore.Document{"status": "Inactive"}); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, _ := s.Get(ctx, "employees", "e1")
	if doc["status"] != "Inactive" || doc["firstName"] != "Juan" || doc["office"] != "HR" {
		t.Errorf("unexpected doc after partial update: %v", doc)
	}
}

func TestWhere_PushesPredicateToStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Create(ctx, "overtimeLogs", "1", docstore.Document{
		"employeeId": "e1", "month": int64(3), "year": int64(2025),
		"dateWorked": time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		"cocEarned":  decimal.RequireFromString("1.5"), "status": "Uncertified",
	})
	s.Create(ctx, "overtimeLogs", "2", docstore.Document{
		"employeeId": "e2", "month": int64(3), "year": int64(2025),
		"dateWorked": time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		"cocEarned":  decimal.RequireFromString("2.0"), "status": "Uncertified",
	})

	docs, err := s.Where(ctx, "overtimeLogs", "employeeId", docstore.Eq, "e1")
	if err != nil {
		t.Fatalf("where: %v", err)
	}
	if len(docs) != 1 || docs[0]["employeeId"] != "e1" {
		t.Errorf("expected exactly one matching doc for e1, got %v", docs)
	}
}

func TestMatch_AndOfEqualities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Create(ctx, "creditBatches", "b1", docstore.Document{
		"employeeId": "e1", "earnedMonth": int64(3), "earnedYear": int64(2025), "status": "Active",
	})
	s.Create(ctx, "creditBatches", "b2", docstore.Document{
		"employeeId": "e1", "earnedMonth": int64(4), "earnedYear": int64(2025), "status": "Used",
	})

	docs, err := s.Match(ctx, "creditBatches", docstore.Document{"employeeId": "e1", "status": "Active"})
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(docs) != 1 || docs[0]["status"] != "Active" {
		t.Errorf("expected exactly one Active batch, got %v", docs)
	}
}

func TestMaxID_Monotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.MaxID(ctx, "overtimeLogs", "logId")
	if err != nil {
		t.Fatalf("max-id: %v", err)
	}
	second, err := s.MaxID(ctx, "overtimeLogs", "logId")
	if err != nil {
		t.Fatalf("max-id: %v", err)
	}
	if second <= first {
		t.Errorf("expected strictly increasing ids, got %d then %d", first, second)
	}
}

func TestBatchWrite_AtomicRollbackOnFailure(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.Create(ctx, "employees", "dup", docstore.Document{"status": "Active"})

	err := s.BatchWrite(ctx, []docstore.WriteOp{
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "new-one", Fields: docstore.Document{"status": "Active"}},
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "dup", Fields: docstore.Document{"status": "Active"}}, // fails: already exists
	})
	if err != cocerr.ErrAlreadyExists {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}

	if _, err := s.Get(ctx, "employees", "new-one"); !cocerr.IsNotFound(err) {
		t.Errorf("expected the first op to have been rolled back, got %v", err)
	}
}

func TestBatchWrite_AllSucceed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.BatchWrite(ctx, []docstore.WriteOp{
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "a", Fields: docstore.Document{"status": "Active"}},
		{Kind: docstore.WriteCreate, Collection: "employees", ID: "b", Fields: docstore.Document{"status": "Active"}},
	})
	if err != nil {
		t.Fatalf("batch write: %v", err)
	}
	if _, err := s.Get(ctx, "employees", "a"); err != nil {
		t.Errorf("a missing: %v", err)
	}
	if _, err := s.Get(ctx, "employees", "b"); err != nil {
		t.Errorf("b missing: %v", err)
	}
}
