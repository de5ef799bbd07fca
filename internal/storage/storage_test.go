package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *AccountRepo {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewAccountRepo(db)
}

func TestAccountCreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if a, err := repo.Get(ctx, "ada@gmail.com"); err != nil || a != nil {
		t.Fatalf("Get missing: %v %v", a, err)
	}

	acct := &Account{Username: "ada@gmail.com", FirstName: "Ada", LastName: "Lovelace", PasswordHash: []byte("x")}
	if err := repo.Create(ctx, acct); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, acct); err != ErrAccountExists {
		t.Fatalf("Create duplicate: err=%v, want ErrAccountExists", err)
	}

	got, err := repo.Get(ctx, "ada@gmail.com")
	if err != nil || got == nil {
		t.Fatalf("Get: %v %v", got, err)
	}
	if got.DisplayName() != "Ada Lovelace" || string(got.PasswordHash) != "x" {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("LastLoginAt should be unset")
	}

	if err := repo.TouchLogin(ctx, "ada@gmail.com", time.Now().UTC()); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}
	got, _ = repo.Get(ctx, "ada@gmail.com")
	if got.LastLoginAt == nil {
		t.Fatalf("LastLoginAt should be set")
	}
	if n, err := repo.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count=%d err=%v", n, err)
	}
}

func TestOpenMemoryAndMigrateTwice(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "")
	if err != nil {
		t.Fatalf("open memory: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	repo := NewAccountRepo(db)
	if err := repo.Create(ctx, &Account{Username: "a@gmail.com", FirstName: "A", LastName: "B", PasswordHash: []byte("h")}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("Count=%d, want 1", n)
	}
}
