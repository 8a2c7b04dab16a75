package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/paygate/internal/infra/pgtestutil"
	"github.com/fastprodman/paygate/internal/repos/users"
)

func TestUsers_IncreaseCredits_Basic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start       int64
		amount      int64
		wantCredits int64
	}{
		{name: "increase_from_zero", start: 0, amount: 500, wantCredits: 500},
		{name: "increase_from_positive", start: 1_000, amount: 250, wantCredits: 1_250},
		{name: "increase_large_balance", start: 900_000_000_000_000, amount: 123, wantCredits: 900_000_000_000_123},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			pgtestutil.SeedUser(t, db, 101, "u", "member", tt.start, 0)

			repo := New(db)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			commit(ctx, t, db, func(tx *sql.Tx) error {
				return repo.IncreaseCredits(tx, 101, tt.amount)
			})

			got, err := repo.Get(ctx, 101)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Credits != tt.wantCredits {
				t.Fatalf("credits mismatch: want %d, got %d", tt.wantCredits, got.Credits)
			}
		})
	}
}

func TestUsers_IncreaseCredits_ConcurrentAdds(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	pgtestutil.SeedUser(t, db, 777, "u", "client", 0, 0)

	repo := New(db)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
	defer cancel()

	errCh := make(chan error, 2)

	worker := func(amount int64) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			errCh <- err
			return
		}
		defer func() { _ = tx.Rollback() }()

		err = repo.IncreaseCredits(tx, 777, amount)
		if err != nil {
			errCh <- err
			return
		}

		errCh <- tx.Commit()
	}

	go worker(1_000)
	go worker(2_500)

	for range 2 {
		select {
		case err := <-errCh:
			if err != nil {
				t.Fatalf("worker error: %v", err)
			}
		case <-ctx.Done():
			t.Fatalf("timeout waiting for workers")
		}
	}

	got, err := repo.Get(ctx, 777)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Credits != 3_500 {
		t.Fatalf("final credits mismatch: want 3500, got %d", got.Credits)
	}
}

func TestUsers_IncreaseCredits_UserNotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.IncreaseCredits(tx, 999_999, 100)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}

	err = repo.IncreaseServerLimit(tx, 999_999, 1)
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func commit(ctx context.Context, t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = fn(tx)
	if err != nil {
		t.Fatalf("fn: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}
