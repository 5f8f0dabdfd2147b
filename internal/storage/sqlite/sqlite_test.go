package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/xoulomon/stellarsave/internal/models"
	"github.com/xoulomon/stellarsave/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "stellarsave-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("Update persists group and counter together", func(t *testing.T) {
		err := store.Update(ctx, func(rw storage.ReadWriter) error {
			id, err := storage.IncrementCounter(ctx, rw)
			if err != nil {
				return err
			}
			return storage.SaveGroup(ctx, rw, models.NewGroup(id, "GADMIN", "Roommates", 1000, 86400, 10, 1700000000))
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		err = store.View(ctx, func(r storage.Reader) error {
			n, err := storage.LoadCounter(ctx, r)
			if err != nil {
				return err
			}
			if n != 1 {
				t.Errorf("counter = %d, want 1", n)
			}

			g, err := storage.LoadGroup(ctx, r, 1)
			if err != nil {
				return err
			}
			if g.Name != "Roommates" || g.Admin != "GADMIN" {
				t.Errorf("unexpected group: %+v", g)
			}
			if g.Status != models.StatusForming {
				t.Errorf("status = %s, want forming", g.Status)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
	})

	t.Run("Update rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.Update(ctx, func(rw storage.ReadWriter) error {
			if _, err := storage.IncrementCounter(ctx, rw); err != nil {
				return err
			}
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}

		err = store.View(ctx, func(r storage.Reader) error {
			n, err := storage.LoadCounter(ctx, r)
			if err != nil {
				return err
			}
			if n != 1 {
				t.Errorf("counter = %d after rollback, want 1", n)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
	})

	t.Run("Get returns ErrNotFound for missing key", func(t *testing.T) {
		err := store.View(ctx, func(r storage.Reader) error {
			_, err := storage.LoadGroup(ctx, r, 999)
			return err
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Put overwrites existing value", func(t *testing.T) {
		err := store.Update(ctx, func(rw storage.ReadWriter) error {
			g, err := storage.LoadGroup(ctx, rw, 1)
			if err != nil {
				return err
			}
			g.MemberCount = 4
			return storage.SaveGroup(ctx, rw, g)
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		err = store.View(ctx, func(r storage.Reader) error {
			g, err := storage.LoadGroup(ctx, r, 1)
			if err != nil {
				return err
			}
			if g.MemberCount != 4 {
				t.Errorf("member count = %d, want 4", g.MemberCount)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
	})

	t.Run("Principals round trip", func(t *testing.T) {
		p := models.NewPrincipal("GALICE", "hash")
		if err := store.CreatePrincipal(ctx, p); err != nil {
			t.Fatalf("CreatePrincipal failed: %v", err)
		}

		got, err := store.GetPrincipal(ctx, "GALICE")
		if err != nil {
			t.Fatalf("GetPrincipal failed: %v", err)
		}
		if got == nil || got.PasswordHash != "hash" {
			t.Errorf("unexpected principal: %+v", got)
		}

		missing, err := store.GetPrincipal(ctx, "GNOBODY")
		if err != nil {
			t.Fatalf("GetPrincipal failed: %v", err)
		}
		if missing != nil {
			t.Errorf("expected nil for unknown principal, got %+v", missing)
		}

		if err := store.CreatePrincipal(ctx, p); err == nil {
			t.Error("expected duplicate principal to fail")
		}
	})
}

func TestLedger(t *testing.T) {
	tempDir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(tempDir, "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()

	if err := ledger.Deposit(ctx, "alice", 500); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	t.Run("Transfer moves funds", func(t *testing.T) {
		if err := ledger.Transfer(ctx, "alice", "custody", 200); err != nil {
			t.Fatalf("Transfer failed: %v", err)
		}
		assertBalance(t, ledger, "alice", 300)
		assertBalance(t, ledger, "custody", 200)
	})

	t.Run("Transfer fails without funds and changes nothing", func(t *testing.T) {
		err := ledger.Transfer(ctx, "bob", "custody", 50)
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("expected ErrInsufficientFunds, got %v", err)
		}
		assertBalance(t, ledger, "bob", 0)
		assertBalance(t, ledger, "custody", 200)
	})

	t.Run("Transfer rejects non-positive amounts", func(t *testing.T) {
		if err := ledger.Transfer(ctx, "alice", "custody", 0); !errors.Is(err, ErrInvalidTransfer) {
			t.Errorf("expected ErrInvalidTransfer, got %v", err)
		}
		if err := ledger.Transfer(ctx, "alice", "alice", 10); !errors.Is(err, ErrInvalidTransfer) {
			t.Errorf("expected ErrInvalidTransfer for self transfer, got %v", err)
		}
	})
}

func assertBalance(t *testing.T, l *Ledger, address string, want int64) {
	t.Helper()
	got, err := l.Balance(context.Background(), address)
	if err != nil {
		t.Fatalf("Balance(%s) failed: %v", address, err)
	}
	if got != want {
		t.Errorf("Balance(%s) = %d, want %d", address, got, want)
	}
}
