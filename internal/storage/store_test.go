package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "dianafit.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

// TestStoreBasics exercises get, put, overwrite and delete on every local
// backend.
func TestStoreBasics(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: Get(missing) err = %v, want ErrNotFound", name, err)
		}
		if err := s.Put(ctx, "a", []byte("1")); err != nil {
			t.Fatalf("%s: Put: %v", name, err)
		}
		if err := s.Put(ctx, "a", []byte("2")); err != nil {
			t.Fatalf("%s: Put overwrite: %v", name, err)
		}
		got, err := s.Get(ctx, "a")
		if err != nil || string(got) != "2" {
			t.Errorf("%s: Get(a) = %q, %v, want 2", name, got, err)
		}
		if err := s.PutAll(ctx, map[string][]byte{"b": []byte("x"), "c": []byte("y")}); err != nil {
			t.Fatalf("%s: PutAll: %v", name, err)
		}
		if err := s.Delete(ctx, "a", "b", "never-written"); err != nil {
			t.Fatalf("%s: Delete: %v", name, err)
		}
		if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: b survived Delete", name)
		}
		if got, _ := s.Get(ctx, "c"); string(got) != "y" {
			t.Errorf("%s: Get(c) = %q, want y", name, got)
		}
	}
}

// TestSQLiteReopen verifies data survives closing and reopening the file and
// that migrations are idempotent.
func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "dianafit.db")
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "k", []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != `{"v":1}` {
		t.Errorf("Get(k) = %q, %v", got, err)
	}
}

// TestOpenUnknownDriver verifies driver validation.
func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "redis"}); err == nil {
		t.Error("expected error for unknown driver")
	}
	s, err := Open(context.Background(), Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	s.Close()
}

// TestAcquireLock verifies a second holder is refused until the first
// releases.
func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dianafit.lock")
	first, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("first AcquireLock: %v", err)
	}
	if _, err := AcquireLock(path); !errors.Is(err, ErrLocked) {
		t.Errorf("second AcquireLock err = %v, want ErrLocked", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	again, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	again.Release()
}
