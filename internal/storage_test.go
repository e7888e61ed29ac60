package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

// storageBackends returns a fresh storage of every backend
func storageBackends(t *testing.T) map[string]Storage {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := OpenSQLiteStorage(filepath.Join(dir, "storage.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Storage{
		BackendSQLite: sqlite,
		BackendFile:   NewFileStorage(filepath.Join(dir, "storage.yaml")),
		BackendMemory: NewMemoryStorage(),
	}
}

func TestStorage_GetSetRemove(t *testing.T) {
	for name, s := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.GetItem("missing"); err != nil || ok {
				t.Fatalf("GetItem(missing) = ok %v, err %v", ok, err)
			}

			if err := s.SetItem("k", "v1"); err != nil {
				t.Fatalf("SetItem() error = %v", err)
			}
			if err := s.SetItem("k", "v2"); err != nil {
				t.Fatalf("SetItem() overwrite error = %v", err)
			}
			v, ok, err := s.GetItem("k")
			if err != nil || !ok || v != "v2" {
				t.Fatalf("GetItem() = %q, %v, %v, want v2", v, ok, err)
			}

			if err := s.RemoveItem("k"); err != nil {
				t.Fatalf("RemoveItem() error = %v", err)
			}
			if _, ok, _ := s.GetItem("k"); ok {
				t.Error("item still present after RemoveItem()")
			}
			if err := s.RemoveItem("k"); err != nil {
				t.Errorf("RemoveItem() of absent item error = %v", err)
			}
		})
	}
}

func TestStorage_UpdateItem(t *testing.T) {
	for name, s := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.UpdateItem("k", func(value string, ok bool) (string, bool, error) {
				if ok {
					t.Errorf("UpdateItem() on absent item got ok = true")
				}
				return "created", true, nil
			})
			if err != nil {
				t.Fatalf("UpdateItem() create error = %v", err)
			}

			boom := errors.New("boom")
			err = s.UpdateItem("k", func(value string, ok bool) (string, bool, error) {
				return "ignored", true, boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("UpdateItem() error = %v, want boom", err)
			}
			if v, _, _ := s.GetItem("k"); v != "created" {
				t.Errorf("failed update changed the item to %q", v)
			}

			err = s.UpdateItem("k", func(value string, ok bool) (string, bool, error) {
				return "", false, nil
			})
			if err != nil {
				t.Fatalf("UpdateItem() remove error = %v", err)
			}
			if _, ok, _ := s.GetItem("k"); ok {
				t.Error("item still present after UpdateItem() with keep = false")
			}
		})
	}
}

func TestStorage_UpdateItemIsAtomic(t *testing.T) {
	for name, s := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			const workers = 8
			if err := s.SetItem("counter", "0"); err != nil {
				t.Fatalf("SetItem() error = %v", err)
			}

			var wg sync.WaitGroup
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := s.UpdateItem("counter", func(value string, ok bool) (string, bool, error) {
						var n int
						if _, err := fmt.Sscan(value, &n); err != nil {
							return "", false, err
						}
						return fmt.Sprint(n + 1), true, nil
					})
					if err != nil {
						t.Errorf("UpdateItem() error = %v", err)
					}
				}()
			}
			wg.Wait()

			if v, _, _ := s.GetItem("counter"); v != fmt.Sprint(workers) {
				t.Errorf("counter = %s, want %d (lost update)", v, workers)
			}
		})
	}
}

func TestStorage_Items(t *testing.T) {
	for name, s := range storageBackends(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range []string{"session", "privateKey", "publicKey"} {
				if err := s.SetItem(k, k+"-value"); err != nil {
					t.Fatalf("SetItem() error = %v", err)
				}
			}
			items, err := s.Items()
			if err != nil {
				t.Fatalf("Items() error = %v", err)
			}
			want := []string{"privateKey", "publicKey", "session"}
			if len(items) != len(want) {
				t.Fatalf("Items() returned %d items, want %d", len(items), len(want))
			}
			for i, k := range want {
				if items[i].Key != k || items[i].Value != k+"-value" {
					t.Errorf("Items()[%d] = %+v, want key %s", i, items[i], k)
				}
			}
		})
	}
}

func TestSQLiteStorage_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	s, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStorage() error = %v", err)
	}
	if err := s.SetItem(SessionItem, `{"id":1}`); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()
	if v, ok, _ := reopened.GetItem(SessionItem); !ok || v != `{"id":1}` {
		t.Errorf("GetItem() after reopen = %q, %v", v, ok)
	}
}

func TestSQLiteStorage_SharedBetweenHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")

	a, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStorage() error = %v", err)
	}
	defer a.Close()
	b, err := OpenSQLiteStorage(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStorage() error = %v", err)
	}
	defer b.Close()

	if err := a.SetItem("k", "from a"); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if v, ok, _ := b.GetItem("k"); !ok || v != "from a" {
		t.Errorf("second handle sees %q, %v", v, ok)
	}
}

func TestFileStorage_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	s := NewFileStorage(path)
	if err := s.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if err := writeTestFile(path, "items: [not, a, map"); err != nil {
		t.Fatal(err)
	}

	_, _, err := s.GetItem("k")
	var serr *StorageError
	if !errors.As(err, &serr) || serr.Backend != BackendFile {
		t.Errorf("GetItem() on corrupt document error = %v, want *StorageError", err)
	}
}

func TestNewStorage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		backend string
		path    string
		wantErr bool
	}{
		{backend: BackendSQLite, path: filepath.Join(dir, "a.db")},
		{backend: "", path: filepath.Join(dir, "b.db")},
		{backend: BackendFile, path: filepath.Join(dir, "c.yaml")},
		{backend: BackendMemory},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := NewStorage(tt.backend, tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStorage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if s != nil {
				_ = s.Close()
			}
		})
	}
}
