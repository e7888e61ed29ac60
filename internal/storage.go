package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Storage keys shared with the IRIS web client
const (
	PublicKeyItem  = "publicKey"
	PrivateKeyItem = "privateKey"
	SessionItem    = "session"
)

// Storage backend names
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// UpdateFunc receives the current value of an item (ok is false when the item
// is absent) and returns the value to store. Returning keep=false removes the
// item. Returning an error aborts the update and leaves the item unchanged.
type UpdateFunc func(value string, ok bool) (newValue string, keep bool, err error)

// Storage is a persistent string key/value store, the local counterpart of
// browser local storage.
type Storage interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error

	// UpdateItem runs fn as one atomic read/modify/write on key
	UpdateItem(key string, fn UpdateFunc) error

	Items() ([]KeyValuePair, error)
	Close() error
}

// NewStorage opens the backend named by backend at path
func NewStorage(backend, path string) (Storage, error) {
	switch backend {
	case BackendSQLite, "":
		return OpenSQLiteStorage(path)
	case BackendFile:
		return NewFileStorage(path), nil
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: sqlite, file, memory)", backend)
	}
}

// SQLiteStorage keeps items in the localStorage table of a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLiteStorage opens the database at path and wraps it
func OpenSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StorageError{Backend: BackendSQLite, Op: "open", Key: path, Err: err}
	}
	return NewSQLiteStorage(db), nil
}

// NewSQLiteStorage wraps an already opened database
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

func (s *SQLiteStorage) GetItem(key string) (string, bool, error) {
	value, ok, err := getItem(s.db, key)
	if err != nil {
		return "", false, &StorageError{Backend: BackendSQLite, Op: "get", Key: key, Err: err}
	}
	return value, ok, nil
}

func (s *SQLiteStorage) SetItem(key, value string) error {
	if err := setItem(s.db, key, value); err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStorage) RemoveItem(key string) error {
	if _, err := s.db.Exec("DELETE FROM localStorage WHERE key = ?", key); err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStorage) UpdateItem(key string, fn UpdateFunc) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "update", Key: key, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	value, ok, err := getItem(tx, key)
	if err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "update", Key: key, Err: err}
	}

	newValue, keep, err := fn(value, ok)
	if err != nil {
		return err
	}

	if keep {
		err = setItem(tx, key, newValue)
	} else {
		_, err = tx.Exec("DELETE FROM localStorage WHERE key = ?", key)
	}
	if err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "update", Key: key, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Backend: BackendSQLite, Op: "update", Key: key, Err: err}
	}
	return nil
}

func (s *SQLiteStorage) Items() ([]KeyValuePair, error) {
	pairs, err := QueryItems(s.db, "%")
	if err != nil {
		return nil, &StorageError{Backend: BackendSQLite, Op: "list", Err: err}
	}
	return pairs, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type queryExecer interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func getItem(q queryExecer, key string) (string, bool, error) {
	var value string
	err := q.QueryRow("SELECT value FROM localStorage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func setItem(q queryExecer, key, value string) error {
	_, err := q.Exec(`
		INSERT INTO localStorage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	return err
}
