package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const fileStorageVersion = "1.0"

// FileStorage keeps all items in a single YAML document on disk
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// FileStorageMetadata stores metadata about the storage document
type FileStorageMetadata struct {
	Version   string    `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// fileDocument is the on-disk layout of a FileStorage
type fileDocument struct {
	Items    map[string]string   `yaml:"items"`
	Metadata FileStorageMetadata `yaml:"metadata"`
}

// NewFileStorage creates a storage backed by the YAML file at path. The file
// is created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the path of the storage document
func (fs *FileStorage) Path() string {
	return fs.path
}

func (fs *FileStorage) GetItem(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.load()
	if err != nil {
		return "", false, &StorageError{Backend: BackendFile, Op: "get", Key: key, Err: err}
	}
	v, ok := doc.Items[key]
	return v, ok, nil
}

func (fs *FileStorage) SetItem(key, value string) error {
	return fs.UpdateItem(key, func(string, bool) (string, bool, error) {
		return value, true, nil
	})
}

func (fs *FileStorage) RemoveItem(key string) error {
	return fs.UpdateItem(key, func(string, bool) (string, bool, error) {
		return "", false, nil
	})
}

func (fs *FileStorage) UpdateItem(key string, fn UpdateFunc) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.load()
	if err != nil {
		return &StorageError{Backend: BackendFile, Op: "update", Key: key, Err: err}
	}

	v, ok := doc.Items[key]
	newValue, keep, err := fn(v, ok)
	if err != nil {
		return err
	}
	if keep {
		doc.Items[key] = newValue
	} else {
		if !ok {
			return nil
		}
		delete(doc.Items, key)
	}

	if err := fs.save(doc); err != nil {
		return &StorageError{Backend: BackendFile, Op: "update", Key: key, Err: err}
	}
	return nil
}

func (fs *FileStorage) Items() ([]KeyValuePair, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.load()
	if err != nil {
		return nil, &StorageError{Backend: BackendFile, Op: "list", Err: err}
	}

	pairs := make([]KeyValuePair, 0, len(doc.Items))
	for k, v := range doc.Items {
		pairs = append(pairs, KeyValuePair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

func (fs *FileStorage) Close() error {
	return nil
}

// load reads the document, returning an empty one if the file does not exist
func (fs *FileStorage) load() (*fileDocument, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		now := time.Now()
		return &fileDocument{
			Items: make(map[string]string),
			Metadata: FileStorageMetadata{
				Version:   fileStorageVersion,
				CreatedAt: now,
				UpdatedAt: now,
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal storage document: %w", err)
	}
	if doc.Items == nil {
		doc.Items = make(map[string]string)
	}
	return &doc, nil
}

// save writes the document through a temporary file so that readers never see
// a partially written document
func (fs *FileStorage) save(doc *fileDocument) error {
	if err := os.MkdirAll(filepath.Dir(fs.path), 0700); err != nil {
		return err
	}

	doc.Metadata.UpdatedAt = time.Now()
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal storage document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".storage-*.yaml")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), fs.path)
}
