package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/service"
)

// FileSchemaVersion is the document version written by JSONStorage.
// Version 0 is the unversioned layout and is upgraded on the next write.
const FileSchemaVersion = 1

var _ service.Storage = (*JSONStorage)(nil)

// document is the on-disk layout. Nil categories or budget mean "never saved".
type document struct {
	Categories    *[]model.Category `json:"categories,omitempty"`
	Budget        *int64            `json:"budget,omitempty"`
	Expenses      []model.Expense   `json:"expenses"`
	SchemaVersion int               `json:"schema_version"`
}

// JSONStorage keeps all three record sets in one JSON document that is
// rewritten atomically on every save.
type JSONStorage struct {
	path string
	mu   sync.Mutex
}

// NewJSONStorage uses the document at path. The file is created on first save.
func NewJSONStorage(path string) (*JSONStorage, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}
	return &JSONStorage{path: path}, nil
}

// Path returns the document location.
func (s *JSONStorage) Path() string {
	return s.path
}

// Migrate checks that the document, if present, is readable by this version.
func (s *JSONStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

// Close is a no-op; nothing is held open between calls.
func (s *JSONStorage) Close() error {
	return nil
}

// LoadCategories implements service.CategoryStore.
func (s *JSONStorage) LoadCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	if doc.Categories == nil {
		return nil, fmt.Errorf("categories: %w", common.ErrNotFound)
	}
	return append([]model.Category{}, (*doc.Categories)...), nil
}

// SaveCategories implements service.CategoryStore.
func (s *JSONStorage) SaveCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(categories); err != nil {
		return err
	}
	return s.update(func(doc *document) {
		cats := append([]model.Category{}, categories...)
		doc.Categories = &cats
	})
}

// LoadExpenses implements service.ExpenseStore.
func (s *JSONStorage) LoadExpenses(ctx context.Context) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Expenses, nil
}

// SaveExpenses implements service.ExpenseStore.
func (s *JSONStorage) SaveExpenses(ctx context.Context, expenses []model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpenses(expenses); err != nil {
		return err
	}
	return s.update(func(doc *document) {
		doc.Expenses = append([]model.Expense{}, expenses...)
	})
}

// LoadBudget implements service.BudgetStore.
func (s *JSONStorage) LoadBudget(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, err
	}
	if doc.Budget == nil {
		return 0, fmt.Errorf("budget: %w", common.ErrNotFound)
	}
	return *doc.Budget, nil
}

// SaveBudget implements service.BudgetStore.
func (s *JSONStorage) SaveBudget(ctx context.Context, budget int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.update(func(doc *document) {
		doc.Budget = &budget
	})
}

// read loads the document; a missing file is an empty document. Callers hold mu.
func (s *JSONStorage) read() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &document{SchemaVersion: FileSchemaVersion}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabaseCorrupted, s.path, err)
	}
	if doc.SchemaVersion > FileSchemaVersion {
		return nil, fmt.Errorf("%w: %s has version %d, newest supported is %d",
			ErrUnsupportedFile, s.path, doc.SchemaVersion, FileSchemaVersion)
	}
	return &doc, nil
}

func (s *JSONStorage) update(mutate func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	mutate(doc)
	doc.SchemaVersion = FileSchemaVersion
	if doc.Expenses == nil {
		doc.Expenses = []model.Expense{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
