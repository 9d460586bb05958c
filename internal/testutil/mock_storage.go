// mock_storage.go - Mock storage and level source implementations for testing
package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/siege-game/backend/internal/models"
	"github.com/siege-game/backend/internal/parser"
	"github.com/siege-game/backend/internal/storage"
)

// MockStorage implements storage.Store in memory
type MockStorage struct {
	files    map[string]*models.FileInfo
	fileData map[string][]byte
	mu       sync.RWMutex
}

// NewMockStorage creates a new empty mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileInfo),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStorage) SaveBytes(name string, data []byte) (*models.FileInfo, error) {
	return m.AddFile(generateTestID(), name, data), nil
}

func (m *MockStorage) Get(id string) (*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return file, nil
}

func (m *MockStorage) List(limit int) ([]*models.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileInfo
	for _, file := range m.files {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ID < files[j].ID
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.files[id]; !exists {
		return errors.New("file not found")
	}

	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}

	file.Name = newName
	return file, nil
}

func (m *MockStorage) SetStatus(id string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[id]
	if !ok {
		return errors.New("file not found")
	}
	file.Status = status
	return nil
}

// Ensure MockStorage implements storage.Store
var _ storage.Store = (*MockStorage)(nil)

// Test Helper Methods

// AddFile adds a file directly to the mock
func (m *MockStorage) AddFile(id string, name string, data []byte) *models.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := &models.FileInfo{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.FileStatusUploaded,
	}
	m.files[id] = file
	m.fileData[id] = bytes.Clone(data)
	return file
}

// GetFileData returns the file content
func (m *MockStorage) GetFileData(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return data, nil
}

// GetFileCount returns the number of stored files
func (m *MockStorage) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}

// generateTestID generates a simple test ID
var testIDCounter int
var testIDMutex sync.Mutex

func generateTestID() string {
	testIDMutex.Lock()
	defer testIDMutex.Unlock()
	testIDCounter++
	return fmt.Sprintf("test-id-%d", testIDCounter)
}

// MockLevelSource implements storage.LevelSource over in-memory levels.
type MockLevelSource struct {
	mu     sync.Mutex
	levels map[string]*models.RawLevel
	loads  map[string]int
	Err    error // returned by Load when set
}

// NewMockLevelSource creates a source holding the given levels, keyed by Name.
func NewMockLevelSource(levels ...*models.RawLevel) *MockLevelSource {
	m := &MockLevelSource{
		levels: make(map[string]*models.RawLevel),
		loads:  make(map[string]int),
	}
	for _, l := range levels {
		m.levels[l.Name] = l
	}
	return m
}

func (m *MockLevelSource) Load(ctx context.Context, name string) (*models.RawLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads[name]++
	if m.Err != nil {
		return nil, m.Err
	}
	level, ok := m.levels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrLevelNotFound, name)
	}
	return CloneLevel(level), nil
}

func (m *MockLevelSource) List() ([]models.LevelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]models.LevelInfo, 0, len(m.levels))
	for name := range m.levels {
		infos = append(infos, models.LevelInfo{Name: name, Source: storage.OriginEmbedded})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// LoadCount returns how many times name was requested.
func (m *MockLevelSource) LoadCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[name]
}

var _ storage.LevelSource = (*MockLevelSource)(nil)

// AsSource exposes stored files as a LevelSource keyed by file ID, parsing
// them by display name like storage.LocalStore does.
func (m *MockStorage) AsSource() storage.LevelSource {
	return mockUploadSource{m}
}

type mockUploadSource struct {
	store *MockStorage
}

func (s mockUploadSource) Load(ctx context.Context, id string) (*models.RawLevel, error) {
	info, err := s.store.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrLevelNotFound, id)
	}
	data, err := s.store.GetFileData(id)
	if err != nil {
		return nil, err
	}
	return parser.ParseLevelBytes(info.Name, data)
}

func (s mockUploadSource) List() ([]models.LevelInfo, error) {
	files, err := s.store.List(0)
	if err != nil {
		return nil, err
	}
	infos := make([]models.LevelInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, models.LevelInfo{
			Name:   parser.LevelName(f.Name),
			Source: storage.OriginUpload,
			ID:     f.ID,
		})
	}
	return infos, nil
}
