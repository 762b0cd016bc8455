package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxItems bounds the history file; older runs are dropped.
const MaxItems = 100

type HistoryItem struct {
	ID        string     `json:"id"`
	Timestamp time.Time  `json:"timestamp"`
	Model     string     `json:"model"`
	Options   string     `json:"options"`
	Target    string     `json:"target"`
	Test      string     `json:"test"`
	ResultID  string     `json:"result_id"`
	Summary   RunSummary `json:"summary"`
}

type RunSummary struct {
	Status            string  `json:"status"`
	TotalRequests     uint64  `json:"total_requests"`
	Success           uint64  `json:"success"`
	Fail              uint64  `json:"fail"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// NewItem stamps a fresh id and the current time.
func NewItem() HistoryItem {
	return HistoryItem{ID: uuid.New().String(), Timestamp: time.Now().UTC()}
}

type Store struct {
	mu       sync.RWMutex
	filePath string
	items    []HistoryItem
}

// NewStore opens the history at path, creating its directory. A missing
// file is an empty history.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: path,
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return fmt.Errorf("corrupt history file %s: %w", s.filePath, err)
	}
	return nil
}

func (s *Store) Save(item HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Add to beginning
	s.items = append([]HistoryItem{item}, s.items...)

	if len(s.items) > MaxItems {
		s.items = s.items[:MaxItems]
	}

	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

// List returns a copy, newest first.
func (s *Store) List() []HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]HistoryItem, len(s.items))
	copy(res, s.items)
	return res
}

func (s *Store) Get(id string) *HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.ID == id {
			return &item
		}
	}
	return nil
}
