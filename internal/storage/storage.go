// Package storage keeps containers, generated series, and the active
// standards tables in memory. It owns identity for series and supplies the
// template lookup used during generation; the calculation core itself never
// retains references across calls.
package storage

import (
	"errors"
	"sort"
	"sync"

	"github.com/materialerosion/PACK2/internal/bottle"
	"github.com/materialerosion/PACK2/internal/standards"
)

var (
	// ErrMissingID indicates a container without an id was submitted.
	ErrMissingID = errors.New("container id must not be empty")
)

// Storage provides access to containers, series, and standards tables.
type Storage interface {
	GetContainer(id string) (bottle.Container, bool)
	ListContainers() []bottle.Container
	PutContainer(c bottle.Container) error

	SaveSeries(s bottle.Series) (bottle.Series, error)
	GetSeries(id string) (bottle.Series, bool)

	GetStandards() standards.Tables
	SetStandards(t standards.Tables) error
}

// MemoryStorage is an in-memory Storage guarded by a RWMutex.
type MemoryStorage struct {
	mu         sync.RWMutex
	containers map[string]bottle.Container
	series     map[string]bottle.Series
	tables     standards.Tables
	newID      func() string
}

// NewMemoryStorage initialises storage with the default standards tables and
// the given series id source.
func NewMemoryStorage(newID func() string) *MemoryStorage {
	return &MemoryStorage{
		containers: make(map[string]bottle.Container),
		series:     make(map[string]bottle.Series),
		tables:     standards.Default(),
		newID:      newID,
	}
}

// GetContainer returns a defensive copy of the container with the given id.
func (s *MemoryStorage) GetContainer(id string) (bottle.Container, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.containers[id]
	if !ok {
		return bottle.Container{}, false
	}
	return c.Clone(), true
}

// ListContainers returns copies of all stored containers, ordered by name.
func (s *MemoryStorage) ListContainers() []bottle.Container {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]bottle.Container, 0, len(s.containers))
	for _, c := range s.containers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// PutContainer stores a copy of the container, keyed by its id.
func (s *MemoryStorage) PutContainer(c bottle.Container) error {
	if c.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	s.containers[c.ID] = c.Clone()
	s.mu.Unlock()
	return nil
}

// SaveSeries assigns the series an id if it lacks one, stores a copy, and
// returns the stored value.
func (s *MemoryStorage) SaveSeries(series bottle.Series) (bottle.Series, error) {
	if series.ID == "" {
		series.ID = s.newID()
	}

	stored := series
	stored.Bottles = make([]bottle.Container, len(series.Bottles))
	for i, b := range series.Bottles {
		stored.Bottles[i] = b.Clone()
	}

	s.mu.Lock()
	s.series[stored.ID] = stored
	s.mu.Unlock()
	return stored, nil
}

// GetSeries returns a copy of the stored series with the given id.
func (s *MemoryStorage) GetSeries(id string) (bottle.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.series[id]
	if !ok {
		return bottle.Series{}, false
	}
	out := stored
	out.Bottles = make([]bottle.Container, len(stored.Bottles))
	for i, b := range stored.Bottles {
		out.Bottles[i] = b.Clone()
	}
	return out, true
}

// GetStandards returns a copy of the active standards tables.
func (s *MemoryStorage) GetStandards() standards.Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tables.Clone()
}

// SetStandards validates and replaces the active standards tables.
func (s *MemoryStorage) SetStandards(t standards.Tables) error {
	if err := t.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.tables = t.Clone()
	s.mu.Unlock()
	return nil
}
