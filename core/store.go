package core

import (
	"context"
	"fmt"
	"sync"

	"pkt.systems/charcat/schema"
	"pkt.systems/pslog"
)

// Document persists the full record sequence.
type Document interface {
	Load() ([]schema.Character, bool, error)
	Save(records []schema.Character) error
}

// Store is the in-memory record list backed by a Document.
// Every mutation rewrites the whole document.
type Store struct {
	doc     Document
	logger  pslog.Logger
	mu      sync.Mutex
	records []schema.Character
}

// NewStore loads the document and returns a ready store.
func NewStore(doc Document, logger pslog.Logger) (*Store, error) {
	if doc == nil {
		return nil, fmt.Errorf("store document is required")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &Store{doc: doc, logger: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	records, ok, err := s.doc.Load()
	if err != nil {
		s.logger.Warn("store load failed", "err", err)
		return fmt.Errorf("load characters: %w", err)
	}
	for i, c := range records {
		if err := c.Validate(); err != nil {
			s.logger.Warn("store load failed", "index", i, "err", err)
			return fmt.Errorf("load characters: record %d: %w", i, err)
		}
	}
	s.records = records
	s.logger.Debug("store load ok", "exists", ok, "records", len(records))
	return nil
}

// Add appends a record and persists the whole sequence.
func (s *Store) Add(c schema.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, c)
	if err := s.saveLocked(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return err
	}
	s.logger.Info("store character added", "id", c.ID, "name", c.Name)
	return nil
}

// All returns a copy of the records in insertion order.
func (s *Store) All() []schema.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]schema.Character, len(s.records))
	copy(out, s.records)
	return out
}

// ByID returns the first record carrying id.
func (s *Store) ByID(id schema.CharacterID) (schema.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.records {
		if c.ID == id {
			return c, nil
		}
	}
	return schema.Character{}, fmt.Errorf("%w: %d", schema.ErrCharacterNotFound, id)
}

// RemoveByID drops every record carrying id and persists the rest.
func (s *Store) RemoveByID(id schema.CharacterID) (schema.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed schema.Character
	found := false
	kept := make([]schema.Character, 0, len(s.records))
	for _, c := range s.records {
		if c.ID == id {
			if !found {
				removed = c
				found = true
			}
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return schema.Character{}, fmt.Errorf("%w: %d", schema.ErrCharacterNotFound, id)
	}
	previous := s.records
	s.records = kept
	if err := s.saveLocked(); err != nil {
		s.records = previous
		return schema.Character{}, err
	}
	s.logger.Info("store character removed", "id", id, "name", removed.Name)
	return removed, nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// MaxID returns the largest id in the store, or 0 when empty.
func (s *Store) MaxID() schema.CharacterID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var highest schema.CharacterID
	for _, c := range s.records {
		if c.ID > highest {
			highest = c.ID
		}
	}
	return highest
}

// NextManualID returns the id assigned to manually created records: count+1.
// After deletions this can collide with an existing id.
func (s *Store) NextManualID() schema.CharacterID {
	return schema.CharacterID(s.Len() + 1)
}

func (s *Store) saveLocked() error {
	if err := s.doc.Save(s.records); err != nil {
		s.logger.Warn("store save failed", "err", err)
		return fmt.Errorf("%w: %v", schema.ErrPersist, err)
	}
	return nil
}
