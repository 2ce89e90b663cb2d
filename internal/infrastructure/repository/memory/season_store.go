package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
)

// SeasonStore keeps encoded season attributes in process with the same
// upsert/patch semantics as the DynamoDB and Redis stores.
type SeasonStore struct {
	mu    sync.RWMutex
	items map[season.Key]map[string]string
}

func NewSeasonStore() *SeasonStore {
	return &SeasonStore{items: make(map[season.Key]map[string]string)}
}

func (s *SeasonStore) Write(_ context.Context, record season.Record, mode season.WriteMode) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	attrs, err := record.EncodeAttributes()
	if err != nil {
		return fmt.Errorf("encode season %d: %w", record.Season, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := record.Key()
	current, ok := s.items[key]
	if mode == season.WriteUpsert || !ok {
		s.items[key] = attrs
		return nil
	}
	for name, value := range attrs {
		current[name] = value
	}
	return nil
}

// Get returns a copy of the stored attributes.
func (s *SeasonStore) Get(key season.Key) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attrs, ok := s.items[key]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out, true
}

func (s *SeasonStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
