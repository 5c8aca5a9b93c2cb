package store

import (
	"context"
	"encoding/json"
	"sync"
)

type MemoryStore struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// NewMemoryStoreFromDump builds a store from a JSON object of key -> document,
// the format used by lifedashctl dump files.
func NewMemoryStoreFromDump(dump []byte) (*MemoryStore, error) {
	var docs map[string]json.RawMessage
	if err := json.Unmarshal(dump, &docs); err != nil {
		return nil, err
	}
	s := NewMemoryStore()
	for k, v := range docs {
		if err := s.Set(context.Background(), k, v); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value json.RawMessage) error {
	if err := checkSet(key, value); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Keys() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
