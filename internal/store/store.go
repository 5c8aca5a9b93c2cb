package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey    = errors.New("empty store key")
	ErrInvalidJSON = errors.New("value is not valid json")
)

// RecordStore maps opaque string keys to JSON documents.
// Get returns a nil document (and no error) for an absent key.
// No transactional guarantee is given across keys.
type RecordStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

func checkSet(key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !json.Valid(value) {
		return fmt.Errorf("set [%s]: %w", key, ErrInvalidJSON)
	}
	return nil
}

// GetJSON reads key and unmarshals it into dst. found is false for an absent key.
func GetJSON(ctx context.Context, s RecordStore, key string, dst any) (found bool, err error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("unmarshal [%s]: %w", key, err)
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s RecordStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal [%s]: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
