package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ClientSource yields the client once it is connected. *Component
// implements it.
type ClientSource interface {
	Client() *Client
}

// TypedStore stores JSON-encoded values of type C under prefixed keys.
// Until the source has a client every Load misses and every Save is
// dropped.
type TypedStore[C any] struct {
	source    ClientSource
	keyPrefix string
}

// NewTypedStore creates a store whose keys are "keyPrefix:key".
func NewTypedStore[C any](source ClientSource, keyPrefix string) *TypedStore[C] {
	return &TypedStore[C]{source: source, keyPrefix: keyPrefix}
}

func (s *TypedStore[C]) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return s.keyPrefix + ":" + key
}

// Load decodes the value of key. A missing key returns (nil, nil).
func (s *TypedStore[C]) Load(ctx context.Context, key string) (*C, error) {
	client := s.source.Client()
	if client == nil {
		return nil, nil
	}
	raw, err := client.Get(ctx, s.fullKey(key))
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, nil
		}
		return nil, fmt.Errorf("typed store load %q: %w", key, err)
	}

	var val C
	if err := json.Unmarshal([]byte(raw), &val); err != nil {
		return nil, fmt.Errorf("typed store unmarshal %q: %w", key, err)
	}
	return &val, nil
}

// Save encodes val and stores it with ttl. A ttl of 0 means no expiration.
func (s *TypedStore[C]) Save(ctx context.Context, key string, val *C, ttl time.Duration) error {
	client := s.source.Client()
	if client == nil {
		return nil
	}
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("typed store marshal %q: %w", key, err)
	}
	if err := client.Set(ctx, s.fullKey(key), string(data), ttl); err != nil {
		return fmt.Errorf("typed store save %q: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *TypedStore[C]) Delete(ctx context.Context, key string) error {
	client := s.source.Client()
	if client == nil {
		return nil
	}
	if err := client.Del(ctx, s.fullKey(key)); err != nil {
		return fmt.Errorf("typed store delete %q: %w", key, err)
	}
	return nil
}
