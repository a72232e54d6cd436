// Package storage is the durable key-value persistence service used for
// progress and syllabus state. Values are JSON documents.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable matches every backend read/write fault.
var ErrUnavailable = errors.New("persistence service unavailable")

// Store is a durable get/set key-value service.
type Store interface {
	// Get returns the value at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// FaultError wraps a backend failure. errors.Is(err, ErrUnavailable) holds
// for every FaultError.
type FaultError struct {
	Op  string
	Key string
	Err error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("kv %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *FaultError) Unwrap() error { return e.Err }

func (e *FaultError) Is(target error) bool { return target == ErrUnavailable }

func fault(op, key string, err error) error {
	return &FaultError{Op: op, Key: key, Err: err}
}

// GetJSON decodes the value at key into dst. ok is false when absent.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fault("decode", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
