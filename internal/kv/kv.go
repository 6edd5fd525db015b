// Package kv is the local fallback store for comments and overlay settings.
//
// Values are opaque bytes addressed by typed keys. Callers build keys with
// ScreenKey or use the fixed keys below instead of concatenating strings.
package kv

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/chazuruo/aoss-console/internal/errors"
)

// Key addresses a single value.
type Key string

const screenPrefix = "comments-"

// ShowPinsKey holds the pin visibility toggle shared by every screen.
const ShowPinsKey Key = "comments-show-pins"

// ScreenKey returns the key holding the comment list for screen.
func ScreenKey(screen string) Key {
	return Key(screenPrefix + screen)
}

func (k Key) String() string { return string(k) }

// Store is a synchronous key-value store.
type Store interface {
	// Get returns the value for k and whether it exists.
	Get(ctx context.Context, k Key) ([]byte, bool, error)
	// Put stores v under k, replacing any previous value.
	Put(ctx context.Context, k Key, v []byte) error
	// Delete removes k. Deleting a missing key is not an error.
	Delete(ctx context.Context, k Key) error
	// Keys lists every stored key with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]Key, error)
	Close() error
}

// GetJSON decodes the value under k into a T. A missing key yields the zero
// value and false.
func GetJSON[T any](ctx context.Context, s Store, k Key) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, k)
	if err != nil || !ok {
		return out, ok, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("%w: decode %s: %v", errors.ErrIO, k, err)
	}
	return out, true, nil
}

// PutJSON encodes v and stores it under k.
func PutJSON(ctx context.Context, s Store, k Key, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", errors.ErrIO, k, err)
	}
	return s.Put(ctx, k, raw)
}

// ScreenKeys lists the screens that have a stored comment list.
func ScreenKeys(ctx context.Context, s Store) ([]string, error) {
	keys, err := s.Keys(ctx, screenPrefix)
	if err != nil {
		return nil, err
	}
	screens := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == ShowPinsKey {
			continue
		}
		screens = append(screens, string(k)[len(screenPrefix):])
	}
	return screens, nil
}
