// SPDX-License-Identifier: MIT

package checkpoint

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store is a flat key-value space for encoded records. Implementations are
// safe for concurrent use.
type Store interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, data []byte) error
	// Get returns the data under key or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns every key in lexical order.
	List(ctx context.Context) ([]string, error)
	// Close releases backend resources.
	Close() error
}

// Key names the record of bidegree (s, t).
func Key(s, t int) string { return fmt.Sprintf("s%d_t%d.res", s, t) }

// ParseKey is the inverse of Key. It ignores any prefix up to the last '/'.
func ParseKey(key string) (s, t int, ok bool) {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		key = key[i+1:]
	}
	n, err := fmt.Sscanf(key, "s%d_t%d.res", &s, &t)
	if err != nil || n != 2 || Key(s, t) != key {
		return 0, 0, false
	}

	return s, t, true
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory { return &Memory{data: make(map[string][]byte)} }

// Put stores a copy of data.
func (m *Memory) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()

	return nil
}

// Get returns a copy of the stored data.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.data[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}

	return append([]byte(nil), d...), nil
}

// List returns the sorted keys.
func (m *Memory) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	m.mu.RUnlock()
	sort.Strings(keys)

	return keys, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// prefixed scopes a Store to keys below a prefix.
type prefixed struct {
	Store
	prefix string
}

// WithPrefix returns a view of s in which every key is stored as prefix+key.
// List returns keys with the prefix removed. Closing the view closes s.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Put(ctx context.Context, key string, data []byte) error {
	return p.Store.Put(ctx, p.prefix+key, data)
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) List(ctx context.Context) ([]string, error) {
	all, err := p.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, p.prefix); ok {
			out = append(out, rest)
		}
	}

	return out, nil
}

// ConfigPrefix names the directory of one resolution configuration, such as
// "S_2-milnor-p2".
func ConfigPrefix(module, algebra string, p uint32) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "$", "")
	return fmt.Sprintf("%s-%s-p%d", r.Replace(module), algebra, p)
}
