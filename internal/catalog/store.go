package catalog

import "sync/atomic"

// Store publishes the current dictionary to concurrent evaluations.
// Readers are lock-free; a reload swaps in a fully formed dictionary
// atomically, so in-flight evaluations never observe a partial catalog.
type Store struct {
	current atomic.Pointer[Dictionary]
	hash    atomic.Pointer[string]
	path    string
}

// NewStore creates a store seeded with d.
func NewStore(d *Dictionary, hash string) *Store {
	s := &Store{}
	s.current.Store(d)
	s.hash.Store(&hash)
	return s
}

// Open loads the catalog at path and returns a store bound to it for reloads.
func Open(path string) (*Store, error) {
	d, hash, err := LoadWithHash(path)
	if err != nil {
		return nil, err
	}
	s := NewStore(d, hash)
	s.path = path
	return s, nil
}

// Get returns the current dictionary.
func (s *Store) Get() *Dictionary {
	return s.current.Load()
}

// Hash returns the hash of the currently published catalog.
func (s *Store) Hash() string {
	return *s.hash.Load()
}

// Swap atomically publishes a new dictionary.
func (s *Store) Swap(d *Dictionary, hash string) {
	s.current.Store(d)
	s.hash.Store(&hash)
}

// Reload re-reads the bound catalog file and publishes it. On any load
// error the previously published dictionary stays in effect.
func (s *Store) Reload() error {
	d, hash, err := LoadWithHash(s.path)
	if err != nil {
		return err
	}
	s.Swap(d, hash)
	return nil
}
