package status

import "sync"

// Reader is the access granted to network-facing components.
type Reader interface {
	// Snapshot returns a consistent copy of the record.
	Snapshot() Record
	// Reset restores defaults.
	Reset()
}

// Writer is the access granted to the protocol decoder.
type Writer interface {
	// Update applies fn as a single change.
	Update(fn func(*Record))
	// View calls fn with the record locked for reading, fn must not
	// modify it.
	View(fn func(*Record))
}

// Store owns the Record and guards every access with a lock so a
// snapshot never observes a partially applied update.
type Store struct {
	lock   sync.RWMutex
	record Record
}

// NewStore creates a Store initialized with defaults.
func NewStore() *Store {
	return &Store{record: Defaults()}
}

// Snapshot implements Reader.
func (s *Store) Snapshot() Record {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.record
}

// Version returns the current version without copying the record.
func (s *Store) Version() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.record.Version
}

// View implements Writer.
func (s *Store) View(fn func(*Record)) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	fn(&s.record)
}

// Update implements Writer.
func (s *Store) Update(fn func(*Record)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	version := s.record.Version
	fn(&s.record)
	s.record.Version = version + 1
}

// Reset implements Reader.
func (s *Store) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	version := s.record.Version
	s.record = Defaults()
	s.record.Version = version + 1
}

// SetNetworkUp updates the network link flag.
func (s *Store) SetNetworkUp(up bool) {
	s.Update(func(r *Record) { r.NetworkUp = up })
}
