package service

import "sync"

// seatLocks serializes admission decisions per seat.  Two concurrent
// booking attempts for the same seat take the same mutex, so the
// check-then-insert sequence in Create can never interleave for one
// seat; attempts on different seats proceed in parallel.
type seatLocks struct {
    mu    sync.Mutex
    locks map[string]*sync.Mutex
}

func newSeatLocks() *seatLocks {
    return &seatLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for the given seat key, creating it on first
// use.  The returned function releases the lock.
func (s *seatLocks) acquire(key string) func() {
    s.mu.Lock()
    l, ok := s.locks[key]
    if !ok {
        l = &sync.Mutex{}
        s.locks[key] = l
    }
    s.mu.Unlock()

    l.Lock()
    return l.Unlock
}
