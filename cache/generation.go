package cache

import "sync"

// Ticket is handed out when a request for a slot starts.
type Ticket struct {
	slot string
	gen  uint64
}

// Slot tracks which request for a named view is the latest. A response whose
// ticket is no longer current belongs to a superseded key and is discarded.
type Slot struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewSlot() *Slot {
	return &Slot{gens: make(map[string]uint64)}
}

// Begin supersedes every earlier ticket for name.
func (s *Slot) Begin(name string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[name]++
	return Ticket{slot: name, gen: s.gens[name]}
}

func (s *Slot) Current(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.gen != 0 && s.gens[t.slot] == t.gen
}
