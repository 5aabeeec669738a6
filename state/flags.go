package state

import (
	"errors"
	"sort"
	"sync"
)

// ErrBusy is returned when the same action is already in flight.
var ErrBusy = errors.New("action already in progress")

// Flags are per-action loading indicators, e.g. "mass-email" or "status:42".
// They keep one action from running twice at once; unrelated actions proceed.
type Flags struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewFlags() *Flags {
	return &Flags{active: make(map[string]struct{})}
}

// TryBegin raises the flag for key. The returned func lowers it.
func (f *Flags) TryBegin(key string) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[key]; busy {
		return nil, ErrBusy
	}
	f.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.active, key)
			f.mu.Unlock()
		})
	}, nil
}

func (f *Flags) Active(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.active[key]
	return ok
}

// Keys lists the raised flags, sorted.
func (f *Flags) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.active))
	for key := range f.active {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
