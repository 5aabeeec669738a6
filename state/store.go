// Package state holds the short-lived, per-session page state that the API
// does not persist: the compose editor, list selections, loading flags and
// the request generations of each view.
package state

import (
	"sync"
	"time"

	"creatorpulse/cache"

	"github.com/google/uuid"
)

// Page is one browser session's page state.
type Page struct {
	ID        string
	Editor    *Editor
	Selection *Selection
	Flags     *Flags
	Slots     *cache.Slot

	mu             sync.Mutex
	selectedClient *int64
	expiration     time.Time
}

func newPage(id string) *Page {
	return &Page{
		ID:        id,
		Editor:    NewEditor(),
		Selection: NewSelection(),
		Flags:     NewFlags(),
		Slots:     cache.NewSlot(),
	}
}

// SelectClient switches the active client. Selections belong to the
// previous client's list and are cleared when it changes.
func (s *Page) SelectClient(clientID *int64) {
	s.mu.Lock()
	changed := !sameClient(s.selectedClient, clientID)
	if clientID != nil {
		id := *clientID
		s.selectedClient = &id
	} else {
		s.selectedClient = nil
	}
	s.mu.Unlock()

	if changed {
		s.Selection.Clear()
	}
}

// Reset returns the page to its signed-out state so nothing selected or
// drafted under one account is visible to the next.
func (s *Page) Reset() {
	s.mu.Lock()
	s.selectedClient = nil
	s.mu.Unlock()

	s.Selection.Clear()
	s.Editor.Clear()
	s.Editor.SetRecipient("")
	s.Editor.SetInterpolateSubject(false)
}

func (s *Page) SelectedClient() *int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedClient == nil {
		return nil
	}
	id := *s.selectedClient
	return &id
}

func sameClient(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Store keeps pages in memory and drops the ones idle for longer than ttl.
type Store struct {
	mu    sync.Mutex
	pages map[string]*Page
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{
		pages: make(map[string]*Page),
		ttl:   ttl,
	}
}

// Get returns a live page and extends its lifetime.
func (s *Store) Get(id string) (*Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[id]
	if !ok {
		return nil, false
	}
	now := time.Now()
	if now.After(page.expiration) {
		delete(s.pages, id)
		return nil, false
	}
	page.expiration = now.Add(s.ttl)
	return page, true
}

// Create starts a fresh page under a random id.
func (s *Store) Create() *Page {
	page := newPage(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())
	page.expiration = time.Now().Add(s.ttl)
	s.pages[page.ID] = page
	return page
}

// GetOrCreate returns the page for id, or a new one when id is unknown or expired.
func (s *Store) GetOrCreate(id string) *Page {
	if id != "" {
		if page, ok := s.Get(id); ok {
			return page
		}
	}
	return s.Create()
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, id)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

func (s *Store) sweepLocked(now time.Time) {
	for id, page := range s.pages {
		if now.After(page.expiration) {
			delete(s.pages, id)
		}
	}
}
