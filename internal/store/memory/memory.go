// Package memory is an in-process store used by tests and local runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekly-agenda-api/internal/model"
	"weekly-agenda-api/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	users  map[string]model.User
	emails map[string]string
	events []model.Event
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:  make(map[string]model.User),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.emails[u.Email]; ok {
		return store.ErrDuplicate
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) UserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (s *Store) CreateEvent(_ context.Context, e *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.NewString()
	e.CreatedAt = s.now()
	s.events = append(s.events, *e)
	return nil
}

func (s *Store) ListEvents(_ context.Context, f store.EventFilter) ([]model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(f.Description)
	out := []model.Event{}
	for _, e := range s.events {
		if f.DayOfWeek != "" && e.DayOfWeek != f.DayOfWeek {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(e.Description), needle) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) GetEvent(_ context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// DeleteEventsByDay filters under a single lock, so the result is exact.
func (s *Store) DeleteEventsByDay(_ context.Context, day string) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []model.Event
	kept := s.events[:0]
	for _, e := range s.events {
		if e.DayOfWeek == day {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }
