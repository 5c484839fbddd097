// Package memory is an in-process storage collaborator with the same
// ownership semantics as the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leozw/domainy/internal/core"
)

type Store struct {
	mu           sync.RWMutex
	domains      map[uuid.UUID]core.Domain
	users        map[uuid.UUID]core.User
	usersByEmail map[string]uuid.UUID
}

func New() *Store {
	return &Store{
		domains:      make(map[uuid.UUID]core.Domain),
		users:        make(map[uuid.UUID]core.User),
		usersByEmail: make(map[string]uuid.UUID),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[u.Email]; exists {
		return core.ErrConflict
	}
	s.users[u.ID] = *u
	s.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

// DeleteUser removes a user and cascades to their domains.
func (s *Store) DeleteUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return core.ErrNotFound
	}
	delete(s.users, userID)
	delete(s.usersByEmail, u.Email)
	for id, d := range s.domains {
		if d.UserID == userID {
			delete(s.domains, id)
		}
	}
	return nil
}

func (s *Store) InsertDomain(_ context.Context, d *core.Domain) (*core.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[d.UserID]; !ok {
		return nil, core.ErrNotFound
	}

	record := cloneDomain(*d)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = record.CreatedAt
	}
	s.domains[record.ID] = record

	out := cloneDomain(record)
	return &out, nil
}

func (s *Store) ListDomainsByUser(_ context.Context, userID uuid.UUID) ([]*core.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*core.Domain, 0)
	for _, d := range s.domains {
		if d.UserID == userID {
			c := cloneDomain(d)
			out = append(out, &c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *Store) GetDomain(_ context.Context, id, userID uuid.UUID) (*core.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.domains[id]
	if !ok || d.UserID != userID {
		return nil, core.ErrNotFound
	}
	out := cloneDomain(d)
	return &out, nil
}

func (s *Store) UpdateDomainWhere(_ context.Context, id, userID uuid.UUID, patch core.DomainPatch) (*core.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[id]
	if !ok || d.UserID != userID {
		return nil, core.ErrNotFound
	}
	updated := cloneDomain(patch.ApplyTo(d))
	s.domains[id] = updated

	out := cloneDomain(updated)
	return &out, nil
}

func (s *Store) DeleteDomainWhere(_ context.Context, id, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.domains[id]
	if !ok || d.UserID != userID {
		return 0, nil
	}
	delete(s.domains, id)
	return 1, nil
}

func (s *Store) ListDomainsDueForRefresh(_ context.Context, updatedBefore time.Time, exclude []uuid.UUID, limit int) ([]*core.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skip := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}

	var out []*core.Domain
	for _, d := range s.domains {
		if _, skipped := skip[d.ID]; skipped {
			continue
		}
		if d.UpdatedAt.Before(updatedBefore) {
			c := cloneDomain(d)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortByCreated(domains []*core.Domain) {
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].CreatedAt.Equal(domains[j].CreatedAt) {
			return domains[i].ID.String() < domains[j].ID.String()
		}
		return domains[i].CreatedAt.Before(domains[j].CreatedAt)
	})
}

func cloneDomain(d core.Domain) core.Domain {
	if d.ExpiryDate != nil {
		t := *d.ExpiryDate
		d.ExpiryDate = &t
	}
	if d.WhoisData != nil {
		w := *d.WhoisData
		d.WhoisData = &w
	}
	return d
}
