package account

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository. Safe for concurrent use.
type MemoryRepository struct {
	users      map[uuid.UUID]User
	linked     map[string]uuid.UUID
	groups     map[uuid.UUID]Group
	byExternal map[string]uuid.UUID
	members    map[uuid.UUID]map[uuid.UUID]struct{}
	now        func() time.Time
	mu         sync.Mutex
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      map[uuid.UUID]User{},
		linked:     map[string]uuid.UUID{},
		groups:     map[uuid.UUID]Group{},
		byExternal: map[string]uuid.UUID{},
		members:    map[uuid.UUID]map[uuid.UUID]struct{}{},
		now:        time.Now,
	}
}

func (r *MemoryRepository) FindByExternalID(_ context.Context, externalID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.linked[externalID]
	if !ok || externalID == "" {
		return nil, ErrUserNotFound
	}
	u := r.users[id]
	return &u, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u.ExternalID != "" {
		if _, ok := r.linked[u.ExternalID]; ok {
			return ErrAlreadyLinked
		}
	}

	u.ID = uuid.New()
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = *u
	if u.ExternalID != "" {
		r.linked[u.ExternalID] = u.ID
	}
	return nil
}

func (r *MemoryRepository) UpdateProfile(_ context.Context, id uuid.UUID, p ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Username = cmp.Or(p.Username, u.Username)
	u.Name = cmp.Or(p.Name, u.Name)
	u.Email = cmp.Or(p.Email, u.Email)
	u.UpdatedAt = r.now()
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) ClearExternalID(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if u.ExternalID == "" {
		return nil
	}
	delete(r.linked, u.ExternalID)
	u.ExternalID = ""
	u.UpdatedAt = r.now()
	r.users[id] = u
	return nil
}

func (r *MemoryRepository) GetOrCreateExternalGroup(_ context.Context, externalID, name string) (uuid.UUID, error) {
	if externalID == "" {
		return uuid.Nil, ErrEmptyGroupID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byExternal[externalID]; ok {
		return id, nil
	}
	g := Group{ID: uuid.New(), ExternalID: externalID, Name: name}
	r.groups[g.ID] = g
	r.byExternal[externalID] = g.ID
	return g.ID, nil
}

func (r *MemoryRepository) SyncExternalGroups(_ context.Context, userID uuid.UUID, groupIDs []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return ErrUserNotFound
	}

	current := r.members[userID]
	next := make(map[uuid.UUID]struct{}, len(current)+len(groupIDs))
	for gid := range current {
		if r.groups[gid].ExternalID == "" {
			next[gid] = struct{}{}
		}
	}
	for _, gid := range groupIDs {
		if _, ok := r.groups[gid]; ok {
			next[gid] = struct{}{}
		}
	}
	r.members[userID] = next
	return nil
}

func (r *MemoryRepository) ListUserGroups(_ context.Context, userID uuid.UUID) ([]Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := make([]Group, 0, len(r.members[userID]))
	for gid := range r.members[userID] {
		groups = append(groups, r.groups[gid])
	}
	slices.SortFunc(groups, func(a, b Group) int { return cmp.Compare(a.Name, b.Name) })
	return groups, nil
}

// AddLocalGroup creates a locally managed group and adds userID to it.
func (r *MemoryRepository) AddLocalGroup(_ context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return uuid.Nil, ErrUserNotFound
	}
	g := Group{ID: uuid.New(), Name: name}
	r.groups[g.ID] = g
	if r.members[userID] == nil {
		r.members[userID] = map[uuid.UUID]struct{}{}
	}
	r.members[userID][g.ID] = struct{}{}
	return g.ID, nil
}

var _ Repository = (*MemoryRepository)(nil)
