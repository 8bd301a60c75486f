package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type memoryState struct {
	users map[uuid.UUID]models.User
	lists map[uuid.UUID]models.List
	items map[uuid.UUID]models.Item
	order map[uuid.UUID]uint64
	seq   uint64
}

func newMemoryState() memoryState {
	return memoryState{
		users: map[uuid.UUID]models.User{},
		lists: map[uuid.UUID]models.List{},
		items: map[uuid.UUID]models.Item{},
		order: map[uuid.UUID]uint64{},
	}
}

func (s memoryState) clone() memoryState {
	out := memoryState{
		users: make(map[uuid.UUID]models.User, len(s.users)),
		lists: make(map[uuid.UUID]models.List, len(s.lists)),
		items: make(map[uuid.UUID]models.Item, len(s.items)),
		order: make(map[uuid.UUID]uint64, len(s.order)),
		seq:   s.seq,
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.lists {
		out.lists[k] = v
	}
	for k, v := range s.items {
		out.items[k] = v
	}
	for k, v := range s.order {
		out.order[k] = v
	}
	return out
}

func (s *memoryState) track(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

// MemoryStore keeps everything in process memory. It backs tests and the
// "memory" backend, and supports transactions by working on a copy of the
// state that replaces the original on commit.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState(), now: time.Now}
}

// WithClock replaces the time source used for creation and removal stamps.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// InTx runs fn against a private copy of the state. The copy is published
// only when fn returns nil. Other callers block until the transaction ends.
func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &MemoryStore{state: s.state.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *MemoryStore) removedAt() gorm.DeletedAt {
	return gorm.DeletedAt{Time: s.now().UTC(), Valid: true}
}

func (s *MemoryStore) FindUserByCredentials(_ context.Context, name, password string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.users {
		if u.Name == name && !u.RemovedAt.Valid && passwordMatches(u.Password, password) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok || u.RemovedAt.Valid {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) CreateUser(_ context.Context, name, password string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, wrap("hash password", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.users {
		if u.Name == name && !u.RemovedAt.Valid {
			return nil, ErrAlreadyExists
		}
	}
	now := s.now().UTC()
	u := models.User{ID: uuid.New(), Name: name, Password: hash, CreatedAt: now, UpdatedAt: now}
	s.state.users[u.ID] = u
	s.state.track(u.ID)
	return &u, nil
}

func (s *MemoryStore) FindListsByOwner(_ context.Context, ownerID uuid.UUID) ([]models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lists := make([]models.List, 0)
	for _, l := range s.state.lists {
		if l.UserID == ownerID && !l.RemovedAt.Valid {
			lists = append(lists, l)
		}
	}
	sort.Slice(lists, func(i, j int) bool {
		return s.state.order[lists[i].ID] < s.state.order[lists[j].ID]
	})
	return lists, nil
}

func (s *MemoryStore) FindListByID(ctx context.Context, id uuid.UUID) (*models.List, error) {
	l, err := s.FindListByIDUnscoped(ctx, id)
	if l == nil || err != nil || l.RemovedAt.Valid {
		return nil, err
	}
	return l, nil
}

func (s *MemoryStore) FindListByIDUnscoped(_ context.Context, id uuid.UUID) (*models.List, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.state.lists[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (s *MemoryStore) FindListByName(ctx context.Context, name string, ownerID uuid.UUID) (*models.List, error) {
	lists, err := s.FindListsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		if lists[i].Name == name {
			return &lists[i], nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertList(_ context.Context, fields ListFields) (*models.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	l := models.List{
		ID:        uuid.New(),
		UserID:    fields.OwnerID,
		Name:      fields.Name,
		Date:      fields.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.lists[l.ID] = l
	s.state.track(l.ID)
	return &l, nil
}

func (s *MemoryStore) UpdateList(_ context.Context, id uuid.UUID, fields ListFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.state.lists[id]
	if !ok || l.RemovedAt.Valid {
		return nil
	}
	l.Name = fields.Name
	l.Date = fields.Date
	l.UpdatedAt = s.now().UTC()
	s.state.lists[id] = l
	return nil
}

func (s *MemoryStore) SoftDeleteList(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.state.lists[id]
	if !ok || l.RemovedAt.Valid {
		return nil
	}
	l.RemovedAt = s.removedAt()
	s.state.lists[id] = l
	return nil
}

func (s *MemoryStore) FindItemsByList(_ context.Context, listID uuid.UUID) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]models.Item, 0)
	for _, it := range s.state.items {
		if it.ListID == listID && !it.RemovedAt.Valid {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return s.state.order[items[i].ID] < s.state.order[items[j].ID]
	})
	return items, nil
}

func (s *MemoryStore) FindItemByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	it, err := s.FindItemByIDUnscoped(ctx, id)
	if it == nil || err != nil || it.RemovedAt.Valid {
		return nil, err
	}
	return it, nil
}

func (s *MemoryStore) FindItemByIDUnscoped(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.state.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (s *MemoryStore) InsertItem(_ context.Context, listID uuid.UUID, fields ItemFields) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	it := models.Item{
		ID:        uuid.New(),
		ListID:    listID,
		Name:      fields.Name,
		Checked:   fields.Checked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.state.items[it.ID] = it
	s.state.track(it.ID)
	return &it, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, id uuid.UUID, fields ItemFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.state.items[id]
	if !ok || it.RemovedAt.Valid {
		return nil
	}
	it.Name = fields.Name
	it.Checked = fields.Checked
	it.UpdatedAt = s.now().UTC()
	s.state.items[id] = it
	return nil
}

func (s *MemoryStore) SoftDeleteItem(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.state.items[id]
	if !ok || it.RemovedAt.Valid {
		return ErrNotActive
	}
	it.RemovedAt = s.removedAt()
	s.state.items[id] = it
	return nil
}
