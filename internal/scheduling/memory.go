package scheduling

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Serializer and Book backed by a map.
type MemoryStore struct {
	locks  *KeyLocker
	mu     sync.RWMutex
	nextID int64
	items  map[int64]Assignment
}

// NewMemoryStore builds a store preloaded with seed assignments.
func NewMemoryStore(seed ...Assignment) *MemoryStore {
	s := &MemoryStore{locks: NewKeyLocker(), items: make(map[int64]Assignment)}
	for _, a := range seed {
		if a.ID == 0 {
			s.nextID++
			a.ID = s.nextID
		} else if a.ID > s.nextID {
			s.nextID = a.ID
		}
		s.items[a.ID] = a
	}
	return s
}

// Serialize implements Serializer.
func (s *MemoryStore) Serialize(ctx context.Context, keys []LockKey, fn func(ctx context.Context, book Book) error) error {
	unlock := s.locks.Lock(keys...)
	defer unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, memoryBook{store: s})
}

// List returns every assignment ordered by day, start and id.
func (s *MemoryStore) List() []Assignment {
	s.mu.RLock()
	out := make([]Assignment, 0, len(s.items))
	for _, a := range s.items {
		out = append(out, a)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		if out[i].Interval.Start != out[j].Interval.Start {
			return out[i].Interval.Start < out[j].Interval.Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes an assignment, reporting whether it existed.
func (s *MemoryStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

type memoryBook struct {
	store *MemoryStore
}

func (b memoryBook) Existing(_ context.Context, c Candidate) ([]Assignment, error) {
	b.store.mu.RLock()
	defer b.store.mu.RUnlock()
	var out []Assignment
	for _, a := range b.store.items {
		if a.Day != c.Day {
			continue
		}
		if a.RoomID == c.RoomID || a.SectionID == c.SectionID || a.TeacherID == c.TeacherID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (b memoryBook) Insert(_ context.Context, a Assignment) (Assignment, error) {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	b.store.nextID++
	a.ID = b.store.nextID
	b.store.items[a.ID] = a
	return a, nil
}
