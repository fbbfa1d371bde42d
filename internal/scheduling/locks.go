package scheduling

import (
	"fmt"
	"sort"
	"sync"
)

// LockKey identifies one (day, dimension, id) booking axis.
type LockKey struct {
	Day       Day
	Dimension Dimension
	ID        int64
}

func (k LockKey) String() string {
	return fmt.Sprintf("%s:%d:%d", k.Dimension, int(k.Day), k.ID)
}

// KeysFor returns the three keys a candidate must hold, in a stable order.
func KeysFor(c Candidate) []LockKey {
	keys := []LockKey{
		{Day: c.Day, Dimension: DimensionRoom, ID: c.RoomID},
		{Day: c.Day, Dimension: DimensionSection, ID: c.SectionID},
		{Day: c.Day, Dimension: DimensionTeacher, ID: c.TeacherID},
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// KeyLocker hands out per-key mutexes. Keys are always taken in sorted order.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

// NewKeyLocker builds an empty locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{locks: make(map[string]*refMutex)}
}

// Lock acquires every key and returns the function releasing them.
func (l *KeyLocker) Lock(keys ...LockKey) func() {
	names := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		name := k.String()
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)

	held := make([]*refMutex, 0, len(names))
	for _, name := range names {
		m := l.acquire(name)
		m.mu.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(names[i])
		}
	}
}

func (l *KeyLocker) acquire(name string) *refMutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[name]
	if !ok {
		m = &refMutex{}
		l.locks[name] = m
	}
	m.refs++
	return m
}

func (l *KeyLocker) release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.locks[name]
	m.refs--
	if m.refs == 0 {
		delete(l.locks, name)
	}
}

// Len returns the number of keys currently tracked.
func (l *KeyLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
