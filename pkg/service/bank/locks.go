package bank

import "sync"

// LockManager hands out one exclusive lock per entity id. Locks are created
// on first use and never reclaimed; the population of accounts is bounded by
// the life of the process.
//
// Multi-account operations must acquire through LockPair, which orders
// acquisition by id regardless of argument order. Acquiring two locks in
// caller-supplied order deadlocks under concurrent opposite-direction
// transfers.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*sync.Mutex)}
}

func (m *LockManager) get(id string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Lock acquires exclusive access to a single entity.
func (m *LockManager) Lock(id string) {
	m.get(id).Lock()
}

func (m *LockManager) Unlock(id string) {
	m.get(id).Unlock()
}

// LockPair acquires both locks in ascending id order.
func (m *LockManager) LockPair(a, b string) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	m.get(first).Lock()
	m.get(second).Lock()
}

func (m *LockManager) UnlockPair(a, b string) {
	m.get(a).Unlock()
	m.get(b).Unlock()
}
