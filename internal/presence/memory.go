package presence

import (
	"context"
	"sort"
	"sync"
)

// MemoryDirectory is a single-process Directory
type MemoryDirectory struct {
	mu     sync.RWMutex
	byUser map[string]string
	byConn map[string]string
}

// NewMemoryDirectory creates an empty MemoryDirectory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

func (d *MemoryDirectory) Register(_ context.Context, userID, connID string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	evicted := d.byUser[userID]
	if evicted != "" && evicted != connID {
		delete(d.byConn, evicted)
	} else {
		evicted = ""
	}
	d.byUser[userID] = connID
	d.byConn[connID] = userID
	return evicted, nil
}

func (d *MemoryDirectory) Lookup(_ context.Context, userID string) (string, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	connID, ok := d.byUser[userID]
	return connID, ok, nil
}

func (d *MemoryDirectory) Unregister(_ context.Context, connID string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.byConn[connID]
	if !ok {
		return "", false, nil
	}
	delete(d.byConn, connID)
	if d.byUser[userID] == connID {
		delete(d.byUser, userID)
	}
	return userID, true, nil
}

func (d *MemoryDirectory) ListActive(_ context.Context) ([]string, error) {
	d.mu.RLock()
	users := make([]string, 0, len(d.byUser))
	for id := range d.byUser {
		users = append(users, id)
	}
	d.mu.RUnlock()

	sort.Strings(users)
	return users, nil
}

func (d *MemoryDirectory) Reset(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byUser = make(map[string]string)
	d.byConn = make(map[string]string)
	return nil
}
