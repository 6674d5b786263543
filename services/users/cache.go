package users

import (
	"sync"

	"useradmin/pkg/metrics"
)

// Cache is the client-side mirror of the last known server state.
// Order is fetch order; created users are appended.
type Cache struct {
	mu    sync.RWMutex
	users []User
}

func NewCache() *Cache {
	return &Cache{}
}

// Replace swaps the whole cache for a freshly fetched list
func (c *Cache) Replace(users []User) {
	fresh := make([]User, len(users))
	copy(fresh, users)

	c.mu.Lock()
	c.users = fresh
	c.mu.Unlock()

	metrics.SetCachedUsers(len(fresh))
}

func (c *Cache) Append(u User) {
	c.mu.Lock()
	c.users = append(c.users, u)
	n := len(c.users)
	c.mu.Unlock()

	metrics.SetCachedUsers(n)
}

// ReplaceByID swaps the entry with the same id in place. It reports false
// when no such entry is cached.
func (c *Cache) ReplaceByID(u User) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.users {
		if c.users[i].ID == u.ID {
			c.users[i] = u
			return true
		}
	}
	return false
}

// Remove drops the entry with the given id
func (c *Cache) Remove(id int64) bool {
	c.mu.Lock()
	removed := false
	for i := range c.users {
		if c.users[i].ID == id {
			c.users = append(c.users[:i:i], c.users[i+1:]...)
			removed = true
			break
		}
	}
	n := len(c.users)
	c.mu.Unlock()

	if removed {
		metrics.SetCachedUsers(n)
	}
	return removed
}

func (c *Cache) Get(id int64) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, u := range c.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// All returns a copy of the cached users in order
func (c *Cache) All() []User {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]User, len(c.users))
	copy(out, c.users)
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}
