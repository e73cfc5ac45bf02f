// Package session holds the master password of the unlocked session.
package session

import "sync"

// Credential is the Session Credential: empty until a login or registration
// succeeds, then passed verbatim with every vault command.
type Credential struct {
	mu       sync.RWMutex
	password string
}

// Get returns the current master password, or "" when locked.
func (c *Credential) Get() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.password
}

// Set adopts password as the session's master password.
func (c *Credential) Set(password string) {
	c.mu.Lock()
	c.password = password
	c.mu.Unlock()
}

// Clear locks the session.
func (c *Credential) Clear() {
	c.Set("")
}

// Unlocked reports whether a master password is held.
func (c *Credential) Unlocked() bool {
	return c.Get() != ""
}
