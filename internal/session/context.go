// Package session tracks the campaign the process is running, for readers
// that must not wait on the engine's tick lock.
package session

import (
	"sync"
	"time"
)

// Context holds the name and clock of the running campaign.
type Context struct {
	mu      sync.RWMutex
	name    string
	clock   int64
	started time.Time
}

// NewContext creates a Context with no campaign loaded.
func NewContext() *Context {
	return &Context{started: time.Now()}
}

// Campaign returns the running campaign and its clock. The name is empty
// before SetCampaign.
func (c *Context) Campaign() (name string, clock int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name, c.clock
}

// SetCampaign records the running campaign and its clock.
func (c *Context) SetCampaign(name string, clock int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	c.clock = clock
}

// Uptime returns how long the session has been running.
func (c *Context) Uptime() time.Duration {
	return time.Since(c.started)
}
