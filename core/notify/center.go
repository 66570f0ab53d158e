package notify

import (
	"encoding/json"
	"sync"

	"github.com/darasahq/darasa/core/identity"
)

// Notification is a single entry of the notification badge/dropdown.
type Notification struct {
	ID        string          `json:"id"`
	User      identity.Ref    `json:"user"`
	Message   string          `json:"message"`
	IsRead    bool            `json:"isRead"`
	CreatedAt string          `json:"createdAt"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Center merges the initial notifications query with live subscription
// deliveries. The subscription channel may redeliver, and its first events
// can overlap the query result, so every inbound notification is
// deduplicated by ID.
type Center struct {
	mu   sync.Mutex
	list []Notification
	seen map[string]int // id -> index in list
}

func NewCenter() *Center {
	return &Center{seen: make(map[string]int)}
}

// Reset replaces held state with an initial query result.
func (c *Center) Reset(initial []Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.seen = make(map[string]int, len(initial))
	for _, n := range initial {
		if _, dup := c.seen[n.ID]; dup {
			continue
		}
		c.seen[n.ID] = len(c.list)
		c.list = append(c.list, n)
	}
}

// Add prepends a delivered notification, reporting false for a duplicate.
func (c *Center) Add(n Notification) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.seen[n.ID]; dup {
		return false
	}
	c.list = append([]Notification{n}, c.list...)
	for id, i := range c.seen {
		c.seen[id] = i + 1
	}
	c.seen[n.ID] = 0
	return true
}

func (c *Center) MarkRead(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i, ok := c.seen[id]; ok {
		c.list[i].IsRead = true
	}
}

func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.list {
		c.list[i].IsRead = true
	}
}

// Unread returns the badge count.
func (c *Center) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	for _, ntf := range c.list {
		if !ntf.IsRead {
			n++
		}
	}
	return n
}

// List returns the held notifications, newest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.list))
	copy(out, c.list)
	return out
}
