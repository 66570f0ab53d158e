package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func notification(id string, read bool) Notification {
	return Notification{ID: id, Message: "msg " + id, IsRead: read}
}

func ids(list []Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestCenter_Reset(t *testing.T) {
	c := NewCenter()
	c.Reset([]Notification{notification("1", true), notification("2", false), notification("1", false)})

	assert.Equal(t, []string{"1", "2"}, ids(c.List()))
	assert.Equal(t, 1, c.Unread())
}

func TestCenter_Add_dedup(t *testing.T) {
	c := NewCenter()
	c.Reset([]Notification{notification("1", false)})

	// the channel may redeliver or overlap the initial query result
	assert.False(t, c.Add(notification("1", false)))
	assert.True(t, c.Add(notification("2", false)))
	assert.False(t, c.Add(notification("2", false)))

	assert.Equal(t, []string{"2", "1"}, ids(c.List()))
	assert.Equal(t, 2, c.Unread())
}

func TestCenter_Add_prepends(t *testing.T) {
	c := NewCenter()
	for i := 1; i <= 5; i++ {
		c.Add(notification(fmt.Sprintf("%d", i), false))
	}
	assert.Equal(t, []string{"5", "4", "3", "2", "1"}, ids(c.List()))
}

func TestCenter_MarkRead(t *testing.T) {
	c := NewCenter()
	c.Reset([]Notification{notification("1", false), notification("2", false)})

	c.MarkRead("1")
	assert.Equal(t, 1, c.Unread())
	c.MarkRead("missing") // no-op
	assert.Equal(t, 1, c.Unread())

	c.MarkAllRead()
	assert.Equal(t, 0, c.Unread())
}

// mark-read must keep working against entries added after a prepend shifted
// the indices.
func TestCenter_MarkRead_afterPrepend(t *testing.T) {
	c := NewCenter()
	c.Reset([]Notification{notification("1", false)})
	c.Add(notification("2", false))

	c.MarkRead("1")
	list := c.List()
	assert.Equal(t, []string{"2", "1"}, ids(list))
	assert.False(t, list[0].IsRead)
	assert.True(t, list[1].IsRead)
}
