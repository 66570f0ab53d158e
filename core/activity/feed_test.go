package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func entry(id, ts string) Activity {
	return Activity{ID: id, Type: "MDB Reply", Status: "Pending", Timestamp: ts}
}

func ids(list []Activity) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestFeed_Reset_ordersNewestFirst(t *testing.T) {
	f := NewFeed()
	f.Reset([]Activity{
		entry("a", "2024-05-01T10:00:00Z"),
		entry("b", "2024-05-01T12:00:00Z"),
		entry("c", "2024-05-01T11:00:00Z"),
	})
	assert.Equal(t, []string{"b", "c", "a"}, ids(f.List()))
}

func TestFeed_Add_dedup(t *testing.T) {
	f := NewFeed()
	f.Reset([]Activity{entry("a", "2024-05-01T10:00:00Z")})

	assert.False(t, f.Add(entry("a", "2024-05-01T10:00:00Z")))
	assert.True(t, f.Add(entry("b", "2024-05-01T12:00:00Z")))
	assert.False(t, f.Add(entry("b", "2024-05-01T12:00:00Z")))

	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"b", "a"}, ids(f.List()))
}

func TestFeed_Add_keepsOrdering(t *testing.T) {
	f := NewFeed()
	f.Add(entry("new", "2024-05-02T09:00:00Z"))
	f.Add(entry("old", "2024-05-01T09:00:00Z"))
	assert.Equal(t, []string{"new", "old"}, ids(f.List()))
}
