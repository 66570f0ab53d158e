package activity

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/darasahq/darasa/core/identity"
)

// Activity is one entry of the activity log.
type Activity struct {
	ID        string          `json:"id"`
	User      identity.Ref    `json:"user"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"` // RFC3339
	Status    string          `json:"status"`    // Completed | Pending | In Progress | Overdue
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// Stats are the dashboard aggregates.
type Stats struct {
	TotalActivities     int         `json:"totalActivities"`
	CompletedActivities int         `json:"completedActivities"`
	PendingActivities   int         `json:"pendingActivities"`
	PerType             []TypeCount `json:"perType"`
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Feed accumulates the activity query result and live-logged activities,
// deduplicated by ID and ordered newest first.
type Feed struct {
	mu   sync.Mutex
	list []Activity
	seen map[string]bool
}

func NewFeed() *Feed {
	return &Feed{seen: make(map[string]bool)}
}

// Reset replaces held state with an initial query result.
func (f *Feed) Reset(initial []Activity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = nil
	f.seen = make(map[string]bool, len(initial))
	for _, a := range initial {
		if f.seen[a.ID] {
			continue
		}
		f.seen[a.ID] = true
		f.list = append(f.list, a)
	}
	sortNewestFirst(f.list)
}

// Add inserts a delivered activity, reporting false for a duplicate.
func (f *Feed) Add(a Activity) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[a.ID] {
		return false
	}
	f.seen[a.ID] = true
	f.list = append(f.list, a)
	sortNewestFirst(f.list)
	return true
}

// List returns the held activities, newest first.
func (f *Feed) List() []Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Activity, len(f.list))
	copy(out, f.list)
	return out
}

func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.list)
}

// RFC3339 timestamps in one zone sort lexicographically.
func sortNewestFirst(list []Activity) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}
