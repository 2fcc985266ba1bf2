// Package budget implements a session-scoped token accumulator. UI-facing
// contributors (selected source rows, existing document content) register
// their token cost against it so the caller can judge whether a synthesis
// request is safe to issue. It is advisory only: nothing in the pipeline
// consults it before making a model call.
package budget

import "sync"

// Entry is one registered contributor.
type Entry struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	TokenCost int    `json:"token_cost"`
}

// Summary is a snapshot of the tracker's state.
type Summary struct {
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// Status reports usage against a configured ceiling.
type Status struct {
	UsedPercent float64 `json:"used_percent"`
	OverBudget  bool    `json:"over_budget"`
}

// Tracker accumulates token costs from independent contributors. All
// operations are constant-time map mutations under a single mutex, which is
// all a session-scoped structure needs.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]Entry
	order   []string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{entries: make(map[string]Entry)}
}

// Register adds a contributor. Registration is idempotent per id:
// re-registering replaces the prior cost rather than adding to it.
func (t *Tracker) Register(id, label string, tokenCost int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; !exists {
		t.order = append(t.order, id)
	}
	t.entries[id] = Entry{ID: id, Label: label, TokenCost: tokenCost}
}

// Deregister removes a contributor. Removing an unknown id is a no-op.
func (t *Tracker) Deregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[id]; !exists {
		return
	}
	delete(t.entries, id)
	for i, registered := range t.order {
		if registered == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Total returns the current accumulated token cost.
func (t *Tracker) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalLocked()
}

// Summary returns the total and all entries in registration order.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		entries = append(entries, t.entries[id])
	}
	return Summary{Total: t.totalLocked(), Entries: entries}
}

// BudgetStatus reports usage against a ceiling. A ceiling of zero or below
// means no ceiling is configured and nothing is ever over budget.
func (t *Tracker) BudgetStatus(ceiling int) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.totalLocked()
	if ceiling <= 0 {
		return Status{}
	}
	return Status{
		UsedPercent: float64(total) / float64(ceiling) * 100,
		OverBudget:  total > ceiling,
	}
}

func (t *Tracker) totalLocked() int {
	total := 0
	for _, e := range t.entries {
		total += e.TokenCost
	}
	return total
}
