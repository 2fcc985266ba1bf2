package budget

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerRegisterAccumulates(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("src-a", "Ticket 4411", 1200)
	tracker.Register("src-b", "Runbook", 800)

	assert.Equal(t, 2000, tracker.Total())
}

func TestTrackerRegisterIsIdempotentPerID(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("src-a", "Ticket 4411", 1200)
	tracker.Register("src-a", "Ticket 4411", 1500)

	// Re-registration replaces the prior cost, it does not add to it.
	assert.Equal(t, 1500, tracker.Total())

	summary := tracker.Summary()
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, 1500, summary.Entries[0].TokenCost)
}

func TestTrackerDeregister(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("src-a", "A", 100)
	tracker.Register("src-b", "B", 200)

	tracker.Deregister("src-a")
	assert.Equal(t, 200, tracker.Total())

	// Unknown ids are a no-op.
	tracker.Deregister("src-x")
	assert.Equal(t, 200, tracker.Total())
}

func TestTrackerSummaryPreservesRegistrationOrder(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("src-c", "C", 1)
	tracker.Register("src-a", "A", 2)
	tracker.Register("src-b", "B", 3)
	tracker.Deregister("src-a")
	tracker.Register("src-a", "A again", 4)

	summary := tracker.Summary()
	require.Len(t, summary.Entries, 3)
	assert.Equal(t, "src-c", summary.Entries[0].ID)
	assert.Equal(t, "src-b", summary.Entries[1].ID)
	assert.Equal(t, "src-a", summary.Entries[2].ID)
	assert.Equal(t, 8, summary.Total)
}

func TestBudgetStatus(t *testing.T) {
	tracker := NewTracker()
	tracker.Register("src-a", "A", 75)

	status := tracker.BudgetStatus(100)
	assert.InDelta(t, 75.0, status.UsedPercent, 0.001)
	assert.False(t, status.OverBudget)

	tracker.Register("src-b", "B", 50)
	status = tracker.BudgetStatus(100)
	assert.True(t, status.OverBudget)

	// No ceiling configured means never over budget.
	assert.Equal(t, Status{}, tracker.BudgetStatus(0))
	assert.Equal(t, Status{}, tracker.BudgetStatus(-1))
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tracker := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			tracker.Register(id, id, 10)
			tracker.Total()
			tracker.Summary()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 160, tracker.Total())
}
