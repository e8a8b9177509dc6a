package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatch-sim/dispatch-sim/sim/internal/testutil"
)

func entry(o *Order, reason DeferralReason) QueueEntry {
	return QueueEntry{Order: o, DeferredAt: testutil.Minutes(30), Reason: reason}
}

func TestWaitQueue_Drain_OrdersByCreationAndEmpties(t *testing.T) {
	// GIVEN entries enqueued out of creation order, two sharing a timestamp
	wq := &WaitQueue{}
	wq.Enqueue(entry(testOrder("late", 10, "A", "B"), DeferredContention))
	wq.Enqueue(entry(testOrder("tieA", 5, "A", "B"), DeferredUncostable))
	wq.Enqueue(entry(testOrder("tieB", 5, "A", "B"), DeferredContention))
	wq.Enqueue(entry(testOrder("early", 1, "A", "B"), DeferredContention))

	// WHEN drained
	snapshot := wq.Drain()

	// THEN the snapshot is oldest-first with ties in enqueue order, and the queue is empty
	ids := make([]string, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.Order.ID
	}
	assert.Equal(t, []string{"early", "tieA", "tieB", "late"}, ids)
	assert.Equal(t, 0, wq.Len())
}

func TestWaitQueue_Drain_ReEnqueueDuringIterationIsNotRevisited(t *testing.T) {
	wq := &WaitQueue{}
	wq.Enqueue(entry(testOrder("1", 0, "A", "B"), DeferredContention))
	wq.Enqueue(entry(testOrder("2", 1, "A", "B"), DeferredContention))

	visited := 0
	for _, e := range wq.Drain() {
		visited++
		wq.Enqueue(e)
	}

	assert.Equal(t, 2, visited)
	assert.Equal(t, 2, wq.Len())
}

func TestWaitQueue_PopOldest(t *testing.T) {
	wq := &WaitQueue{}
	_, ok := wq.PopOldest()
	assert.False(t, ok)

	wq.Enqueue(entry(testOrder("b", 2, "A", "B"), DeferredContention))
	wq.Enqueue(entry(testOrder("a", 1, "A", "B"), DeferredContention))

	e, ok := wq.PopOldest()
	require.True(t, ok)
	assert.Equal(t, "a", e.Order.ID)
	assert.Equal(t, 1, wq.Len())
	assert.Equal(t, "b", wq.Items()[0].Order.ID)
}

func TestWaitQueue_String(t *testing.T) {
	wq := &WaitQueue{}
	wq.Enqueue(entry(testOrder("x", 0, "A", "B"), DeferredContention))
	wq.Enqueue(entry(testOrder("y", 0, "A", "B"), DeferredUncostable))

	assert.Equal(t, "[x(contention) y(uncostable)]", wq.String())
}
