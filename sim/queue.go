// Implements the WaitQueue, which holds orders deferred by the contention gate
// or because no unit could cost them.

package sim

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DeferralReason explains why an order entered the WaitQueue.
type DeferralReason string

const (
	DeferredContention DeferralReason = "contention"
	DeferredUncostable DeferralReason = "uncostable"
)

// QueueEntry is a deferred order, stamped with the instant it was deferred.
type QueueEntry struct {
	Order      *Order
	DeferredAt time.Time
	Reason     DeferralReason
}

// WaitQueue holds deferred orders. Retry passes always visit entries in order
// of original creation time.
type WaitQueue struct {
	queue []QueueEntry
}

// Enqueue adds an entry to the back of the queue.
func (wq *WaitQueue) Enqueue(e QueueEntry) {
	wq.queue = append(wq.queue, e)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range wq.queue {
		sb.WriteString(fmt.Sprintf("%s(%s)", e.Order.ID, e.Reason))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of entries in the queue.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// Items returns the queue contents. Callers MUST NOT append to or reslice it.
func (wq *WaitQueue) Items() []QueueEntry {
	return wq.queue
}

// sortByCreation orders entries by original order timestamp; equal timestamps
// keep their current relative order.
func (wq *WaitQueue) sortByCreation() {
	sort.SliceStable(wq.queue, func(i, j int) bool {
		return wq.queue[i].Order.Timestamp.Before(wq.queue[j].Order.Timestamp)
	})
}

// Drain sorts the queue by creation time, empties it, and returns the former
// contents. A retry pass iterates the returned snapshot and re-enqueues what
// it cannot place, which bounds each pass by the queue size at its start.
func (wq *WaitQueue) Drain() []QueueEntry {
	wq.sortByCreation()
	snapshot := wq.queue
	wq.queue = nil
	return snapshot
}

// PopOldest removes and returns the entry with the earliest creation time.
func (wq *WaitQueue) PopOldest() (QueueEntry, bool) {
	if len(wq.queue) == 0 {
		return QueueEntry{}, false
	}
	wq.sortByCreation()
	e := wq.queue[0]
	wq.queue = wq.queue[1:]
	return e, true
}
