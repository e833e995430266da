package domain

import (
	"sync"
	"time"
)

// RefKind tags a queue reference as a solo player or a party.
type RefKind uint8

// Reference kinds.
const (
	RefPlayer RefKind = iota
	RefParty
)

// Ref identifies one queued candidate: a solo player or a whole party.
type Ref struct {
	Kind RefKind
	ID   string
}

// PlayerRef builds a solo player reference.
func PlayerRef(id PlayerID) Ref {
	return Ref{Kind: RefPlayer, ID: string(id)}
}

// PartyRef builds a party reference.
func PartyRef(id PartyID) Ref {
	return Ref{Kind: RefParty, ID: string(id)}
}

// QueueEntry is one waiting candidate, owned by the queue manager from
// admission until removal or consumption by a proposal.
type QueueEntry struct {
	Ref      Ref
	Category Category
	JoinedAt time.Time
}

// QueueManager holds the per-category ordered waiting lists. An identifier
// appears at most once across all category queues; re-adding moves it.
type QueueManager struct {
	mu      sync.RWMutex
	entries map[Ref]*QueueEntry
	players map[Category][]*QueueEntry
	parties map[Category][]*QueueEntry
	clock   func() time.Time
}

// NewQueueManager builds an empty queue manager. A nil clock defaults to
// time.Now.
func NewQueueManager(clock func() time.Time) *QueueManager {
	if clock == nil {
		clock = time.Now
	}
	return &QueueManager{
		entries: make(map[Ref]*QueueEntry),
		players: make(map[Category][]*QueueEntry),
		parties: make(map[Category][]*QueueEntry),
		clock:   clock,
	}
}

// Add admits ref to the category queue, evicting any stale entry for the
// same identifier first. atFront supports re-queue-with-priority.
func (q *QueueManager) Add(ref Ref, category Category, atFront bool) {
	if ref.ID == "" || category == CategoryNone {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	q.removeLocked(ref)

	entry := &QueueEntry{Ref: ref, Category: category, JoinedAt: q.clock()}
	q.entries[ref] = entry

	list := q.listFor(ref.Kind)
	if atFront {
		list[category] = append([]*QueueEntry{entry}, list[category]...)
	} else {
		list[category] = append(list[category], entry)
	}
}

// Remove drops ref from its queue. Removing a non-member is a no-op.
func (q *QueueManager) Remove(ref Ref) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(ref)
}

func (q *QueueManager) removeLocked(ref Ref) bool {
	entry, ok := q.entries[ref]
	if !ok {
		return false
	}
	delete(q.entries, ref)
	list := q.listFor(ref.Kind)
	queue := list[entry.Category]
	for i, queued := range queue {
		if queued == entry {
			list[entry.Category] = append(queue[:i:i], queue[i+1:]...)
			break
		}
	}
	return true
}

func (q *QueueManager) listFor(kind RefKind) map[Category][]*QueueEntry {
	if kind == RefParty {
		return q.parties
	}
	return q.players
}

// Entry returns the queue entry for ref.
func (q *QueueManager) Entry(ref Ref) (QueueEntry, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	entry, ok := q.entries[ref]
	if !ok {
		return QueueEntry{}, false
	}
	return *entry, true
}

// Players snapshots the solo queue for the category in insertion order.
func (q *QueueManager) Players(category Category) []QueueEntry {
	return q.snapshot(q.players, category)
}

// Parties snapshots the party queue for the category in insertion order.
func (q *QueueManager) Parties(category Category) []QueueEntry {
	return q.snapshot(q.parties, category)
}

func (q *QueueManager) snapshot(list map[Category][]*QueueEntry, category Category) []QueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	queue := list[category]
	out := make([]QueueEntry, 0, len(queue))
	for _, entry := range queue {
		out = append(out, *entry)
	}
	return out
}

// Len returns the number of queued candidates across all categories.
func (q *QueueManager) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.entries)
}

// Empty reports whether nothing is queued.
func (q *QueueManager) Empty() bool {
	return q.Len() == 0
}
