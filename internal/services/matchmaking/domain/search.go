package domain

import "sync"

// SearchMatrix is the inverted index from content identifier to the solo
// players currently searching for it. It exists so group assembly can
// answer "who wants content X right now" in O(bucket) instead of scanning
// every queue.
type SearchMatrix struct {
	mu      sync.RWMutex
	buckets map[ContentID]*searchBucket
}

// searchBucket keeps insertion order alongside O(1) membership.
type searchBucket struct {
	order   []PlayerID
	present map[PlayerID]struct{}
}

// NewSearchMatrix builds an empty search matrix.
func NewSearchMatrix() *SearchMatrix {
	return &SearchMatrix{buckets: make(map[ContentID]*searchBucket)}
}

// Add inserts the player under every content identifier in its requested
// set.
func (m *SearchMatrix) Add(id PlayerID, contents ContentSet) {
	if len(contents) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for contentID := range contents {
		bucket, ok := m.buckets[contentID]
		if !ok {
			bucket = &searchBucket{present: make(map[PlayerID]struct{})}
			m.buckets[contentID] = bucket
		}
		if _, exists := bucket.present[id]; exists {
			continue
		}
		bucket.present[id] = struct{}{}
		bucket.order = append(bucket.order, id)
	}
}

// Remove deletes the player from every content bucket in its requested
// set, dropping buckets that become empty.
func (m *SearchMatrix) Remove(id PlayerID, contents ContentSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for contentID := range contents {
		m.removeFromBucketLocked(contentID, id)
	}
}

// RemoveEverywhere deletes the player from every bucket it appears in,
// regardless of its current request set. Used when the set is no longer
// readable (player gone).
func (m *SearchMatrix) RemoveEverywhere(id PlayerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for contentID := range m.buckets {
		m.removeFromBucketLocked(contentID, id)
	}
}

func (m *SearchMatrix) removeFromBucketLocked(contentID ContentID, id PlayerID) {
	bucket, ok := m.buckets[contentID]
	if !ok {
		return
	}
	if _, exists := bucket.present[id]; !exists {
		return
	}
	delete(bucket.present, id)
	for i, queued := range bucket.order {
		if queued == id {
			bucket.order = append(bucket.order[:i:i], bucket.order[i+1:]...)
			break
		}
	}
	if len(bucket.present) == 0 {
		delete(m.buckets, contentID)
	}
}

// Bucket snapshots the searchers for a content identifier in insertion
// order.
func (m *SearchMatrix) Bucket(contentID ContentID) []PlayerID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.buckets[contentID]
	if !ok {
		return nil
	}
	out := make([]PlayerID, len(bucket.order))
	copy(out, bucket.order)
	return out
}

// Contains reports whether the player is searching for the content.
func (m *SearchMatrix) Contains(contentID ContentID, id PlayerID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bucket, ok := m.buckets[contentID]
	if !ok {
		return false
	}
	_, exists := bucket.present[id]
	return exists
}

// Contents lists the content identifiers with at least one searcher.
func (m *SearchMatrix) Contents() []ContentID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ContentID, 0, len(m.buckets))
	for contentID := range m.buckets {
		out = append(out, contentID)
	}
	return out
}

// Cleanup drops every searcher the live predicate rejects. Run on the
// full-update tick to bound growth from disconnects.
func (m *SearchMatrix) Cleanup(live func(PlayerID) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for contentID, bucket := range m.buckets {
		kept := bucket.order[:0]
		for _, id := range bucket.order {
			if live(id) {
				kept = append(kept, id)
			} else {
				delete(bucket.present, id)
			}
		}
		bucket.order = kept
		if len(bucket.present) == 0 {
			delete(m.buckets, contentID)
		}
	}
}
