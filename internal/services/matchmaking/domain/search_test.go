package domain

import "testing"

func TestSearchMatrixAddCoversRequestSet(t *testing.T) {
	t.Parallel()

	m := NewSearchMatrix()
	set := NewContentSet("deadmines", "stockade")
	m.Add("p1", set)

	for id := range set {
		if !m.Contains(id, "p1") {
			t.Fatalf("expected p1 under %s", id)
		}
	}
	if m.Contains("gnomeregan", "p1") {
		t.Fatal("p1 should not appear under content it never requested")
	}
}

func TestSearchMatrixRemoveDropsEverywhere(t *testing.T) {
	t.Parallel()

	m := NewSearchMatrix()
	set := NewContentSet("deadmines", "stockade")
	m.Add("p1", set)
	m.Remove("p1", set)

	if m.Contains("deadmines", "p1") || m.Contains("stockade", "p1") {
		t.Fatal("p1 should appear in no bucket after removal")
	}
	if got := len(m.Contents()); got != 0 {
		t.Fatalf("empty buckets should be deleted, got %d", got)
	}
}

func TestSearchMatrixBucketKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	m := NewSearchMatrix()
	m.Add("p1", NewContentSet("deadmines"))
	m.Add("p2", NewContentSet("deadmines"))
	m.Add("p3", NewContentSet("deadmines"))
	m.Remove("p2", NewContentSet("deadmines"))

	bucket := m.Bucket("deadmines")
	if len(bucket) != 2 || bucket[0] != "p1" || bucket[1] != "p3" {
		t.Fatalf("bucket = %v, want [p1 p3]", bucket)
	}
}

func TestSearchMatrixRemoveEverywhere(t *testing.T) {
	t.Parallel()

	m := NewSearchMatrix()
	m.Add("p1", NewContentSet("deadmines", "stockade", "gnomeregan"))
	m.RemoveEverywhere("p1")

	if got := len(m.Contents()); got != 0 {
		t.Fatalf("contents = %d, want 0", got)
	}
}

func TestSearchMatrixCleanupDropsDeadEntries(t *testing.T) {
	t.Parallel()

	m := NewSearchMatrix()
	m.Add("p1", NewContentSet("deadmines"))
	m.Add("p2", NewContentSet("deadmines"))

	m.Cleanup(func(id PlayerID) bool { return id == "p2" })

	bucket := m.Bucket("deadmines")
	if len(bucket) != 1 || bucket[0] != "p2" {
		t.Fatalf("bucket = %v, want [p2]", bucket)
	}
}
