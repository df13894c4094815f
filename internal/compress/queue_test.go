package compress

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
)

func names(entries []TrackedFile) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestQueue_AddDeduplicatesByNameAndSize(t *testing.T) {
	q := NewQueue()

	if !q.Add(Input{Name: "a.png", Size: 10}) {
		t.Error("Expected first add to succeed")
	}
	if q.Add(Input{Name: "a.png", Size: 10}) {
		t.Error("Expected duplicate add to be dropped")
	}
	if !q.Add(Input{Name: "a.png", Size: 11}) {
		t.Error("Expected same name with different size to be added")
	}
	if !q.Add(Input{Name: "b.png", Size: 10}) {
		t.Error("Expected different name with same size to be added")
	}

	if q.Len() != 3 {
		t.Errorf("Expected 3 entries, got %d", q.Len())
	}
}

func TestQueue_NeverHoldsDuplicateKeys(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	q := NewQueue()

	for i := 0; i < 500; i++ {
		in := Input{Name: fmt.Sprintf("img%d.jpg", rng.Intn(10)), Size: int64(rng.Intn(5))}
		before := q.Len()
		_, exists := q.Get(in.Name)
		added := q.Add(in)
		if !added && q.Len() != before {
			t.Fatalf("Duplicate add changed length from %d to %d", before, q.Len())
		}
		if rng.Intn(4) == 0 && exists {
			q.Remove(in.Name)
		}
	}

	seen := map[Key]bool{}
	for _, e := range q.Entries() {
		if seen[e.Key()] {
			t.Fatalf("Duplicate key in queue: %v", e.Key())
		}
		seen[e.Key()] = true
	}
}

func TestQueue_RemovePreservesOrder(t *testing.T) {
	q := NewQueue()
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg", "5.jpg"} {
		q.Add(Input{Name: name, Size: 1})
	}

	if !q.Remove("2.jpg") {
		t.Error("Expected remove of existing entry to succeed")
	}
	if q.Remove("missing.jpg") {
		t.Error("Expected remove of missing entry to be a no-op")
	}
	q.Remove("5.jpg")
	q.Add(Input{Name: "6.jpg", Size: 1})

	expected := []string{"1.jpg", "3.jpg", "4.jpg", "6.jpg"}
	if got := names(q.Entries()); !slices.Equal(got, expected) {
		t.Errorf("Expected order %v, got %v", expected, got)
	}
}

func TestQueue_RemoveMatchesFirstByName(t *testing.T) {
	q := NewQueue()
	q.Add(Input{Name: "a.png", Size: 1})
	q.Add(Input{Name: "a.png", Size: 2})

	q.Remove("a.png")

	entries := q.Entries()
	if len(entries) != 1 || entries[0].Size != 2 {
		t.Errorf("Expected only the second a.png to remain, got %+v", entries)
	}
}

func TestQueue_SetCompressed(t *testing.T) {
	q := NewQueue()
	q.Add(Input{Name: "a.png", Size: 1})
	q.Add(Input{Name: "b.png", Size: 2})

	if q.HasCompressed() {
		t.Error("Expected no compressed entries initially")
	}

	result := &Compressed{Data: []byte{1}, Size: 1, Format: FormatJPEG}
	if !q.SetCompressed(Key{Name: "b.png", Size: 2}, result) {
		t.Error("Expected SetCompressed on existing entry to succeed")
	}
	if !q.HasCompressed() {
		t.Error("Expected HasCompressed after SetCompressed")
	}

	compressed := q.Compressed()
	if len(compressed) != 1 || compressed[0].Name != "b.png" || compressed[0].Compressed != result {
		t.Errorf("Expected b.png to hold the result, got %+v", compressed)
	}

	q.ClearCompressed()
	if q.HasCompressed() {
		t.Error("Expected ClearCompressed to drop every result")
	}
}

func TestQueue_SetCompressedAfterRemoveIsNoop(t *testing.T) {
	q := NewQueue()
	q.Add(Input{Name: "a.png", Size: 1})
	q.Remove("a.png")

	if q.SetCompressed(Key{Name: "a.png", Size: 1}, &Compressed{}) {
		t.Error("Expected SetCompressed on removed entry to report false")
	}
	if q.Len() != 0 || q.HasCompressed() {
		t.Error("Expected queue to stay empty")
	}
}

func TestQueue_RemoveDiscardsResult(t *testing.T) {
	q := NewQueue()
	q.Add(Input{Name: "a.png", Size: 1})
	q.SetCompressed(Key{Name: "a.png", Size: 1}, &Compressed{Size: 1})

	q.Remove("a.png")
	q.Add(Input{Name: "a.png", Size: 1})

	entry, ok := q.Get("a.png")
	if !ok {
		t.Fatal("Expected re-added entry")
	}
	if entry.Compressed != nil {
		t.Error("Expected re-added entry to have no result")
	}
}

func TestQueue_HasPending(t *testing.T) {
	q := NewQueue()
	if q.HasPending() {
		t.Error("Expected empty queue to have nothing pending")
	}
	q.Add(Input{Name: "a.png", Size: 1})
	if !q.HasPending() {
		t.Error("Expected queue with an entry to be pending")
	}
}

func TestQueue_EntriesIsSnapshot(t *testing.T) {
	q := NewQueue()
	q.Add(Input{Name: "a.png", Size: 1})

	entries := q.Entries()
	entries[0].Name = "changed.png"

	if _, ok := q.Get("a.png"); !ok {
		t.Error("Expected mutation of snapshot not to affect the queue")
	}
}
