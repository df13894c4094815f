package compress

import (
	"slices"
	"sync"
)

// Key is the dedup identity of a tracked file.
type Key struct {
	Name string
	Size int64
}

// Input is an image payload handed over by the presentation layer.
type Input struct {
	// Name is the display and addressing name, usually the base file name.
	Name string
	// Size is the byte size of the original content.
	Size int64
	// Source provides the raw content when the entry is compressed.
	Source Source
}

// TrackedFile is a snapshot of a queue entry.
type TrackedFile struct {
	Name   string
	Size   int64
	Source Source
	// Compressed is nil until a batch run succeeds for the entry.
	Compressed *Compressed
}

// Key returns the dedup identity of the entry.
func (f TrackedFile) Key() Key {
	return Key{Name: f.Name, Size: f.Size}
}

// Queue is an ordered set of tracked files. Insertion order is processing order
// and no two entries share a Key. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	entries []*TrackedFile
}

// NewQueue creates an empty Queue
func NewQueue() *Queue {
	return &Queue{}
}

// Add appends in unless an entry with the same name and size exists.
// It reports whether the input was added; duplicates are not an error.
func (q *Queue) Add(in Input) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := Key{Name: in.Name, Size: in.Size}
	if q.indexOf(key) >= 0 {
		return false
	}
	q.entries = append(q.entries, &TrackedFile{
		Name:   in.Name,
		Size:   in.Size,
		Source: in.Source,
	})
	return true
}

// Remove deletes the first entry called name, discarding its result.
func (q *Queue) Remove(name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := slices.IndexFunc(q.entries, func(f *TrackedFile) bool { return f.Name == name })
	if i < 0 {
		return false
	}
	q.entries = slices.Delete(q.entries, i, i+1)
	return true
}

// SetCompressed stores result on the entry identified by key. It takes the full
// Key rather than a name because names alone may repeat across entries. It
// reports false, leaving the queue untouched, when the entry was removed in the
// meantime.
func (q *Queue) SetCompressed(key Key, result *Compressed) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexOf(key)
	if i < 0 {
		return false
	}
	q.entries[i].Compressed = result
	return true
}

// ClearCompressed drops every stored result.
func (q *Queue) ClearCompressed() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, f := range q.entries {
		f.Compressed = nil
	}
}

// HasPending reports whether there is anything to run a batch over.
func (q *Queue) HasPending() bool {
	return q.Len() > 0
}

// HasCompressed reports whether at least one entry holds a result.
func (q *Queue) HasCompressed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return slices.ContainsFunc(q.entries, func(f *TrackedFile) bool { return f.Compressed != nil })
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.entries)
}

// Entries returns a snapshot of all entries in queue order.
func (q *Queue) Entries() []TrackedFile {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]TrackedFile, 0, len(q.entries))
	for _, f := range q.entries {
		out = append(out, *f)
	}
	return out
}

// Compressed returns a snapshot of the entries holding a result, in queue order.
func (q *Queue) Compressed() []TrackedFile {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []TrackedFile
	for _, f := range q.entries {
		if f.Compressed != nil {
			out = append(out, *f)
		}
	}
	return out
}

// Get returns the first entry called name.
func (q *Queue) Get(name string) (TrackedFile, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, f := range q.entries {
		if f.Name == name {
			return *f, true
		}
	}
	return TrackedFile{}, false
}

func (q *Queue) indexOf(key Key) int {
	return slices.IndexFunc(q.entries, func(f *TrackedFile) bool {
		return f.Name == key.Name && f.Size == key.Size
	})
}
