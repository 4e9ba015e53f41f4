package domain

import (
	"path/filepath"
	"sort"
)

// RecordSet is the parsed content of one data file.
// Name is a base file name, never a path; only the base name crosses the wire.
type RecordSet struct {
	Name    string
	Entries map[string]string
}

// NewRecordSet creates an empty set named after the base of path.
func NewRecordSet(path string) *RecordSet {
	name := ""
	if path != "" {
		name = filepath.Base(path)
	}
	return &RecordSet{
		Name:    name,
		Entries: make(map[string]string),
	}
}

// Put stores an entry; a later entry with the same key replaces the earlier one.
func (r *RecordSet) Put(e Entry) {
	if r.Entries == nil {
		r.Entries = make(map[string]string)
	}
	r.Entries[e.Key] = e.Value
}

// Delete removes key from the set.
func (r *RecordSet) Delete(key string) {
	delete(r.Entries, key)
}

// Len returns the number of entries.
func (r *RecordSet) Len() int {
	return len(r.Entries)
}

// Empty returns true if the set has no entries.
func (r *RecordSet) Empty() bool {
	return len(r.Entries) == 0
}

// Keys returns the keys in ascending order.
func (r *RecordSet) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for k := range r.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sorted returns the entries ordered by key.
func (r *RecordSet) Sorted() []Entry {
	keys := r.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		out = append(out, Entry{Key: k, Value: r.Entries[k]})
	}
	return out
}
