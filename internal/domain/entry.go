package domain

// Entry is a single key/value pair parsed from a data file line.
//
// Key retains the delimiter that separated it from Value, so "name=bob"
// yields Key "name=" and Value "bob". Rendering is therefore Key+Value.
type Entry struct {
	Key   string
	Value string
}

// String renders the entry as it appears in a data file, without newline.
func (e Entry) String() string {
	return e.Key + e.Value
}
