package props

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/propship/internal/domain"
)

// LineKind is the classification of a single trimmed line.
type LineKind int

const (
	Unknown LineKind = iota
	Comment
	Invalid
	Equals
	Colon
)

// String returns a human-readable representation of the kind.
func (k LineKind) String() string {
	switch k {
	case Comment:
		return "Comment"
	case Invalid:
		return "Invalid"
	case Equals:
		return "Equals"
	case Colon:
		return "Colon"
	default:
		return "Unknown"
	}
}

// maxLineSize bounds a single data-file line.
const maxLineSize = 1 << 20

// Classify determines what a trimmed line holds. The checks run in a fixed
// order: comments first, then ambiguity, then the single-delimiter cases.
func Classify(line string) LineKind {
	if line == "" {
		return Unknown
	}
	if line[0] == '#' || line[0] == '!' {
		return Comment
	}

	colons := strings.Count(line, ":")
	equals := strings.Count(line, "=")

	switch {
	case colons > 1, equals > 1:
		return Invalid
	case colons == 1 && equals > 0:
		return Invalid
	case equals == 1 && colons > 0:
		return Invalid
	case equals == 1:
		return Equals
	case colons == 1:
		return Colon
	}
	return Unknown
}

// ParseLine parses one line into an entry. It returns false for comments,
// ambiguous lines and lines without a delimiter.
func ParseLine(line string) (domain.Entry, bool) {
	line = strings.TrimSpace(line)

	var sep string
	switch Classify(line) {
	case Equals:
		sep = "="
	case Colon:
		sep = ":"
	default:
		return domain.Entry{}, false
	}

	key, value, _ := strings.Cut(line, sep)
	return domain.Entry{Key: key + sep, Value: value}, true
}

// Parse reads every line of r into a record set called name.
// Duplicate keys keep the last value. It fails only if r fails.
func Parse(r io.Reader, name string) (*domain.RecordSet, error) {
	rs := domain.NewRecordSet(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		if e, ok := ParseLine(scanner.Text()); ok {
			rs.Put(e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return rs, nil
}

// ParseFile parses the file at path. The record set is named after the
// file's base name.
func ParseFile(path string) (*domain.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, path)
}
