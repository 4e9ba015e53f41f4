package props

import (
	"fmt"
	"regexp"

	"github.com/bft-labs/propship/internal/domain"
)

// KeyFilter keeps entries whose key fully matches a pattern.
type KeyFilter struct {
	pattern string
	re      *regexp.Regexp
}

// NewKeyFilter compiles pattern anchored at both ends.
// An invalid pattern is reported here so callers fail at startup.
func NewKeyFilter(pattern string) (*KeyFilter, error) {
	// Validate the bare pattern first: wrapping can balance a stray ")(".
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, fmt.Errorf("compile filter pattern %q: %w", pattern, err)
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile filter pattern %q: %w", pattern, err)
	}
	return &KeyFilter{pattern: pattern, re: re}, nil
}

// Pattern returns the pattern as configured.
func (f *KeyFilter) Pattern() string {
	return f.pattern
}

// Match reports whether key fully matches the pattern.
func (f *KeyFilter) Match(key string) bool {
	return f.re.MatchString(key)
}

// Apply drops every entry of rs whose key does not match and returns rs.
// The result may be empty.
func (f *KeyFilter) Apply(rs *domain.RecordSet) *domain.RecordSet {
	for k := range rs.Entries {
		if !f.Match(k) {
			rs.Delete(k)
		}
	}
	return rs
}
