package props

import (
	"reflect"
	"strings"
	"testing"

	"github.com/bft-labs/propship/internal/domain"
)

func TestKeyFilter_Apply(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		entries map[string]string
		want    map[string]string
	}{
		{
			name:    "prefix pattern",
			pattern: "a.*",
			entries: map[string]string{"abc": "1", "xyz": "2"},
			want:    map[string]string{"abc": "1"},
		},
		{
			name:    "anchored on both ends",
			pattern: "b",
			entries: map[string]string{"abc": "1", "b": "2", "bb": "3"},
			want:    map[string]string{"b": "2"},
		},
		{
			name:    "alternation is fully anchored",
			pattern: "name=|port:",
			entries: map[string]string{"name=": "bob", "port:": "80", "username=": "x"},
			want:    map[string]string{"name=": "bob", "port:": "80"},
		},
		{
			name:    "nothing matches",
			pattern: "zzz",
			entries: map[string]string{"abc": "1"},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewKeyFilter(tt.pattern)
			if err != nil {
				t.Fatalf("NewKeyFilter(%q) error = %v", tt.pattern, err)
			}
			rs := &domain.RecordSet{Name: "f.properties", Entries: tt.entries}

			got := f.Apply(rs)
			if got != rs {
				t.Error("Apply() should filter in place and return the same set")
			}
			if !reflect.DeepEqual(got.Entries, tt.want) {
				t.Errorf("Apply() = %v, want %v", got.Entries, tt.want)
			}
		})
	}
}

func TestKeyFilter_EmptyResult(t *testing.T) {
	f, err := NewKeyFilter("name=")
	if err != nil {
		t.Fatalf("NewKeyFilter() error = %v", err)
	}
	rs, _ := Parse(strings.NewReader("age=30\n#name=bob\n"), "app.properties")

	if !f.Apply(rs).Empty() {
		t.Errorf("Apply() = %v, want empty", rs.Entries)
	}
}

func TestNewKeyFilter_Invalid(t *testing.T) {
	for _, pattern := range []string{"(", "a)(b", "[z-a]", `\`} {
		if _, err := NewKeyFilter(pattern); err == nil {
			t.Errorf("NewKeyFilter(%q) succeeded, want error", pattern)
		}
	}
}
