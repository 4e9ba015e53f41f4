package props

import (
	"io"
	"strings"

	"github.com/bft-labs/propship/internal/domain"
)

// Render serializes rs as data-file text, one entry per line.
// Entries are emitted in key order.
func Render(rs *domain.RecordSet) string {
	var b strings.Builder
	for _, e := range rs.Sorted() {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo writes the rendered form of rs to w.
func WriteTo(w io.Writer, rs *domain.RecordSet) (int64, error) {
	n, err := io.WriteString(w, Render(rs))
	return int64(n), err
}
