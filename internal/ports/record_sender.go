package ports

import (
	"context"

	"github.com/bft-labs/propship/internal/domain"
)

// RecordSender transmits one record set to the receiving side.
// Returns nil on success. Implementations must not retry internally.
type RecordSender interface {
	Send(ctx context.Context, rs *domain.RecordSet) error
}

// RecordSenderFunc adapts a function to RecordSender.
type RecordSenderFunc func(ctx context.Context, rs *domain.RecordSet) error

// Send calls f.
func (f RecordSenderFunc) Send(ctx context.Context, rs *domain.RecordSet) error {
	return f(ctx, rs)
}
