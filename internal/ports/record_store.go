package ports

import "github.com/bft-labs/propship/internal/domain"

// RecordStore persists record sets received from a connection.
type RecordStore interface {
	// Write stores rs under rs.Name. It returns domain.ErrFileExists if a
	// file with that name is already present.
	Write(rs *domain.RecordSet) error
}
