// Package domain contains the core entities shared by the propship client and
// server.
//
// It has no dependencies on infrastructure (network, file system, logging).
//
// # Entities
//
//   - [Entry]: one key/value line of a data file. The key keeps its delimiter.
//   - [RecordSet]: the entries of one data file together with its base name.
package domain
