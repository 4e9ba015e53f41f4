// Package ports defines the interfaces that connect the propship components.
//
// The watcher depends on a [RecordSender] rather than on the network client,
// and connection workers depend on a [RecordStore] rather than on the
// destination directory. Tests substitute both.
package ports
