// Package client implements the sending side of propship: a directory
// watcher that parses, filters and ships new data files, and the TCP
// connection they are shipped over.
package client
