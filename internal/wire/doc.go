// Package wire frames record sets for transmission between the propship
// client and server.
//
// Frame layout (big-endian):
//
//	magic    4 bytes  "PSHP"
//	version  1 byte
//	flags    1 byte   bit0: body is snappy-compressed
//	length   4 bytes  body length as transmitted
//	body     length bytes
//	crc32c   4 bytes  Castagnoli CRC over header and body
//
// The decompressed body is:
//
//	nameLen u16, name, count u32, count * (keyLen u32, key, valueLen u32, value)
package wire
