package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"

	"github.com/bft-labs/propship/internal/domain"
)

const (
	// Version is the frame version written by this package.
	Version byte = 1

	// MaxFrameSize bounds the body length, both as transmitted and after
	// decompression.
	MaxFrameSize = 64 << 20

	// CompressThreshold is the encoded body size from which bodies are
	// snappy-compressed.
	CompressThreshold = 4 << 10

	headerSize = 10
	crcSize    = 4

	flagSnappy byte = 1 << 0
	knownFlags      = flagSnappy
)

var magic = [4]byte{'P', 'S', 'H', 'P'}

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Decoding errors.
var (
	ErrBadMagic           = errors.New("wire: bad magic")
	ErrUnsupportedVersion = errors.New("wire: unsupported version")
	ErrUnknownFlags       = errors.New("wire: unknown flags")
	ErrFrameTooLarge      = errors.New("wire: frame too large")
	ErrChecksumMismatch   = errors.New("wire: checksum mismatch")
	ErrMalformedBody      = errors.New("wire: malformed body")
)

// Encode writes rs to w as a single frame.
func Encode(w io.Writer, rs *domain.RecordSet) error {
	body, err := marshalBody(rs)
	if err != nil {
		return err
	}

	var flags byte
	if len(body) >= CompressThreshold {
		body = snappy.Encode(nil, body)
		flags |= flagSnappy
	}
	if len(body) > MaxFrameSize {
		return fmt.Errorf("encode %s: %w (%d bytes)", rs.Name, ErrFrameTooLarge, len(body))
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic[:])
	header[4] = Version
	header[5] = flags
	binary.BigEndian.PutUint32(header[6:10], uint32(len(body)))

	hasher := crc32.New(crc32cTable)
	hasher.Write(header)
	hasher.Write(body)

	trailer := make([]byte, crcSize)
	binary.BigEndian.PutUint32(trailer, hasher.Sum32())

	frame := make([]byte, 0, headerSize+len(body)+crcSize)
	frame = append(frame, header...)
	frame = append(frame, body...)
	frame = append(frame, trailer...)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Decode reads one frame from r. io.EOF is returned unwrapped when r ends
// cleanly before a new frame starts.
func Decode(r io.Reader) (*domain.RecordSet, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	if !bytes.Equal(header[0:4], magic[:]) {
		return nil, ErrBadMagic
	}
	if header[4] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header[4])
	}
	flags := header[5]
	if flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownFlags, flags)
	}
	length := binary.BigEndian.Uint32(header[6:10])
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	rest := make([]byte, int(length)+crcSize)
	if _, err := io.ReadFull(r, rest); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	body := rest[:length]

	hasher := crc32.New(crc32cTable)
	hasher.Write(header)
	hasher.Write(body)
	if binary.BigEndian.Uint32(rest[length:]) != hasher.Sum32() {
		return nil, ErrChecksumMismatch
	}

	if flags&flagSnappy != 0 {
		n, err := snappy.DecodedLen(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		if n > MaxFrameSize {
			return nil, fmt.Errorf("%w: %d bytes decompressed", ErrFrameTooLarge, n)
		}
		decoded, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		body = decoded
	}

	return unmarshalBody(body)
}

func marshalBody(rs *domain.RecordSet) ([]byte, error) {
	if len(rs.Name) > 0xFFFF {
		return nil, fmt.Errorf("encode: name too long (%d bytes)", len(rs.Name))
	}

	var buf bytes.Buffer
	var scratch [4]byte

	binary.BigEndian.PutUint16(scratch[:2], uint16(len(rs.Name)))
	buf.Write(scratch[:2])
	buf.WriteString(rs.Name)

	binary.BigEndian.PutUint32(scratch[:], uint32(rs.Len()))
	buf.Write(scratch[:])

	for _, e := range rs.Sorted() {
		binary.BigEndian.PutUint32(scratch[:], uint32(len(e.Key)))
		buf.Write(scratch[:])
		buf.WriteString(e.Key)
		binary.BigEndian.PutUint32(scratch[:], uint32(len(e.Value)))
		buf.Write(scratch[:])
		buf.WriteString(e.Value)
	}
	return buf.Bytes(), nil
}

// bodyReader walks a body with bounds checks.
type bodyReader struct {
	data []byte
	off  int
}

func (b *bodyReader) take(n int) ([]byte, error) {
	if n < 0 || len(b.data)-b.off < n {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrMalformedBody, b.off)
	}
	out := b.data[b.off : b.off+n]
	b.off += n
	return out, nil
}

func (b *bodyReader) uint16() (int, error) {
	p, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(p)), nil
}

func (b *bodyReader) uint32() (int, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(p)), nil
}

func (b *bodyReader) string32() (string, error) {
	n, err := b.uint32()
	if err != nil {
		return "", err
	}
	p, err := b.take(n)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func unmarshalBody(body []byte) (*domain.RecordSet, error) {
	br := &bodyReader{data: body}

	nameLen, err := br.uint16()
	if err != nil {
		return nil, err
	}
	name, err := br.take(nameLen)
	if err != nil {
		return nil, err
	}
	count, err := br.uint32()
	if err != nil {
		return nil, err
	}
	// Each entry needs at least 8 bytes of length prefixes.
	if count > (len(body)-br.off)/8 {
		return nil, fmt.Errorf("%w: entry count %d exceeds body", ErrMalformedBody, count)
	}

	rs := &domain.RecordSet{Name: string(name), Entries: make(map[string]string, count)}
	for i := 0; i < count; i++ {
		key, err := br.string32()
		if err != nil {
			return nil, err
		}
		value, err := br.string32()
		if err != nil {
			return nil, err
		}
		rs.Entries[key] = value
	}
	if br.off != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedBody, len(body)-br.off)
	}
	return rs, nil
}
