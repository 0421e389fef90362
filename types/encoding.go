package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// EncodingVersion is the first byte of every canonical encoding. It changes
// whenever the byte layout of any encoded structure changes.
const EncodingVersion byte = 1

// Domain tags separate the hash preimages of different structures.
const (
	domainHeader = "bridge/header"
	domainTx     = "bridge/tx"
	domainSign   = "bridge/sign"
	domainLeaf   = "bridge/leaf"

	domainRelayers = "bridge/relayers"
)

var errShortBuffer = errors.New("canonical encoding: unexpected end of input")

// canonicalEncoder writes the one byte layout used for hashing and storage:
//
//	version | domain | fields...
//
// Integers are 8-byte big-endian, byte strings and strings are
// uvarint-length-prefixed, times are Unix nanoseconds.
type canonicalEncoder struct {
	buf bytes.Buffer
}

func newCanonicalEncoder(domain string) *canonicalEncoder {
	e := &canonicalEncoder{}
	e.buf.WriteByte(EncodingVersion)
	e.writeString(domain)
	return e
}

func (e *canonicalEncoder) writeUint64(v uint64) {
	var bz [8]byte
	binary.BigEndian.PutUint64(bz[:], v)
	e.buf.Write(bz[:])
}

func (e *canonicalEncoder) writeInt64(v int64) {
	e.writeUint64(uint64(v))
}

func (e *canonicalEncoder) writeBytes(bz []byte) {
	var lenBz [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBz[:], uint64(len(bz)))
	e.buf.Write(lenBz[:n])
	e.buf.Write(bz)
}

func (e *canonicalEncoder) writeString(s string) {
	e.writeBytes([]byte(s))
}

func (e *canonicalEncoder) writeTime(t time.Time) {
	e.writeInt64(t.UnixNano())
}

func (e *canonicalEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// canonicalDecoder reads what canonicalEncoder wrote. The first error sticks;
// later reads return zero values.
type canonicalDecoder struct {
	bz  []byte
	err error
}

func newCanonicalDecoder(bz []byte, domain string) *canonicalDecoder {
	d := &canonicalDecoder{bz: bz}
	if len(bz) == 0 {
		d.err = errShortBuffer
		return d
	}
	if bz[0] != EncodingVersion {
		d.err = fmt.Errorf("canonical encoding: unsupported version %d", bz[0])
		return d
	}
	d.bz = bz[1:]
	if got := d.readString(); d.err == nil && got != domain {
		d.err = fmt.Errorf("canonical encoding: expected domain %q, got %q", domain, got)
	}
	return d
}

func (d *canonicalDecoder) readUint64() uint64 {
	if d.err != nil {
		return 0
	}
	if len(d.bz) < 8 {
		d.err = errShortBuffer
		return 0
	}
	v := binary.BigEndian.Uint64(d.bz[:8])
	d.bz = d.bz[8:]
	return v
}

func (d *canonicalDecoder) readInt64() int64 {
	return int64(d.readUint64())
}

func (d *canonicalDecoder) readBytes() []byte {
	if d.err != nil {
		return nil
	}
	l, n := binary.Uvarint(d.bz)
	if n <= 0 {
		d.err = errShortBuffer
		return nil
	}
	d.bz = d.bz[n:]
	if uint64(len(d.bz)) < l {
		d.err = errShortBuffer
		return nil
	}
	if l == 0 {
		return nil
	}
	out := make([]byte, l)
	copy(out, d.bz[:l])
	d.bz = d.bz[l:]
	return out
}

func (d *canonicalDecoder) readString() string {
	return string(d.readBytes())
}

func (d *canonicalDecoder) readTime() time.Time {
	return time.Unix(0, d.readInt64()).UTC()
}

// finish returns the sticky error, or an error if input remains.
func (d *canonicalDecoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.bz) != 0 {
		return fmt.Errorf("canonical encoding: %d trailing bytes", len(d.bz))
	}
	return nil
}
