package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// Wire types understood by this package. Fixed width fields are skipped by
// the Decoder but never produced by the Append helpers.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// AppendVarint appends a varint field. Following proto3 semantics a zero
// value is not written at all.
func AppendVarint(buf []byte, field int, v uint64) []byte {
	if v == 0 {
		return buf
	}
	buf = append(buf, proto.EncodeVarint(uint64(field)<<3|wireVarint)...)
	return append(buf, proto.EncodeVarint(v)...)
}

// AppendInt64 appends a varint field holding a two's complement int64.
func AppendInt64(buf []byte, field int, v int64) []byte {
	return AppendVarint(buf, field, uint64(v))
}

// AppendBool appends a varint field holding a bool. False is not written.
func AppendBool(buf []byte, field int, v bool) []byte {
	if !v {
		return buf
	}
	return AppendVarint(buf, field, 1)
}

// AppendBytes appends a length-delimited field. Empty payloads are not
// written.
func AppendBytes(buf []byte, field int, b []byte) []byte {
	if len(b) == 0 {
		return buf
	}
	buf = append(buf, proto.EncodeVarint(uint64(field)<<3|wireBytes)...)
	buf = append(buf, proto.EncodeVarint(uint64(len(b)))...)
	return append(buf, b...)
}

// AppendString appends a length-delimited field holding a string.
func AppendString(buf []byte, field int, s string) []byte {
	return AppendBytes(buf, field, []byte(s))
}

// Decoder walks fields of an encoded buffer in order. Usage:
//
//	d := codec.NewDecoder(data)
//	for d.Next() {
//		switch d.Field() {
//		case 1:
//			x.Name = d.String()
//		}
//	}
//	return d.Err()
//
// Unknown fields are skipped. Reading a value with the wrong wire type
// poisons the decoder and surfaces through Err.
type Decoder struct {
	buf    []byte
	err    error
	field  uint64
	wire   uint64
	varint uint64
	bytes  []byte
}

func NewDecoder(data []byte) *Decoder {
	return &Decoder{buf: data}
}

// Next advances to the next field. It returns false at the end of the
// buffer or on a malformed encoding.
func (d *Decoder) Next() bool {
	if d.err != nil || len(d.buf) == 0 {
		return false
	}
	tag, n := proto.DecodeVarint(d.buf)
	if n == 0 {
		d.err = errors.New("codec: truncated field tag")
		return false
	}
	d.buf = d.buf[n:]
	d.field = tag >> 3
	d.wire = tag & 7
	d.varint = 0
	d.bytes = nil

	switch d.wire {
	case wireVarint:
		v, n := proto.DecodeVarint(d.buf)
		if n == 0 {
			d.err = errors.New("codec: truncated varint value")
			return false
		}
		d.varint = v
		d.buf = d.buf[n:]
	case wireBytes:
		l, n := proto.DecodeVarint(d.buf)
		if n == 0 || uint64(len(d.buf)-n) < l {
			d.err = errors.New("codec: truncated length-delimited value")
			return false
		}
		d.bytes = d.buf[n : n+int(l)]
		d.buf = d.buf[n+int(l):]
	case wireFixed64:
		if len(d.buf) < 8 {
			d.err = errors.New("codec: truncated fixed64 value")
			return false
		}
		d.buf = d.buf[8:]
	case wireFixed32:
		if len(d.buf) < 4 {
			d.err = errors.New("codec: truncated fixed32 value")
			return false
		}
		d.buf = d.buf[4:]
	default:
		d.err = errors.Errorf("codec: unsupported wire type %d", d.wire)
		return false
	}
	return true
}

// Field returns the number of the current field.
func (d *Decoder) Field() uint64 {
	return d.field
}

// Varint returns the current field value as uint64.
func (d *Decoder) Varint() uint64 {
	if d.wire != wireVarint {
		d.fail("varint")
		return 0
	}
	return d.varint
}

// Int64 returns the current field value as int64.
func (d *Decoder) Int64() int64 {
	return int64(d.Varint())
}

// Bool returns the current field value as bool.
func (d *Decoder) Bool() bool {
	return d.Varint() != 0
}

// Bytes returns a copy of the current length-delimited field value.
func (d *Decoder) Bytes() []byte {
	if d.wire != wireBytes {
		d.fail("bytes")
		return nil
	}
	if len(d.bytes) == 0 {
		return nil
	}
	return append([]byte(nil), d.bytes...)
}

// String returns the current length-delimited field value as a string.
func (d *Decoder) String() string {
	if d.wire != wireBytes {
		d.fail("string")
		return ""
	}
	return string(d.bytes)
}

// Err returns the first error hit while decoding, if any.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) fail(want string) {
	if d.err == nil {
		d.err = errors.Errorf("codec: field %d read as %s but has wire type %d",
			d.field, want, d.wire)
	}
}
