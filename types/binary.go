package types

import "encoding/hex"

// BinaryValue is an immutable byte string, distinct from the UTF-8 StrValue.
// Printed in the canonical "~XX~XX~..." hex-escape form used by the dump
// format and decompiler.
type BinaryValue struct {
	data []byte
}

// NewBinary copies b into a new immutable binary value.
func NewBinary(b []byte) BinaryValue {
	cp := make([]byte, len(b))
	copy(cp, b)
	return BinaryValue{data: cp}
}

func (b BinaryValue) Type() TypeCode {
	return TYPE_BINARY
}

func (b BinaryValue) String() string {
	var out []byte
	for _, c := range b.data {
		out = append(out, '~')
		out = append(out, []byte(hex.EncodeToString([]byte{c}))...)
	}
	return string(out)
}

func (b BinaryValue) Equal(other Value) bool {
	o, ok := other.(BinaryValue)
	if !ok || len(b.data) != len(o.data) {
		return false
	}
	for i := range b.data {
		if b.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (b BinaryValue) Truthy() bool {
	return len(b.data) > 0
}

// Bytes returns a copy of the underlying bytes.
func (b BinaryValue) Bytes() []byte {
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp
}

// Len returns the byte length.
func (b BinaryValue) Len() int {
	return len(b.data)
}
