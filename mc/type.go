package mc

import (
	"errors"
	"io"
)

// MaxVarIntLen is the longest encoding of a 32-bit VarInt.
const MaxVarIntLen = 5

// A Field is both FieldEncoder and FieldDecoder
type Field interface {
	FieldEncoder
	FieldDecoder
}

// A FieldEncoder can be encode as minecraft protocol used.
type FieldEncoder interface {
	Encode() []byte
}

// A FieldDecoder can Decode from minecraft protocol
type FieldDecoder interface {
	Decode(r DecodeReader) error
}

//DecodeReader is both io.Reader and io.ByteReader
type DecodeReader interface {
	io.ByteReader
	io.Reader
}

type (
	// UnsignedShort is unsigned 16-bit integer
	UnsignedShort uint16
	// String is sequence of Unicode scalar values
	String string
	// VarInt is variable-length data encoding a two's complement signed 32-bit integer
	VarInt int32
)

// EncodeVarInt writes v seven bits at a time, low bits first. Every byte but
// the last has its continuation bit set.
func EncodeVarInt(v uint32) []byte {
	bb := make([]byte, 0, MaxVarIntLen)
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		bb = append(bb, b)
		if v == 0 {
			return bb
		}
	}
}

// DecodeVarInt reads one VarInt and reports how many bytes it took.
// It never reads past the fifth byte.
func DecodeVarInt(r io.ByteReader) (uint32, int, error) {
	var n uint32
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, i, streamError(err)
		}

		n |= uint32(b&0x7F) << uint32(7*i)

		if b&0x80 == 0 {
			return n, i + 1, nil
		}
	}
	return 0, MaxVarIntLen, ErrVarIntTooLong
}

// streamError turns an early end of input into a TruncatedStream error and
// leaves everything else (deadlines, resets) untouched for the caller.
func streamError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newProtocolError(TruncatedStream, err)
	}
	return err
}

// ReadNBytes reads exactly n bytes.
func ReadNBytes(r DecodeReader, n int) ([]byte, error) {
	bb := make([]byte, n)
	if _, err := io.ReadFull(r, bb); err != nil {
		return nil, streamError(err)
	}
	return bb, nil
}

// Encode a String
func (s String) Encode() []byte {
	byteString := []byte(s)
	var bb []byte
	bb = append(bb, VarInt(len(byteString)).Encode()...) // len
	bb = append(bb, byteString...)                       // data
	return bb
}

// Decode a String
func (s *String) Decode(r DecodeReader) error {
	var l VarInt // String length
	if err := l.Decode(r); err != nil {
		return err
	}
	if l < 0 || int(l) > MaxPacketSize {
		return newProtocolError(MalformedPayload, errors.New("string length out of range"))
	}

	bb, err := ReadNBytes(r, int(l))
	if err != nil {
		return err
	}

	*s = String(bb)
	return nil
}

// Encode a Unsigned Short
func (us UnsignedShort) Encode() []byte {
	n := uint16(us)
	return []byte{
		byte(n >> 8),
		byte(n),
	}
}

// Decode a UnsignedShort
func (us *UnsignedShort) Decode(r DecodeReader) error {
	bb, err := ReadNBytes(r, 2)
	if err != nil {
		return err
	}

	*us = UnsignedShort(uint16(bb[0])<<8 | uint16(bb[1]))
	return nil
}

// Encode a VarInt. Negative values go out as their 32-bit two's complement,
// so -1 takes the full five bytes.
func (v VarInt) Encode() []byte {
	return EncodeVarInt(uint32(v))
}

// Decode a VarInt
func (v *VarInt) Decode(r DecodeReader) error {
	n, _, err := DecodeVarInt(r)
	if err != nil {
		return err
	}
	*v = VarInt(int32(n))
	return nil
}
