package mc

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxPacketSize is the biggest length prefix a packet may declare, the
// largest value a three byte VarInt can hold.
var MaxPacketSize = 2097151

const (
	HandshakePacketID VarInt = 0x00

	StatusState = 1
	LoginState  = 2

	HandshakeStatusState = VarInt(StatusState)

	// StatusProtocolVersion asks the server to answer regardless of version.
	StatusProtocolVersion = -1
)

// Packet is the raw representation of message that is send between the client and the server
type Packet struct {
	ID   VarInt
	Data []byte
}

// Scan decodes and copies the Packet data into the fields
func (pk Packet) Scan(fields ...FieldDecoder) error {
	return ScanFields(bytes.NewReader(pk.Data), fields...)
}

// Marshal encodes the packet id and data and frames the result.
func (pk Packet) Marshal() []byte {
	data := pk.ID.Encode()
	data = append(data, pk.Data...)
	return Frame(data)
}

// Frame prefixes payload with its own length.
func Frame(payload []byte) []byte {
	framed := EncodeVarInt(uint32(len(payload)))
	return append(framed, payload...)
}

// ScanFields decodes a byte stream into fields
func ScanFields(r DecodeReader, fields ...FieldDecoder) error {
	for _, field := range fields {
		if err := field.Decode(r); err != nil {
			return err
		}
	}
	return nil
}

// MarshalPacket transforms an ID and Fields into a Packet
func MarshalPacket(ID VarInt, fields ...FieldEncoder) Packet {
	var pkt Packet
	pkt.ID = ID

	for _, v := range fields {
		pkt.Data = append(pkt.Data, v.Encode()...)
	}

	return pkt
}

// ReadPacketBytes reads one length prefixed frame and returns its payload.
func ReadPacketBytes(r DecodeReader) ([]byte, error) {
	packetLength, _, err := DecodeVarInt(r)
	if err != nil {
		return nil, err
	}

	if packetLength > uint32(MaxPacketSize) {
		return nil, newProtocolError(MalformedPayload, fmt.Errorf("declared packet length %d exceeds %d", packetLength, MaxPacketSize))
	}

	return ReadNBytes(r, int(packetLength))
}

// ReadPacket reads one frame and splits it into packet id and data.
func ReadPacket(r DecodeReader) (Packet, error) {
	data, err := ReadPacketBytes(r)
	if err != nil {
		return Packet{}, err
	}
	if len(data) == 0 {
		return Packet{}, newProtocolError(MalformedPayload, errors.New("packet has no id"))
	}

	buf := bytes.NewReader(data)
	var id VarInt
	if err := id.Decode(buf); err != nil {
		return Packet{}, err
	}

	return Packet{
		ID:   id,
		Data: data[len(data)-buf.Len():],
	}, nil
}
