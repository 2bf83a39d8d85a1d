package mc

import (
	"encoding/json"
	"fmt"
)

const (
	ServerBoundHandshakePacketID VarInt = 0x00
	ServerBoundRequestPacketID   VarInt = 0x00
	ClientBoundResponsePacketID  VarInt = 0x00
)

type ServerBoundHandshake struct {
	ProtocolVersion int
	ServerAddress   string
	ServerPort      uint16
	NextState       int
}

// NewStatusHandshake builds the handshake that opens a status exchange.
func NewStatusHandshake(host string, port uint16) ServerBoundHandshake {
	return ServerBoundHandshake{
		ProtocolVersion: StatusProtocolVersion,
		ServerAddress:   host,
		ServerPort:      port,
		NextState:       StatusState,
	}
}

func (pk ServerBoundHandshake) Marshal() Packet {
	return MarshalPacket(
		ServerBoundHandshakePacketID,
		VarInt(pk.ProtocolVersion),
		String(pk.ServerAddress),
		UnsignedShort(pk.ServerPort),
		VarInt(pk.NextState),
	)
}

func UnmarshalServerBoundHandshake(packet Packet) (ServerBoundHandshake, error) {
	var (
		protocol  VarInt
		address   String
		port      UnsignedShort
		nextState VarInt
	)

	if packet.ID != ServerBoundHandshakePacketID {
		return ServerBoundHandshake{}, newProtocolError(UnexpectedPacketID, fmt.Errorf("got %#x", int32(packet.ID)))
	}

	if err := packet.Scan(
		&protocol,
		&address,
		&port,
		&nextState,
	); err != nil {
		return ServerBoundHandshake{}, err
	}
	return ServerBoundHandshake{
		ProtocolVersion: int(protocol),
		ServerAddress:   string(address),
		ServerPort:      uint16(port),
		NextState:       int(nextState),
	}, nil
}

func (pk ServerBoundHandshake) IsStatusRequest() bool {
	return VarInt(pk.NextState) == HandshakeStatusState
}

type ServerBoundRequest struct{}

func (pk ServerBoundRequest) Marshal() Packet {
	return MarshalPacket(
		ServerBoundRequestPacketID,
	)
}

type ClientBoundResponse struct {
	JSONResponse String
}

func (pk ClientBoundResponse) Marshal() Packet {
	return MarshalPacket(
		ClientBoundResponsePacketID,
		pk.JSONResponse,
	)
}

func UnmarshalClientBoundResponse(packet Packet) (ClientBoundResponse, error) {
	var pk ClientBoundResponse

	if packet.ID != ClientBoundResponsePacketID {
		return pk, newProtocolError(UnexpectedPacketID, fmt.Errorf("got %#x", int32(packet.ID)))
	}

	if err := packet.Scan(
		&pk.JSONResponse,
	); err != nil {
		return pk, err
	}

	return pk, nil
}

// Document decodes the JSON carried by the response. The result is left
// loosely typed since servers disagree on its shape.
func (pk ClientBoundResponse) Document() (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(pk.JSONResponse), &doc); err != nil {
		return nil, newProtocolError(MalformedPayload, err)
	}
	if doc == nil {
		return nil, newProtocolError(MalformedPayload, fmt.Errorf("response is not a JSON object"))
	}
	return doc, nil
}

// ResponseJSON is the shape a vanilla server answers with. It is only used to
// build responses, decoding goes through Document.
type ResponseJSON struct {
	Version     VersionJSON     `json:"version"`
	Players     PlayersJSON     `json:"players"`
	Description DescriptionJSON `json:"description"`
	Favicon     string          `json:"favicon,omitempty"`
}

type VersionJSON struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

type PlayersJSON struct {
	Max    int                `json:"max"`
	Online int                `json:"online"`
	Sample []PlayerSampleJSON `json:"sample,omitempty"`
}

type PlayerSampleJSON struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type DescriptionJSON struct {
	Text string `json:"text"`
}

func (pk ResponseJSON) Marshal() Packet {
	text, _ := json.Marshal(pk)
	return ClientBoundResponse{
		JSONResponse: String(text),
	}.Marshal()
}
