package mc

import (
	"bufio"
	"net"
)

type McConn interface {
	ReadPacket() (Packet, error)
	WritePacket(p Packet) error
}

func NewMcConn(conn net.Conn) *Conn {
	return &Conn{
		netConn: conn,
		reader:  bufio.NewReader(conn),
	}
}

// Conn reads and writes framed packets on a stream connection.
type Conn struct {
	netConn net.Conn
	reader  DecodeReader
}

func (conn *Conn) ReadPacket() (Packet, error) {
	return ReadPacket(conn.reader)
}

func (conn *Conn) WritePacket(p Packet) error {
	_, err := conn.netConn.Write(p.Marshal())
	return err
}
