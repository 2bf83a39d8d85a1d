package ping

import (
	"context"
	"net"

	"github.com/pires/go-proxyproto"
)

type ConnectionCreator interface {
	Conn(ctx context.Context, addr string) (net.Conn, error)
}

type ConnectionCreatorFunc func(ctx context.Context, addr string) (net.Conn, error)

func (creator ConnectionCreatorFunc) Conn(ctx context.Context, addr string) (net.Conn, error) {
	return creator(ctx, addr)
}

func BasicConnCreator(dialer net.Dialer) ConnectionCreatorFunc {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp", addr)
	}
}

// ProxyProtocolConnCreator announces the connection with a PROXY protocol v2
// header, for servers sitting behind a proxy that refuses connections without one.
func ProxyProtocolConnCreator(creator ConnectionCreator) ConnectionCreatorFunc {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		conn, err := creator.Conn(ctx, addr)
		if err != nil {
			return conn, err
		}
		transport := proxyproto.TCPv4
		if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok && tcpAddr.IP.To4() == nil {
			transport = proxyproto.TCPv6
		}
		header := &proxyproto.Header{
			Version:           2,
			Command:           proxyproto.PROXY,
			TransportProtocol: transport,
			SourceAddr:        conn.LocalAddr(),
			DestinationAddr:   conn.RemoteAddr(),
		}
		if deadline, ok := ctx.Deadline(); ok {
			conn.SetWriteDeadline(deadline)
		}
		if _, err := header.WriteTo(conn); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}
