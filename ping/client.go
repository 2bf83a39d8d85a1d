// Package ping queries a Minecraft server through the Server List Ping exchange:
// one connection, a handshake and a status request out, one response in.
package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/realDragonium/mcwatch/logging"
	"github.com/realDragonium/mcwatch/mc"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 5 * time.Second
)

var (
	pingBuckets  = []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10}
	pingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mcwatch",
		Name:      "ping_duration_seconds",
		Help:      "Histogram of status ping durations.",
		Buckets:   pingBuckets,
	}, []string{"result"})
	pingTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mcwatch",
		Name:      "ping_total",
		Help:      "The total number of status pings by result.",
	}, []string{"result"})
)

// Client performs status pings. The zero value uses the default timeouts and
// a plain TCP dialer.
type Client struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ConnCreator    ConnectionCreator
}

func NewClient(connectTimeout, readTimeout time.Duration, sendProxyProtocol bool) Client {
	var creator ConnectionCreator = BasicConnCreator(net.Dialer{})
	if sendProxyProtocol {
		creator = ProxyProtocolConnCreator(creator)
	}
	return Client{
		ConnectTimeout: connectTimeout,
		ReadTimeout:    readTimeout,
		ConnCreator:    creator,
	}
}

func (c Client) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return DefaultConnectTimeout
	}
	return c.ConnectTimeout
}

func (c Client) readTimeout() time.Duration {
	if c.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return c.ReadTimeout
}

func (c Client) connCreator() ConnectionCreator {
	if c.ConnCreator == nil {
		return BasicConnCreator(net.Dialer{})
	}
	return c.ConnCreator
}

// QueryStatus returns the JSON document the server answers the status request
// with. Failures are a *ConnectError, a *mc.ProtocolError or the context's error.
func (c Client) QueryStatus(ctx context.Context, host string, port int) (map[string]interface{}, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	start := time.Now()
	doc, err := c.queryStatus(ctx, host, uint16(port), addr)
	result := resultLabel(err)
	pingDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	pingTotal.WithLabelValues(result).Inc()
	return doc, err
}

func (c Client) queryStatus(ctx context.Context, host string, port uint16, addr string) (map[string]interface{}, error) {
	logger := logging.Component("ping")

	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout())
	conn, err := c.connCreator().Conn(dialCtx, addr)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, ctx.Err())
		}
		return nil, newConnectError("dial", addr, err)
	}

	// Cancelling ctx expires the deadlines so a blocked write or read returns
	// right away; the deferred Close then tears the socket down.
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer func() {
		stop()
		if err := conn.Close(); err != nil {
			logger.Debug().Err(err).Str("addr", addr).Msg("closing status connection")
		}
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(c.readTimeout())); err != nil {
		return nil, c.ioError(ctx, "write", addr, err)
	}

	mcConn := mc.NewMcConn(conn)
	if err := mcConn.WritePacket(mc.NewStatusHandshake(host, port).Marshal()); err != nil {
		return nil, c.ioError(ctx, "write", addr, err)
	}
	if err := mcConn.WritePacket(mc.ServerBoundRequest{}.Marshal()); err != nil {
		return nil, c.ioError(ctx, "write", addr, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout())); err != nil {
		return nil, c.ioError(ctx, "read", addr, err)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("read %s: %w", addr, ctx.Err())
	}

	pk, err := mcConn.ReadPacket()
	if err != nil {
		return nil, c.ioError(ctx, "read", addr, err)
	}

	resp, err := mc.UnmarshalClientBoundResponse(pk)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", addr, err)
	}
	doc, err := resp.Document()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", addr, err)
	}

	logger.Debug().Str("addr", addr).Int("bytes", len(resp.JSONResponse)).Msg("status received")
	return doc, nil
}

func (c Client) ioError(ctx context.Context, op, addr string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s %s: %w", op, addr, ctx.Err())
	}
	var protoErr *mc.ProtocolError
	if errors.As(err, &protoErr) {
		return fmt.Errorf("%s %s: %w", op, addr, err)
	}
	return newConnectError(op, addr, err)
}

func resultLabel(err error) string {
	var (
		connErr  *ConnectError
		protoErr *mc.ProtocolError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &connErr):
		switch connErr.Kind {
		case Timeout:
			return "timeout"
		case Refused:
			return "refused"
		}
		return "connect_error"
	case errors.As(err, &protoErr):
		return "protocol_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}
