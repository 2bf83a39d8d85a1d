// Package source provides the places a raw status document can come from:
// the server itself over Server List Ping, or a third party status API.
package source

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/realDragonium/mcwatch/ping"
)

// Source fetches one raw status document. A nil document with a nil error
// means the source positively knows the server is offline.
type Source interface {
	Fetch(ctx context.Context) (map[string]interface{}, error)
	Name() string
}

type StatusQuerier interface {
	QueryStatus(ctx context.Context, host string, port int) (map[string]interface{}, error)
}

// PingSource asks the server directly.
type PingSource struct {
	Client StatusQuerier
	Host   string
	Port   int
}

func NewPingSource(client StatusQuerier, host string, port int) *PingSource {
	return &PingSource{
		Client: client,
		Host:   host,
		Port:   port,
	}
}

func (src *PingSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	client := src.Client
	if client == nil {
		client = ping.Client{}
	}
	doc, err := client.QueryStatus(ctx, src.Host, src.Port)
	if err != nil {
		return nil, fmt.Errorf("ping %s: %w", src.Name(), err)
	}
	return doc, nil
}

func (src *PingSource) Name() string {
	return net.JoinHostPort(src.Host, strconv.Itoa(src.Port))
}
