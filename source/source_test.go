package source_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/realDragonium/mcwatch/ping"
	"github.com/realDragonium/mcwatch/source"
)

type queryFunc func(ctx context.Context, host string, port int) (map[string]interface{}, error)

func (f queryFunc) QueryStatus(ctx context.Context, host string, port int) (map[string]interface{}, error) {
	return f(ctx, host, port)
}

func TestPingSource(t *testing.T) {
	var gotHost string
	var gotPort int
	doc := map[string]interface{}{"version": "1.20.1"}
	src := source.NewPingSource(queryFunc(func(ctx context.Context, host string, port int) (map[string]interface{}, error) {
		gotHost, gotPort = host, port
		return doc, nil
	}), "mc.example.org", 25566)

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
	if gotHost != "mc.example.org" || gotPort != 25566 {
		t.Errorf("queried %s:%d", gotHost, gotPort)
	}
	if src.Name() != "mc.example.org:25566" {
		t.Errorf("name: got: %q", src.Name())
	}
}

func TestPingSource_Error(t *testing.T) {
	connErr := &ping.ConnectError{Kind: ping.Refused, Op: "dial", Addr: "x", Err: errors.New("refused")}
	src := source.NewPingSource(queryFunc(func(ctx context.Context, host string, port int) (map[string]interface{}, error) {
		return nil, connErr
	}), "x", 1)

	_, err := src.Fetch(context.Background())
	if !ping.IsRefused(err) {
		t.Errorf("expected wrapped refused error but got: %v", err)
	}
}

func TestHTTPSource(t *testing.T) {
	tt := []struct {
		name     string
		status   int
		body     string
		port     int
		path     string
		expected map[string]interface{}
		err      bool
	}{
		{
			name:     "online",
			status:   http.StatusOK,
			body:     `{"online":true,"hostname":"mc.example.org","version":"1.20.1","players":{"online":1,"max":20,"list":[{"name":"Steve"}]}}`,
			port:     25565,
			path:     "/mc.example.org",
			expected: map[string]interface{}{"online": true, "hostname": "mc.example.org", "version": "1.20.1", "players": map[string]interface{}{"online": float64(1), "max": float64(20), "list": []interface{}{map[string]interface{}{"name": "Steve"}}}},
		},
		{
			name:   "offline",
			status: http.StatusOK,
			body:   `{"online":false,"hostname":"mc.example.org"}`,
			port:   25570,
			path:   "/mc.example.org:25570",
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			port:   25565,
			path:   "/mc.example.org",
			err:    true,
		},
		{
			name:   "invalid json",
			status: http.StatusOK,
			body:   `{"online":`,
			port:   25565,
			path:   "/mc.example.org",
			err:    true,
		},
		{
			name:   "null document",
			status: http.StatusOK,
			body:   `null`,
			port:   25565,
			path:   "/mc.example.org",
			err:    true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			src := source.NewHTTPSource(server.URL+"/", "mc.example.org", tc.port, time.Second)
			doc, err := src.Fetch(context.Background())
			if gotPath != tc.path {
				t.Errorf("path: got: %q; want: %q", gotPath, tc.path)
			}
			if tc.err {
				var upstreamErr *source.UpstreamError
				if !errors.As(err, &upstreamErr) || !errors.Is(err, source.ErrUpstream) {
					t.Fatalf("expected UpstreamError but got: %v", err)
				}
				if tc.status != http.StatusOK && upstreamErr.StatusCode != tc.status {
					t.Errorf("status code: got: %d; want: %d", upstreamErr.StatusCode, tc.status)
				}
				return
			}
			if err != nil {
				t.Fatalf("didnt expect an error but got: %v", err)
			}
			if diff := cmp.Diff(tc.expected, doc); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHTTPSource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	src := source.NewHTTPSource(url, "mc.example.org", 0, time.Second)
	_, err := src.Fetch(context.Background())
	if !errors.Is(err, source.ErrUpstream) {
		t.Errorf("expected upstream error but got: %v", err)
	}
}
