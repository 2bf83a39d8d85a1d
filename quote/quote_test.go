package quote_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/realDragonium/mcwatch/quote"
)

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "  stay hungry\n")
	}))
	defer server.Close()

	text, err := quote.NewClient(server.URL, time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("didnt expect an error but got: %v", err)
	}
	if text != "stay hungry" {
		t.Errorf("got: %q; want: %q", text, "stay hungry")
	}
}

func TestFetch_Errors(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	tt := []struct {
		name   string
		client *quote.Client
	}{
		{name: "bad status", client: quote.NewClient(failing.URL, time.Second)},
		{name: "timeout", client: quote.NewClient(slow.URL, 20*time.Millisecond)},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.client.Fetch(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
