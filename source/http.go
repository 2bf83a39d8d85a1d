package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/realDragonium/mcwatch/logging"
)

const (
	DefaultStatusAPI   = "https://api.mcsrvstat.us/3"
	DefaultHTTPTimeout = 10 * time.Second

	maxBodySize = 1 << 20
)

var ErrUpstream = errors.New("status api failed")

// UpstreamError is returned when the status API answers with something other
// than a 200 carrying a JSON object.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (err *UpstreamError) Error() string {
	if err.StatusCode != 0 && err.StatusCode != http.StatusOK {
		return fmt.Sprintf("status api %s: unexpected status %d", err.URL, err.StatusCode)
	}
	return fmt.Sprintf("status api %s: %v", err.URL, err.Err)
}

func (err *UpstreamError) Unwrap() error {
	return err.Err
}

func (err *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// HTTPSource reads an mcsrvstat style API: GET <BaseURL>/<host>[:port]
// answering a JSON object with an "online" flag.
type HTTPSource struct {
	BaseURL string
	Host    string
	Port    int
	Client  *http.Client
}

func NewHTTPSource(baseURL, host string, port int, timeout time.Duration) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultStatusAPI
	}
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Host:    host,
		Port:    port,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (src *HTTPSource) Name() string {
	if src.Port == 0 || src.Port == 25565 {
		return src.Host
	}
	return src.Host + ":" + strconv.Itoa(src.Port)
}

func (src *HTTPSource) url() string {
	return strings.TrimRight(src.BaseURL, "/") + "/" + src.Name()
}

func (src *HTTPSource) Fetch(ctx context.Context) (map[string]interface{}, error) {
	url := src.url()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create status api request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "mcwatch")

	client := src.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("body: %s", bytes.TrimSpace(body)),
		}
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if doc == nil {
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode, Err: errors.New("empty document")}
	}

	if online, ok := doc["online"].(bool); ok && !online {
		logger := logging.Component("source")
		logger.Debug().Str("url", url).Msg("status api reports server offline")
		return nil, nil
	}
	return doc, nil
}
