package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/facetdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch store.
type Config struct {
	Addresses []string
	// RequestTimeout bounds waiting for response headers. Zero means no limit.
	RequestTimeout time.Duration
}

// HostAddress formats host and port as an http address.
func HostAddress(host string, port int) string {
	if strings.Contains(host, "://") {
		return host + ":" + strconv.Itoa(port)
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Store implements db.Store via go-elasticsearch.
type Store struct {
	client    *elasticsearch.Client
	transport *http.Transport
}

// NewStore creates an Elasticsearch store. No request is sent until first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("addresses is required")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.RequestTimeout

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    cfg.Addresses,
		Transport:    transport,
		DisableRetry: true, // failures go to the caller unchanged
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, transport: transport}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	defer closeBody(res)

	if res.IsError() {
		return &db.Error{Op: db.OpPing, Err: responseError(res)}
	}
	return nil
}

// Close releases idle connections.
func (s *Store) Close() {
	s.transport.CloseIdleConnections()
}

// WaitForReady polls Ping until the engine responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for elasticsearch: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_ = res.Body.Close()
	}
}

// responseError turns an error response into an error carrying the engine's reason.
func responseError(res *esapi.Response) error {
	var body []byte
	if res.Body != nil {
		body, _ = io.ReadAll(io.LimitReader(res.Body, 64<<10))
	}
	if res.StatusCode == http.StatusBadRequest {
		if rejected := parseRejection(body); rejected != nil {
			return rejected
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(res.StatusCode)
	}
	err := fmt.Errorf("status %d: %s", res.StatusCode, msg)
	if res.StatusCode == http.StatusNotFound && strings.Contains(msg, "index_not_found_exception") {
		return fmt.Errorf("%w: %w", db.ErrIndexNotFound, err)
	}
	return err
}

// engineError is the error body of a refused request.
type engineError struct {
	Error struct {
		Type      string `json:"type"`
		Reason    string `json:"reason"`
		RootCause []struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"root_cause"`
	} `json:"error"`
}

// parseRejection extracts the most specific cause from a 400 body, or nil.
func parseRejection(body []byte) *db.RejectedError {
	var e engineError
	if err := json.Unmarshal(body, &e); err != nil || e.Error.Type == "" {
		return nil
	}
	for _, rc := range e.Error.RootCause {
		if rc.Reason != "" {
			return &db.RejectedError{Type: rc.Type, Reason: rc.Reason}
		}
	}
	return &db.RejectedError{Type: e.Error.Type, Reason: e.Error.Reason}
}
