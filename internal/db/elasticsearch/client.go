// Package elasticsearch implements the engine facade on top of olivere/elastic.
package elasticsearch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/olivere/elastic/v7"
	"go.uber.org/zap"

	"github.com/apisearch-io/search-server-sub000/internal/db"
)

// Compile-time check: Store implements db.Engine.
var _ db.Engine = (*Store)(nil)

// Config holds connection parameters for an Elasticsearch cluster.
type Config struct {
	URLs        []string
	Username    string
	Password    string
	Sniff       bool
	Healthcheck bool
	Timeout     time.Duration
	IndexPrefix string
}

// Store implements db.Engine via olivere/elastic.
type Store struct {
	client      *elastic.Client
	indexPrefix string
}

// NewStore creates an engine store. Sniffing and health checks contact
// the cluster on startup when enabled.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.URLs) == 0 {
		return nil, fmt.Errorf("urls is required")
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(cfg.Sniff),
		elastic.SetHealthcheck(cfg.Healthcheck),
		elastic.SetHttpClient(httpClient),
	}
	if cfg.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(cfg.Username, cfg.Password))
	}
	if logger != nil {
		opts = append(opts, elastic.SetErrorLog(zap.NewStdLog(logger.Named("elastic"))))
	}

	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, indexPrefix: cfg.IndexPrefix}, nil
}

// Ping checks cluster health. A red cluster counts as unavailable.
func (s *Store) Ping(ctx context.Context) error {
	res, err := s.client.ClusterHealth().Do(ctx)
	if err != nil {
		return &db.Error{Op: db.OpHealth, Err: classify(err)}
	}
	if res.Status == "red" {
		return &db.Error{Op: db.OpHealth, Err: fmt.Errorf("%w: cluster status red", db.ErrUnavailable)}
	}
	return nil
}

// Close stops background goroutines of the client.
func (s *Store) Close() {
	s.client.Stop()
}

// WaitForReady polls Ping until the cluster responds or timeout expires.
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

func (s *Store) indexName(index string) string {
	return s.indexPrefix + index
}

// classify maps client errors onto db sentinels, keeping the cause.
func classify(err error) error {
	var netErr net.Error
	switch {
	case elastic.IsNotFound(err):
		return fmt.Errorf("%w: %w", db.ErrIndexNotFound, err)
	case elastic.IsStatusCode(err, http.StatusBadRequest):
		return fmt.Errorf("%w: %w", db.ErrBadRequest, err)
	case elastic.IsConnErr(err),
		elastic.IsStatusCode(err, http.StatusBadGateway),
		elastic.IsStatusCode(err, http.StatusServiceUnavailable),
		elastic.IsStatusCode(err, http.StatusGatewayTimeout),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	default:
		return err
	}
}
