package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// ElasticsearchStore indexes each project under its registration number
type ElasticsearchStore struct {
	client *es.Client
	logger *zap.Logger

	mu      sync.Mutex
	written map[string]bool // Indexes to refresh on Close
}

// NewElasticsearchStore creates a client from cfg and verifies the cluster answers
func NewElasticsearchStore(ctx context.Context, cfg *config.ElasticsearchConfig, logger *zap.Logger) (*ElasticsearchStore, error) {
	if cfg == nil {
		return nil, errors.New("elasticsearch configuration is not loaded")
	}

	clientConfig := es.Config{
		Addresses:  []string{normalizeURL(cfg.URL)},
		MaxRetries: cfg.MaxRetries,
	}

	// Configure authentication
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	s := NewElasticsearchStoreFromClient(client, logger)
	if err := s.ping(ctx, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// NewElasticsearchStoreFromClient wraps an existing client
func NewElasticsearchStoreFromClient(client *es.Client, logger *zap.Logger) *ElasticsearchStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElasticsearchStore{
		client:  client,
		logger:  logger.Named("elasticsearch-store"),
		written: make(map[string]bool),
	}
}

func (s *ElasticsearchStore) ping(ctx context.Context, cfg *config.ElasticsearchConfig) error {
	pingCtx := ctx
	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}

	res, err := s.client.Ping(s.client.Ping.WithContext(pingCtx))
	if err != nil {
		return fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned %s", res.Status())
	}

	s.logger.Info("Elasticsearch connection established", zap.String("url", cfg.URL))
	return nil
}

// Upsert indexes doc with key as the document id, replacing earlier versions
func (s *ElasticsearchStore) Upsert(ctx context.Context, collection, key string, doc *model.Project) error {
	body, err := encodeDocument(key, doc)
	if err != nil {
		return writeError(key, err)
	}

	index := indexName(collection)
	res, err := s.client.Index(
		index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(key),
	)
	if err != nil {
		return writeError(key, fmt.Errorf("failed to index document: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return writeError(key, fmt.Errorf("error indexing document: %s", res.String()))
	}

	s.mu.Lock()
	s.written[index] = true
	s.mu.Unlock()
	return nil
}

// Close refreshes every index written during the run so the documents are searchable
// once the load returns
func (s *ElasticsearchStore) Close() error {
	s.mu.Lock()
	indexes := make([]string, 0, len(s.written))
	for index := range s.written {
		indexes = append(indexes, index)
	}
	s.written = make(map[string]bool)
	s.mu.Unlock()

	if len(indexes) == 0 {
		return nil
	}
	sort.Strings(indexes)

	res, err := s.client.Indices.Refresh(s.client.Indices.Refresh.WithIndex(indexes...))
	if err != nil {
		return fmt.Errorf("failed to refresh indexes: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error refreshing indexes: %s", res.String())
	}
	s.logger.Info("Refreshed indexes", zap.Strings("indexes", indexes))
	return nil
}

// indexName lowercases the collection since index names must be lowercase
func indexName(collection string) string {
	return strings.ToLower(collection)
}

// normalizeURL adds the http:// prefix when missing
func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}
