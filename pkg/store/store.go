// Package store persists project documents. Every backend implements
// upsert as a full overwrite keyed by the registration number.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/David-Botos/pmfs-ingress/pkg/config"
	"github.com/David-Botos/pmfs-ingress/pkg/connector"
	"github.com/David-Botos/pmfs-ingress/pkg/model"
)

// DocumentStore writes project documents into named collections
type DocumentStore interface {
	// Upsert creates or fully replaces the document stored under key
	Upsert(ctx context.Context, collection, key string, doc *model.Project) error

	// Close releases the backend connection
	Close() error
}

// NewStore opens the backend selected by cfg.StoreDriver
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (DocumentStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := connector.NewConnectorFactory(cfg, logger)

	switch cfg.StoreDriver {
	case config.StoreSQLite:
		conn, err := factory.CreateSQLiteConnector(ctx)
		if err != nil {
			return nil, model.NewPipelineError(model.KindStoreWrite, err)
		}
		return NewSQLStore(conn.X(), conn), nil

	case config.StorePostgres:
		conn, err := factory.CreatePostgresConnector(ctx)
		if err != nil {
			return nil, model.NewPipelineError(model.KindStoreWrite, err)
		}
		return NewSQLStore(conn.X(), conn), nil

	case config.StoreElasticsearch:
		s, err := NewElasticsearchStore(ctx, cfg.Elasticsearch, logger)
		if err != nil {
			return nil, model.NewPipelineError(model.KindStoreWrite, err)
		}
		return s, nil

	case config.StoreRedis:
		s, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, model.NewPipelineError(model.KindStoreWrite, err)
		}
		return s, nil

	case config.StoreMemory:
		return NewMemoryStore(), nil

	default:
		return nil, model.NewPipelineError(model.KindConfig,
			fmt.Errorf("unknown store driver %q", cfg.StoreDriver))
	}
}

// ErrEmptyKey rejects documents without a registration number. An empty id
// would make Elasticsearch generate one and break overwrite semantics.
var ErrEmptyKey = errors.New("document key is empty")

// encodeDocument serializes a project the same way for every backend
func encodeDocument(key string, doc *model.Project) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrEmptyKey
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return body, nil
}

func writeError(key string, err error) error {
	return model.NewPipelineError(model.KindStoreWrite, err).WithKey(key)
}
