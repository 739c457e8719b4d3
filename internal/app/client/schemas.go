package client

import (
	"context"
	"fmt"

	"golang.org/x/exp/slog"

	"sampark/internal/domain/sync"
)

type SchemaFetcher interface {
	GetSchemas(ctx context.Context) (*sync.SchemasResponse, error)
}

// SchemaCache хранит схемы форм локально, чтобы формы открывались без сети.
type SchemaCache struct {
	repo   sync.SchemaRepository
	remote SchemaFetcher
	log    *slog.Logger
}

func NewSchemaCache(repo sync.SchemaRepository, remote SchemaFetcher, log *slog.Logger) *SchemaCache {
	return &SchemaCache{
		repo:   repo,
		remote: remote,
		log:    log.With("component", "schemas"),
	}
}

// Refresh загружает все схемы с сервера и возвращает число сохраненных.
func (c *SchemaCache) Refresh(ctx context.Context) (int, error) {
	resp, err := c.remote.GetSchemas(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch schemas: %w", err)
	}

	stored := 0
	for name, entry := range resp.Schemas {
		version := entry.Version
		if version == "" {
			version = resp.Version
		}
		blob := &sync.SchemaBlob{
			Name:      name,
			Version:   version,
			Data:      entry.Schema,
			UpdatedAt: entry.UpdatedAt.Time,
		}
		if err := c.repo.PutSchema(ctx, blob); err != nil {
			return stored, fmt.Errorf("store schema %s: %w", name, err)
		}
		stored++
	}

	c.log.Info("Схемы обновлены", "count", stored, "version", resp.Version)
	return stored, nil
}

func (c *SchemaCache) Get(ctx context.Context, name string) (*sync.SchemaBlob, error) {
	return c.repo.GetSchema(ctx, name)
}

func (c *SchemaCache) List(ctx context.Context) ([]sync.SchemaBlob, error) {
	return c.repo.ListSchemas(ctx)
}
