package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"entity-resolver/internal/domain/entity"
	domainRepo "entity-resolver/internal/domain/repository"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Compile-time check
var _ domainRepo.CatalogRepository = (*Repository)(nil)

// Repository implements CatalogRepository on top of a YAML file.
type Repository struct {
	path   string
	logger *zap.Logger
}

// NewRepository creates a catalog repository reading path. A missing file yields the built-in catalog.
func NewRepository(path string, logger *zap.Logger) domainRepo.CatalogRepository {
	return &Repository{
		path:   path,
		logger: logger.Named("CatalogStorage"),
	}
}

// Load reads and maps the catalog. Environment references in endpoints are expanded on every call.
func (r *Repository) Load(_ context.Context) (entity.Catalog, error) {
	data, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.logger.Warn("Catalog file not found, using built-in networks", zap.String("path", r.path))
		data = []byte(defaultCatalog)
	case err != nil:
		return entity.Catalog{}, fmt.Errorf("failed to read catalog %s: %w", r.path, err)
	}

	raw, err := decode(data)
	if err != nil {
		return entity.Catalog{}, fmt.Errorf("failed to parse catalog %s: %w", r.path, err)
	}

	catalog := toDomainCatalog(raw, r.logger)
	r.logger.Info("Loaded network catalog",
		zap.Int("cosmos", len(catalog.Cosmos)),
		zap.Int("remotes", len(catalog.Remotes)),
	)
	return catalog, nil
}

func decode(data []byte) (catalogRaw, error) {
	var raw catalogRaw
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return catalogRaw{}, err
	}
	return raw, nil
}
