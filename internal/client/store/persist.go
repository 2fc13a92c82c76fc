package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

// Persister loads and saves a store's state blob under a key.
// Load reports false when nothing was saved yet.
type Persister interface {
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
}

// MetadataPersister keeps blobs as JSON in the metadata repository.
type MetadataPersister struct {
	repo metadata.Repository
}

func NewMetadataPersister(repo metadata.Repository) *MetadataPersister {
	return &MetadataPersister{repo: repo}
}

func (p *MetadataPersister) Load(ctx context.Context, key string, v any) (bool, error) {
	b, err := p.repo.Get(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func (p *MetadataPersister) Save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return p.repo.Set(ctx, key, b)
}
