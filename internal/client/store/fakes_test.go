package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// memPersister keeps JSON blobs in a map. failSave makes every Save fail.
type memPersister struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	failSave bool
	saves    int
}

func newMemPersister() *memPersister {
	return &memPersister{blobs: map[string][]byte{}}
}

var errSaveFailed = errors.New("disk full")

func (p *memPersister) Load(ctx context.Context, key string, v any) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.blobs[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, v)
}

func (p *memPersister) Save(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failSave {
		return errSaveFailed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.blobs[key] = b
	p.saves++
	return nil
}

func (p *memPersister) raw(key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.blobs[key])
}
