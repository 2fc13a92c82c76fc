package cookies

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/common"
)

// MemoryJar is a process-local Jar, used when no data directory is
// configured and in tests.
type MemoryJar struct {
	mu      sync.Mutex
	cookies map[string]Cookie
	now     func() time.Time
}

func NewMemoryJar() *MemoryJar {
	return &MemoryJar{cookies: make(map[string]Cookie), now: time.Now}
}

func (j *MemoryJar) Get(ctx context.Context, name string) (Cookie, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, ok := j.cookies[name]
	if !ok {
		return Cookie{}, common.ErrorNotFound
	}
	if c.Expired(j.now()) {
		delete(j.cookies, name)
		return Cookie{}, common.ErrorNotFound
	}
	return c, nil
}

func (j *MemoryJar) Set(ctx context.Context, cookies ...Cookie) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		if c.SameSite == "" {
			c.SameSite = SameSiteStrict
		}
		j.cookies[c.Name] = c
	}
	return nil
}

func (j *MemoryJar) Remove(ctx context.Context, names ...string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, n := range names {
		delete(j.cookies, n)
	}
	return nil
}
