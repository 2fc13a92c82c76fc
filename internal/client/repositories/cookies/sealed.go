package cookies

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/cryptox"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/metadata"
)

const saltSize = 16

// SealedJar encrypts cookie values before they reach the underlying jar.
// A value that cannot be opened with the current key (passphrase changed,
// row tampered with) reads as absent, which signs the user out.
type SealedJar struct {
	next Jar
	key  []byte
}

// NewSealedJar derives the sealing key from passphrase and a per-database
// salt kept in meta under common.CookieSaltKey, creating the salt on first use.
func NewSealedJar(ctx context.Context, next Jar, meta metadata.Repository, passphrase []byte) (*SealedJar, error) {
	salt, err := meta.Get(ctx, common.CookieSaltKey)
	if errors.Is(err, common.ErrorNotFound) {
		salt = common.GenerateRandByteArray(saltSize)
		if err := meta.Set(ctx, common.CookieSaltKey, salt); err != nil {
			return nil, fmt.Errorf("saving cookie salt: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("loading cookie salt: %w", err)
	}

	return &SealedJar{next: next, key: cryptox.DeriveKey(passphrase, salt)}, nil
}

func (j *SealedJar) Get(ctx context.Context, name string) (Cookie, error) {
	c, err := j.next.Get(ctx, name)
	if err != nil {
		return Cookie{}, err
	}
	plain, err := cryptox.Open(c.Value, j.key)
	if err != nil {
		return Cookie{}, common.ErrorNotFound
	}
	c.Value = string(plain)
	return c, nil
}

func (j *SealedJar) Set(ctx context.Context, cookies ...Cookie) error {
	sealed := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		v, err := cryptox.Seal([]byte(c.Value), j.key)
		if err != nil {
			return fmt.Errorf("sealing cookie[%s]: %w", c.Name, err)
		}
		c.Value = v
		sealed = append(sealed, c)
	}
	return j.next.Set(ctx, sealed...)
}

func (j *SealedJar) Remove(ctx context.Context, names ...string) error {
	return j.next.Remove(ctx, names...)
}
