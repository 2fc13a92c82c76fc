package cryptox

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("passphrase"), []byte("fixed-salt"))
	k2 := DeriveKey([]byte("passphrase"), []byte("fixed-salt"))

	require.Len(t, k1, KeySize)
	require.True(t, bytes.Equal(k1, k2))
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	k1 := DeriveKey([]byte("passphrase"), []byte("salt-1"))
	k2 := DeriveKey([]byte("passphrase"), []byte("salt-2"))

	require.False(t, bytes.Equal(k1, k2))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	sealed, err := Seal([]byte("Bearer eyJhbGciOi"), key)
	require.NoError(t, err)
	require.NotContains(t, sealed, "eyJhbGciOi")

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	require.Equal(t, "Bearer eyJhbGciOi", string(plain))
}

func TestSeal_FreshNonceEachTime(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	a, err := Seal([]byte("same"), key)
	require.NoError(t, err)
	b, err := Seal([]byte("same"), key)
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	sealed, err := Seal([]byte("token"), DeriveKey([]byte("one"), []byte("salt")))
	require.NoError(t, err)

	_, err = Open(sealed, DeriveKey([]byte("two"), []byte("salt")))
	require.Error(t, err)
}

func TestOpen_Malformed(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	_, err := Open("%%%not-base64", key)
	require.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = Open(base64.StdEncoding.EncodeToString([]byte("short")), key)
	require.ErrorIs(t, err, ErrMalformedCiphertext)
}

func TestSeal_BadKeyLength(t *testing.T) {
	_, err := Seal([]byte("x"), []byte("short"))
	require.Error(t, err)
}
