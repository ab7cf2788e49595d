package cryptox

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fast keeps argon2 cheap in tests.
var fast = KDFParams{Time: 1, MemoryKiB: 1024, Threads: 1}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := []byte("fixed-salt-fixed-salt")

	k1 := DeriveKey([]byte("M1"), salt, fast)
	k2 := DeriveKey([]byte("M1"), salt, fast)

	assert.Len(t, k1, KeyLen)
	assert.Equal(t, k1, k2)
}

func TestDeriveKey_DifferentInputs(t *testing.T) {
	k1 := DeriveKey([]byte("M1"), []byte("salt-1"), fast)
	k2 := DeriveKey([]byte("M1"), []byte("salt-2"), fast)
	k3 := DeriveKey([]byte("M2"), []byte("salt-1"), fast)

	assert.NotEqual(t, k1, k2, "different salts must give different keys")
	assert.NotEqual(t, k1, k3, "different master keys must give different keys")
}

func TestDeriveKeyContext(t *testing.T) {
	salt := NewSalt()

	t.Run("matches DeriveKey", func(t *testing.T) {
		got, err := DeriveKeyContext(context.Background(), []byte("M1"), salt, fast)
		require.NoError(t, err)
		assert.Equal(t, DeriveKey([]byte("M1"), salt, fast), got)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		k, err := DeriveKeyContext(ctx, []byte("M1"), salt, fast)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, k)
	})

	t.Run("does not keep the caller buffer", func(t *testing.T) {
		mk := []byte("M1")
		got, err := DeriveKeyContext(context.Background(), mk, salt, fast)
		require.NoError(t, err)
		assert.Equal(t, []byte("M1"), mk)
		assert.Len(t, got, KeyLen)
	})
}

func TestKey_Wipe(t *testing.T) {
	k := DeriveKey([]byte("M1"), NewSalt(), fast)
	k.Wipe()
	assert.Equal(t, make(Key, KeyLen), k)
}

func TestSubKey_Independent(t *testing.T) {
	k := DeriveKey([]byte("M1"), NewSalt(), fast)

	a, err := SubKey(k, LabelVerifier)
	require.NoError(t, err)
	b, err := SubKey(k, LabelEncryption)
	require.NoError(t, err)

	assert.Len(t, a, KeyLen)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, Key(k), a)
}

func TestVerifier(t *testing.T) {
	salt := NewSalt()
	good := DeriveKey([]byte("M1"), salt, fast)
	bad := DeriveKey([]byte("M2"), salt, fast)

	stored, err := MakeVerifier(good)
	require.NoError(t, err)
	again, err := MakeVerifier(good)
	require.NoError(t, err)
	other, err := MakeVerifier(bad)
	require.NoError(t, err)

	assert.True(t, CheckVerifier(stored, again))
	assert.False(t, CheckVerifier(stored, other))
	assert.False(t, CheckVerifier(stored, stored[:10]))
	assert.False(t, bytes.Contains(stored, []byte("M1")))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("M1"), NewSalt(), fast)

	for _, pw := range []string{"", "p", "Zx9!aa-bb_cc~dd", string(bytes.Repeat([]byte("x"), 4096))} {
		ct, nonce, err := Seal(key, []byte(pw), []byte("example.com"))
		require.NoError(t, err)
		assert.Len(t, nonce, NonceLen)

		pt, err := Open(key, ct, nonce, []byte("example.com"))
		require.NoError(t, err)
		assert.Equal(t, pw, string(pt))
	}
}

func TestSeal_FreshNonce(t *testing.T) {
	key := DeriveKey([]byte("M1"), NewSalt(), fast)

	ct1, n1, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)
	ct2, n2, err := Seal(key, []byte("same"), nil)
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, ct1, ct2)
}

func TestOpen_Failures(t *testing.T) {
	key := DeriveKey([]byte("M1"), NewSalt(), fast)
	otherKey := DeriveKey([]byte("M2"), NewSalt(), fast)

	ct, nonce, err := Seal(key, []byte("secret"), []byte("a.com"))
	require.NoError(t, err)

	_, err = Open(otherKey, ct, nonce, []byte("a.com"))
	assert.Error(t, err, "wrong key")

	_, err = Open(key, ct, nonce, []byte("b.com"))
	assert.Error(t, err, "wrong aad")

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0xff
	_, err = Open(key, tampered, nonce, []byte("a.com"))
	assert.Error(t, err, "tampered ciphertext")

	_, err = Open(key, ct, nonce[:4], []byte("a.com"))
	assert.Error(t, err, "short nonce")

	_, err = Open(Key("short"), ct, nonce, []byte("a.com"))
	assert.Error(t, err, "bad key length")
}

func TestDeriveKeyContext_InvalidParams(t *testing.T) {
	for _, p := range []KDFParams{
		{Time: 0, MemoryKiB: 1024, Threads: 1},
		{Time: 1, MemoryKiB: 0, Threads: 1},
		{Time: 1, MemoryKiB: 1024, Threads: 0},
	} {
		k, err := DeriveKeyContext(context.Background(), []byte("M1"), NewSalt(), p)
		assert.ErrorIs(t, err, ErrInvalidKDFParams, "%+v", p)
		assert.Nil(t, k)
	}
	assert.NoError(t, fast.Validate())
}
