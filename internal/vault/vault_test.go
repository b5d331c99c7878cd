package vault

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/ainote/internal/pkg/errors"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(testKey)
	require.NoError(t, err)
	return v
}

func TestNewRejectsBadKeys(t *testing.T) {
	_, err := New("not-hex")
	require.Error(t, err)
	_, err = New("abcd")
	require.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v := newTestVault(t)
	for _, plain := range []string{"", "sk-abc123", "über långt تجربة", strings.Repeat("x", 4096)} {
		token, err := v.Encrypt(plain)
		require.NoError(t, err)
		got, err := v.Decrypt(token)
		require.NoError(t, err)
		require.Equal(t, plain, got)
	}
}

func TestEncryptUsesFreshNonce(t *testing.T) {
	v := newTestVault(t)
	t1, err := v.Encrypt("same input")
	require.NoError(t, err)
	t2, err := v.Encrypt("same input")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)
}

func TestDecryptRejectsTamperedToken(t *testing.T) {
	v := newTestVault(t)
	token, err := v.Encrypt("secret value")
	require.NoError(t, err)

	parts := strings.Split(token, ":")
	require.Len(t, parts, 3)
	raw, err := hex.DecodeString(parts[2])
	require.NoError(t, err)
	raw[0] ^= 0x01
	tampered := parts[0] + ":" + parts[1] + ":" + hex.EncodeToString(raw)

	_, err = v.Decrypt(tampered)
	require.ErrorIs(t, err, appErr.ErrIntegrity)
}

func TestDecryptRejectsMalformedTokens(t *testing.T) {
	v := newTestVault(t)
	for _, token := range []string{"", "abc", "a:b", "zz:zz:zz", "00:11:22:33"} {
		_, err := v.Decrypt(token)
		require.ErrorIs(t, err, appErr.ErrIntegrity, "token %q", token)
	}
}

func TestPassphraseDerivation(t *testing.T) {
	v1, err := NewFromPassphrase("hunter2", "app-salt")
	require.NoError(t, err)
	v2, err := NewFromPassphrase("hunter2", "app-salt")
	require.NoError(t, err)

	token, err := v1.Encrypt("sk-key")
	require.NoError(t, err)
	got, err := v2.Decrypt(token)
	require.NoError(t, err)
	require.Equal(t, "sk-key", got)

	other, err := NewFromPassphrase("hunter2", "other-salt")
	require.NoError(t, err)
	_, err = other.Decrypt(token)
	require.ErrorIs(t, err, appErr.ErrIntegrity)
}
