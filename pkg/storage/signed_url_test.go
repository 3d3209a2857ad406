package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, expiresAt, err := signer.Generate("assignments/homework/123.pdf")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	path, _, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "assignments/homework/123.pdf", path)
}

func TestSignedURLRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	token, _, err := signer.Generate("fees/receipt.pdf")
	require.NoError(t, err)

	_, _, err = signer.Parse(token + "x")
	require.Error(t, err)
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	other := NewSignedURLSigner("other", time.Minute)

	token, _, err := signer.Generate("fees/receipt.pdf")
	require.NoError(t, err)

	_, _, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", -time.Minute)
	signer.ttl = -time.Minute

	token, _, err := signer.Generate("exports/report.csv")
	require.NoError(t, err)

	_, _, err = signer.Parse(token)
	require.Error(t, err)
}

func TestSignedURLEmptyPath(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)

	_, _, err := signer.Generate("")
	require.Error(t, err)
}
