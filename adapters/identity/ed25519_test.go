package identity

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519FromSeedDeterministic(t *testing.T) {
	a, err := Ed25519FromSeed("dev-player-1")
	require.NoError(t, err)
	b, err := Ed25519FromSeed("dev-player-1")
	require.NoError(t, err)

	assert.Equal(t, a.Principal().String(), b.Principal().String())
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	other, err := Ed25519FromSeed("dev-player-2")
	require.NoError(t, err)
	assert.NotEqual(t, a.Principal().String(), other.Principal().String())
}

func TestEd25519FromSeedLongSeedTruncates(t *testing.T) {
	exact, err := Ed25519FromSeed("exactly-32-bytes-of-seed-padding")
	require.NoError(t, err)
	long, err := Ed25519FromSeed("exactly-32-bytes-of-seed-padding-and-then-some")
	require.NoError(t, err)

	assert.Equal(t, exact.Principal().String(), long.Principal().String())
}

func TestEd25519SignVerifies(t *testing.T) {
	id, err := NewEd25519Identity()
	require.NoError(t, err)

	msg := []byte("request payload")
	sig, err := id.Sign(msg)
	require.NoError(t, err)

	pub := id.Key().Public().(ed25519.PublicKey)
	assert.True(t, ed25519.Verify(pub, msg, sig))
}

func TestEd25519FromKeyRoundTrip(t *testing.T) {
	original, err := NewEd25519Identity()
	require.NoError(t, err)

	restored, err := Ed25519FromKey(original.Key())
	require.NoError(t, err)
	assert.Equal(t, original.Principal().String(), restored.Principal().String())
}
