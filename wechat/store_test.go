package wechat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()

	_, ok := store.Get("U1")
	assert.False(t, ok)

	first := &TokenRecord{OpenID: "U1", AccessToken: "AT-1", RefreshToken: "RT-1"}
	store.Put(first)

	got, ok := store.Get("U1")
	require.True(t, ok)
	assert.Equal(t, first, got)

	// Put replaces the whole record, never merges.
	second := &TokenRecord{OpenID: "U1", AccessToken: "AT-2"}
	store.Put(second)

	got, ok = store.Get("U1")
	require.True(t, ok)
	assert.Equal(t, second, got)
	assert.Empty(t, got.RefreshToken)

	// Other openids are unaffected.
	_, ok = store.Get("U2")
	assert.False(t, ok)
}
