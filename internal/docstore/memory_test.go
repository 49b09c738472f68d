package docstore

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/pkg/platform/sentinel"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	doc := map[string]any{"id": "did:example:alice", "publicKey": []string{"key1"}}
	handle, err := store.Put(ctx, doc)
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	raw, err := store.Get(ctx, handle)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "did:example:alice", got["id"])
}

func TestHandleIsDeterministic(t *testing.T) {
	store := NewInMemory()
	ctx := context.Background()

	doc := map[string]any{"id": "did:example:alice"}
	h1, err := store.Put(ctx, doc)
	require.NoError(t, err)
	h2, err := store.Put(ctx, doc)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "same document must yield the same handle")
	assert.Equal(t, 1, store.Len(), "identical documents share one entry")
}

func TestHandleIsCIDv1(t *testing.T) {
	handle, _, err := ComputeHandle(map[string]string{"a": "b"})
	require.NoError(t, err)
	// CIDv1 in default base32 encoding starts with "b".
	assert.True(t, strings.HasPrefix(handle.String(), "b"), "got %q", handle)
}

func TestDifferentDocumentsGetDifferentHandles(t *testing.T) {
	h1, _, err := ComputeHandle(map[string]string{"id": "a"})
	require.NoError(t, err)
	h2, _, err := ComputeHandle(map[string]string{"id": "b"})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestGetUnknownHandle(t *testing.T) {
	store := NewInMemory()
	_, err := store.Get(context.Background(), Handle("bafkreigh2akiscaildc"))
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
