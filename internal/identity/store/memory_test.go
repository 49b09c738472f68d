package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/internal/identity/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

func record(did, owner string) *models.DIDRecord {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.DIDRecord{
		DID:        id.DID(did),
		Owner:      id.Principal(owner),
		PublicKeys: []string{"key1"},
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))

	got, err := s.Get(ctx, "did:example:alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"key1"}, got.PublicKeys)
	assert.True(t, got.IsActive)
}

func TestCreateDuplicateDID(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))
	err := s.Create(ctx, record("did:example:alice", "0xother"))
	require.ErrorIs(t, err, sentinel.ErrAlreadyExists)
}

func TestCreateOwnerAlreadyBound(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))
	err := s.Create(ctx, record("did:example:alice2", "0xalice"))
	require.ErrorIs(t, err, sentinel.ErrOwnerAlreadyBound)
}

func TestConcurrentCreateOneWinner(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Create(ctx, record("did:example:alice", "0xalice"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent create must win")
}

func TestGetByOwner(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))

	got, err := s.GetByOwner(ctx, "0xalice")
	require.NoError(t, err)
	assert.EqualValues(t, "did:example:alice", got.DID)

	_, err = s.GetByOwner(ctx, "0xunknown")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdateUnknownDID(t *testing.T) {
	s := NewMemory()
	err := s.Update(context.Background(), record("did:example:ghost", "0xghost"))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestExists(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	exists, err := s.Exists(ctx, "did:example:alice")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))
	exists, err = s.Exists(ctx, "did:example:alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClonesDoNotShareState(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, record("did:example:alice", "0xalice")))
	got, err := s.Get(ctx, "did:example:alice")
	require.NoError(t, err)
	got.PublicKeys[0] = "tampered"

	again, err := s.Get(ctx, "did:example:alice")
	require.NoError(t, err)
	assert.Equal(t, "key1", again.PublicKeys[0])
}
