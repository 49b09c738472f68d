package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridian/internal/credential/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

func credential(credentialID, holder, issuer string) *models.Credential {
	return &models.Credential{
		CredentialID:   id.CredentialID(credentialID),
		HolderDID:      id.DID(holder),
		IssuerDID:      id.DID(issuer),
		CredentialType: "EducationalCredential",
		Attributes:     []string{"degree=BSc"},
		IssuedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAndGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, credential("cred_001", "did:example:alice", "did:example:uni")))

	got, err := s.Get(ctx, "cred_001")
	require.NoError(t, err)
	assert.Equal(t, "EducationalCredential", got.CredentialType)
	assert.False(t, got.IsRevoked)
}

func TestCreateDuplicate(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, credential("cred_001", "did:example:alice", "did:example:uni")))
	err := s.Create(ctx, credential("cred_001", "did:example:bob", "did:example:uni"))
	require.ErrorIs(t, err, sentinel.ErrAlreadyExists)
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
			errs[i] = s.Create(ctx, credential("cred_001", "did:example:alice", "did:example:uni"))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestIndicesPreserveIssuanceOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, credential("cred_001", "did:example:alice", "did:example:uni")))
	require.NoError(t, s.Create(ctx, credential("cred_002", "did:example:alice", "did:example:city")))
	require.NoError(t, s.Create(ctx, credential("cred_003", "did:example:bob", "did:example:uni")))

	byHolder, err := s.ListByHolder(ctx, "did:example:alice")
	require.NoError(t, err)
	assert.Equal(t, []id.CredentialID{"cred_001", "cred_002"}, byHolder)

	byIssuer, err := s.ListByIssuer(ctx, "did:example:uni")
	require.NoError(t, err)
	assert.Equal(t, []id.CredentialID{"cred_001", "cred_003"}, byIssuer)
}

func TestListUnknownDIDIsEmpty(t *testing.T) {
	s := NewMemory()

	ids, err := s.ListByHolder(context.Background(), "did:example:nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUpdateUnknownCredential(t *testing.T) {
	s := NewMemory()
	err := s.Update(context.Background(), credential("cred_ghost", "did:example:alice", "did:example:uni"))
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}
