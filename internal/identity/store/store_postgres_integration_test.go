//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veridian/internal/identity/models"
	"veridian/internal/identity/store"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
	"veridian/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "dids"))
}

func (s *PostgresStoreSuite) record(did, owner string) *models.DIDRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.DIDRecord{
		DID:            id.DID(did),
		Owner:          id.Principal(owner),
		DocumentHandle: "bafkreigh2akiscaildc",
		PublicKeys:     []string{"key-1"},
		Services:       []string{"https://example.com/svc"},
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()

	rec := s.record("did:example:alice", "0xowner-alice")
	s.Require().NoError(s.store.Create(ctx, rec))

	got, err := s.store.Get(ctx, rec.DID)
	s.Require().NoError(err)
	s.Equal(rec.Owner, got.Owner)
	s.Equal(rec.PublicKeys, got.PublicKeys)
	s.True(got.IsActive)

	_, err = s.store.Get(ctx, "did:example:ghost")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateDID() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.record("did:example:alice", "0xowner-a")))
	err := s.store.Create(ctx, s.record("did:example:alice", "0xowner-b"))
	s.ErrorIs(err, sentinel.ErrAlreadyExists)
}

func (s *PostgresStoreSuite) TestOwnerAlreadyBound() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.record("did:example:alice", "0xowner-a")))
	err := s.store.Create(ctx, s.record("did:example:bob", "0xowner-a"))
	s.ErrorIs(err, sentinel.ErrOwnerAlreadyBound)
}

func (s *PostgresStoreSuite) TestUpdateAndGetByOwner() {
	ctx := context.Background()

	rec := s.record("did:example:alice", "0xowner-a")
	s.Require().NoError(s.store.Create(ctx, rec))

	rec.IsActive = false
	rec.PublicKeys = []string{"key-1", "key-2"}
	rec.UpdatedAt = rec.UpdatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Update(ctx, rec))

	got, err := s.store.GetByOwner(ctx, rec.Owner)
	s.Require().NoError(err)
	s.False(got.IsActive)
	s.Len(got.PublicKeys, 2)

	s.ErrorIs(s.store.Update(ctx, s.record("did:example:ghost", "0xowner-z")), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestExists() {
	ctx := context.Background()

	s.Require().NoError(s.store.Create(ctx, s.record("did:example:alice", "0xowner-a")))

	exists, err := s.store.Exists(ctx, "did:example:alice")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.store.Exists(ctx, "did:example:ghost")
	s.Require().NoError(err)
	s.False(exists)
}

// TestConcurrentCreateOneWinner verifies the primary key gives concurrent
// registrations of the same DID exactly one winner.
func (s *PostgresStoreSuite) TestConcurrentCreateOneWinner() {
	ctx := context.Background()
	did := "did:example:" + uuid.NewString()

	const goroutines = 20
	var wg sync.WaitGroup
	errs := make(chan error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.store.Create(ctx, s.record(did, "0xowner-"+uuid.NewString()))
		}()
	}
	wg.Wait()
	close(errs)

	var won int
	for err := range errs {
		if err == nil {
			won++
		}
	}
	s.Equal(1, won, "exactly one concurrent create succeeds")
}
