package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"veridian/internal/docstore"
	"veridian/internal/identity/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Postgres persists DID records in the dids table. The primary key on did and
// the unique index on owner give Create its one-winner guarantee.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, record *models.DIDRecord) error {
	query := `
		INSERT INTO dids (did, owner, document_handle, public_keys, services, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.DID.String(),
		record.Owner.String(),
		record.DocumentHandle.String(),
		pq.Array(record.PublicKeys),
		pq.Array(record.Services),
		record.IsActive,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			if pqErr.Constraint == "dids_owner_key" {
				return fmt.Errorf("owner %s: %w", record.Owner, sentinel.ErrOwnerAlreadyBound)
			}
			return fmt.Errorf("did %s: %w", record.DID, sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create did: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, did id.DID) (*models.DIDRecord, error) {
	query := `
		SELECT did, owner, document_handle, public_keys, services, is_active, created_at, updated_at
		FROM dids
		WHERE did = $1
	`
	record, err := scanDID(s.db.QueryRowContext(ctx, query, did.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("did %s: %w", did, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get did: %w", err)
	}
	return record, nil
}

func (s *Postgres) Update(ctx context.Context, record *models.DIDRecord) error {
	query := `
		UPDATE dids
		SET document_handle = $2, public_keys = $3, services = $4, is_active = $5, updated_at = $6
		WHERE did = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		record.DID.String(),
		record.DocumentHandle.String(),
		pq.Array(record.PublicKeys),
		pq.Array(record.Services),
		record.IsActive,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update did: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update did rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("did %s: %w", record.DID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) GetByOwner(ctx context.Context, owner id.Principal) (*models.DIDRecord, error) {
	query := `
		SELECT did, owner, document_handle, public_keys, services, is_active, created_at, updated_at
		FROM dids
		WHERE owner = $1
	`
	record, err := scanDID(s.db.QueryRowContext(ctx, query, owner.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("owner %s: %w", owner, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get did by owner: %w", err)
	}
	return record, nil
}

func (s *Postgres) Exists(ctx context.Context, did id.DID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM dids WHERE did = $1)`, did.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("did exists: %w", err)
	}
	return exists, nil
}

func scanDID(row *sql.Row) (*models.DIDRecord, error) {
	var (
		record models.DIDRecord
		did    string
		owner  string
		handle string
	)
	err := row.Scan(
		&did,
		&owner,
		&handle,
		pq.Array(&record.PublicKeys),
		pq.Array(&record.Services),
		&record.IsActive,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.DID = id.DID(did)
	record.Owner = id.Principal(owner)
	record.DocumentHandle = docstore.Handle(handle)
	return &record, nil
}
