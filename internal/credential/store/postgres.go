package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"veridian/internal/credential/models"
	"veridian/internal/docstore"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists credentials in the credentials table. The holder and
// issuer indices are btree indexes over the same rows; the seq column keeps
// issuance order for the list queries.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, credential *models.Credential) error {
	query := `
		INSERT INTO credentials (
			credential_id, issuer_did, holder_did, credential_type,
			document_handle, attributes, metadata, issued_at, expires_at, is_revoked
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		credential.CredentialID.String(),
		credential.IssuerDID.String(),
		credential.HolderDID.String(),
		credential.CredentialType,
		credential.DocumentHandle.String(),
		pq.Array(credential.Attributes),
		credential.Metadata,
		credential.IssuedAt,
		nullTime(credential.ExpiresAt),
		credential.IsRevoked,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("credential %s: %w", credential.CredentialID, sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	query := `
		SELECT credential_id, issuer_did, holder_did, credential_type,
		       document_handle, attributes, metadata, issued_at, expires_at, is_revoked
		FROM credentials
		WHERE credential_id = $1
	`
	credential, err := scanCredential(s.db.QueryRowContext(ctx, query, credentialID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("credential %s: %w", credentialID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return credential, nil
}

func (s *Postgres) Update(ctx context.Context, credential *models.Credential) error {
	query := `
		UPDATE credentials
		SET document_handle = $2, attributes = $3, metadata = $4, is_revoked = $5
		WHERE credential_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		credential.CredentialID.String(),
		credential.DocumentHandle.String(),
		pq.Array(credential.Attributes),
		credential.Metadata,
		credential.IsRevoked,
	)
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update credential rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("credential %s: %w", credential.CredentialID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) ListByHolder(ctx context.Context, holderDID id.DID) ([]id.CredentialID, error) {
	return s.listBy(ctx, "holder_did", holderDID)
}

func (s *Postgres) ListByIssuer(ctx context.Context, issuerDID id.DID) ([]id.CredentialID, error) {
	return s.listBy(ctx, "issuer_did", issuerDID)
}

func (s *Postgres) listBy(ctx context.Context, column string, did id.DID) ([]id.CredentialID, error) {
	query := fmt.Sprintf(`SELECT credential_id FROM credentials WHERE %s = $1 ORDER BY seq ASC`, column)
	rows, err := s.db.QueryContext(ctx, query, did.String())
	if err != nil {
		return nil, fmt.Errorf("list credentials by %s: %w", column, err)
	}
	defer rows.Close()

	ids := []id.CredentialID{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan credential id: %w", err)
		}
		ids = append(ids, id.CredentialID(raw))
	}
	return ids, rows.Err()
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	var (
		credential   models.Credential
		credentialID string
		issuerDID    string
		holderDID    string
		handle       string
		expiresAt    sql.NullTime
	)
	err := row.Scan(
		&credentialID,
		&issuerDID,
		&holderDID,
		&credential.CredentialType,
		&handle,
		pq.Array(&credential.Attributes),
		&credential.Metadata,
		&credential.IssuedAt,
		&expiresAt,
		&credential.IsRevoked,
	)
	if err != nil {
		return nil, err
	}
	credential.CredentialID = id.CredentialID(credentialID)
	credential.IssuerDID = id.DID(issuerDID)
	credential.HolderDID = id.DID(holderDID)
	credential.DocumentHandle = docstore.Handle(handle)
	if expiresAt.Valid {
		credential.ExpiresAt = expiresAt.Time
	}
	return &credential, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
