package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"veridian/internal/verification/models"
	id "veridian/pkg/domain"
	"veridian/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists verification requests in the verification_requests table.
// The seq BIGSERIAL column materializes the global submission order.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed verification store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, request *models.VerificationRequest) error {
	inputs, err := json.Marshal(request.PublicInputs)
	if err != nil {
		return fmt.Errorf("marshal public inputs: %w", err)
	}

	query := `
		INSERT INTO verification_requests (
			request_id, credential_id, verifier_did, circuit_type,
			proof_blob, public_inputs, status, requested_at, verified_at, verification_result
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		request.RequestID.String(),
		request.CredentialID.String(),
		request.VerifierDID.String(),
		request.CircuitType,
		// lib/pq encodes []byte as bytea, so JSON payloads go over as text.
		string(request.ProofBlob),
		string(inputs),
		string(request.Status),
		request.RequestedAt,
		nullTime(request.VerifiedAt),
		request.VerificationResult,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return fmt.Errorf("request %s: %w", request.RequestID, sentinel.ErrAlreadyExists)
		}
		return fmt.Errorf("create verification request: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	query := selectColumns + ` WHERE request_id = $1`
	request, err := scanRequest(s.db.QueryRowContext(ctx, query, requestID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("request %s: %w", requestID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("get verification request: %w", err)
	}
	return request, nil
}

func (s *Postgres) Update(ctx context.Context, request *models.VerificationRequest) error {
	query := `
		UPDATE verification_requests
		SET status = $2, verified_at = $3, verification_result = $4
		WHERE request_id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		request.RequestID.String(),
		string(request.Status),
		nullTime(request.VerifiedAt),
		request.VerificationResult,
	)
	if err != nil {
		return fmt.Errorf("update verification request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update verification request rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("request %s: %w", request.RequestID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *Postgres) Total(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM verification_requests`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count verification requests: %w", err)
	}
	return total, nil
}

func (s *Postgres) AtIndex(ctx context.Context, index int) (id.RequestID, error) {
	if index < 0 {
		return "", fmt.Errorf("index %d: %w", index, sentinel.ErrOutOfRange)
	}
	var requestID string
	err := s.db.QueryRowContext(ctx,
		`SELECT request_id FROM verification_requests ORDER BY seq ASC OFFSET $1 LIMIT 1`, index,
	).Scan(&requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("index %d: %w", index, sentinel.ErrOutOfRange)
		}
		return "", fmt.Errorf("verification request at index: %w", err)
	}
	return id.RequestID(requestID), nil
}

func (s *Postgres) List(ctx context.Context, offset, limit int) ([]*models.VerificationRequest, error) {
	if offset < 0 || limit <= 0 {
		return []*models.VerificationRequest{}, nil
	}
	query := selectColumns + ` ORDER BY seq ASC OFFSET $1 LIMIT $2`
	rows, err := s.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}
	defer rows.Close()

	out := []*models.VerificationRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan verification request: %w", err)
		}
		out = append(out, request)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT request_id, credential_id, verifier_did, circuit_type,
	       proof_blob, public_inputs, status, requested_at, verified_at, verification_result
	FROM verification_requests`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.VerificationRequest, error) {
	var (
		request      models.VerificationRequest
		requestID    string
		credentialID string
		verifierDID  string
		proofBlob    []byte
		inputs       []byte
		status       string
		verifiedAt   sql.NullTime
	)
	err := row.Scan(
		&requestID,
		&credentialID,
		&verifierDID,
		&request.CircuitType,
		&proofBlob,
		&inputs,
		&status,
		&request.RequestedAt,
		&verifiedAt,
		&request.VerificationResult,
	)
	if err != nil {
		return nil, err
	}
	request.RequestID = id.RequestID(requestID)
	request.CredentialID = id.CredentialID(credentialID)
	request.VerifierDID = id.DID(verifierDID)
	request.ProofBlob = proofBlob
	request.Status = models.Status(status)
	if verifiedAt.Valid {
		request.VerifiedAt = verifiedAt.Time
	}
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &request.PublicInputs); err != nil {
			return nil, fmt.Errorf("unmarshal public inputs: %w", err)
		}
	}
	return &request, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
