package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Values come from the
// environment so main stays lean.
type Server struct {
	Addr        string
	Environment string

	// DatabaseURL selects the Postgres-backed stores; empty means in-memory.
	DatabaseURL string
	// RedisURL enables the document-store read-through cache; empty disables it.
	RedisURL string
	// KafkaBrokers enables the audit event publisher; empty disables it.
	KafkaBrokers string

	// JWTSigningKey verifies caller bearer tokens.
	JWTSigningKey string
	// DevPrincipalHeader allows the X-Principal header instead of a bearer
	// token. Never enable outside local development.
	DevPrincipalHeader bool

	// RejectOnInvalidProof controls verification resolution: true leaves a
	// request pending when its proof fails the check; false reproduces the
	// lenient mode that marks every request verified.
	RejectOnInvalidProof bool
	// CircuitTypes is the recognized circuit set for verification requests.
	CircuitTypes []string

	ShutdownTimeout time.Duration
}

// DefaultCircuitTypes is the circuit set recognized out of the box. The set is
// extensible through VERIDIAN_CIRCUITS, not hard-coded in the ledger core.
var DefaultCircuitTypes = []string{"age_verification", "credential_ownership", "selective_disclosure"}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("VERIDIAN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	env := os.Getenv("VERIDIAN_ENV")
	if env == "" {
		env = "development"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	circuits := DefaultCircuitTypes
	if raw := os.Getenv("VERIDIAN_CIRCUITS"); raw != "" {
		circuits = nil
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				circuits = append(circuits, c)
			}
		}
	}

	return Server{
		Addr:                 addr,
		Environment:          env,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisURL:             os.Getenv("REDIS_URL"),
		KafkaBrokers:         os.Getenv("KAFKA_BROKERS"),
		JWTSigningKey:        jwtSigningKey,
		DevPrincipalHeader:   os.Getenv("VERIDIAN_DEV_PRINCIPAL_HEADER") == "true",
		RejectOnInvalidProof: os.Getenv("VERIDIAN_ACCEPT_INVALID_PROOFS") != "true",
		CircuitTypes:         circuits,
		ShutdownTimeout:      10 * time.Second,
	}
}
