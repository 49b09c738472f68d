// Package principal resolves the caller principal for owner-gated operations.
//
// Callers authenticate with a Bearer JWT whose `sub` claim carries their
// principal (a wallet address or comparable opaque handle). In development
// mode the X-Principal header is accepted instead, mirroring the unauthenticated
// wallet-address flow of local deployments.
package principal

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "veridian/pkg/domain"
	dErrors "veridian/pkg/domain-errors"
	"veridian/pkg/requestcontext"
)

// Resolver extracts the caller principal from incoming requests.
type Resolver struct {
	signingKey  []byte
	allowHeader bool
	logger      *slog.Logger
}

// NewResolver builds a Resolver. When allowHeader is true the X-Principal
// header is honored for requests without a bearer token (dev mode only).
func NewResolver(signingKey string, allowHeader bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		signingKey:  []byte(signingKey),
		allowHeader: allowHeader,
		logger:      logger,
	}
}

// Middleware injects the caller principal into the request context when one
// can be resolved. It never rejects the request: read-only endpoints work
// anonymously, and owner-gated handlers fail with forbidden/invalid_input when
// no principal is present.
func (res *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if p, ok := res.fromBearer(ctx, r); ok {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, p)))
			return
		}
		if res.allowHeader {
			if raw := strings.TrimSpace(r.Header.Get("X-Principal")); raw != "" {
				next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, id.Principal(raw))))
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (res *Resolver) fromBearer(ctx context.Context, r *http.Request) (id.Principal, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "unexpected signing method")
		}
		return res.signingKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		res.logger.WarnContext(ctx, "rejecting bearer token",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", false
	}
	return id.Principal(claims.Subject), true
}

// Require returns the caller principal or a forbidden error when the request
// carried none. Owner-gated handlers call this before touching the registry.
func Require(ctx context.Context) (id.Principal, error) {
	p := requestcontext.Principal(ctx)
	if p.IsNil() {
		return "", dErrors.New(dErrors.CodeForbidden, "caller principal is required")
	}
	return p, nil
}
