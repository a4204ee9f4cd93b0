package usecase

import (
	"context"
	"log/slog"
	"strings"

	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
)

// IdentityResolver turns request headers into a caller identity. It never fails: a missing,
// malformed or rejected bearer token degrades to the anonymous session.
type IdentityResolver struct {
	verifier repository.TokenVerifier
	log      *slog.Logger
}

// NewIdentityResolver accepts a nil verifier, in which case every caller is anonymous.
func NewIdentityResolver(verifier repository.TokenVerifier) *IdentityResolver {
	return &IdentityResolver{
		verifier: verifier,
		log:      slog.Default().With("component", "identity"),
	}
}

func (r *IdentityResolver) Resolve(ctx context.Context, authorization, sessionID string) entity.Identity {
	if token, ok := bearerToken(authorization); ok && r.verifier != nil {
		userID, err := r.verifier.Verify(ctx, token)
		if err == nil && userID != "" {
			return entity.AuthenticatedIdentity(userID)
		}
		r.log.Debug("bearer token rejected, treating caller as anonymous", "error", err)
	}
	return entity.AnonymousIdentity(strings.TrimSpace(sessionID))
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
