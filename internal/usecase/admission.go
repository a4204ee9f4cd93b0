package usecase

import (
	"context"
	"fmt"

	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
)

// AdmissionGate decides per request whether a caller may spend one quota unit.
type AdmissionGate struct {
	store repository.QuotaStore
	limit int
}

func NewAdmissionGate(store repository.QuotaStore, limit int) *AdmissionGate {
	if limit <= 0 {
		limit = entity.DefaultDailyLimit
	}
	return &AdmissionGate{store: store, limit: limit}
}

func (g *AdmissionGate) Limit() int {
	return g.limit
}

// Admit checks the caller against the quota. A non-positive limit means the gate's default.
// Authenticated callers bypass the store and get Remaining = limit with a zero ResetAt.
func (g *AdmissionGate) Admit(ctx context.Context, id entity.Identity, limit int) (entity.AdmissionResult, error) {
	if limit <= 0 {
		limit = g.limit
	}
	if id.IsAuthenticated() {
		return entity.AdmissionResult{Proceed: true, Remaining: limit, Bypassed: true}, nil
	}

	d, err := g.store.CheckAndConsume(ctx, id.QuotaKey(), limit)
	if err != nil {
		return entity.AdmissionResult{}, fmt.Errorf("quota check failed: %w", err)
	}
	return entity.AdmissionResult{Proceed: d.Allowed, Remaining: d.Remaining, ResetAt: d.ResetAt}, nil
}
