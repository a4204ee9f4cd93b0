package client

import (
	"context"

	"interview-gateway/internal/domain/entity"
)

// Unconfigured stands in for a backend whose credential is missing. It keeps the selector in the
// routing table so callers get an auth failure instead of an unknown-provider error.
type Unconfigured struct {
	name   string
	model  string
	envVar string
}

func NewUnconfigured(name, model, envVar string) *Unconfigured {
	return &Unconfigured{name: name, model: model, envVar: envVar}
}

func (u *Unconfigured) Name() string     { return u.name }
func (u *Unconfigured) Model() string    { return u.model }
func (u *Unconfigured) Configured() bool { return false }

func (u *Unconfigured) Generate(context.Context, entity.LLMRequest) (*entity.LLMResponse, error) {
	return nil, entity.NewAuthFailedError(u.name, u.envVar+" is not set")
}
