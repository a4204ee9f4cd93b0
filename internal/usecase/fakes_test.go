package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"interview-gateway/internal/domain/entity"
)

type spyQuotaStore struct {
	mu       sync.Mutex
	calls    int
	keys     []string
	decision entity.QuotaDecision
	err      error
}

func (s *spyQuotaStore) CheckAndConsume(_ context.Context, key string, limit int) (entity.QuotaDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.keys = append(s.keys, key)
	return s.decision, s.err
}

type stubVerifier struct {
	users map[string]string
	err   error
	calls int
}

func (v *stubVerifier) Verify(_ context.Context, token string) (string, error) {
	v.calls++
	if v.err != nil {
		return "", v.err
	}
	if id, ok := v.users[token]; ok {
		return id, nil
	}
	return "", errors.New("invalid token")
}

// fakeProvider returns replies in order, repeating the last one.
type fakeProvider struct {
	mu       sync.Mutex
	name     string
	replies  []string
	err      error
	delay    time.Duration
	requests []entity.LLMRequest
}

func (p *fakeProvider) Name() string  { return p.name }
func (p *fakeProvider) Model() string { return p.name + "-model" }

func (p *fakeProvider) Generate(ctx context.Context, req entity.LLMRequest) (*entity.LLMResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	err := p.err
	var reply string
	if len(p.replies) > 0 {
		reply = p.replies[0]
		if len(p.replies) > 1 {
			p.replies = p.replies[1:]
		}
	}
	p.mu.Unlock()

	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &entity.LLMResponse{Content: reply}, nil
}

func (p *fakeProvider) Requests() []entity.LLMRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.LLMRequest(nil), p.requests...)
}
