package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"interview-gateway/internal/domain/entity"

	"github.com/google/uuid"
)

// MemoryStore is an InterviewStore for single-process and development use.
type MemoryStore struct {
	mu        sync.RWMutex
	analyses  map[uuid.UUID]entity.JobAnalysis
	sessions  map[uuid.UUID]entity.InterviewSession
	questions map[uuid.UUID]entity.Question
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses:  make(map[uuid.UUID]entity.JobAnalysis),
		sessions:  make(map[uuid.UUID]entity.InterviewSession),
		questions: make(map[uuid.UUID]entity.Question),
	}
}

func (m *MemoryStore) SaveAnalysis(_ context.Context, a *entity.JobAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[a.ID] = *a
	return nil
}

func (m *MemoryStore) GetAnalysis(_ context.Context, id uuid.UUID) (*entity.JobAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.analyses[id]
	if !ok {
		return nil, entity.ErrResourceNotFound
	}
	return &a, nil
}

func (m *MemoryStore) CreateSession(_ context.Context, s *entity.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, entity.ErrResourceNotFound
	}
	return &s, nil
}

func (m *MemoryStore) InsertQuestions(_ context.Context, qs []entity.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range qs {
		m.questions[q.ID] = q
	}
	return nil
}

func (m *MemoryStore) GetQuestion(_ context.Context, id uuid.UUID) (*entity.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, entity.ErrResourceNotFound
	}
	return &q, nil
}

func (m *MemoryStore) ListQuestions(_ context.Context, sessionID uuid.UUID) ([]entity.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.Question
	for _, q := range m.questions {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (m *MemoryStore) UpdateQuestionAnswer(_ context.Context, id uuid.UUID, answer string, eval entity.AnswerEvaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return entity.ErrResourceNotFound
	}
	now := time.Now().UTC()
	score := eval.Score
	q.UserAnswer = answer
	q.Feedback = eval.Summary()
	q.Evaluation = &eval
	q.Score = &score
	q.AnsweredAt = &now
	m.questions[id] = q
	return nil
}
