package repository

import (
	"context"
	"io"

	"interview-gateway/internal/domain/entity"

	"github.com/google/uuid"
)

// QuotaStore performs the check-then-increment for one key as a single atomic step.
type QuotaStore interface {
	CheckAndConsume(ctx context.Context, key string, limit int) (entity.QuotaDecision, error)
}

// TokenVerifier is the auth collaborator: bearer token -> verified user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// AIProvider is one backend text-generation integration.
// Every failure must be an *entity.LLMError.
type AIProvider interface {
	Name() string
	Model() string
	Generate(ctx context.Context, req entity.LLMRequest) (*entity.LLMResponse, error)
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// QuestionIndex stores generated questions for similarity lookup.
type QuestionIndex interface {
	Save(ctx context.Context, q entity.Question, roleTitle string, vector []float32) error
	Search(ctx context.Context, vector []float32, limit int) ([]entity.SimilarQuestion, error)
}

// InterviewStore is the relational store collaborator.
// Lookups return entity.ErrResourceNotFound when the row does not exist.
type InterviewStore interface {
	SaveAnalysis(ctx context.Context, a *entity.JobAnalysis) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*entity.JobAnalysis, error)
	CreateSession(ctx context.Context, s *entity.InterviewSession) error
	GetSession(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error)
	InsertQuestions(ctx context.Context, qs []entity.Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*entity.Question, error)
	ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]entity.Question, error)
	UpdateQuestionAnswer(ctx context.Context, id uuid.UUID, answer string, eval entity.AnswerEvaluation) error
}

type DocumentExtractor interface {
	ExtractText(filename string, r io.ReaderAt, size int64) (string, error)
}

type ReportRenderer interface {
	Render(w io.Writer, session *entity.InterviewSession, analysis *entity.JobAnalysis, questions []entity.Question) error
}
