package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"interview-gateway/internal/domain/contract"
	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	minJobDescriptionLength = 20
	maxQuestionCount        = 20
	indexTimeout            = 30 * time.Second
	indexConcurrency        = 4
)

// Orchestrator runs the interview flows: parse a job description, generate a question set,
// evaluate an answer. Admission happens before it is called.
type Orchestrator struct {
	router          *ProviderRouter
	store           repository.InterviewStore
	embedder        repository.Embedder
	index           repository.QuestionIndex
	defaultProvider entity.ProviderSelector
	evalSchema      entity.EvaluationSchema
	log             *slog.Logger
	indexing        sync.WaitGroup
}

type OrchestratorOption func(*Orchestrator)

// WithQuestionIndex enables similar-question lookup. Both dependencies are required.
func WithQuestionIndex(emb repository.Embedder, idx repository.QuestionIndex) OrchestratorOption {
	return func(o *Orchestrator) {
		o.embedder = emb
		o.index = idx
	}
}

func WithEvaluationSchema(v entity.EvaluationSchema) OrchestratorOption {
	return func(o *Orchestrator) {
		o.evalSchema = v
	}
}

func NewOrchestrator(router *ProviderRouter, store repository.InterviewStore, defaultProvider entity.ProviderSelector, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		router:          router,
		store:           store,
		defaultProvider: defaultProvider,
		evalSchema:      entity.EvaluationV2,
		log:             slog.Default().With("component", "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DefaultProvider is the selector used when a request names none.
func (o *Orchestrator) DefaultProvider() entity.ProviderSelector {
	return o.defaultProvider
}

func (o *Orchestrator) selector(name string) (entity.ProviderSelector, error) {
	if strings.TrimSpace(name) == "" {
		return o.defaultProvider, nil
	}
	return entity.ParseProviderSelector(name)
}

type ParseJobInput struct {
	RawText    string
	ResumeText string
	Provider   string
}

// ParseJobDescription extracts and persists a job-description analysis owned by the caller.
func (o *Orchestrator) ParseJobDescription(ctx context.Context, caller entity.Identity, in ParseJobInput) (*entity.JobAnalysis, error) {
	if len(strings.TrimSpace(in.RawText)) < minJobDescriptionLength {
		return nil, fmt.Errorf("%w: rawText must be at least %d characters", entity.ErrInvalidRequest, minJobDescriptionLength)
	}
	sel, err := o.selector(in.Provider)
	if err != nil {
		return nil, err
	}

	resp, err := o.router.Call(ctx, sel, contract.JobDescriptionPrompt(in.RawText, in.ResumeText), contract.MaxTokensJobDescription)
	if err != nil {
		return nil, fmt.Errorf("parse job description: %w", err)
	}
	parsed, err := contract.ParseJobDescription(resp.Content)
	if err != nil {
		o.logParseFailure("parse job description", resp, err)
		return nil, fmt.Errorf("parse job description: %w", err)
	}

	analysis := &entity.JobAnalysis{
		ID:                   uuid.New(),
		UserID:               caller.UserID(),
		RawText:              in.RawText,
		ResumeText:           in.ResumeText,
		ParsedJobDescription: *parsed,
		CreatedAt:            time.Now().UTC(),
	}
	if err := o.store.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return analysis, nil
}

type GenerateInterviewInput struct {
	JDAnalysisID  uuid.UUID
	InterviewType entity.InterviewType
	QuestionCount int
	Provider      string
}

// GenerateInterview creates a session with freshly generated questions for a stored analysis.
// The session belongs to the authenticated caller, or to the analysis owner for anonymous callers.
func (o *Orchestrator) GenerateInterview(ctx context.Context, caller entity.Identity, in GenerateInterviewInput) (*entity.InterviewSession, []entity.Question, error) {
	if in.QuestionCount < 1 || in.QuestionCount > maxQuestionCount {
		return nil, nil, fmt.Errorf("%w: questionCount must be between 1 and %d", entity.ErrInvalidRequest, maxQuestionCount)
	}
	switch in.InterviewType {
	case entity.InterviewBehavioral, entity.InterviewTechnical, entity.InterviewMixed:
	default:
		return nil, nil, fmt.Errorf("%w: unknown interview type %q", entity.ErrInvalidRequest, in.InterviewType)
	}
	sel, err := o.selector(in.Provider)
	if err != nil {
		return nil, nil, err
	}

	analysis, err := o.store.GetAnalysis(ctx, in.JDAnalysisID)
	if err != nil {
		return nil, nil, fmt.Errorf("job analysis %s: %w", in.JDAnalysisID, err)
	}

	prompt := contract.QuestionsPrompt(contract.QuestionsInput{
		RawText:       analysis.RawText,
		RoleTitle:     analysis.RoleTitle,
		Company:       analysis.Company,
		Skills:        analysis.Skills,
		InterviewType: in.InterviewType,
		Count:         in.QuestionCount,
	})
	resp, err := o.router.Call(ctx, sel, prompt, contract.MaxTokensQuestions)
	if err != nil {
		return nil, nil, fmt.Errorf("generate questions: %w", err)
	}
	generated, err := contract.ParseQuestions(resp.Content, in.QuestionCount)
	if err != nil {
		o.logParseFailure("generate questions", resp, err)
		return nil, nil, fmt.Errorf("generate questions: %w", err)
	}

	owner := caller.UserID()
	if owner == "" {
		owner = analysis.UserID
	}
	session := &entity.InterviewSession{
		ID:             uuid.New(),
		UserID:         owner,
		JDAnalysisID:   analysis.ID,
		InterviewType:  in.InterviewType,
		TotalQuestions: len(generated),
		Status:         entity.SessionInProgress,
		StartedAt:      time.Now().UTC(),
	}
	if err := o.store.CreateSession(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	questions := make([]entity.Question, len(generated))
	for i, g := range generated {
		questions[i] = entity.Question{
			ID:                uuid.New(),
			SessionID:         session.ID,
			OrderIndex:        i,
			GeneratedQuestion: g,
		}
	}
	if err := o.store.InsertQuestions(ctx, questions); err != nil {
		return nil, nil, fmt.Errorf("failed to save questions: %w", err)
	}

	o.indexQuestions(questions, analysis.RoleTitle)
	return session, questions, nil
}

type SubmitAnswerInput struct {
	QuestionID uuid.UUID
	Answer     string
	Provider   string
}

// SubmitAnswer scores an answer and stores it with the feedback on the question row.
func (o *Orchestrator) SubmitAnswer(ctx context.Context, in SubmitAnswerInput) (*entity.AnswerEvaluation, error) {
	if strings.TrimSpace(in.Answer) == "" {
		return nil, fmt.Errorf("%w: userAnswer is required", entity.ErrInvalidRequest)
	}
	sel, err := o.selector(in.Provider)
	if err != nil {
		return nil, err
	}

	q, err := o.store.GetQuestion(ctx, in.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("question %s: %w", in.QuestionID, err)
	}

	prompt := contract.EvaluationPrompt(contract.EvaluationInput{
		QuestionText: q.Text,
		QuestionType: q.Type,
		Answer:       in.Answer,
		Schema:       o.evalSchema,
	})
	resp, err := o.router.Call(ctx, sel, prompt, contract.MaxTokensEvaluation)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}
	eval, err := contract.ParseEvaluation(resp.Content)
	if err != nil {
		o.logParseFailure("evaluate answer", resp, err)
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	if err := o.store.UpdateQuestionAnswer(ctx, q.ID, in.Answer, *eval); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	return eval, nil
}

// InterviewView is a session with its analysis and ordered questions.
type InterviewView struct {
	Session   *entity.InterviewSession `json:"session"`
	Analysis  *entity.JobAnalysis      `json:"analysis"`
	Questions []entity.Question        `json:"questions"`
}

func (o *Orchestrator) GetInterview(ctx context.Context, sessionID uuid.UUID) (*InterviewView, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	analysis, err := o.store.GetAnalysis(ctx, session.JDAnalysisID)
	if err != nil {
		return nil, fmt.Errorf("job analysis %s: %w", session.JDAnalysisID, err)
	}
	questions, err := o.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("questions for session %s: %w", sessionID, err)
	}
	return &InterviewView{Session: session, Analysis: analysis, Questions: questions}, nil
}

// SimilarQuestions looks up previously generated questions close to query.
func (o *Orchestrator) SimilarQuestions(ctx context.Context, query string, limit int) ([]entity.SimilarQuestion, error) {
	if o.index == nil || o.embedder == nil {
		return nil, entity.ErrFeatureDisabled
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", entity.ErrInvalidRequest)
	}
	vector, err := o.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return o.index.Search(ctx, vector, limit)
}

// indexQuestions embeds and stores questions in the background. The request context is not used
// because the response may be written before indexing completes.
func (o *Orchestrator) indexQuestions(questions []entity.Question, roleTitle string) {
	if o.index == nil || o.embedder == nil || len(questions) == 0 {
		return
	}
	o.indexing.Add(1)
	go func() {
		defer o.indexing.Done()
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(indexConcurrency)
		for _, q := range questions {
			g.Go(func() error {
				vector, err := o.embedder.CreateEmbedding(gctx, q.Text)
				if err != nil {
					return fmt.Errorf("embed question %s: %w", q.ID, err)
				}
				return o.index.Save(gctx, q, roleTitle, vector)
			})
		}
		if err := g.Wait(); err != nil {
			o.log.Warn("question indexing failed", "error", err)
		}
	}()
}

// Wait blocks until background indexing has finished.
func (o *Orchestrator) Wait() {
	o.indexing.Wait()
}

func (o *Orchestrator) logParseFailure(op string, resp *entity.LLMResponse, err error) {
	var perr *contract.ParseError
	if !errors.As(err, &perr) {
		return
	}
	o.log.Error("unusable ai output",
		"op", op,
		"provider", resp.Provider,
		"model", resp.Model,
		"kind", perr.Kind.String(),
		"field", perr.Field,
		"raw", perr.Raw,
	)
}
