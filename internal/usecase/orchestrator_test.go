package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"interview-gateway/internal/adapter/store"
	"interview-gateway/internal/domain/contract"
	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jdJSON = `{"company":"Acme","role_title":"Product Manager","parsed_skills":["SQL"],` +
		`"parsed_responsibilities":["roadmap"],"parsed_qualifications":["5 years"],"seniority_level":"mid"}`
	questionsJSON = "```json\n" + `[{"questionText":"Q1","questionType":"behavioral","difficulty":"easy","skillTags":["a"]},` +
		`{"questionText":"Q2","questionType":"technical","difficulty":"hard","skillTags":[]},` +
		`{"questionText":"Q3","questionType":"situational","difficulty":"medium","skillTags":["c"]}]` + "\n```"
	jobDescription = "Senior PM for payments, owning roadmap and metrics."
)

type memIndex struct {
	mu    sync.Mutex
	saved map[uuid.UUID]string
}

func (m *memIndex) Save(_ context.Context, q entity.Question, roleTitle string, _ []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[q.ID] = roleTitle
	return nil
}

func (m *memIndex) Search(context.Context, []float32, int) ([]entity.SimilarQuestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.SimilarQuestion
	for id, role := range m.saved {
		out = append(out, entity.SimilarQuestion{QuestionID: id, RoleTitle: role})
	}
	return out, nil
}

type constEmbedder struct{}

func (constEmbedder) CreateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func newTestOrchestrator(p *fakeProvider, opts ...OrchestratorOption) (*Orchestrator, *store.MemoryStore) {
	ms := store.NewMemoryStore()
	router := NewProviderRouter(map[entity.ProviderSelector]repository.AIProvider{
		entity.SelectorPrimary:  p,
		entity.SelectorFastFree: p,
	}, 0)
	return NewOrchestrator(router, ms, entity.SelectorPrimary, opts...), ms
}

func TestOrchestrator_FullFlow(t *testing.T) {
	p := &fakeProvider{name: "fake", replies: []string{jdJSON, questionsJSON, `{"score": "7", "feedback": ["Good", "Add data"]}`}}
	idx := &memIndex{saved: map[uuid.UUID]string{}}
	o, ms := newTestOrchestrator(p, WithQuestionIndex(constEmbedder{}, idx))
	ctx := context.Background()
	anon := entity.AnonymousIdentity("sess-A")

	analysis, err := o.ParseJobDescription(ctx, anon, ParseJobInput{RawText: jobDescription, ResumeText: "10 years in fintech"})
	require.NoError(t, err)
	assert.Equal(t, entity.SeniorityMid, analysis.SeniorityLevel)
	assert.Empty(t, analysis.UserID)

	session, questions, err := o.GenerateInterview(ctx, entity.AuthenticatedIdentity("user-9"), GenerateInterviewInput{
		JDAnalysisID:  analysis.ID,
		InterviewType: entity.InterviewMixed,
		QuestionCount: 2,
		Provider:      "groq",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-9", session.UserID)
	require.Len(t, questions, 2, "extra questions are dropped")
	assert.Equal(t, 2, session.TotalQuestions)
	assert.Equal(t, 1, questions[1].OrderIndex)

	eval, err := o.SubmitAnswer(ctx, SubmitAnswerInput{QuestionID: questions[0].ID, Answer: "My answer"})
	require.NoError(t, err)
	assert.Equal(t, 7, eval.Score)
	assert.Equal(t, "Good; Add data", eval.Feedback)

	stored, err := ms.GetQuestion(ctx, questions[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Answered())

	view, err := o.GetInterview(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID, view.Analysis.ID)
	assert.Len(t, view.Questions, 2)

	o.Wait()
	hits, err := o.SimilarQuestions(ctx, "launch", 5)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
	assert.Equal(t, "Product Manager", hits[0].RoleTitle)

	reqs := p.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, contract.MaxTokensJobDescription, reqs[0].MaxTokens)
	assert.Equal(t, contract.MaxTokensQuestions, reqs[1].MaxTokens)
	assert.Equal(t, contract.MaxTokensEvaluation, reqs[2].MaxTokens)
	assert.Contains(t, reqs[0].Prompt, "10 years in fintech")
}

func TestOrchestrator_InvalidInput(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeProvider{name: "fake", replies: []string{jdJSON}})
	ctx := context.Background()
	anon := entity.AnonymousIdentity("s")

	_, err := o.ParseJobDescription(ctx, anon, ParseJobInput{RawText: "short"})
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, err = o.ParseJobDescription(ctx, anon, ParseJobInput{RawText: jobDescription, Provider: "unknown"})
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, _, err = o.GenerateInterview(ctx, anon, GenerateInterviewInput{JDAnalysisID: uuid.New(), InterviewType: entity.InterviewMixed, QuestionCount: 21})
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, _, err = o.GenerateInterview(ctx, anon, GenerateInterviewInput{JDAnalysisID: uuid.New(), InterviewType: "panel", QuestionCount: 3})
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, _, err = o.GenerateInterview(ctx, anon, GenerateInterviewInput{JDAnalysisID: uuid.New(), InterviewType: entity.InterviewMixed, QuestionCount: 3})
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)

	_, err = o.SubmitAnswer(ctx, SubmitAnswerInput{QuestionID: uuid.New(), Answer: " "})
	assert.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, err = o.SubmitAnswer(ctx, SubmitAnswerInput{QuestionID: uuid.New(), Answer: "text"})
	assert.ErrorIs(t, err, entity.ErrResourceNotFound)

	_, err = o.SimilarQuestions(ctx, "x", 5)
	assert.ErrorIs(t, err, entity.ErrFeatureDisabled)
}

func TestOrchestrator_PropagatesKinds(t *testing.T) {
	o, _ := newTestOrchestrator(&fakeProvider{name: "fake", err: entity.NewAuthFailedError("fake", "bad key")})
	_, err := o.ParseJobDescription(context.Background(), entity.AnonymousIdentity("s"), ParseJobInput{RawText: jobDescription})
	assert.ErrorIs(t, err, entity.ErrProviderAuth)

	o, _ = newTestOrchestrator(&fakeProvider{name: "fake", replies: []string{`{"company": "Acme"}`}})
	_, err = o.ParseJobDescription(context.Background(), entity.AnonymousIdentity("s"), ParseJobInput{RawText: jobDescription})
	var perr *contract.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, contract.MissingField, perr.Kind)
	assert.Equal(t, "role_title", perr.Field)
}

func TestOrchestrator_EvaluationSchemaSelectsPrompt(t *testing.T) {
	p := &fakeProvider{name: "fake", replies: []string{jdJSON, questionsJSON, `{"score": 5, "feedback": "ok"}`}}
	o, _ := newTestOrchestrator(p, WithEvaluationSchema(entity.EvaluationV1))
	ctx := context.Background()
	id := entity.AuthenticatedIdentity("u")

	analysis, err := o.ParseJobDescription(ctx, id, ParseJobInput{RawText: jobDescription})
	require.NoError(t, err)
	_, qs, err := o.GenerateInterview(ctx, id, GenerateInterviewInput{JDAnalysisID: analysis.ID, InterviewType: entity.InterviewBehavioral, QuestionCount: 3})
	require.NoError(t, err)
	eval, err := o.SubmitAnswer(ctx, SubmitAnswerInput{QuestionID: qs[0].ID, Answer: "answer"})
	require.NoError(t, err)

	assert.Equal(t, entity.EvaluationV1, eval.SchemaVersion)
	last := p.Requests()[2].Prompt
	assert.Contains(t, last, "feedback")
	assert.NotContains(t, last, "suggestion")
}
