package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SeniorityLevel string

const (
	SeniorityEntry     SeniorityLevel = "Entry"
	SeniorityMid       SeniorityLevel = "Mid"
	SenioritySenior    SeniorityLevel = "Senior"
	SeniorityLead      SeniorityLevel = "Lead"
	SeniorityExecutive SeniorityLevel = "Executive"
)

// ParseSeniority matches case-insensitively against the fixed enumeration.
func ParseSeniority(s string) (SeniorityLevel, bool) {
	for _, lvl := range []SeniorityLevel{SeniorityEntry, SeniorityMid, SenioritySenior, SeniorityLead, SeniorityExecutive} {
		if strings.EqualFold(strings.TrimSpace(s), string(lvl)) {
			return lvl, true
		}
	}
	return "", false
}

type QuestionType string

const (
	QuestionBehavioral  QuestionType = "behavioral"
	QuestionTechnical   QuestionType = "technical"
	QuestionSituational QuestionType = "situational"
)

func ParseQuestionType(s string) (QuestionType, bool) {
	switch t := QuestionType(strings.ToLower(strings.TrimSpace(s))); t {
	case QuestionBehavioral, QuestionTechnical, QuestionSituational:
		return t, true
	}
	return "", false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, true
	}
	return "", false
}

// InterviewType is the mix of questions requested for a session.
type InterviewType string

const (
	InterviewBehavioral InterviewType = "behavioral"
	InterviewTechnical  InterviewType = "technical"
	InterviewMixed      InterviewType = "mixed"
)

// ParsedJobDescription is the structured extraction of a job posting.
type ParsedJobDescription struct {
	Company          string         `json:"company"`
	RoleTitle        string         `json:"role_title"`
	Skills           []string       `json:"parsed_skills"`
	Responsibilities []string       `json:"parsed_responsibilities"`
	Qualifications   []string       `json:"parsed_qualifications"`
	SeniorityLevel   SeniorityLevel `json:"seniority_level"`
}

// GeneratedQuestion is one interview question produced in bulk from a single provider call.
type GeneratedQuestion struct {
	Text       string       `json:"questionText"`
	Type       QuestionType `json:"questionType"`
	Difficulty Difficulty   `json:"difficulty"`
	SkillTags  []string     `json:"skillTags"`
}

// EvaluationSchema versions the answer-feedback shape.
type EvaluationSchema string

const (
	// EvaluationV1 is the legacy {score, feedback} shape.
	EvaluationV1 EvaluationSchema = "v1"
	// EvaluationV2 is the structured {score, strengths, weaknesses, suggestion} shape.
	EvaluationV2 EvaluationSchema = "v2"
)

func ParseEvaluationSchema(s string) (EvaluationSchema, bool) {
	switch v := EvaluationSchema(strings.ToLower(strings.TrimSpace(s))); v {
	case EvaluationV1, EvaluationV2:
		return v, true
	}
	return "", false
}

// AnswerEvaluation is the AI score for a single answer.
type AnswerEvaluation struct {
	SchemaVersion EvaluationSchema `json:"schemaVersion"`
	Score         int              `json:"score"`
	Feedback      string           `json:"feedback,omitempty"`
	Strengths     string           `json:"strengths,omitempty"`
	Weaknesses    string           `json:"weaknesses,omitempty"`
	Suggestion    string           `json:"suggestion,omitempty"`
}

// Summary flattens either shape into the single feedback text persisted with the answer.
func (e AnswerEvaluation) Summary() string {
	if e.SchemaVersion != EvaluationV2 {
		return e.Feedback
	}
	var parts []string
	if e.Strengths != "" {
		parts = append(parts, "Strengths: "+e.Strengths)
	}
	if e.Weaknesses != "" {
		parts = append(parts, "Weaknesses: "+e.Weaknesses)
	}
	if e.Suggestion != "" {
		parts = append(parts, "Suggestion: "+e.Suggestion)
	}
	return strings.Join(parts, "\n")
}

// JobAnalysis is a persisted job-description analysis.
type JobAnalysis struct {
	ID         uuid.UUID `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	RawText    string    `json:"rawText"`
	ResumeText string    `json:"resumeText,omitempty"`
	ParsedJobDescription
	CreatedAt time.Time `json:"createdAt"`
}

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// InterviewSession groups the questions generated for one analysis.
type InterviewSession struct {
	ID             uuid.UUID     `json:"id"`
	UserID         string        `json:"userId,omitempty"`
	JDAnalysisID   uuid.UUID     `json:"jdAnalysisId"`
	InterviewType  InterviewType `json:"interviewType"`
	TotalQuestions int           `json:"totalQuestions"`
	Status         SessionStatus `json:"status"`
	StartedAt      time.Time     `json:"startedAt"`
}

// Question is a persisted question row, with the answer and score once submitted.
type Question struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"sessionId"`
	OrderIndex int       `json:"orderIndex"`
	GeneratedQuestion
	UserAnswer string            `json:"userAnswer,omitempty"`
	Feedback   string            `json:"aiFeedback,omitempty"`
	Evaluation *AnswerEvaluation `json:"evaluation,omitempty"`
	Score      *int              `json:"score,omitempty"`
	AnsweredAt *time.Time        `json:"answeredAt,omitempty"`
}

func (q Question) Answered() bool {
	return q.Score != nil
}

// SimilarQuestion is a hit from the question index.
type SimilarQuestion struct {
	QuestionID uuid.UUID `json:"questionId"`
	Text       string    `json:"questionText"`
	RoleTitle  string    `json:"roleTitle,omitempty"`
	Score      float32   `json:"score"`
}
