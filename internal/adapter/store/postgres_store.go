package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-gateway/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS jd_analyses (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	raw_text TEXT NOT NULL,
	resume_text TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	role_title TEXT NOT NULL DEFAULT '',
	parsed_skills TEXT[] NOT NULL DEFAULT '{}',
	parsed_responsibilities TEXT[] NOT NULL DEFAULT '{}',
	parsed_qualifications TEXT[] NOT NULL DEFAULT '{}',
	seniority_level TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS interview_sessions (
	id UUID PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	jd_analysis_id UUID NOT NULL REFERENCES jd_analyses(id) ON DELETE CASCADE,
	interview_type TEXT NOT NULL,
	total_questions INT NOT NULL,
	status TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS questions (
	id UUID PRIMARY KEY,
	session_id UUID NOT NULL REFERENCES interview_sessions(id) ON DELETE CASCADE,
	question_text TEXT NOT NULL,
	question_type TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	skill_tags TEXT[] NOT NULL DEFAULT '{}',
	order_index INT NOT NULL,
	user_answer TEXT NOT NULL DEFAULT '',
	ai_feedback TEXT NOT NULL DEFAULT '',
	evaluation JSONB,
	score INT,
	answered_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_questions_session ON questions(session_id, order_index);
`

// PostgresStore is the InterviewStore backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies it with a ping.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the tables if they do not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) SaveAnalysis(ctx context.Context, a *entity.JobAnalysis) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO jd_analyses (id, user_id, raw_text, resume_text, company, role_title,
		        parsed_skills, parsed_responsibilities, parsed_qualifications, seniority_level, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.UserID, a.RawText, a.ResumeText, a.Company, a.RoleTitle,
		a.Skills, a.Responsibilities, a.Qualifications, string(a.SeniorityLevel), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*entity.JobAnalysis, error) {
	var a entity.JobAnalysis
	var seniority string
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, raw_text, resume_text, company, role_title,
		        parsed_skills, parsed_responsibilities, parsed_qualifications, seniority_level, created_at
		 FROM jd_analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.UserID, &a.RawText, &a.ResumeText, &a.Company, &a.RoleTitle,
		&a.Skills, &a.Responsibilities, &a.Qualifications, &seniority, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err, "analysis")
	}
	a.SeniorityLevel = entity.SeniorityLevel(seniority)
	return &a, nil
}

func (p *PostgresStore) CreateSession(ctx context.Context, s *entity.InterviewSession) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO interview_sessions (id, user_id, jd_analysis_id, interview_type, total_questions, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.JDAnalysisID, string(s.InterviewType), s.TotalQuestions, string(s.Status), s.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetSession(ctx context.Context, id uuid.UUID) (*entity.InterviewSession, error) {
	var s entity.InterviewSession
	var interviewType, status string
	err := p.pool.QueryRow(ctx,
		`SELECT id, user_id, jd_analysis_id, interview_type, total_questions, status, started_at
		 FROM interview_sessions WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.JDAnalysisID, &interviewType, &s.TotalQuestions, &status, &s.StartedAt)
	if err != nil {
		return nil, notFound(err, "session")
	}
	s.InterviewType = entity.InterviewType(interviewType)
	s.Status = entity.SessionStatus(status)
	return &s, nil
}

// InsertQuestions writes all rows in one batch.
func (p *PostgresStore) InsertQuestions(ctx context.Context, qs []entity.Question) error {
	batch := &pgx.Batch{}
	for _, q := range qs {
		batch.Queue(
			`INSERT INTO questions (id, session_id, question_text, question_type, difficulty, skill_tags, order_index)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			q.ID, q.SessionID, q.Text, string(q.Type), string(q.Difficulty), q.SkillTags, q.OrderIndex,
		)
	}
	br := p.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range qs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert questions: %w", err)
		}
	}
	return nil
}

const questionColumns = `id, session_id, question_text, question_type, difficulty, skill_tags, order_index,
		user_answer, ai_feedback, evaluation, score, answered_at`

func scanQuestion(row pgx.Row) (*entity.Question, error) {
	var q entity.Question
	var qtype, difficulty string
	var evalJSON []byte
	err := row.Scan(&q.ID, &q.SessionID, &q.Text, &qtype, &difficulty, &q.SkillTags, &q.OrderIndex,
		&q.UserAnswer, &q.Feedback, &evalJSON, &q.Score, &q.AnsweredAt)
	if err != nil {
		return nil, err
	}
	q.Type = entity.QuestionType(qtype)
	q.Difficulty = entity.Difficulty(difficulty)
	if evalJSON != nil {
		var eval entity.AnswerEvaluation
		if err := json.Unmarshal(evalJSON, &eval); err == nil {
			q.Evaluation = &eval
		}
	}
	return &q, nil
}

func (p *PostgresStore) GetQuestion(ctx context.Context, id uuid.UUID) (*entity.Question, error) {
	q, err := scanQuestion(p.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "question")
	}
	return q, nil
}

func (p *PostgresStore) ListQuestions(ctx context.Context, sessionID uuid.UUID) ([]entity.Question, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE session_id = $1 ORDER BY order_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var out []entity.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (p *PostgresStore) UpdateQuestionAnswer(ctx context.Context, id uuid.UUID, answer string, eval entity.AnswerEvaluation) error {
	evalJSON, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE questions SET user_answer = $1, ai_feedback = $2, evaluation = $3, score = $4, answered_at = $5
		 WHERE id = $6`,
		answer, eval.Summary(), evalJSON, eval.Score, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrResourceNotFound
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ErrResourceNotFound
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
