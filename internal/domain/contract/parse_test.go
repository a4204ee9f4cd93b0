package contract

import (
	"errors"
	"testing"

	"interview-gateway/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"upper tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"no tag", "```\n[1,2]\n```", `[1,2]`},
		{"inline", "```{\"a\":1}```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParseEvaluation_FencedV1(t *testing.T) {
	raw := "```json\n{\"score\": 7, \"feedback\": \"Good structure.\"}\n```"

	eval, err := ParseEvaluation(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.EvaluationV1, eval.SchemaVersion)
	assert.Equal(t, 7, eval.Score)
	assert.Equal(t, "Good structure.", eval.Feedback)
	assert.Equal(t, "Good structure.", eval.Summary())
}

func TestParseEvaluation_MissingFeedback(t *testing.T) {
	_, err := ParseEvaluation(`{"score": 7}`)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, MissingField, perr.Kind)
	assert.Equal(t, "feedback", perr.Field)
	assert.JSONEq(t, `{"score": 7}`, string(perr.Partial))
}

func TestParseEvaluation_StructuredV2(t *testing.T) {
	raw := `{"score": 8, "strengths": "Clear STAR framing", "weaknesses": ["No metrics", "Rushed ending"], "suggestion": "Quantify the impact"}`

	eval, err := ParseEvaluation(raw)
	require.NoError(t, err)
	assert.Equal(t, entity.EvaluationV2, eval.SchemaVersion)
	assert.Equal(t, 8, eval.Score)
	assert.Equal(t, "Clear STAR framing", eval.Strengths)
	assert.Equal(t, "No metrics; Rushed ending", eval.Weaknesses)
	assert.Equal(t, "Quantify the impact", eval.Suggestion)
	assert.Contains(t, eval.Summary(), "Suggestion: Quantify the impact")
}

func TestParseEvaluation_V2MissingSuggestion(t *testing.T) {
	_, err := ParseEvaluation(`{"score": 4, "strengths": "x", "weaknesses": "y"}`)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, MissingField, perr.Kind)
	assert.Equal(t, "suggestion", perr.Field)
}

func TestParseEvaluation_ScoreHandling(t *testing.T) {
	eval, err := ParseEvaluation(`{"score": "6", "feedback": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, 6, eval.Score)

	eval, err = ParseEvaluation(`{"score": 7.0, "feedback": "ok"}`)
	require.NoError(t, err)
	assert.Equal(t, 7, eval.Score)

	for _, raw := range []string{
		`{"score": 11, "feedback": "too generous"}`,
		`{"score": -1, "feedback": "too harsh"}`,
		`{"score": 7.6, "feedback": "fractional"}`,
		`{"score": "6.5", "feedback": "fractional string"}`,
	} {
		_, err = ParseEvaluation(raw)
		var perr *ParseError
		require.True(t, errors.As(err, &perr), raw)
		assert.Equal(t, InvalidField, perr.Kind, raw)
		assert.Equal(t, "score", perr.Field, raw)
	}
}

func TestParseEvaluation_NullRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"null score", `{"score": null, "feedback": "x"}`, "score"},
		{"null feedback", `{"score": 7, "feedback": null}`, "feedback"},
		{"null strengths", `{"score": 7, "strengths": null, "weaknesses": "y", "suggestion": "z"}`, "strengths"},
		{"null weaknesses", `{"score": 7, "strengths": "x", "weaknesses": null, "suggestion": "z"}`, "weaknesses"},
		{"null suggestion", `{"score": 7, "strengths": "x", "weaknesses": "y", "suggestion": null}`, "suggestion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := ParseEvaluation(tt.raw)
			assert.Nil(t, eval)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, InvalidField, perr.Kind)
			assert.Equal(t, tt.field, perr.Field)
			assert.Equal(t, tt.raw, perr.Raw)
		})
	}
}

func TestParseEvaluation_InvalidJSON(t *testing.T) {
	raw := "I think the answer deserves a 7."
	_, err := ParseEvaluation(raw)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, InvalidJSON, perr.Kind)
	assert.Equal(t, raw, perr.Raw)
	assert.Nil(t, perr.Partial)
}

func TestParseJobDescription(t *testing.T) {
	raw := "```json\n" + `{
  "company": "Acme",
  "role_title": "Senior Product Manager",
  "parsed_skills": ["roadmapping", "SQL"],
  "parsed_responsibilities": ["Own the roadmap"],
  "parsed_qualifications": ["5+ years PM"],
  "seniority_level": "senior"
}` + "\n```"

	jd, err := ParseJobDescription(raw)
	require.NoError(t, err)
	assert.Equal(t, "Acme", jd.Company)
	assert.Equal(t, "Senior Product Manager", jd.RoleTitle)
	assert.Equal(t, []string{"roadmapping", "SQL"}, jd.Skills)
	assert.Equal(t, []string{"Own the roadmap"}, jd.Responsibilities)
	assert.Equal(t, []string{"5+ years PM"}, jd.Qualifications)
	assert.Equal(t, entity.SenioritySenior, jd.SeniorityLevel)
}

func TestParseJobDescription_MissingField(t *testing.T) {
	raw := `{"company": "Acme", "role_title": "PM", "parsed_skills": [], "parsed_responsibilities": [], "seniority_level": "Mid"}`

	_, err := ParseJobDescription(raw)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, MissingField, perr.Kind)
	assert.Equal(t, "parsed_qualifications", perr.Field)
	assert.EqualError(t, err, "ai response missing field: parsed_qualifications")
}

func TestParseJobDescription_UnknownSeniority(t *testing.T) {
	raw := `{"company": "Acme", "role_title": "PM", "parsed_skills": [], "parsed_responsibilities": [], "parsed_qualifications": [], "seniority_level": "Wizard"}`

	_, err := ParseJobDescription(raw)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, InvalidField, perr.Kind)
	assert.Equal(t, "seniority_level", perr.Field)
}

func TestParseQuestions(t *testing.T) {
	raw := "```\n" + `[
  {"questionText": "Tell me about a launch.", "questionType": "Behavioral", "difficulty": "easy", "skillTags": ["execution"]},
  {"questionText": "Design a metric.", "questionType": "technical", "difficulty": "HARD", "skillTags": []},
  {"questionText": "Extra", "questionType": "situational", "difficulty": "medium", "skillTags": ["x"]}
]` + "\n```"

	qs, err := ParseQuestions(raw, 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "Tell me about a launch.", qs[0].Text)
	assert.Equal(t, entity.QuestionBehavioral, qs[0].Type)
	assert.Equal(t, entity.DifficultyEasy, qs[0].Difficulty)
	assert.Equal(t, []string{"execution"}, qs[0].SkillTags)
	assert.Equal(t, entity.DifficultyHard, qs[1].Difficulty)
	assert.Empty(t, qs[1].SkillTags)
}

func TestParseQuestions_WrappedObject(t *testing.T) {
	raw := `{"questions": [{"questionText": "Why us?", "questionType": "behavioral", "difficulty": "easy", "skillTags": ["motivation"]}]}`

	qs, err := ParseQuestions(raw, 0)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Why us?", qs[0].Text)
}

func TestParseQuestions_MissingFieldInElement(t *testing.T) {
	raw := `[{"questionText": "A", "questionType": "technical", "difficulty": "easy", "skillTags": []},
	         {"questionText": "B", "questionType": "technical", "skillTags": []}]`

	_, err := ParseQuestions(raw, 0)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, MissingField, perr.Kind)
	assert.Equal(t, "difficulty", perr.Field)
	assert.Equal(t, "question 2", perr.Detail)
}

func TestParseQuestions_Empty(t *testing.T) {
	_, err := ParseQuestions("[]", 5)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, InvalidField, perr.Kind)
	assert.Equal(t, "questions", perr.Field)
}
