package contract

import (
	"testing"

	"interview-gateway/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestJobDescriptionPrompt(t *testing.T) {
	p := JobDescriptionPrompt("We are hiring a PM to own payments.", "")
	for _, field := range JobDescriptionSchema().RequiredFields() {
		assert.Contains(t, p, field)
	}
	assert.Contains(t, p, "We are hiring a PM to own payments.")
	assert.Contains(t, p, "Return ONLY valid JSON")
	assert.NotContains(t, p, "resume")

	withResume := JobDescriptionPrompt("JD text", "Ten years of fintech.")
	assert.Contains(t, withResume, "User's resume:\nTen years of fintech.")
}

func TestQuestionsPrompt(t *testing.T) {
	p := QuestionsPrompt(QuestionsInput{
		RawText:       "JD body",
		InterviewType: entity.InterviewMixed,
		Count:         4,
		Skills:        []string{"SQL", "roadmapping"},
	})
	assert.Contains(t, p, "generate exactly 4 interview questions")
	assert.Contains(t, p, "Interview Type: mixed")
	assert.Contains(t, p, "Role: Product Manager")
	assert.Contains(t, p, "Company: Unknown")
	assert.Contains(t, p, "Key Skills: SQL, roadmapping")
	assert.Contains(t, p, "questionText")
	assert.Contains(t, p, "Return ONLY the JSON array")
}

func TestEvaluationPrompt_Versions(t *testing.T) {
	in := EvaluationInput{QuestionText: "Q?", QuestionType: entity.QuestionTechnical, Answer: "A."}

	v1 := EvaluationPrompt(in)
	assert.Contains(t, v1, "- feedback (string)")
	assert.NotContains(t, v1, "strengths")

	in.Schema = entity.EvaluationV2
	v2 := EvaluationPrompt(in)
	assert.Contains(t, v2, "- strengths (string)")
	assert.Contains(t, v2, "- suggestion (string)")
	assert.Contains(t, v2, "Candidate's Answer: A.")
}
