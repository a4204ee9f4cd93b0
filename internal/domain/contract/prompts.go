package contract

import (
	"fmt"
	"strings"

	"interview-gateway/internal/domain/entity"
)

// JobDescriptionPrompt asks for the structured extraction of rawText, optionally tailored to a resume.
func JobDescriptionPrompt(rawText, resumeText string) string {
	var sb strings.Builder
	sb.WriteString("You are a job description parser for interview prep. Extract the following from this JD:\n")
	JobDescriptionSchema().writeFields(&sb)
	sb.WriteString("\n")
	if strings.TrimSpace(resumeText) != "" {
		sb.WriteString("User's resume:\n")
		sb.WriteString(resumeText)
		sb.WriteString("\n\nTailor the analysis to their background.\n\n")
	}
	sb.WriteString("Job Description:\n")
	sb.WriteString(rawText)
	sb.WriteString("\n\nReturn ONLY valid JSON matching the schema above. No markdown, no explanation.")
	return sb.String()
}

// QuestionsInput carries what the question prompt interpolates.
type QuestionsInput struct {
	RawText       string
	RoleTitle     string
	Company       string
	Skills        []string
	InterviewType entity.InterviewType
	Count         int
}

func QuestionsPrompt(in QuestionsInput) string {
	role := in.RoleTitle
	if role == "" {
		role = "Product Manager"
	}
	company := in.Company
	if company == "" {
		company = "Unknown"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert interviewer. Based on the following job description, generate exactly %d interview questions.\n\n", in.Count)
	sb.WriteString("Job Description:\n")
	sb.WriteString(in.RawText)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Interview Type: %s\nRole: %s\nCompany: %s\n", in.InterviewType, role, company)
	if len(in.Skills) > 0 {
		fmt.Fprintf(&sb, "Key Skills: %s\n", strings.Join(in.Skills, ", "))
	}
	sb.WriteString("\nReturn a JSON array of objects with these fields:\n")
	QuestionSchema().writeFields(&sb)
	sb.WriteString("\nReturn ONLY the JSON array, no other text.")
	return sb.String()
}

// EvaluationInput carries what the evaluation prompt interpolates.
type EvaluationInput struct {
	QuestionText string
	QuestionType entity.QuestionType
	Answer       string
	Schema       entity.EvaluationSchema
}

func EvaluationPrompt(in EvaluationInput) string {
	schema := EvaluationSchemaV1()
	if in.Schema == entity.EvaluationV2 {
		schema = EvaluationSchemaV2()
	}

	var sb strings.Builder
	sb.WriteString("You are an expert interview coach. Evaluate the following answer.\n\n")
	fmt.Fprintf(&sb, "Question: %s\nQuestion Type: %s\nCandidate's Answer: %s\n\n", in.QuestionText, in.QuestionType, in.Answer)
	sb.WriteString("Return ONLY a JSON object with these fields:\n")
	schema.writeFields(&sb)
	sb.WriteString("\nNo other text.")
	return sb.String()
}
