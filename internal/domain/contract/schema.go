// Package contract holds the prompt templates sent to text-generation providers and the lenient
// parsing that turns their replies into typed records.
package contract

import (
	"fmt"
	"strings"
)

// Token budgets per intent.
const (
	MaxTokensJobDescription = 1024
	MaxTokensQuestions      = 2048
	MaxTokensEvaluation     = 512
)

// Schema describes the JSON object a prompt asks for. The same field list drives the prompt text
// and the required-field validation of the reply.
type Schema struct {
	Name   string
	Fields []Field
}

type Field struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// RequiredFields returns the required field names in declaration order.
func (s Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

func (s Schema) writeFields(sb *strings.Builder) {
	for _, f := range s.Fields {
		fmt.Fprintf(sb, "- %s (%s)", f.Name, f.Type)
		if f.Description != "" {
			sb.WriteString(": " + f.Description)
		}
		sb.WriteString("\n")
	}
}

// JobDescriptionSchema is the object extracted from a job posting.
func JobDescriptionSchema() Schema {
	return Schema{
		Name: "JobDescription",
		Fields: []Field{
			{Name: "company", Type: "string", Required: true},
			{Name: "role_title", Type: "string", Required: true},
			{Name: "parsed_skills", Type: "string array", Description: "technical and soft skills", Required: true},
			{Name: "parsed_responsibilities", Type: "string array", Description: "top 5-7 key responsibilities", Required: true},
			{Name: "parsed_qualifications", Type: "string array", Description: "requirements and nice-to-haves", Required: true},
			{Name: "seniority_level", Type: "string", Description: `one of: "Entry", "Mid", "Senior", "Lead", "Executive"`, Required: true},
		},
	}
}

// QuestionSchema is one element of the generated question array.
func QuestionSchema() Schema {
	return Schema{
		Name: "Question",
		Fields: []Field{
			{Name: "questionText", Type: "string", Description: "the interview question", Required: true},
			{Name: "questionType", Type: "string", Description: `"behavioral" | "technical" | "situational"`, Required: true},
			{Name: "difficulty", Type: "string", Description: `"easy" | "medium" | "hard"`, Required: true},
			{Name: "skillTags", Type: "string array", Description: "relevant skills being tested", Required: true},
		},
	}
}

// EvaluationSchemaV1 is the legacy single-feedback shape.
func EvaluationSchemaV1() Schema {
	return Schema{
		Name: "EvaluationV1",
		Fields: []Field{
			{Name: "score", Type: "integer", Description: "0-10", Required: true},
			{Name: "feedback", Type: "string", Description: "2-3 sentences on what was good and what could be improved", Required: true},
		},
	}
}

// EvaluationSchemaV2 is the structured feedback shape.
func EvaluationSchemaV2() Schema {
	return Schema{
		Name: "EvaluationV2",
		Fields: []Field{
			{Name: "score", Type: "integer", Description: "0-10", Required: true},
			{Name: "strengths", Type: "string", Description: "what the answer did well", Required: true},
			{Name: "weaknesses", Type: "string", Description: "what was missing or weak", Required: true},
			{Name: "suggestion", Type: "string", Description: "one concrete improvement", Required: true},
		},
	}
}
