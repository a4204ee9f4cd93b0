package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"interview-gateway/internal/domain/entity"
)

type ParseErrorKind int

const (
	InvalidJSON ParseErrorKind = iota
	MissingField
	InvalidField
)

func (k ParseErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case InvalidField:
		return "invalid_field"
	default:
		return "invalid_json"
	}
}

// ParseError reports provider output that could not be turned into a typed record.
// Raw is the provider text as received; Partial holds the decoded payload when decoding got that far.
type ParseError struct {
	Kind    ParseErrorKind
	Field   string
	Detail  string
	Raw     string
	Partial json.RawMessage
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("ai response missing field: %s", e.Field)
	case InvalidField:
		return fmt.Sprintf("ai response has invalid field %s: %s", e.Field, e.Detail)
	default:
		return fmt.Sprintf("ai returned invalid json: %s", e.Detail)
	}
}

var (
	fenceOpen  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	fenceClose = regexp.MustCompile("\\s*```$")
)

// StripFences removes a leading markdown fence (with or without a language tag) and a trailing fence.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpen.ReplaceAllString(text, "")
	text = fenceClose.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

type object map[string]json.RawMessage

func decodeObject(raw, text string, required []string) (object, error) {
	var obj object
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, &ParseError{Kind: InvalidJSON, Detail: err.Error(), Raw: raw}
	}
	if obj == nil {
		return nil, &ParseError{Kind: InvalidJSON, Detail: "expected a JSON object", Raw: raw}
	}
	for _, name := range required {
		if _, ok := obj[name]; !ok {
			return nil, &ParseError{Kind: MissingField, Field: name, Raw: raw, Partial: json.RawMessage(text)}
		}
	}
	return obj, nil
}

func (o object) has(name string) bool {
	_, ok := o[name]
	return ok
}

func (o object) invalid(raw, name, detail string) error {
	partial, _ := json.Marshal(o)
	return &ParseError{Kind: InvalidField, Field: name, Detail: detail, Raw: raw, Partial: partial}
}

func (o object) str(raw, name string) (string, error) {
	v, ok := o[name]
	if !ok || string(v) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", o.invalid(raw, name, "expected a string")
	}
	return strings.TrimSpace(s), nil
}

func (o object) list(raw, name string) ([]string, error) {
	v, ok := o[name]
	if !ok || string(v) == "null" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, o.invalid(raw, name, "expected an array of strings")
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// text accepts a string or an array of strings, joined with "; ". Null is rejected.
func (o object) text(raw, name string) (string, error) {
	v, ok := o[name]
	if !ok {
		return "", nil
	}
	if string(v) == "null" {
		return "", o.invalid(raw, name, "expected a string")
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s), nil
	}
	var items []string
	if err := json.Unmarshal(v, &items); err == nil {
		return strings.Join(items, "; "), nil
	}
	return "", o.invalid(raw, name, "expected a string")
}

// score accepts a whole number 0-10, as a JSON number or a numeric string.
func (o object) score(raw, name string) (int, error) {
	v := o[name]
	if string(v) == "null" {
		return 0, o.invalid(raw, name, "expected a number")
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return 0, o.invalid(raw, name, "expected a number")
		}
		parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if perr != nil {
			return 0, o.invalid(raw, name, "expected a number")
		}
		f = parsed
	}
	if f != math.Trunc(f) {
		return 0, o.invalid(raw, name, fmt.Sprintf("score %v is not a whole number", f))
	}
	if f < 0 || f > 10 {
		return 0, o.invalid(raw, name, fmt.Sprintf("score %v outside 0-10", f))
	}
	return int(f), nil
}

// ParseJobDescription decodes the reply to JobDescriptionPrompt.
func ParseJobDescription(raw string) (*entity.ParsedJobDescription, error) {
	obj, err := decodeObject(raw, StripFences(raw), JobDescriptionSchema().RequiredFields())
	if err != nil {
		return nil, err
	}

	var jd entity.ParsedJobDescription
	if jd.Company, err = obj.str(raw, "company"); err != nil {
		return nil, err
	}
	if jd.RoleTitle, err = obj.str(raw, "role_title"); err != nil {
		return nil, err
	}
	if jd.Skills, err = obj.list(raw, "parsed_skills"); err != nil {
		return nil, err
	}
	if jd.Responsibilities, err = obj.list(raw, "parsed_responsibilities"); err != nil {
		return nil, err
	}
	if jd.Qualifications, err = obj.list(raw, "parsed_qualifications"); err != nil {
		return nil, err
	}
	level, err := obj.str(raw, "seniority_level")
	if err != nil {
		return nil, err
	}
	lvl, ok := entity.ParseSeniority(level)
	if !ok {
		return nil, obj.invalid(raw, "seniority_level", fmt.Sprintf("unknown seniority %q", level))
	}
	jd.SeniorityLevel = lvl
	return &jd, nil
}

// ParseQuestions decodes the reply to QuestionsPrompt. A top-level array is expected; an object
// wrapping it under "questions" is accepted too. When limit > 0 extra questions are dropped.
func ParseQuestions(raw string, limit int) ([]entity.GeneratedQuestion, error) {
	text := StripFences(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		var wrapper struct {
			Questions []json.RawMessage `json:"questions"`
		}
		if werr := json.Unmarshal([]byte(text), &wrapper); werr != nil || wrapper.Questions == nil {
			return nil, &ParseError{Kind: InvalidJSON, Detail: err.Error(), Raw: raw}
		}
		items = wrapper.Questions
	}
	if len(items) == 0 {
		return nil, &ParseError{Kind: InvalidField, Field: "questions", Detail: "no questions returned", Raw: raw, Partial: json.RawMessage(text)}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	required := QuestionSchema().RequiredFields()
	out := make([]entity.GeneratedQuestion, 0, len(items))
	for i, item := range items {
		obj, err := decodeObject(raw, string(item), required)
		if err != nil {
			if perr, ok := err.(*ParseError); ok {
				perr.Detail = fmt.Sprintf("question %d", i+1)
			}
			return nil, err
		}
		q, err := questionFromObject(raw, obj)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

func questionFromObject(raw string, obj object) (entity.GeneratedQuestion, error) {
	var q entity.GeneratedQuestion
	text, err := obj.str(raw, "questionText")
	if err != nil {
		return q, err
	}
	if text == "" {
		return q, obj.invalid(raw, "questionText", "empty question")
	}
	qt, err := obj.str(raw, "questionType")
	if err != nil {
		return q, err
	}
	typ, ok := entity.ParseQuestionType(qt)
	if !ok {
		return q, obj.invalid(raw, "questionType", fmt.Sprintf("unknown question type %q", qt))
	}
	d, err := obj.str(raw, "difficulty")
	if err != nil {
		return q, err
	}
	diff, ok := entity.ParseDifficulty(d)
	if !ok {
		return q, obj.invalid(raw, "difficulty", fmt.Sprintf("unknown difficulty %q", d))
	}
	tags, err := obj.list(raw, "skillTags")
	if err != nil {
		return q, err
	}
	return entity.GeneratedQuestion{Text: text, Type: typ, Difficulty: diff, SkillTags: tags}, nil
}

// ParseEvaluation decodes the reply to EvaluationPrompt. The shape is detected from the payload:
// any of strengths, weaknesses or suggestion selects v2, otherwise v1 {score, feedback} is required.
func ParseEvaluation(raw string) (*entity.AnswerEvaluation, error) {
	text := StripFences(raw)
	obj, err := decodeObject(raw, text, nil)
	if err != nil {
		return nil, err
	}

	version := entity.EvaluationV1
	schema := EvaluationSchemaV1()
	if obj.has("strengths") || obj.has("weaknesses") || obj.has("suggestion") {
		version = entity.EvaluationV2
		schema = EvaluationSchemaV2()
	}
	if _, err := decodeObject(raw, text, schema.RequiredFields()); err != nil {
		return nil, err
	}

	eval := entity.AnswerEvaluation{SchemaVersion: version}
	if eval.Score, err = obj.score(raw, "score"); err != nil {
		return nil, err
	}
	if version == entity.EvaluationV1 {
		if eval.Feedback, err = obj.text(raw, "feedback"); err != nil {
			return nil, err
		}
		return &eval, nil
	}
	if eval.Strengths, err = obj.text(raw, "strengths"); err != nil {
		return nil, err
	}
	if eval.Weaknesses, err = obj.text(raw, "weaknesses"); err != nil {
		return nil, err
	}
	if eval.Suggestion, err = obj.text(raw, "suggestion"); err != nil {
		return nil, err
	}
	return &eval, nil
}
