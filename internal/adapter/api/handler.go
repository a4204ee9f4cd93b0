package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"interview-gateway/internal/domain/entity"
	"interview-gateway/internal/domain/repository"
	"interview-gateway/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultQuestionCount = 5
	defaultSimilarLimit  = 5
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler serves the interview endpoints.
type Handler struct {
	orchestrator *usecase.Orchestrator
	providers    *usecase.ProviderRouter
	extractor    repository.DocumentExtractor
	renderer     repository.ReportRenderer
	validator    *validator.Validate
	exposeRaw    bool
	log          *slog.Logger
}

// HandlerConfig carries the handler's collaborators. ExposeRaw includes unusable AI output in
// 502 bodies and must be off in production.
type HandlerConfig struct {
	Orchestrator *usecase.Orchestrator
	Providers    *usecase.ProviderRouter
	Extractor    repository.DocumentExtractor
	Renderer     repository.ReportRenderer
	ExposeRaw    bool
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		orchestrator: cfg.Orchestrator,
		providers:    cfg.Providers,
		extractor:    cfg.Extractor,
		renderer:     cfg.Renderer,
		validator:    newValidator(),
		exposeRaw:    cfg.ExposeRaw,
		log:          slog.Default().With("component", "api"),
	}
}

type parseJDRequest struct {
	RawText    string `json:"rawText" validate:"required"`
	ResumeText string `json:"resumeText"`
	Provider   string `json:"provider"`
}

type generateInterviewRequest struct {
	JDAnalysisID  string `json:"jdAnalysisId" validate:"required,uuid"`
	InterviewType string `json:"interviewType" validate:"required,oneof=behavioral technical mixed"`
	QuestionCount int    `json:"questionCount" validate:"omitempty,min=1,max=20"`
	Provider      string `json:"provider"`
}

type submitAnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required,uuid"`
	UserAnswer string `json:"userAnswer" validate:"required"`
	Provider   string `json:"provider"`
}

func (h *Handler) bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fmt.Errorf("%w: invalid request body", entity.ErrInvalidRequest)
	}
	if err := h.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", entity.ErrInvalidRequest, validationMessage(err))
	}
	return nil
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "uuid":
		return field + " must be a UUID"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min", "max":
		return field + " is out of range"
	}
	return field + " is invalid"
}

// ParseJobDescription handles POST /v1/jd/parse.
func (h *Handler) ParseJobDescription(c *fiber.Ctx) error {
	var req parseJDRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, "parse jd", err)
	}

	analysis, err := h.orchestrator.ParseJobDescription(c.UserContext(), identityFrom(c), usecase.ParseJobInput{
		RawText:    req.RawText,
		ResumeText: req.ResumeText,
		Provider:   req.Provider,
	})
	if err != nil {
		return h.respondError(c, "parse jd", err)
	}
	return c.Status(fiber.StatusOK).JSON(analysis)
}

// GenerateInterview handles POST /v1/interviews.
func (h *Handler) GenerateInterview(c *fiber.Ctx) error {
	var req generateInterviewRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, "generate interview", err)
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = defaultQuestionCount
	}

	session, questions, err := h.orchestrator.GenerateInterview(c.UserContext(), identityFrom(c), usecase.GenerateInterviewInput{
		JDAnalysisID:  uuid.MustParse(req.JDAnalysisID),
		InterviewType: entity.InterviewType(req.InterviewType),
		QuestionCount: req.QuestionCount,
		Provider:      req.Provider,
	})
	if err != nil {
		return h.respondError(c, "generate interview", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"sessionId": session.ID,
		"session":   session,
		"questions": questions,
	})
}

// SubmitAnswer handles POST /v1/answers.
func (h *Handler) SubmitAnswer(c *fiber.Ctx) error {
	var req submitAnswerRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, "submit answer", err)
	}

	eval, err := h.orchestrator.SubmitAnswer(c.UserContext(), usecase.SubmitAnswerInput{
		QuestionID: uuid.MustParse(req.QuestionID),
		Answer:     req.UserAnswer,
		Provider:   req.Provider,
	})
	if err != nil {
		return h.respondError(c, "submit answer", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"score":      eval.Score,
		"feedback":   eval.Summary(),
		"evaluation": eval,
	})
}

// GetInterview handles GET /v1/interviews/:id.
func (h *Handler) GetInterview(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.respondError(c, "get interview", fmt.Errorf("%w: id must be a UUID", entity.ErrInvalidRequest))
	}
	view, err := h.orchestrator.GetInterview(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, "get interview", err)
	}
	return c.Status(fiber.StatusOK).JSON(view)
}

// ExportReport handles GET /v1/interviews/:id/report.xlsx.
func (h *Handler) ExportReport(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.respondError(c, "export report", fmt.Errorf("%w: id must be a UUID", entity.ErrInvalidRequest))
	}
	view, err := h.orchestrator.GetInterview(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, "export report", err)
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, view.Session, view.Analysis, view.Questions); err != nil {
		return h.respondError(c, "export report", err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="interview-%s.xlsx"`, id))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// ExtractDocument handles POST /v1/documents/extract (multipart field "file").
func (h *Handler) ExtractDocument(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return h.respondError(c, "extract document", fmt.Errorf("%w: file is required", entity.ErrInvalidRequest))
	}
	f, err := fh.Open()
	if err != nil {
		return h.respondError(c, "extract document", err)
	}
	defer f.Close()

	text, err := h.extractor.ExtractText(fh.Filename, f, fh.Size)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidRequest) {
			return h.respondError(c, "extract document", err)
		}
		h.log.Warn("document extraction failed", "filename", fh.Filename, "error", err)
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "Could not read text from this file"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"filename": fh.Filename, "text": text})
}

// SimilarQuestions handles GET /v1/questions/similar?q=&limit=.
func (h *Handler) SimilarQuestions(c *fiber.Ctx) error {
	limit := defaultSimilarLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 50 {
			return h.respondError(c, "similar questions", fmt.Errorf("%w: limit must be between 1 and 50", entity.ErrInvalidRequest))
		}
		limit = n
	}

	hits, err := h.orchestrator.SimilarQuestions(c.UserContext(), c.Query("q"), limit)
	if err != nil {
		return h.respondError(c, "similar questions", err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"questions": hits})
}

// ListProviders handles GET /v1/providers.
func (h *Handler) ListProviders(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"providers": h.providers.Providers(),
		"default":   h.orchestrator.DefaultProvider(),
	})
}
