package api

import (
	"errors"
	"log/slog"
	"strings"

	"interview-gateway/internal/domain/contract"
	"interview-gateway/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// respondError maps use-case errors to fixed statuses and safe messages.
// Provider errors are matched by kind, never by provider.
func (h *Handler) respondError(c *fiber.Ctx, op string, err error) error {
	var perr *contract.ParseError
	switch {
	case errors.Is(err, entity.ErrProviderRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "AI provider is busy. Please try again in a moment."})
	case errors.Is(err, entity.ErrProviderAuth):
		h.log.Error("ai provider credentials rejected", "op", op, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	case errors.As(err, &perr):
		body := fiber.Map{"message": "AI returned invalid output"}
		if h.exposeRaw {
			body["detail"] = parseErrorDetail(perr)
			body["raw"] = perr.Raw
		}
		return c.Status(fiber.StatusBadGateway).JSON(body)
	case errors.Is(err, entity.ErrProviderFailed):
		h.log.Warn("ai provider failed", "op", op, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "AI provider request failed"})
	case errors.Is(err, entity.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": invalidMessage(err)})
	case errors.Is(err, entity.ErrResourceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": notFoundMessage(op)})
	case errors.Is(err, entity.ErrFeatureDisabled):
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"message": "This feature is not configured"})
	default:
		h.log.Error("request failed", "op", op, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func parseErrorDetail(perr *contract.ParseError) string {
	switch perr.Kind {
	case contract.MissingField:
		return "missing field: " + perr.Field
	case contract.InvalidField:
		return "invalid field: " + perr.Field
	default:
		return "invalid JSON"
	}
}

// invalidMessage drops the sentinel prefix so the client sees only the detail.
func invalidMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, entity.ErrInvalidRequest.Error()+": "); i >= 0 {
		return msg[i+len(entity.ErrInvalidRequest.Error())+2:]
	}
	return msg
}

func notFoundMessage(op string) string {
	switch op {
	case "generate interview":
		return "JD analysis not found"
	case "submit answer":
		return "Question not found"
	case "get interview", "export report":
		return "Interview not found"
	}
	return "Not found"
}

// ErrorHandler renders errors that escape a handler (body limits, unknown routes) in the same
// {"message": ...} shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		slog.Default().Error("unhandled error", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
