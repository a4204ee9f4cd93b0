package api

import (
	"interview-gateway/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const maxUploadBytes = 10 << 20

// AppInfo is reported by the health endpoint.
type AppInfo struct {
	Name    string
	Version string
	Env     string
}

func NewApp(info AppInfo) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      info.Name,
		BodyLimit:    maxUploadBytes,
		ErrorHandler: ErrorHandler,
	})
}

// SetupRouter registers middleware and routes. Only endpoints that call an AI provider on the
// caller's behalf go through admission; answers are evaluated without spending quota.
func SetupRouter(app *fiber.App, info AppInfo, handler *Handler, identity *usecase.IdentityResolver, admission *usecase.AdmissionGate) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + HeaderSessionID,
		ExposeHeaders: HeaderRateLimitRemaining + ", " + HeaderRateLimitReset,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": info.Version,
			"env":     info.Env,
		})
	})

	v1 := app.Group("/v1", IdentityMiddleware(identity))
	gated := AdmissionMiddleware(admission)

	v1.Get("/providers", handler.ListProviders)
	v1.Post("/jd/parse", gated, handler.ParseJobDescription)
	v1.Post("/interviews", gated, handler.GenerateInterview)
	v1.Get("/interviews/:id", handler.GetInterview)
	v1.Get("/interviews/:id/report.xlsx", handler.ExportReport)
	v1.Post("/answers", handler.SubmitAnswer)
	v1.Post("/documents/extract", handler.ExtractDocument)
	v1.Get("/questions/similar", handler.SimilarQuestions)
}
