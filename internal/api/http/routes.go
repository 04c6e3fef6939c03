package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/i474232898/environmental-risk-aggregation/internal/alerts"
	"github.com/i474232898/environmental-risk-aggregation/internal/analysis"
	"github.com/i474232898/environmental-risk-aggregation/internal/config"
	"github.com/i474232898/environmental-risk-aggregation/internal/orchestrator"
	"github.com/i474232898/environmental-risk-aggregation/internal/risk"
	"github.com/i474232898/environmental-risk-aggregation/internal/store"
	"github.com/i474232898/environmental-risk-aggregation/internal/weather"
)

const serviceName = "environmental-risk-aggregation"

var validate = validator.New()

// Dashboard is the refresh orchestrator as seen by the API.
type Dashboard interface {
	State() orchestrator.State
	History() []store.Entry
	Forecast() []weather.ForecastDay
	Refresh(ctx context.Context) error
}

// SettingsStore reads and persists user settings.
type SettingsStore interface {
	Load(ctx context.Context) config.Settings
	Save(ctx context.Context, s config.Settings) error
}

// AlertFeed lists user-facing alerts.
type AlertFeed interface {
	List(limit int) []alerts.Alert
	ForCycle(cycleID string) []alerts.Alert
}

// Rescheduler applies a new refresh interval.
type Rescheduler interface {
	Reschedule(interval time.Duration) error
}

// Chat completes analysis conversations.
type Chat interface {
	Configured() bool
	Complete(ctx context.Context, model string, messages []json.RawMessage) (string, error)
}

// Deps are the collaborators of the HTTP API. Scheduler, Chat and Metrics are optional.
type Deps struct {
	Dashboard Dashboard
	Settings  SettingsStore
	Alerts    AlertFeed
	Scheduler Rescheduler
	Chat      Chat
	Metrics   http.Handler
}

// NewApp builds the Fiber app with the shared error handler, middleware and routes.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// A manual refresh runs a whole cycle.
		WriteTimeout: 60 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	RegisterRoutes(app, deps)
	return app
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		return c.JSON(deps.Dashboard.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if err := deps.Dashboard.Refresh(c.UserContext()); err != nil {
			return refreshError(err)
		}
		state := deps.Dashboard.State()
		return c.JSON(fiber.Map{
			"state":  state,
			"alerts": nonNil(deps.Alerts.ForCycle(state.CycleID)),
		})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"history": deps.Dashboard.History()})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"forecast": deps.Dashboard.Forecast()})
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		var q alertsQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"alerts": nonNil(deps.Alerts.List(q.Limit))})
	})

	v1.Get("/profiles", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"profiles": risk.Profiles})
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		return c.JSON(deps.Settings.Load(c.UserContext()).Redacted())
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		current := deps.Settings.Load(ctx)

		next := current
		if err := c.BodyParser(&next); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid settings body")
		}
		keepRedactedKeys(&next, current)

		if err := next.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := deps.Settings.Save(ctx, next); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
		}
		if deps.Scheduler != nil {
			if err := deps.Scheduler.Reschedule(next.RefreshInterval()); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "settings saved but refresh could not be rescheduled")
			}
		}
		return c.JSON(next.Redacted())
	})

	chat := app.Group("/api/chat", cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type",
	}))
	chat.Post("/", chatHandler(deps.Chat))
}

type alertsQuery struct {
	Limit int `query:"limit" validate:"min=0,max=50"`
}

func refreshError(err error) error {
	switch {
	case errors.Is(err, orchestrator.ErrMissingAPIKey):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, orchestrator.ErrPrimaryFetch):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// keepRedactedKeys restores secrets that came back in their redacted form.
func keepRedactedKeys(next *config.Settings, current config.Settings) {
	redacted := current.Redacted()
	if current.APIKey != "" && next.APIKey == redacted.APIKey {
		next.APIKey = current.APIKey
	}
	if current.HumidityKey != "" && next.HumidityKey == redacted.HumidityKey {
		next.HumidityKey = current.HumidityKey
	}
}

func nonNil(list []alerts.Alert) []alerts.Alert {
	if list == nil {
		return []alerts.Alert{}
	}
	return list
}

type chatInput struct {
	Model    string            `validate:"max=128"`
	Messages []json.RawMessage `validate:"required"`
}

// chatHandler answers with {"reply": ...} or {"error": ...}.
func chatHandler(chat Chat) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)

		if chat == nil || !chat.Configured() {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server missing OPENAI_API_KEY"})
		}

		in, ok := parseChat(c.Body())
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request: messages must be an array"})
		}

		reply, err := chat.Complete(c.UserContext(), in.Model, in.Messages)
		if err != nil {
			var upstream *analysis.UpstreamError
			switch {
			case errors.As(err, &upstream):
				return c.Status(upstream.StatusCode).JSON(fiber.Map{"error": upstream.Message})
			case errors.Is(err, analysis.ErrInvalidResponse):
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Invalid response from OpenAI"})
			case errors.Is(err, analysis.ErrMissingKey):
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Server missing OPENAI_API_KEY"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Proxy failure", "detail": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"reply": reply})
	}
}

// parseChat accepts any JSON object whose messages field is an array. A model that
// is not a string is ignored.
func parseChat(body []byte) (chatInput, bool) {
	var raw struct {
		Model    json.RawMessage `json:"model"`
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return chatInput{}, false
	}

	var in chatInput
	if err := json.Unmarshal(raw.Messages, &in.Messages); err != nil {
		return chatInput{}, false
	}
	if len(raw.Model) > 0 {
		var model string
		if json.Unmarshal(raw.Model, &model) == nil {
			in.Model = model
		}
	}
	if err := validate.Struct(in); err != nil {
		return chatInput{}, false
	}
	return in, true
}
