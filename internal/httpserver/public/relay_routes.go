package public

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/gemini_relay/internal/httpserver/httputil"
	"github.com/ncecere/gemini_relay/internal/models"
	"github.com/ncecere/gemini_relay/internal/relay"
)

type relayHandler struct {
	relay *relay.Service
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *relayHandler) generateText(c *fiber.Ctx) error {
	var req promptRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respond(c, models.Generation{}, relay.MissingInput("Prompt is required!"))
	}
	gen, err := h.relay.GenerateText(c.UserContext(), req.Prompt)
	if errors.Is(err, relay.ErrMissingInput) {
		err = relay.MissingInput("Prompt is required!")
	}
	return h.respond(c, gen, err)
}

func (h *relayHandler) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return h.respond(c, models.Generation{}, relay.MissingInput("Message is required!"))
	}
	gen, err := h.relay.GenerateText(c.UserContext(), req.Message)
	if errors.Is(err, relay.ErrMissingInput) {
		err = relay.MissingInput("Message is required!")
	}
	return h.respond(c, gen, err)
}

func (h *relayHandler) generateFromUpload(kind relay.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(kind.FieldName())
		if err != nil {
			return h.respond(c, models.Generation{}, relay.MissingFile(kind))
		}
		gen, err := h.relay.GenerateFromUpload(c.UserContext(), kind, c.FormValue("prompt"), fh)
		return h.respond(c, gen, err)
	}
}

// respond writes the envelope and the single diagnostic line for the request.
func (h *relayHandler) respond(c *fiber.Ctx, gen models.Generation, err error) error {
	rc := requestContextFrom(c)
	status, msg := relay.Describe(err)
	attrs := []any{
		"request_id", rc.RequestID,
		"route", rc.Route,
		"status", status,
		"latency_ms", rc.Elapsed().Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "outcome", "error", "error", err)
		if status >= fiber.StatusInternalServerError {
			slog.Error("relay request failed", attrs...)
		} else {
			slog.Info("relay request rejected", attrs...)
		}
		return httputil.WriteError(c, status, msg)
	}
	attrs = append(attrs,
		"outcome", "success",
		"provider", h.relay.Provider().Name,
		"model", gen.Model,
		"total_tokens", gen.Usage.TotalTokens,
	)
	slog.Info("relay request completed", attrs...)
	return httputil.WriteOutput(c, gen.Text)
}
