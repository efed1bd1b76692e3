package httputil

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the body of every relay route response. Output is set when
// Error is false, Message when it is true.
type Envelope struct {
	Error   bool   `json:"error"`
	Output  string `json:"output,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteError standardizes the failure envelope for every route.
func WriteError(c *fiber.Ctx, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
		if msg == "" {
			msg = "unknown error"
		}
	}
	return c.Status(status).JSON(Envelope{Error: true, Message: msg})
}

// WriteOutput writes the success envelope.
func WriteOutput(c *fiber.Ctx, output string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Error: false, Output: output})
}
