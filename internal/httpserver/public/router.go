package public

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/gemini_relay/internal/app"
	"github.com/ncecere/gemini_relay/internal/relay"
)

// Register wires up the relay routes.
func Register(app *fiber.App, container *app.Container) {
	handler := &relayHandler{relay: container.Relay}
	app.Post("/generate-text", requestContext("/generate-text"), handler.generateText)
	app.Post("/api/chat", requestContext("/api/chat"), handler.chat)
	for _, kind := range relay.Kinds {
		app.Post(kind.Route(), requestContext(kind.Route()), handler.generateFromUpload(kind))
	}
}
