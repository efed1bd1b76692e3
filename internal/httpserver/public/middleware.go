package public

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/gemini_relay/internal/requestctx"
)

// requestContext attaches a requestctx.Context to the user context and
// fiber locals for the remainder of the request.
func requestContext(route string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID, _ := c.Locals("requestid").(string)
		if requestID == "" {
			requestID = c.Get(fiber.HeaderXRequestID)
		}
		rc := &requestctx.Context{
			RequestID: requestID,
			Route:     route,
			StartedAt: time.Now(),
		}
		c.Locals(requestctx.FiberLocalsKey(), rc)
		c.SetUserContext(requestctx.WithContext(c.UserContext(), rc))
		return c.Next()
	}
}

func requestContextFrom(c *fiber.Ctx) *requestctx.Context {
	if rc, ok := c.Locals(requestctx.FiberLocalsKey()).(*requestctx.Context); ok {
		return rc
	}
	return &requestctx.Context{Route: c.Path(), StartedAt: time.Now()}
}
