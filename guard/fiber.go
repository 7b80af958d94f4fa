package guard

import (
	"github.com/gofiber/fiber/v2"
)

// Fiber returns fiber middleware guarding with the default rules
func Fiber(source SessionSource, opts ...Option) fiber.Handler {
	return New(source, opts...).Fiber()
}

func (g *Guard) Fiber() fiber.Handler {
	return func(c *fiber.Ctx) error {
		decision := g.Check(c.UserContext())
		if !decision.Proceed() {
			return c.Redirect(decision.Redirect, redirectStatus(c.Method()))
		}
		return c.Next()
	}
}
