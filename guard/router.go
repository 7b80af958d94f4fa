package guard

import (
	"github.com/goliatone/go-router"
)

// Router returns go-router middleware guarding with the default rules
func Router(source SessionSource, opts ...Option) router.MiddlewareFunc {
	return New(source, opts...).Router()
}

func (g *Guard) Router() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			decision := g.Check(c.Context())
			if !decision.Proceed() {
				return c.Redirect(decision.Redirect, redirectStatus(c.Method()))
			}
			return hf(c)
		}
	}
}
