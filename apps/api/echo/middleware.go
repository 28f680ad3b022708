package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/services/metrics"
)

const contextSessionKey = "session"

// dashboardGuard lets a request through only when the router allows the current session on its path.
// Denied requests are redirected; the dashboard handler never runs for them.
func dashboardGuard(opts Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var current *session.Session
			sess, err := opts.Sessions.Current(ctx.Request().Context(), newCookieSlot(ctx, opts))
			switch errors.Cause(err) {
			case nil, session.ErrExpired:
				current = &sess
			case session.ErrNoSession:
			default:
				return errors.Wrap(err, "getting current session")
			}

			decision := opts.Router.Authorize(ctx.Request().URL.Path, current)
			metrics.AuthorizationDecisionsTotal.WithLabelValues(decision.Outcome.String()).Inc()
			if !decision.Allowed() {
				return ctx.Redirect(http.StatusFound, decision.Redirect)
			}

			ctx.Set(contextSessionKey, sess)
			return next(ctx)
		}
	}
}

func contextSession(ctx echo.Context) (session.Session, bool) {
	sess, ok := ctx.Get(contextSessionKey).(session.Session)
	return sess, ok
}
