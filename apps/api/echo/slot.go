package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-portal/core/session"
)

// cookieSlot keeps the session token in an HttpOnly cookie.
// Within a request, Token reflects the last Put or Clear.
type cookieSlot struct {
	ctx    echo.Context
	name   string
	secure bool
	token  *string
}

var _ session.Slot = (*cookieSlot)(nil)

func newCookieSlot(ctx echo.Context, opts Options) *cookieSlot {
	return &cookieSlot{ctx: ctx, name: opts.CookieName, secure: opts.CookieSecure}
}

func (s *cookieSlot) Token() string {
	if s.token != nil {
		return *s.token
	}
	cookie, err := s.ctx.Cookie(s.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *cookieSlot) Put(token string, expiresAt time.Time) {
	s.ctx.SetCookie(&http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	s.token = &token
}

func (s *cookieSlot) Clear() {
	s.ctx.SetCookie(&http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	empty := ""
	s.token = &empty
}
