package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/dashboard"
	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
	"github.com/trezcool/masomo-portal/services/metrics"
)

type (
	authApi struct {
		opts Options
	}

	loginRequest struct {
		ID     string `json:"id" form:"id" validate:"required"`
		Secret string `json:"secret" form:"secret" validate:"required"`
	}

	sessionResponse struct {
		SubjectID     string    `json:"subject_id"`
		Role          user.Role `json:"role"`
		EntryPath     string    `json:"entry_path"`
		EstablishedAt time.Time `json:"established_at"`
		ExpiresAt     time.Time `json:"expires_at"`
	}

	roleResponse struct {
		Name      string    `json:"name"`
		Value     user.Role `json:"value"`
		IDPrefix  string    `json:"id_prefix"`
		EntryPath string    `json:"entry_path"`
	}

	roleHintResponse struct {
		ID          string    `json:"id"`
		Role        user.Role `json:"role"`
		KnownPrefix bool      `json:"known_prefix"`
	}
)

func registerAuthAPI(e *echo.Echo, opts Options) {
	api := authApi{opts: opts}

	e.GET(dashboard.LoginPath, api.loginPage)
	e.POST(dashboard.LoginPath, api.login)
	e.POST("/logout", api.logout)
	e.GET("/session", api.currentSession)
	e.GET("/roles", api.roles)
	e.GET("/roles/hint", api.roleHint)
}

// Handlers

func (api *authApi) loginPage(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Sign in with your portal ID and password.",
		"roles":   listRoles(),
	})
}

func (api *authApi) login(ctx echo.Context) error {
	var data loginRequest
	if err := ctx.Bind(&data); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return errors.Wrap(err, "binding to loginRequest")
	}
	data.ID = user.CleanID(data.ID)
	if err := api.opts.Validate.Struct(data); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	reqCtx := ctx.Request().Context()
	identity, err := api.opts.Auth.Authenticate(reqCtx, data.ID, data.Secret)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
			return errInvalidCredentials
		}
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return errors.Wrap(err, "authenticating")
	}

	sess, err := api.opts.Sessions.Start(reqCtx, newCookieSlot(ctx, api.opts), identity)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return errors.Wrap(err, "starting session")
	}
	entry, err := dashboard.EntryPathFor(sess.Role)
	if err != nil {
		return errors.Wrap(err, "resolving entry path")
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	metrics.SessionsStartedTotal.WithLabelValues(sess.Role.String()).Inc()
	return ctx.Redirect(http.StatusSeeOther, entry)
}

func (api *authApi) logout(ctx echo.Context) error {
	if err := api.opts.Sessions.End(ctx.Request().Context(), newCookieSlot(ctx, api.opts)); err != nil {
		return errors.Wrap(err, "ending session")
	}
	metrics.SessionsEndedTotal.Inc()
	return ctx.Redirect(http.StatusSeeOther, dashboard.LoginPath)
}

func (api *authApi) currentSession(ctx echo.Context) error {
	sess, err := api.opts.Sessions.Current(ctx.Request().Context(), newCookieSlot(ctx, api.opts))
	if err != nil {
		switch errors.Cause(err) {
		case session.ErrNoSession:
			return errNoSession
		case session.ErrExpired:
			return errSessionExpired
		}
		return errors.Wrap(err, "getting current session")
	}

	entry, err := dashboard.EntryPathFor(sess.Role)
	if err != nil {
		return errors.Wrap(err, "resolving entry path")
	}
	return ctx.JSON(http.StatusOK, sessionResponse{
		SubjectID:     sess.SubjectID,
		Role:          sess.Role,
		EntryPath:     entry,
		EstablishedAt: sess.EstablishedAt,
		ExpiresAt:     sess.ExpiresAt,
	})
}

func (api *authApi) roles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, listRoles())
}

// roleHint tells the login form which role an ID looks like it belongs to. It is never used for access decisions.
func (api *authApi) roleHint(ctx echo.Context) error {
	id := user.CleanID(ctx.QueryParam("id"))
	role, known := user.LookupRole(id)
	if !known {
		role = user.ResolveRole(id)
	}
	return ctx.JSON(http.StatusOK, roleHintResponse{ID: id, Role: role, KnownPrefix: known})
}

func listRoles() []roleResponse {
	roles := make([]roleResponse, 0, len(user.Roles))
	for _, info := range user.Roles {
		prefix, _ := user.IDPrefix(info.Value)
		entry, _ := dashboard.EntryPathFor(info.Value)
		roles = append(roles, roleResponse{
			Name:      info.Name,
			Value:     info.Value,
			IDPrefix:  prefix,
			EntryPath: entry,
		})
	}
	return roles
}
