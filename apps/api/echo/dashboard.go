package echoapi

import (
	"net/http"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/dashboard"
)

type dashboardResponse struct {
	Dashboard string `json:"dashboard"`
	Section   string `json:"section,omitempty"`
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
}

func registerDashboardAPI(e *echo.Echo, opts Options) {
	g := e.Group(dashboard.Root, dashboardGuard(opts))
	g.GET("", showDashboard)
	g.GET("/*", showDashboard)
}

// showDashboard is the placeholder every dashboard renders until its screens exist.
func showDashboard(ctx echo.Context) error {
	sess, ok := contextSession(ctx)
	if !ok {
		return errors.New("dashboard reached without a session")
	}
	entry, err := dashboard.EntryPathFor(sess.Role)
	if err != nil {
		return errors.Wrap(err, "resolving entry path")
	}

	section := strings.TrimPrefix(path.Clean(ctx.Request().URL.Path), entry)
	return ctx.JSON(http.StatusOK, dashboardResponse{
		Dashboard: entry,
		Section:   strings.TrimPrefix(section, "/"),
		SubjectID: sess.SubjectID,
		Role:      sess.Role.String(),
	})
}
