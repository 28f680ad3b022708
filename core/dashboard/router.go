package dashboard

import (
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
)

const (
	Root      = "/dashboard"
	LoginPath = "/login"
)

var ErrUnknownRole = errors.New("no dashboard for role")

// RouteEntry associates a role with the root path of its dashboard.
type RouteEntry struct {
	Role user.Role `json:"role"`
	Path string    `json:"path"`
}

var routes = []RouteEntry{
	{Role: user.RoleStudent, Path: Root + "/student"},
	{Role: user.RoleTeacher, Path: Root + "/teacher"},
	{Role: user.RoleParent, Path: Root + "/parent"},
	{Role: user.RoleAdmin, Path: Root + "/admin"},
	{Role: user.RoleExamsOfficer, Path: Root + "/exams-officer"},
	{Role: user.RoleAdmissionOfficer, Path: Root + "/admission-officer"},
	{Role: user.RoleFinanceOfficer, Path: Root + "/finance-officer"},
	{Role: user.RoleMediaOfficer, Path: Root + "/media-officer"},
}

// Routes returns a copy of the route table.
func Routes() []RouteEntry {
	return append([]RouteEntry(nil), routes...)
}

// EntryPathFor returns the dashboard root of role.
func EntryPathFor(role user.Role) (string, error) {
	for _, r := range routes {
		if r.Role == role {
			return r.Path, nil
		}
	}
	return "", ErrUnknownRole
}

// Outcome is the result of an authorization check.
type Outcome int

const (
	Allow Outcome = iota
	Unauthenticated
	Forbidden
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Decision tells the caller whether to serve a path and, if not, where to send the user.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Router authorizes requests for role-scoped dashboard paths.
// It is the only place that decides which role may see which dashboard.
type Router struct {
	now func() time.Time
}

func NewRouter() *Router {
	return &Router{now: func() time.Time { return session.NowFunc() }}
}

// IsScoped reports whether p belongs to the dashboard tree.
func IsScoped(p string) bool {
	p = cleanPath(p)
	return p == Root || strings.HasPrefix(p, Root+"/")
}

// RequiredRole returns the role owning p. ok is false for paths no role owns.
func RequiredRole(p string) (role user.Role, ok bool) {
	p = cleanPath(p)
	for _, r := range routes {
		if p == r.Path || strings.HasPrefix(p, r.Path+"/") {
			return r.Role, true
		}
	}
	return "", false
}

// Authorize decides whether sess may see requestedPath. sess is nil when there is no live session.
//
// Paths outside the dashboard tree are public. Dashboard paths need a live session whose role
// owns the path (its entry path or a sub-path of it); other sessions are sent to their own dashboard.
func (r *Router) Authorize(requestedPath string, sess *session.Session) Decision {
	if !IsScoped(requestedPath) {
		return Decision{Outcome: Allow}
	}
	if sess == nil {
		return Decision{Outcome: Unauthenticated, Redirect: LoginPath}
	}
	if sess.Expired(r.now()) {
		return Decision{Outcome: Expired, Redirect: LoginPath}
	}

	own, err := EntryPathFor(sess.Role)
	if err != nil {
		return Decision{Outcome: Unauthenticated, Redirect: LoginPath}
	}
	if role, ok := RequiredRole(requestedPath); ok && role == sess.Role {
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: Forbidden, Redirect: own}
}

// cleanPath resolves `.`/`..` segments so a path cannot climb out of a role's subtree.
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
