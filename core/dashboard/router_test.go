package dashboard

import (
	"testing"
	"time"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
)

func TestEntryPathFor(t *testing.T) {
	want := map[user.Role]string{
		user.RoleStudent:          "/dashboard/student",
		user.RoleTeacher:          "/dashboard/teacher",
		user.RoleParent:           "/dashboard/parent",
		user.RoleAdmin:            "/dashboard/admin",
		user.RoleExamsOfficer:     "/dashboard/exams-officer",
		user.RoleAdmissionOfficer: "/dashboard/admission-officer",
		user.RoleFinanceOfficer:   "/dashboard/finance-officer",
		user.RoleMediaOfficer:     "/dashboard/media-officer",
	}
	if len(Routes()) != len(user.AllRoles) {
		t.Fatalf("route table has %d entries, want %d", len(Routes()), len(user.AllRoles))
	}
	for _, role := range user.AllRoles {
		got, err := EntryPathFor(role)
		if err != nil {
			t.Errorf("EntryPathFor(%v) failed: %v", role, err)
		}
		if got != want[role] {
			t.Errorf("EntryPathFor(%v) = %q, want %q", role, got, want[role])
		}
	}
	if _, err := EntryPathFor("janitor"); err != ErrUnknownRole {
		t.Errorf("EntryPathFor(janitor) error = %v, want %v", err, ErrUnknownRole)
	}
}

func TestRouter_Authorize(t *testing.T) {
	now := time.Now()
	router := &Router{now: func() time.Time { return now }}

	sessionWith := func(role user.Role) *session.Session {
		return &session.Session{
			ID:            "sid",
			SubjectID:     "SUB001",
			Role:          role,
			EstablishedAt: now.Add(-time.Minute),
			ExpiresAt:     now.Add(time.Hour),
		}
	}
	expired := sessionWith(user.RoleAdmin)
	expired.ExpiresAt = now.Add(-time.Second)

	tests := []struct {
		name string
		path string
		sess *session.Session
		want Decision
	}{
		{name: "teacher on admin", path: "/dashboard/admin", sess: sessionWith(user.RoleTeacher), want: Decision{Forbidden, "/dashboard/teacher"}},
		{name: "admin on admin", path: "/dashboard/admin", sess: sessionWith(user.RoleAdmin), want: Decision{Outcome: Allow}},
		{name: "nobody on admin", path: "/dashboard/admin", want: Decision{Unauthenticated, LoginPath}},
		{name: "finance officer on admin", path: "/dashboard/admin", sess: sessionWith(user.RoleFinanceOfficer), want: Decision{Forbidden, "/dashboard/finance-officer"}},
		{name: "expired", path: "/dashboard/admin", sess: expired, want: Decision{Expired, LoginPath}},
		{name: "sub-path", path: "/dashboard/student/grades/2024", sess: sessionWith(user.RoleStudent), want: Decision{Outcome: Allow}},
		{name: "trailing slash", path: "/dashboard/student/", sess: sessionWith(user.RoleStudent), want: Decision{Outcome: Allow}},
		{name: "other role sub-path", path: "/dashboard/admin/users", sess: sessionWith(user.RoleStudent), want: Decision{Forbidden, "/dashboard/student"}},
		{name: "segment boundary", path: "/dashboard/administrator", sess: sessionWith(user.RoleAdmin), want: Decision{Forbidden, "/dashboard/admin"}},
		{name: "traversal", path: "/dashboard/student/../admin", sess: sessionWith(user.RoleStudent), want: Decision{Forbidden, "/dashboard/student"}},
		{name: "no privilege over other dashboards", path: "/dashboard/teacher", sess: sessionWith(user.RoleAdmin), want: Decision{Forbidden, "/dashboard/admin"}},
		{name: "dashboard root", path: "/dashboard", sess: sessionWith(user.RoleParent), want: Decision{Forbidden, "/dashboard/parent"}},
		{name: "dashboard root anonymous", path: "/dashboard", want: Decision{Unauthenticated, LoginPath}},
		{name: "unknown dashboard", path: "/dashboard/janitor", sess: sessionWith(user.RoleMediaOfficer), want: Decision{Forbidden, "/dashboard/media-officer"}},
		{name: "unknown session role", path: "/dashboard/student", sess: sessionWith("janitor"), want: Decision{Unauthenticated, LoginPath}},
		{name: "public path", path: "/login", want: Decision{Outcome: Allow}},
		{name: "lookalike public path", path: "/dashboards", want: Decision{Outcome: Allow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := router.Authorize(tt.path, tt.sess); got != tt.want {
				t.Errorf("Authorize(%q) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestEveryRoleReachesOnlyItsOwnDashboard(t *testing.T) {
	router := NewRouter()
	for _, role := range user.AllRoles {
		sess := &session.Session{SubjectID: "SUB001", Role: role, ExpiresAt: time.Now().Add(time.Hour)}
		own, _ := EntryPathFor(role)
		for _, entry := range Routes() {
			got := router.Authorize(entry.Path, sess)
			if entry.Role == role && !got.Allowed() {
				t.Errorf("%v denied its own dashboard: %+v", role, got)
			}
			if entry.Role != role && (got.Outcome != Forbidden || got.Redirect != own) {
				t.Errorf("%v on %s = %+v, want Forbidden -> %s", role, entry.Path, got, own)
			}
		}
	}
}
