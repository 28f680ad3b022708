package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
)

var errInvalidLogin = httpErr{Error: "Invalid username or password"}

func Test_home(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome to Masomo Portal!" {
		t.Errorf("GET / = %d %q", rec.Code, rec.Body.String())
	}
}

func Test_authApi_login(t *testing.T) {
	invalid := marshallObj(t, errInvalidLogin)

	tests := []struct {
		name         string
		id, secret   string
		wantCode     int
		wantLocation string
		wantData     []byte
	}{
		{name: "student", id: "STU123", secret: "student123", wantCode: http.StatusSeeOther, wantLocation: "/dashboard/student"},
		{name: "admin", id: "ADM123", secret: "admin123", wantCode: http.StatusSeeOther, wantLocation: "/dashboard/admin"},
		{name: "finance officer", id: "FIN123", secret: "finance-officer123", wantCode: http.StatusSeeOther, wantLocation: "/dashboard/finance-officer"},
		{name: "id is normalised", id: " stu123 ", secret: "student123", wantCode: http.StatusSeeOther, wantLocation: "/dashboard/student"},
		{name: "wrong secret", id: "STU123", secret: "wrong", wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "unknown id", id: "STU404", secret: "student123", wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "unknown prefix", id: "XYZ123", secret: "student123", wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "inactive account", id: "STU999", secret: "student999", wantCode: http.StatusUnauthorized, wantData: invalid},
		{name: "secret is case-sensitive", id: "STU123", secret: "STUDENT123", wantCode: http.StatusUnauthorized, wantData: invalid},
		{
			name:     "missing fields",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"id": "this field is required", "secret": "this field is required"}),
		},
		{
			name:     "missing secret",
			id:       "STU123",
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"secret": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(tt.id, tt.secret, nil)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantLocation: tt.wantLocation, wantData: tt.wantData}, rec)

			cookie := sessionCookie(rec)
			if tt.wantCode == http.StatusSeeOther {
				if cookie == nil || cookie.Value == "" {
					t.Fatal("no session cookie set")
				}
				if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode || cookie.Path != "/" {
					t.Errorf("session cookie attributes = %+v", cookie)
				}
			} else if cookie != nil && cookie.Value != "" {
				t.Errorf("failed login set a session cookie: %+v", cookie)
			}
		})
	}
}

func Test_authApi_login_form(t *testing.T) {
	rec := postLoginForm("TCH123", "teacher123")
	checkCodeAndData(t, httpTest{wantCode: http.StatusSeeOther, wantLocation: "/dashboard/teacher"}, rec)
}

func Test_authApi_login_failuresAreIndistinguishable(t *testing.T) {
	unknown := postLogin("ADM404", "admin123", nil)
	wrong := postLogin("ADM123", "admin124", nil)
	if unknown.Code != wrong.Code || unknown.Body.String() != wrong.Body.String() {
		t.Errorf("responses differ: unknown id = %d %s, wrong secret = %d %s",
			unknown.Code, unknown.Body.String(), wrong.Code, wrong.Body.String())
	}
}

func Test_authApi_login_replacesSession(t *testing.T) {
	first := login(t, "PAR123", "parent123")

	rec := postLogin("MED123", "media-officer123", first)
	checkCodeAndData(t, httpTest{wantCode: http.StatusSeeOther, wantLocation: "/dashboard/media-officer"}, rec)
	second := sessionCookie(rec)
	if second == nil || second.Value == first.Value {
		t.Fatal("re-login did not issue a new session token")
	}

	runHTTPTests(t, []httpTest{
		{name: "old session revoked", method: http.MethodGet, path: "/dashboard/parent", cookie: first, wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "new session live", method: http.MethodGet, path: "/dashboard/media-officer", cookie: second, wantCode: http.StatusOK},
	})
}

func Test_authApi_logout(t *testing.T) {
	cookie := login(t, "EXM123", "exams-officer123")

	req, rec := newCookieRequest(http.MethodPost, "/logout", cookie)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusSeeOther, wantLocation: "/login"}, rec)
	if cleared := sessionCookie(rec); cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Errorf("logout did not clear the session cookie: %+v", cleared)
	}

	runHTTPTests(t, []httpTest{
		{name: "dashboard after logout", method: http.MethodGet, path: "/dashboard/exams-officer", cookie: cookie, wantCode: http.StatusFound, wantLocation: "/login"},
		{name: "logout twice", method: http.MethodPost, path: "/logout", cookie: cookie, wantCode: http.StatusSeeOther, wantLocation: "/login"},
		{name: "logout without session", method: http.MethodPost, path: "/logout", wantCode: http.StatusSeeOther, wantLocation: "/login"},
	})
}

func Test_authApi_currentSession(t *testing.T) {
	cookie := login(t, "ADO123", "admission-officer123")

	req, rec := newCookieRequest(http.MethodGet, "/session", cookie)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /session code = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		SubjectID     string    `json:"subject_id"`
		Role          user.Role `json:"role"`
		EntryPath     string    `json:"entry_path"`
		EstablishedAt time.Time `json:"established_at"`
		ExpiresAt     time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.SubjectID != "ADO123" || got.Role != user.RoleAdmissionOfficer || got.EntryPath != "/dashboard/admission-officer" {
		t.Errorf("GET /session = %+v", got)
	}
	if ttl := got.ExpiresAt.Sub(got.EstablishedAt); ttl != time.Hour {
		t.Errorf("session lifetime = %v, want 1h", ttl)
	}

	runHTTPTests(t, []httpTest{
		{name: "no session", method: http.MethodGet, path: "/session", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "no active session"})},
		{name: "garbage cookie", method: http.MethodGet, path: "/session", cookie: &http.Cookie{Name: cookieName, Value: "garbage"}, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "no active session"})},
	})
}

func Test_authApi_currentSession_expired(t *testing.T) {
	defer func() { session.NowFunc = time.Now }()
	cookie := login(t, "STU123", "student123")

	session.NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	runHTTPTests(t, []httpTest{
		{name: "session", method: http.MethodGet, path: "/session", cookie: cookie, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, httpErr{Error: "session expired"})},
	})

	session.NowFunc = time.Now
	cookie = login(t, "STU123", "student123")
	session.NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	runHTTPTests(t, []httpTest{
		{name: "dashboard", method: http.MethodGet, path: "/dashboard/student", cookie: cookie, wantCode: http.StatusFound, wantLocation: "/login"},
	})
}

func Test_authApi_roles(t *testing.T) {
	req, rec := newRequest(http.MethodGet, "/roles")
	app.ServeHTTP(rec, req)
	var roles []struct {
		Name      string `json:"name"`
		Value     string `json:"value"`
		IDPrefix  string `json:"id_prefix"`
		EntryPath string `json:"entry_path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatal(err)
	}
	if len(roles) != len(user.AllRoles) {
		t.Fatalf("GET /roles returned %d roles, want %d", len(roles), len(user.AllRoles))
	}
	if r := roles[3]; r.Value != "admin" || r.IDPrefix != "ADM" || r.EntryPath != "/dashboard/admin" || r.Name != "Admin" {
		t.Errorf("GET /roles admin entry = %+v", r)
	}
}

func Test_authApi_roleHint(t *testing.T) {
	runHTTPTests(t, []httpTest{
		{
			name: "known prefix", method: http.MethodGet, path: "/roles/hint?id=adm777", wantCode: http.StatusOK,
			wantData: marshallObj(t, echo.Map{"id": "ADM777", "role": "admin", "known_prefix": true}),
		},
		{
			name: "unknown prefix", method: http.MethodGet, path: "/roles/hint?id=XYZ000", wantCode: http.StatusOK,
			wantData: marshallObj(t, echo.Map{"id": "XYZ000", "role": "student", "known_prefix": false}),
		},
		{
			name: "empty", method: http.MethodGet, path: "/roles/hint", wantCode: http.StatusOK,
			wantData: marshallObj(t, echo.Map{"id": "", "role": "student", "known_prefix": false}),
		},
	})
}
