package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret: []byte("test-secret"),
		Issuer: "hoslink",
		Expiry: time.Hour,
	}
}

func TestStaticProviderAuthenticate(t *testing.T) {
	p := NewStaticProvider()

	id, err := p.Authenticate(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil {
		t.Fatal("expected identity for valid credentials")
	}
	if id.Role != RoleAdmin {
		t.Errorf("expected admin role, got %q", id.Role)
	}
	if id.Facility != "All Facilities" {
		t.Errorf("unexpected facility: %q", id.Facility)
	}
}

func TestStaticProviderRejectsWrongPassword(t *testing.T) {
	p := NewStaticProvider()

	id, err := p.Authenticate(context.Background(), "admin", "wrong")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Error("expected nil identity for wrong password")
	}

	id, err = p.Authenticate(context.Background(), "nobody", "admin123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Error("expected nil identity for unknown user")
	}
}

func TestStaticProviderSeedAccounts(t *testing.T) {
	p := NewStaticProvider()

	cases := []struct {
		username, password, role, facility string
	}{
		{"hospital_staff", "staff123", RoleStaff, "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)"},
		{"kisumu_staff", "kisumu123", RoleStaff, "Kisumu County Referral Hospital"},
		{"driver", "driver123", RoleDriver, "Ambulance Fleet"},
	}
	for _, tc := range cases {
		id, err := p.Authenticate(context.Background(), tc.username, tc.password)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.username, err)
		}
		if id == nil {
			t.Fatalf("%s: expected identity", tc.username)
		}
		if id.Role != tc.role {
			t.Errorf("%s: expected role %q, got %q", tc.username, tc.role, id.Role)
		}
		if id.Facility != tc.facility {
			t.Errorf("%s: expected facility %q, got %q", tc.username, tc.facility, id.Facility)
		}
	}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	token, err := IssueToken(cfg, &Identity{Username: "kisumu_staff", Role: RoleStaff, Facility: "Kisumu County Referral Hospital"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Identity
	h := JWTMiddleware(cfg)(func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected identity in context")
	}
	if got.Username != "kisumu_staff" || got.Role != RoleStaff {
		t.Errorf("unexpected identity: %+v", got)
	}
}

func TestJWTMiddlewareRejectsBadToken(t *testing.T) {
	cfg := testJWTConfig()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(cfg)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := h(c)
	if err == nil {
		t.Fatal("expected error for invalid token")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := JWTMiddleware(testJWTConfig())(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	err := h(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	run := func(id *Identity, roles ...string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id != nil {
			req = req.WithContext(WithIdentity(req.Context(), id))
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := RequireRole(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		return h(c)
	}

	if err := run(&Identity{Username: "driver", Role: RoleDriver}, RoleDriver); err != nil {
		t.Errorf("driver should pass driver guard: %v", err)
	}
	if err := run(&Identity{Username: "admin", Role: RoleAdmin}, RoleDriver); err != nil {
		t.Errorf("admin should pass any guard: %v", err)
	}
	err := run(&Identity{Username: "hospital_staff", Role: RoleStaff}, RoleDriver)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 for staff on driver guard, got %v", err)
	}
	err = run(nil, RoleDriver)
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing identity, got %v", err)
	}
}

func TestDevAuthMiddleware(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *Identity
	h := DevAuthMiddleware()(func(c echo.Context) error {
		got = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Role != RoleAdmin {
		t.Errorf("expected dev admin identity, got %+v", got)
	}
}

func TestLoginHandler(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewStaticProvider(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"driver","password":"driver123"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Error("expected token in response")
	}
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	e := echo.New()
	h := NewHandler(NewStaticProvider(), testJWTConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"driver","password":"nope"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}
