package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	auth "github.com/skillforge/skillforge/internal/auth/middleware"
	"github.com/skillforge/skillforge/internal/rbac"
)

func TestJWTRoundtrip(t *testing.T) {
	svc := auth.NewAuthService("test-secret", nil, nil)

	tok, err := svc.IssueJWT("ada", "student", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "ada" || claims.Role != "student" || claims.StudentID != 7 {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewAuthService("secret-a", nil, nil)
	verifier := auth.NewAuthService("secret-b", nil, nil)

	tok, err := issuer.IssueJWT("ada", "student", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(tok); err == nil {
		t.Fatal("token signed with another secret must not verify")
	}
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewAuthService("test-secret", nil, nil)

	var gotRole string
	var gotStudent int64
	handler := auth.JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = rbac.RoleFromContext(r.Context())
		gotStudent = auth.StudentIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No bearer.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no bearer = %d, want 401", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token = %d, want 401", rec.Code)
	}

	// Valid token attaches identity.
	tok, err := svc.IssueJWT("ada", "student", 7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token = %d, want 200", rec.Code)
	}
	if gotRole != "student" || gotStudent != 7 {
		t.Fatalf("context identity = %s/%d, want student/7", gotRole, gotStudent)
	}
}
