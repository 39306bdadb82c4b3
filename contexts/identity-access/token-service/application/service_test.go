package application

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"keystone/contexts/identity-access/token-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/token-service/domain/errors"
)

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	token, err := service.Issue(entities.Subject{UserID: "user-1", Username: "ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	subject, err := service.Verify(token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if subject.UserID != "user-1" || subject.Username != "ada" {
		t.Fatalf("unexpected subject %+v", subject)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	token, err := service.Issue(entities.Subject{UserID: "user-1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := (Service{Secret: "other-secret"}).Verify(token); !errors.Is(err, domainerrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential, got %v", err)
	}
	if _, err := service.Verify(token + "x"); !errors.Is(err, domainerrors.ErrInvalidCredential) {
		t.Fatalf("expected invalid credential for altered token, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret", TTL: -time.Minute}
	token, err := service.Issue(entities.Subject{UserID: "user-1"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := service.Verify(token); !errors.Is(err, domainerrors.ErrInvalidCredential) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestResolveHeaderTakesPrecedenceOverBodyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	headerToken, err := service.Issue(entities.Subject{UserID: "header-user"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/user", bytes.NewReader([]byte(`{"token":"not-a-valid-token"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+headerToken)

	subject, err := service.Resolve(req, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if subject.UserID != "header-user" {
		t.Fatalf("expected header credential to win, got %+v", subject)
	}
}

func TestResolveStripsTokenFromQuery(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	token, err := service.Issue(entities.Subject{UserID: "user-3"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/article?limit=5&token="+token, nil)
	subject, err := service.Resolve(req, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if subject.UserID != "user-3" {
		t.Fatalf("unexpected subject %+v", subject)
	}
	if req.URL.Query().Get("token") != "" {
		t.Fatalf("token was not stripped from query: %s", req.URL.RawQuery)
	}
	if req.URL.Query().Get("limit") != "5" {
		t.Fatalf("unrelated query parameters were lost: %s", req.URL.RawQuery)
	}
}

func TestResolveStripsTokenFromJSONBody(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	token, err := service.Issue(entities.Subject{UserID: "user-4"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/article", bytes.NewReader([]byte(`{"title":"hello","token":"`+token+`"}`)))
	req.Header.Set("Content-Type", "application/json")

	subject, err := service.Resolve(req, true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if subject.UserID != "user-4" {
		t.Fatalf("unexpected subject %+v", subject)
	}

	body, _ := io.ReadAll(req.Body)
	if bytes.Contains(body, []byte("token")) {
		t.Fatalf("token was not stripped from body: %s", body)
	}
	if !bytes.Contains(body, []byte("hello")) {
		t.Fatalf("body payload was lost: %s", body)
	}
}

func TestResolveAnonymousWhenOptional(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	req := httptest.NewRequest("GET", "/article", nil)

	subject, err := service.Resolve(req, false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !subject.Anonymous() {
		t.Fatalf("expected anonymous subject, got %+v", subject)
	}
}

func TestResolveMissingCredentialWhenRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	req := httptest.NewRequest("GET", "/user", nil)

	if _, err := service.Resolve(req, true); !errors.Is(err, domainerrors.ErrMissingCredential) {
		t.Fatalf("expected missing credential, got %v", err)
	}
}

func TestResolveMalformedHeaderWhenRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	service := Service{Secret: "test-secret"}
	req := httptest.NewRequest("GET", "/user", nil)
	req.Header.Set("Authorization", "Bearer")

	if _, err := service.Resolve(req, true); !errors.Is(err, domainerrors.ErrMalformedAuthHeader) {
		t.Fatalf("expected malformed header error, got %v", err)
	}
}
