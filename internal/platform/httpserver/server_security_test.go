package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	articleservice "keystone/contexts/content/article-service"
	authorizationservice "keystone/contexts/identity-access/authorization-service"
	authzmemory "keystone/contexts/identity-access/authorization-service/adapters/memory"
	"keystone/contexts/identity-access/authorization-service/application/commands"
	identityservice "keystone/contexts/identity-access/identity-service"
	identityhttp "keystone/contexts/identity-access/identity-service/transport/http"
	tokenapp "keystone/contexts/identity-access/token-service/application"
	"keystone/internal/platform/config"
)

func newTestServer() *Server {
	articles := articleservice.NewInMemoryModule(slog.Default())

	authzStore := authzmemory.NewStore()
	authorization := authorizationservice.NewModule(authorizationservice.Dependencies{
		Routes:       authzStore,
		Roles:        authzStore,
		Contributors: articles.Store,
		Clock:        authzStore,
		IDs:          authzStore,
		Logger:       slog.Default(),
	})
	authorization.Store = authzStore

	declared := make(map[string]commands.DeclaredRoute)
	for name, target := range config.Routes() {
		declared[name] = commands.DeclaredRoute{
			Controller: target.Controller,
			Action:     target.Action,
			Policies:   target.Policies,
		}
	}
	if _, err := authorization.SyncRoutes.Execute(context.Background(), commands.SyncRoutesCommand{Declared: declared}); err != nil {
		panic(err)
	}

	return New(
		tokenapp.Service{Secret: "test-secret", Logger: slog.Default()},
		identityservice.NewInMemoryModule(bcrypt.MinCost, slog.Default()),
		authorization,
		articles,
		"http://localhost:3000",
		slog.Default(),
		":0",
	)
}

func doJSON(t *testing.T, server *Server, method string, path string, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

// registerUser creates an account over the wire and returns its token and
// id. The first account registered on a fresh server is the admin.
func registerUser(t *testing.T, server *Server, username string) (token string, userID string) {
	t.Helper()
	rr := doJSON(t, server, http.MethodPost, "/auth/local/register", "", identityhttp.RegisterRequest{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "s3cretpassw0rd",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s: expected 200, got %d body=%s", username, rr.Code, rr.Body.String())
	}
	var resp identityhttp.AuthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token for %s", username)
	}
	return resp.Token, resp.User.UserID
}

func TestUnknownPathIsNotFound(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/nope", "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPrivateRouteRejectsAnonymous(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPut, "/user/user-1", "", identityhttp.UpdateUserRequest{Username: "other"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestGarbageTokenIsTreatedAsAnonymous(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodPut, "/user/user-1", "not-a-jwt", identityhttp.UpdateUserRequest{Username: "other"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestPublicRouteAllowsAnonymous(t *testing.T) {
	server := newTestServer()
	rr := doJSON(t, server, http.MethodGet, "/article", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var articles []json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &articles); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected an empty list, got %s", rr.Body.String())
	}
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	server := newTestServer()
	adminToken, _ := registerUser(t, server, "root")
	token, userID := registerUser(t, server, "ghost")

	rr := doJSON(t, server, http.MethodDelete, "/user/"+userID, adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPut, "/user/"+userID, token, identityhttp.UpdateUserRequest{Username: "back"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a deleted subject, got %d body=%s", rr.Code, rr.Body.String())
	}
}
