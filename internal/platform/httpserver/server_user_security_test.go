package httpserver

import (
	"encoding/json"
	"net/http"
	"testing"

	identityhttp "keystone/contexts/identity-access/identity-service/transport/http"
)

func TestUserUpdateIsSelfOnly(t *testing.T) {
	server := newTestServer()
	adminToken, _ := registerUser(t, server, "root")
	aliceToken, aliceID := registerUser(t, server, "alice")
	_, bobID := registerUser(t, server, "bob")

	rr := doJSON(t, server, http.MethodPut, "/user/"+aliceID, aliceToken, identityhttp.UpdateUserRequest{Username: "alice2"})
	if rr.Code != http.StatusOK {
		t.Fatalf("self update: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var updated identityhttp.UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if updated.Username != "alice2" {
		t.Fatalf("expected username alice2, got %q", updated.Username)
	}

	rr = doJSON(t, server, http.MethodPut, "/user/"+bobID, aliceToken, identityhttp.UpdateUserRequest{Username: "hijacked"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("foreign update: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPut, "/user/"+bobID, adminToken, identityhttp.UpdateUserRequest{Username: "bob2"})
	if rr.Code != http.StatusOK {
		t.Fatalf("admin update: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUserDeleteIsSelfOnly(t *testing.T) {
	server := newTestServer()
	registerUser(t, server, "root")
	aliceToken, aliceID := registerUser(t, server, "alice")
	_, bobID := registerUser(t, server, "bob")

	rr := doJSON(t, server, http.MethodDelete, "/user/"+bobID, aliceToken, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("foreign delete: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodDelete, "/user/"+aliceID, aliceToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("self delete: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodGet, "/user/"+aliceID, "", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUserListIsReadableByDefault(t *testing.T) {
	server := newTestServer()
	registerUser(t, server, "root")
	registerUser(t, server, "alice")

	rr := doJSON(t, server, http.MethodGet, "/user", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var users []identityhttp.UserResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, user := range users {
		if user.UserID == "" || user.Username == "" {
			t.Fatalf("expected serialized users to carry id and username: %+v", user)
		}
	}
}

func TestUserCreateRequiresAdmin(t *testing.T) {
	server := newTestServer()
	adminToken, _ := registerUser(t, server, "root")
	aliceToken, _ := registerUser(t, server, "alice")

	payload := identityhttp.RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "s3cretpassw0rd",
	}

	rr := doJSON(t, server, http.MethodPost, "/user", aliceToken, payload)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, server, http.MethodPost, "/user", adminToken, payload)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin create: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
