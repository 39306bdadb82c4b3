package queries

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"keystone/contexts/identity-access/identity-service/adapters/memory"
	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/domain/services"
)

func seedLocalUser(t *testing.T, store *memory.Store, hasher *services.Hasher, username, email, password string) entities.User {
	t.Helper()
	hashed, err := hasher.Hash(context.Background(), password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	user, err := store.Create(context.Background(), entities.User{
		UserID:   "user-" + username,
		Username: username,
		Email:    email,
		Password: hashed,
	})
	if err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	if _, err := store.CreatePassport(context.Background(), entities.Passport{
		PassportID: "passport-" + username,
		Protocol:   entities.ProtocolLocal,
		Password:   hashed,
		UserID:     user.UserID,
	}); err != nil {
		t.Fatalf("seed passport failed: %v", err)
	}
	return user
}

func TestAuthenticateByEmailAndUsername(t *testing.T) {
	store := memory.NewStore()
	hasher := services.NewHasher(bcrypt.MinCost)
	authenticate := AuthenticateUseCase{Users: store, Passports: store, Hasher: hasher}
	seeded := seedLocalUser(t, store, hasher, "dual", "dual@example.com", "valid-password")

	byEmail, err := authenticate.Execute(context.Background(), AuthenticateQuery{
		Identifier: "dual@example.com",
		Password:   "valid-password",
	})
	if err != nil {
		t.Fatalf("email login failed: %v", err)
	}
	if byEmail.UserID != seeded.UserID {
		t.Fatalf("email login resolved wrong user %s", byEmail.UserID)
	}

	byUsername, err := authenticate.Execute(context.Background(), AuthenticateQuery{
		Identifier: "dual",
		Password:   "valid-password",
	})
	if err != nil {
		t.Fatalf("username login failed: %v", err)
	}
	if byUsername.UserID != seeded.UserID {
		t.Fatalf("username login resolved wrong user %s", byUsername.UserID)
	}
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	store := memory.NewStore()
	hasher := services.NewHasher(bcrypt.MinCost)
	authenticate := AuthenticateUseCase{Users: store, Passports: store, Hasher: hasher}
	seedLocalUser(t, store, hasher, "victim", "victim@example.com", "valid-password")

	_, err := authenticate.Execute(context.Background(), AuthenticateQuery{
		Identifier: "victim@example.com",
		Password:   "guessed-wrong",
	})
	if !errors.Is(err, domainerrors.ErrInvalidLogin) {
		t.Fatalf("got %v, want ErrInvalidLogin", err)
	}
}

func TestAuthenticateUnknownIdentifier(t *testing.T) {
	store := memory.NewStore()
	hasher := services.NewHasher(bcrypt.MinCost)
	authenticate := AuthenticateUseCase{Users: store, Passports: store, Hasher: hasher}

	_, err := authenticate.Execute(context.Background(), AuthenticateQuery{
		Identifier: "ghost@example.com",
		Password:   "whatever1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidLogin) {
		t.Fatalf("got %v, want ErrInvalidLogin", err)
	}
}

func TestListUsersScoping(t *testing.T) {
	store := memory.NewStore()
	hasher := services.NewHasher(bcrypt.MinCost)
	list := ListUsersUseCase{Users: store}
	a := seedLocalUser(t, store, hasher, "alpha", "alpha@example.com", "valid-password")
	seedLocalUser(t, store, hasher, "beta", "beta@example.com", "valid-password")

	all, err := list.Execute(context.Background(), ListUsersQuery{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}

	scoped, err := list.Execute(context.Background(), ListUsersQuery{ScopeToIDs: true, IDs: []string{a.UserID}})
	if err != nil {
		t.Fatalf("scoped list failed: %v", err)
	}
	if len(scoped) != 1 || scoped[0].UserID != a.UserID {
		t.Fatalf("unexpected scoped result %+v", scoped)
	}

	none, err := list.Execute(context.Background(), ListUsersQuery{ScopeToIDs: true})
	if err != nil {
		t.Fatalf("empty-scope list failed: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("empty scope must match nothing, got %d", len(none))
	}
}
