package queries

import (
	"context"
	"strings"

	"keystone/contexts/identity-access/identity-service/domain/entities"
	domainerrors "keystone/contexts/identity-access/identity-service/domain/errors"
	"keystone/contexts/identity-access/identity-service/ports"
)

type GetUserUseCase struct {
	Users ports.UserRepository
}

// Execute returns the user with roles populated.
func (u GetUserUseCase) Execute(ctx context.Context, userID string) (entities.User, error) {
	if strings.TrimSpace(userID) == "" {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return u.Users.FindByID(ctx, userID)
}
