package auth

import (
	"context"
	"errors"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/shared"
)

// Accounts looks up stored user accounts.
type Accounts interface {
	FindUserByEmail(ctx context.Context, email string) (pickup.UserAccount, error)
}

// Service wraps demo sign-in rules.
type Service struct {
	accounts Accounts
}

// NewService constructs a new Service.
func NewService(accounts Accounts) *Service {
	return &Service{accounts: accounts}
}

// Authenticate resolves the identity for email. Demo accounts carry no credential,
// so possession of an active account's address is sufficient.
func (s *Service) Authenticate(ctx context.Context, email string) (authctx.Identity, error) {
	user, err := s.accounts.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pickup.ErrNotFound) {
			return authctx.Identity{}, shared.ErrInvalidCredentials
		}
		return authctx.Identity{}, err
	}
	if !user.IsActive {
		return authctx.Identity{}, shared.ErrInactiveAccount
	}
	if !user.Role.Valid() {
		return authctx.Identity{}, shared.ErrInvalidCredentials
	}
	return authctx.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
	}, nil
}
