package usecase

import (
	"context"
	"errors"

	"github.com/admixflow/admixflow/internal/domain"
	"github.com/admixflow/admixflow/internal/ports"
	"github.com/admixflow/admixflow/internal/service/password"
	"github.com/admixflow/admixflow/internal/service/token"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// LoginResponse carries the issued token and the authenticated operator.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthUseCase authenticates operators and issues access tokens.
type AuthUseCase struct {
	users  ports.UserRepository
	tokens *token.Service
}

func NewAuthUseCase(users ports.UserRepository, tokens *token.Service) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

// Login verifies credentials against the bcrypt hash and signs a token. The
// same failure is reported for unknown email and wrong password.
func (uc *AuthUseCase) Login(ctx context.Context, email, plain string) (*LoginResponse, error) {
	user, err := uc.users.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Compare(user.PasswordHash, plain) {
		return nil, ErrInvalidCredentials
	}

	signed, err := uc.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: signed, User: user}, nil
}
