package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/user"
	apperrors "github.com/formcraft-io/formcraft/internal/shared/errors"
	"github.com/formcraft-io/formcraft/internal/shared/logger"
	"github.com/formcraft-io/formcraft/internal/shared/utils"
)

type LoginCommand struct {
	Email     string
	Password  string
	IPAddress string
}

type LoginResult struct {
	User        *user.User
	AccessToken string
	ExpiresAt   time.Time
}

type LoginUseCase struct {
	userRepo user.Repository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   logger.Interface
}

func NewLoginUseCase(userRepo user.Repository, hasher PasswordHasher, tokens TokenIssuer, logger logger.Interface) *LoginUseCase {
	return &LoginUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	u, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(cmd.Email)))
	if err != nil {
		uc.logger.Errorw("failed to get user by email", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Same error for unknown email and wrong password.
	if u == nil || u.PasswordHash() == "" {
		uc.logger.Warnw("login for unknown email", "email", utils.MaskEmail(cmd.Email), "ip", cmd.IPAddress)
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}
	if err := uc.hasher.Compare(u.PasswordHash(), cmd.Password); err != nil {
		uc.logger.Warnw("failed login attempt", "user_id", u.ID(), "ip", cmd.IPAddress)
		return nil, apperrors.NewUnauthorizedError("invalid email or password")
	}

	token, expiresAt, err := uc.tokens.Issue(u.ID(), u.Role())
	if err != nil {
		uc.logger.Errorw("failed to issue access token", "error", err, "user_id", u.ID())
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	uc.logger.Infow("user logged in successfully", "user_id", u.ID())
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: expiresAt}, nil
}
