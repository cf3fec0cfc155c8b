package handlers

import (
	"context"

	"github.com/formcraft-io/formcraft/internal/application/user/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/user"
)

// Use case interfaces for AuthHandler

type registerUseCase interface {
	Execute(ctx context.Context, cmd usecases.RegisterCommand) (*user.User, error)
}

type loginUseCase interface {
	Execute(ctx context.Context, cmd usecases.LoginCommand) (*usecases.LoginResult, error)
}
