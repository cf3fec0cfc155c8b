package mappers

import (
	"github.com/formcraft-io/formcraft/internal/domain/user"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
)

// UserToEntity converts a user row to the domain entity.
func UserToEntity(model *models.UserModel) *user.User {
	if model == nil {
		return nil
	}
	return user.ReconstructUser(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		user.Role(model.Role),
		derefString(model.ProviderCustomerID),
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func UserToModel(entity *user.User) *models.UserModel {
	return &models.UserModel{
		ID:                 entity.ID(),
		Email:              entity.Email(),
		Name:               entity.Name(),
		PasswordHash:       entity.PasswordHash(),
		Role:               string(entity.Role()),
		ProviderCustomerID: nilIfEmpty(entity.ProviderCustomerID()),
		CreatedAt:          entity.CreatedAt(),
		UpdatedAt:          entity.UpdatedAt(),
	}
}

// nilIfEmpty keeps optional unique columns NULL so several rows may lack a value.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
