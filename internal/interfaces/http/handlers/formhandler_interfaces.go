package handlers

import (
	"context"
	"io"

	"github.com/formcraft-io/formcraft/internal/application/form/dto"
	"github.com/formcraft-io/formcraft/internal/application/form/usecases"
	"github.com/formcraft-io/formcraft/internal/domain/form"
)

// Use case interfaces for the form handlers

type createFormUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateFormCommand) (*usecases.CreateFormResult, error)
}

type updateFormUseCase interface {
	Execute(ctx context.Context, cmd usecases.UpdateFormCommand) (*usecases.UpdateFormResult, error)
}

type getFormUseCase interface {
	Execute(ctx context.Context, userID uint, formSID string) (*dto.FormDetailDTO, error)
	ExecutePublic(ctx context.Context, formSID string) (*dto.FormDetailDTO, error)
}

type listFormsUseCase interface {
	Execute(ctx context.Context, query usecases.ListFormsQuery) (*usecases.ListFormsResult, error)
}

type deleteFormUseCase interface {
	Execute(ctx context.Context, userID uint, formSID string) error
}

type changeFormStatusUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangeFormStatusCommand) (*form.Form, error)
}

type formVersionManager interface {
	CreateVersion(ctx context.Context, userID uint, formSID string, schema form.Schema) (*form.Version, error)
	RestoreVersion(ctx context.Context, userID uint, formSID string, versionNumber int) (*form.Version, error)
	DeleteVersion(ctx context.Context, userID uint, formSID string, versionNumber int) error
	ListVersions(ctx context.Context, userID uint, formSID string) ([]*form.Version, error)
	GetVersion(ctx context.Context, userID uint, formSID string, versionNumber int) (*form.Version, error)
}

type listSubmissionsUseCase interface {
	Execute(ctx context.Context, query usecases.ListSubmissionsQuery) (*usecases.ListSubmissionsResult, error)
}

type exportSubmissionsUseCase interface {
	Execute(ctx context.Context, userID uint, formSID string, w io.Writer) error
}

type submitFormUseCase interface {
	Execute(ctx context.Context, cmd usecases.SubmitFormCommand) (*usecases.SubmitFormResult, error)
}

type shareFormUseCase interface {
	Execute(ctx context.Context, cmd usecases.ShareFormCommand) error
	Unshare(ctx context.Context, ownerID uint, formSID string, targetID uint) error
}
