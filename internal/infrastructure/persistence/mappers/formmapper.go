package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/formcraft-io/formcraft/internal/domain/form"
	"github.com/formcraft-io/formcraft/internal/infrastructure/persistence/models"
	"github.com/formcraft-io/formcraft/internal/shared/mapper"
)

type FormMapper interface {
	ToEntity(model *models.FormModel) (*form.Form, error)
	ToModel(entity *form.Form) *models.FormModel
	ToEntities(models []*models.FormModel) ([]*form.Form, error)
	VersionToEntity(model *models.FormVersionModel) (*form.Version, error)
	VersionToModel(entity *form.Version) (*models.FormVersionModel, error)
	VersionsToEntities(models []*models.FormVersionModel) ([]*form.Version, error)
	SubmissionToEntity(model *models.SubmissionModel) (*form.Submission, error)
	SubmissionToModel(entity *form.Submission) (*models.SubmissionModel, error)
}

type FormMapperImpl struct{}

func NewFormMapper() FormMapper {
	return &FormMapperImpl{}
}

func (m *FormMapperImpl) ToEntity(model *models.FormModel) (*form.Form, error) {
	if model == nil {
		return nil, nil
	}
	status := form.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid form status: %s", model.Status)
	}
	return form.ReconstructForm(
		model.ID,
		model.SID,
		model.OwnerID,
		model.Title,
		model.Description,
		status,
		model.CurrentVersion,
		model.CreatedAt,
		model.UpdatedAt,
	), nil
}

func (m *FormMapperImpl) ToModel(entity *form.Form) *models.FormModel {
	if entity == nil {
		return nil
	}
	return &models.FormModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		OwnerID:        entity.OwnerID(),
		Title:          entity.Title(),
		Description:    entity.Description(),
		Status:         string(entity.Status()),
		CurrentVersion: entity.CurrentVersion(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}
}

func (m *FormMapperImpl) ToEntities(items []*models.FormModel) ([]*form.Form, error) {
	return mapper.MapSlicePtrWithID(items, m.ToEntity, func(f *models.FormModel) uint { return f.ID })
}

func (m *FormMapperImpl) VersionToEntity(model *models.FormVersionModel) (*form.Version, error) {
	if model == nil {
		return nil, nil
	}
	var schema form.Schema
	if len(model.Schema) > 0 {
		if err := json.Unmarshal(model.Schema, &schema); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
		}
	}

	fields := make([]form.FormField, 0, len(model.Fields))
	for _, fm := range model.Fields {
		field := form.FormField{
			ID:          fm.ID,
			Key:         fm.FieldKey,
			Type:        fm.Type,
			Label:       fm.Label,
			Placeholder: fm.Placeholder,
			Required:    fm.Required,
			Position:    fm.Position,
		}
		if len(fm.Options) > 0 {
			if err := json.Unmarshal(fm.Options, &field.Options); err != nil {
				return nil, fmt.Errorf("failed to unmarshal field options: %w", err)
			}
		}
		if len(fm.Validation) > 0 {
			if err := json.Unmarshal(fm.Validation, &field.Validation); err != nil {
				return nil, fmt.Errorf("failed to unmarshal field validation: %w", err)
			}
		}
		fields = append(fields, field)
	}

	return form.ReconstructVersion(model.ID, model.FormID, model.VersionNumber, schema, fields, model.CreatedAt), nil
}

func (m *FormMapperImpl) VersionToModel(entity *form.Version) (*models.FormVersionModel, error) {
	schema, err := json.Marshal(entity.Schema())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	model := &models.FormVersionModel{
		ID:            entity.ID(),
		FormID:        entity.FormID(),
		VersionNumber: entity.VersionNumber(),
		Schema:        datatypes.JSON(schema),
		CreatedAt:     entity.CreatedAt(),
	}
	for _, f := range entity.Fields() {
		fm := models.FormFieldModel{
			ID:          f.ID,
			VersionID:   entity.ID(),
			FieldKey:    f.Key,
			Type:        f.Type,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Position:    f.Position,
		}
		if len(f.Options) > 0 {
			raw, err := json.Marshal(f.Options)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal field options: %w", err)
			}
			fm.Options = raw
		}
		if len(f.Validation) > 0 {
			raw, err := json.Marshal(f.Validation)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal field validation: %w", err)
			}
			fm.Validation = raw
		}
		model.Fields = append(model.Fields, fm)
	}
	return model, nil
}

func (m *FormMapperImpl) VersionsToEntities(items []*models.FormVersionModel) ([]*form.Version, error) {
	return mapper.MapSlicePtrWithID(items, m.VersionToEntity, func(v *models.FormVersionModel) uint { return v.ID })
}

func (m *FormMapperImpl) SubmissionToEntity(model *models.SubmissionModel) (*form.Submission, error) {
	if model == nil {
		return nil, nil
	}
	data := map[string]any{}
	if len(model.Data) > 0 {
		if err := json.Unmarshal(model.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submission data: %w", err)
		}
	}
	return form.ReconstructSubmission(
		model.ID,
		model.SID,
		model.FormID,
		data,
		model.IPAddress,
		model.SubmitterID,
		model.SubmittedAt,
	), nil
}

func (m *FormMapperImpl) SubmissionToModel(entity *form.Submission) (*models.SubmissionModel, error) {
	data, err := json.Marshal(entity.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal submission data: %w", err)
	}
	return &models.SubmissionModel{
		ID:          entity.ID(),
		SID:         entity.SID(),
		FormID:      entity.FormID(),
		Data:        datatypes.JSON(data),
		IPAddress:   entity.IPAddress(),
		SubmitterID: entity.SubmitterID(),
		SubmittedAt: entity.SubmittedAt(),
	}, nil
}
