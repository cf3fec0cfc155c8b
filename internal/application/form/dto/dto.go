package dto

import (
	"time"

	"github.com/formcraft-io/formcraft/internal/domain/form"
)

type FormDTO struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	CurrentVersion int       `json:"current_version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FieldDTO struct {
	Key         string         `json:"key"`
	Type        string         `json:"type"`
	Label       string         `json:"label"`
	Placeholder string         `json:"placeholder,omitempty"`
	Required    bool           `json:"required"`
	Position    int            `json:"position"`
	Options     []form.Option  `json:"options,omitempty"`
	Validation  map[string]any `json:"validation,omitempty"`
}

type VersionDTO struct {
	FormID        string         `json:"form_id"`
	VersionNumber int            `json:"version_number"`
	Schema        map[string]any `json:"schema"`
	Fields        []FieldDTO     `json:"fields"`
	CreatedAt     time.Time      `json:"created_at"`
}

// VersionSummaryDTO omits the schema for version listings.
type VersionSummaryDTO struct {
	VersionNumber int       `json:"version_number"`
	FieldCount    int       `json:"field_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type FormDetailDTO struct {
	FormDTO
	Version *VersionDTO `json:"version,omitempty"`
}

type SubmissionDTO struct {
	ID          string         `json:"id"`
	FormID      string         `json:"form_id"`
	Data        map[string]any `json:"data"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

func ToFormDTO(f *form.Form) *FormDTO {
	if f == nil {
		return nil
	}
	return &FormDTO{
		ID:             f.SID(),
		Title:          f.Title(),
		Description:    f.Description(),
		Status:         string(f.Status()),
		CurrentVersion: f.CurrentVersion(),
		CreatedAt:      f.CreatedAt(),
		UpdatedAt:      f.UpdatedAt(),
	}
}

func ToFormDTOList(forms []*form.Form) []*FormDTO {
	out := make([]*FormDTO, 0, len(forms))
	for _, f := range forms {
		if f != nil {
			out = append(out, ToFormDTO(f))
		}
	}
	return out
}

func ToVersionDTO(formSID string, v *form.Version) *VersionDTO {
	if v == nil {
		return nil
	}
	fields := make([]FieldDTO, 0, len(v.Fields()))
	for _, f := range v.Fields() {
		fields = append(fields, FieldDTO{
			Key:         f.Key,
			Type:        f.Type,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Required:    f.Required,
			Position:    f.Position,
			Options:     f.Options,
			Validation:  f.Validation,
		})
	}
	return &VersionDTO{
		FormID:        formSID,
		VersionNumber: v.VersionNumber(),
		Schema:        v.Schema(),
		Fields:        fields,
		CreatedAt:     v.CreatedAt(),
	}
}

func ToVersionSummaryList(versions []*form.Version) []VersionSummaryDTO {
	out := make([]VersionSummaryDTO, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionSummaryDTO{
			VersionNumber: v.VersionNumber(),
			FieldCount:    len(v.Fields()),
			CreatedAt:     v.CreatedAt(),
		})
	}
	return out
}

func ToSubmissionDTO(formSID string, s *form.Submission) *SubmissionDTO {
	if s == nil {
		return nil
	}
	return &SubmissionDTO{
		ID:          s.SID(),
		FormID:      formSID,
		Data:        s.Data(),
		SubmittedAt: s.SubmittedAt(),
	}
}
