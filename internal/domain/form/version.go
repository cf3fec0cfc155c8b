package form

import (
	"fmt"
	"time"
)

// DefaultVersionCap is the maximum number of versions retained per form.
const DefaultVersionCap = 10

// FormField is a row derived from a version's schema. Positions are 1-based
// and contiguous within a version.
type FormField struct {
	ID          uint
	Key         string
	Type        string
	Label       string
	Placeholder string
	Required    bool
	Position    int
	Options     []Option
	Validation  map[string]any
}

// Version is an immutable numbered snapshot of a form schema.
type Version struct {
	id            uint
	formID        uint
	versionNumber int
	schema        Schema
	fields        []FormField
	createdAt     time.Time
}

// NewVersion validates schema and derives its field rows. Positions are
// assigned in schema order regardless of any position hints.
func NewVersion(formID uint, versionNumber int, schema Schema) (*Version, error) {
	if formID == 0 {
		return nil, fmt.Errorf("form ID is required")
	}
	if versionNumber < 1 {
		return nil, fmt.Errorf("version number must be positive")
	}
	if err := ValidateSchema(schema); err != nil {
		return nil, err
	}
	schema = schema.Clone()
	return &Version{
		formID:        formID,
		versionNumber: versionNumber,
		schema:        schema,
		fields:        BuildFields(schema),
		createdAt:     time.Now().UTC(),
	}, nil
}

// BuildFields regenerates the field rows of a schema.
func BuildFields(schema Schema) []FormField {
	defs := schema.Fields()
	fields := make([]FormField, 0, len(defs))
	for i, d := range defs {
		fields = append(fields, FormField{
			Key:         d.Key,
			Type:        d.Type,
			Label:       d.Label,
			Placeholder: d.Placeholder,
			Required:    d.Required,
			Position:    i + 1,
			Options:     d.Options,
			Validation:  d.Validation,
		})
	}
	return fields
}

func ReconstructVersion(id, formID uint, versionNumber int, schema Schema, fields []FormField, createdAt time.Time) *Version {
	if schema == nil {
		schema = Schema{}
	}
	return &Version{
		id:            id,
		formID:        formID,
		versionNumber: versionNumber,
		schema:        schema,
		fields:        fields,
		createdAt:     createdAt,
	}
}

func (v *Version) ID() uint             { return v.id }
func (v *Version) FormID() uint         { return v.formID }
func (v *Version) VersionNumber() int   { return v.versionNumber }
func (v *Version) Schema() Schema       { return v.schema }
func (v *Version) Fields() []FormField  { return v.fields }
func (v *Version) CreatedAt() time.Time { return v.createdAt }

func (v *Version) SetID(id uint) {
	v.id = id
}

// SetFields replaces the derived rows after persistence assigns their ids.
func (v *Version) SetFields(fields []FormField) {
	v.fields = fields
}

// PruneCount returns how many of the oldest versions must be removed before
// inserting one more, so that at most cap versions remain afterwards.
func PruneCount(existing, cap int) int {
	if cap < 1 {
		cap = 1
	}
	if n := existing - (cap - 1); n > 0 {
		return n
	}
	return 0
}

// CheckDeletable enforces that the only version and the newest version
// are never deleted.
func CheckDeletable(total int, maxVersion, target int) error {
	if total <= 1 {
		return ErrLastVersion
	}
	if target == maxVersion {
		return ErrMostRecentVersion
	}
	return nil
}
