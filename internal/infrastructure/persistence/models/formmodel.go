package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/formcraft-io/formcraft/internal/shared/constants"
)

// FormModel represents the database persistence model for forms
type FormModel struct {
	ID             uint   `gorm:"primarykey"`
	SID            string `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: frm_xxx"`
	OwnerID        uint   `gorm:"not null;index:idx_form_owner"`
	Title          string `gorm:"not null;size:255"`
	Description    string `gorm:"type:text"`
	Status         string `gorm:"not null;size:20;index"`
	CurrentVersion int    `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (FormModel) TableName() string {
	return constants.TableForms
}

// FormVersionModel is one numbered schema snapshot. (form_id, version_number)
// is unique so concurrent writers cannot reuse a number.
type FormVersionModel struct {
	ID            uint             `gorm:"primarykey"`
	FormID        uint             `gorm:"not null;uniqueIndex:uk_form_version,priority:1"`
	VersionNumber int              `gorm:"not null;uniqueIndex:uk_form_version,priority:2"`
	Schema        datatypes.JSON   `gorm:"not null"`
	Fields        []FormFieldModel `gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time
}

func (FormVersionModel) TableName() string {
	return constants.TableFormVersions
}

type FormFieldModel struct {
	ID          uint   `gorm:"primarykey"`
	VersionID   uint   `gorm:"not null;index"`
	FieldKey    string `gorm:"not null;size:100"`
	Type        string `gorm:"not null;size:20"`
	Label       string `gorm:"not null;size:255"`
	Placeholder string `gorm:"size:255"`
	Required    bool   `gorm:"not null;default:false"`
	Position    int    `gorm:"not null"`
	Options     datatypes.JSON
	Validation  datatypes.JSON
}

func (FormFieldModel) TableName() string {
	return constants.TableFormFields
}

// SubmissionModel rows are write-once.
type SubmissionModel struct {
	ID          uint           `gorm:"primarykey"`
	SID         string         `gorm:"uniqueIndex;not null;size:50"`
	FormID      uint           `gorm:"not null;index:idx_submission_form_time,priority:1"`
	Data        datatypes.JSON `gorm:"not null"`
	IPAddress   string         `gorm:"size:45"`
	SubmitterID *uint
	SubmittedAt time.Time `gorm:"not null;index:idx_submission_form_time,priority:2"`
}

func (SubmissionModel) TableName() string {
	return constants.TableSubmissions
}
