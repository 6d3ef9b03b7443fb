package domain

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a drawing exercise: an authoring prompt plus the AI-derived
// background image and instructional text. Content is written once by
// the content generator; a failed generation leaves GenerationError set
// and the content fields empty until an admin re-runs it.
type Topic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Prompt      string    `gorm:"not null;column:prompt" json:"prompt"`

	BackgroundImagePath string `gorm:"column:background_image_path" json:"background_image_path"`
	InstructionalText   string `gorm:"column:instructional_text" json:"instructional_text"`

	GroupID     uuid.UUID `gorm:"type:uuid;not null;index;column:group_id" json:"group_id"`
	Group       *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`

	ContentGenerated bool   `gorm:"not null;default:false;column:content_generated" json:"content_generated"`
	GenerationError  string `gorm:"column:generation_error" json:"generation_error,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Topic) TableName() string { return "topics" }
