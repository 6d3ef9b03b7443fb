package domain

import (
	"time"

	"github.com/google/uuid"
)

type GenerationType string

const (
	GenerationTypeImage      GenerationType = "image"
	GenerationTypeText       GenerationType = "text"
	GenerationTypeEvaluation GenerationType = "evaluation"
)

// AIGenerationLog is the append-only audit record of every AI call.
// A row is created when the call starts and updated exactly once when
// it finishes (success flag, response or error); it is never touched
// again.
type AIGenerationLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GenerationType GenerationType `gorm:"not null;column:generation_type" json:"generation_type"`
	Prompt         string         `gorm:"not null;column:prompt" json:"prompt"`
	Response       string         `gorm:"column:response" json:"response,omitempty"`
	Success        bool           `gorm:"not null;default:false;column:success" json:"success"`
	ErrorMessage   string         `gorm:"column:error_message" json:"error_message,omitempty"`
	APICost        *float64       `gorm:"column:api_cost" json:"api_cost,omitempty"`

	TopicID   *uuid.UUID `gorm:"type:uuid;index;column:topic_id" json:"topic_id,omitempty"`
	Topic     *Topic     `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
	AttemptID *uuid.UUID `gorm:"type:uuid;index;column:attempt_id" json:"attempt_id,omitempty"`
	Attempt   *Attempt   `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (AIGenerationLog) TableName() string { return "ai_generation_logs" }
