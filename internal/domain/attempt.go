package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Attempt is a single submitted drawing. The row is created durably
// before evaluation runs; evaluation fields are written afterward and
// the row is immutable once EvaluationCompleted is set, except for the
// one-time write of corrected content on an incorrect attempt.
type Attempt struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_user_topic_number;column:user_id" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TopicID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attempt_user_topic_number;column:topic_id" json:"topic_id"`
	Topic         *Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
	AttemptNumber int       `gorm:"not null;uniqueIndex:idx_attempt_user_topic_number;column:attempt_number" json:"attempt_number"`

	// Base64-encoded PNG data URL from the drawing canvas.
	CanvasData string `gorm:"not null;column:canvas_data" json:"-"`

	Score     *int   `gorm:"column:score" json:"score,omitempty"`
	IsCorrect bool   `gorm:"not null;default:false;column:is_correct" json:"is_correct"`
	Feedback  string `gorm:"column:feedback" json:"feedback,omitempty"`

	// Raw verdict payload from the evaluator, kept for operators.
	VerdictRaw datatypes.JSON `gorm:"column:verdict_raw" json:"-"`

	// Corrected content generated after an incorrect attempt; shown
	// instead of the topic's own content on the next view.
	UpdatedBackgroundImagePath string `gorm:"column:updated_background_image_path" json:"updated_background_image_path,omitempty"`
	UpdatedInstructionalText   string `gorm:"column:updated_instructional_text" json:"updated_instructional_text,omitempty"`

	TimeSpent   int       `gorm:"not null;column:time_spent" json:"time_spent"`
	StartedAt   time.Time `gorm:"not null;column:started_at" json:"started_at"`
	SubmittedAt time.Time `gorm:"not null;column:submitted_at" json:"submitted_at"`

	EvaluationCompleted bool   `gorm:"not null;default:false;column:evaluation_completed" json:"evaluation_completed"`
	EvaluationError     string `gorm:"column:evaluation_error" json:"evaluation_error,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Attempt) TableName() string { return "attempts" }
