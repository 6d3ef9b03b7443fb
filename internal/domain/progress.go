package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserTopicProgress is the one row per (user, topic) pair tracking
// cumulative attempts and completion. Once Completed flips true the
// row is terminal: FinalScore and CompletedAt are frozen.
type UserTopicProgress struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_topic;column:user_id" json:"user_id"`
	User    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TopicID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_topic;column:topic_id" json:"topic_id"`
	Topic   *Topic    `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`

	Completed      bool `gorm:"not null;default:false;column:completed" json:"completed"`
	FinalScore     *int `gorm:"column:final_score" json:"final_score,omitempty"`
	TotalAttempts  int  `gorm:"not null;default:0;column:total_attempts" json:"total_attempts"`
	TotalTimeSpent int  `gorm:"not null;default:0;column:total_time_spent" json:"total_time_spent"`

	FirstAttemptAt *time.Time `gorm:"column:first_attempt_at" json:"first_attempt_at,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserTopicProgress) TableName() string { return "user_topic_progress" }

// ProgressState is the derived position of a (user, topic) pair in the
// attempt workflow.
type ProgressState string

const (
	StateNotStarted    ProgressState = "not_started"
	StateInProgress    ProgressState = "in_progress"
	StateCompleted     ProgressState = "completed"
	StateAwaitingRetry ProgressState = "awaiting_retry"
)
