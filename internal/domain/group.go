package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a named collection of students sharing a set of topics.
type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedByID uuid.UUID `gorm:"type:uuid;not null;column:created_by_id" json:"created_by_id"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"-"`

	Members []*GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Topics  []*Topic       `gorm:"foreignKey:GroupID" json:"topics,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Group) TableName() string { return "groups" }

// GroupMember links a user into a group. Topic visibility is scoped by
// these rows.
type GroupMember struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member;column:group_id" json:"group_id"`
	Group   *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_group_member;column:user_id" json:"user_id"`
	User    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (GroupMember) TableName() string { return "group_members" }
