package db

import (
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
)

// AutoMigrateAll creates or updates the schema for every domain model.
// Order matters: parents before children so the cascade constraints
// have their targets.
func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.User{},
		&types.Group{},
		&types.GroupMember{},
		&types.Topic{},
		&types.UserTopicProgress{},
		&types.Attempt{},
		&types.AIGenerationLog{},
	)
}

func (s *Service) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
