package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedAdmin(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, email)
	u.IsAdmin = true
	if err := tx.WithContext(ctx).Save(u).Error; err != nil {
		tb.Fatalf("seed admin: %v", err)
	}
	return u
}

func SeedGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, createdBy uuid.UUID, name string) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: "test group",
		CreatedByID: createdBy,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedMembership(tb testing.TB, ctx context.Context, tx *gorm.DB, groupID, userID uuid.UUID) *types.GroupMember {
	tb.Helper()
	m := &types.GroupMember{
		ID:      uuid.New(),
		GroupID: groupID,
		UserID:  userID,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed membership: %v", err)
	}
	return m
}

func SeedTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, groupID, createdBy uuid.UUID, title string) *types.Topic {
	tb.Helper()
	t := &types.Topic{
		ID:                uuid.New(),
		Title:             title,
		Description:       "test topic",
		Prompt:            "draw a water cycle diagram",
		InstructionalText: "Step 1: draw the sun.",
		GroupID:           groupID,
		CreatedByID:       createdBy,
		ContentGenerated:  true,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID) *types.UserTopicProgress {
	tb.Helper()
	p := &types.UserTopicProgress{
		ID:      uuid.New(),
		UserID:  userID,
		TopicID: topicID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}

func SeedAttempt(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, topicID uuid.UUID, number int) *types.Attempt {
	tb.Helper()
	now := time.Now().UTC()
	a := &types.Attempt{
		ID:            uuid.New(),
		UserID:        userID,
		TopicID:       topicID,
		AttemptNumber: number,
		CanvasData:    "data:image/png;base64,AAAA",
		TimeSpent:     60,
		StartedAt:     now.Add(-time.Minute),
		SubmittedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed attempt: %v", err)
	}
	return a
}
