package repos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos/testutil"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
)

func TestAttemptLatestOrdering(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "attempt-admin@example.com")
	student := testutil.SeedUser(t, ctx, tx, "attempt-student@example.com")
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "attempt group")
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "attempt topic")

	repo := repos.NewAttemptRepo(tx, log)

	latest, err := repo.Latest(ctx, tx, student.ID, topic.ID)
	if err != nil {
		t.Fatalf("latest on empty: %v", err)
	}
	if latest != nil {
		t.Fatalf("expected nil latest with no attempts")
	}

	testutil.SeedAttempt(t, ctx, tx, student.ID, topic.ID, 1)
	testutil.SeedAttempt(t, ctx, tx, student.ID, topic.ID, 3)
	testutil.SeedAttempt(t, ctx, tx, student.ID, topic.ID, 2)

	latest, err = repo.Latest(ctx, tx, student.ID, topic.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.AttemptNumber != 3 {
		t.Fatalf("expected attempt 3, got %+v", latest)
	}

	all, err := repo.ListForUserTopic(ctx, tx, student.ID, topic.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
	for i, a := range all {
		if a.AttemptNumber != i+1 {
			t.Fatalf("list not ordered by attempt number: %+v", all)
		}
	}
}

func TestAttemptNumberUniquePerUserTopic(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "attempt-uniq-admin@example.com")
	student := testutil.SeedUser(t, ctx, tx, "attempt-uniq-student@example.com")
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "attempt uniq group")
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "attempt uniq topic")

	repo := repos.NewAttemptRepo(tx, log)
	testutil.SeedAttempt(t, ctx, tx, student.ID, topic.ID, 1)

	dup := &types.Attempt{
		ID:            uuid.New(),
		UserID:        student.ID,
		TopicID:       topic.ID,
		AttemptNumber: 1,
		CanvasData:    "data:image/png;base64,AAAA",
	}
	_, err := repo.Create(ctx, tx, []*types.Attempt{dup})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
