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

func TestGetOrCreateLocked(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "progress-admin@example.com")
	student := testutil.SeedUser(t, ctx, tx, "progress-student@example.com")
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "progress group")
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "progress topic")

	repo := repos.NewProgressRepo(tx, log)

	progress, created, err := repo.GetOrCreateLocked(ctx, tx, student.ID, topic.ID)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if !created {
		t.Fatalf("expected a new row on first call")
	}
	if progress.TotalAttempts != 0 || progress.Completed {
		t.Fatalf("new progress should be zeroed: %+v", progress)
	}

	again, created, err := repo.GetOrCreateLocked(ctx, tx, student.ID, topic.ID)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if created {
		t.Fatalf("second call must reuse the existing row")
	}
	if again.ID != progress.ID {
		t.Fatalf("expected same row, got %s and %s", progress.ID, again.ID)
	}
}

func TestProgressGetNotFound(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "progress-nf-admin@example.com")
	student := testutil.SeedUser(t, ctx, tx, "progress-nf-student@example.com")
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "progress nf group")
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "progress nf topic")

	repo := repos.NewProgressRepo(tx, log)
	if _, err := repo.Get(ctx, tx, student.ID, topic.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestProgressUniquePerUserTopic(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	_ = testutil.Logger(t)

	admin := testutil.SeedAdmin(t, ctx, tx, "progress-uniq-admin@example.com")
	student := testutil.SeedUser(t, ctx, tx, "progress-uniq-student@example.com")
	group := testutil.SeedGroup(t, ctx, tx, admin.ID, "progress uniq group")
	topic := testutil.SeedTopic(t, ctx, tx, group.ID, admin.ID, "progress uniq topic")

	testutil.SeedProgress(t, ctx, tx, student.ID, topic.ID)

	dup := &types.UserTopicProgress{
		ID:      uuid.New(),
		UserID:  student.ID,
		TopicID: topic.ID,
	}
	err := tx.WithContext(ctx).Create(dup).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}
