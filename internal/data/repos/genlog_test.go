package repos_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos/testutil"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
)

func TestGenerationLogCreateThenFinish(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	repo := repos.NewAIGenerationLogRepo(tx, log)

	entry := &types.AIGenerationLog{
		ID:             uuid.New(),
		GenerationType: types.GenerationTypeEvaluation,
		Prompt:         "evaluate this drawing",
	}
	if _, err := repo.Create(ctx, tx, entry); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Finish(ctx, tx, entry.ID, true, `{"score": 12}`, ""); err != nil {
		t.Fatalf("finish: %v", err)
	}

	rows, total, err := repo.List(ctx, tx, types.GenerationTypeEvaluation, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total < 1 || len(rows) < 1 {
		t.Fatalf("expected at least one entry")
	}
	var found *types.AIGenerationLog
	for _, r := range rows {
		if r.ID == entry.ID {
			found = r
		}
	}
	if found == nil {
		t.Fatalf("entry missing from list")
	}
	if !found.Success || found.Response != `{"score": 12}` {
		t.Fatalf("finish not applied: %+v", found)
	}
	if found.Prompt != "evaluate this drawing" {
		t.Fatalf("prompt must be immutable: %+v", found)
	}
}

func TestGenerationLogListFiltersByType(t *testing.T) {
	ctx := context.Background()
	tx := testutil.Tx(t, testutil.DB(t))
	log := testutil.Logger(t)

	repo := repos.NewAIGenerationLogRepo(tx, log)

	imageEntry := &types.AIGenerationLog{ID: uuid.New(), GenerationType: types.GenerationTypeImage, Prompt: "draw"}
	textEntry := &types.AIGenerationLog{ID: uuid.New(), GenerationType: types.GenerationTypeText, Prompt: "write"}
	if _, err := repo.Create(ctx, tx, imageEntry); err != nil {
		t.Fatalf("create image entry: %v", err)
	}
	if _, err := repo.Create(ctx, tx, textEntry); err != nil {
		t.Fatalf("create text entry: %v", err)
	}

	rows, _, err := repo.List(ctx, tx, types.GenerationTypeImage, 0, 50)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, r := range rows {
		if r.GenerationType != types.GenerationTypeImage {
			t.Fatalf("filter leaked other types: %+v", r)
		}
	}
}
