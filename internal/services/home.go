package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// HomeTopic is a topic row on the student home page, annotated with
// the caller's state for it.
type HomeTopic struct {
	TopicSummary
	State      types.ProgressState `json:"state"`
	FinalScore *int                `json:"final_score"`
	Attempts   int                 `json:"attempts"`
}

// HomeGroup is one group section on the student home page.
type HomeGroup struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Topics      []HomeTopic `json:"topics"`
}

// HomeView is everything the student landing page needs in one call.
type HomeView struct {
	User   UserSummary `json:"user"`
	Groups []HomeGroup `json:"groups"`
}

type HomeService interface {
	View(ctx context.Context, user *types.User) (*HomeView, error)
}

type homeService struct {
	db           *gorm.DB
	log          *logger.Logger
	groupRepo    repos.GroupRepo
	topicRepo    repos.TopicRepo
	progressRepo repos.ProgressRepo
	attemptRepo  repos.AttemptRepo
	submission   SubmissionService
}

func NewHomeService(
	db *gorm.DB,
	log *logger.Logger,
	groupRepo repos.GroupRepo,
	topicRepo repos.TopicRepo,
	progressRepo repos.ProgressRepo,
	attemptRepo repos.AttemptRepo,
	submission SubmissionService,
) HomeService {
	return &homeService{
		db:           db,
		log:          log.With("service", "HomeService"),
		groupRepo:    groupRepo,
		topicRepo:    topicRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		submission:   submission,
	}
}

func (s *homeService) View(ctx context.Context, user *types.User) (*HomeView, error) {
	groups, err := s.groupRepo.GetForUser(ctx, nil, user.ID)
	if err != nil {
		return nil, err
	}

	groupIDs := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	// Students only see topics whose content is ready.
	topics, err := s.topicRepo.GetByGroupIDs(ctx, nil, groupIDs, true)
	if err != nil {
		return nil, err
	}

	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, t := range topics {
		topicIDs = append(topicIDs, t.ID)
	}
	progressRows, err := s.progressRepo.GetByUserAndTopicIDs(ctx, nil, user.ID, topicIDs)
	if err != nil {
		return nil, err
	}
	progressByTopic := map[uuid.UUID]*types.UserTopicProgress{}
	for _, p := range progressRows {
		progressByTopic[p.TopicID] = p
	}

	topicsByGroup := map[uuid.UUID][]HomeTopic{}
	for _, t := range topics {
		progress := progressByTopic[t.ID]
		var latest *types.Attempt
		if progress != nil && progress.TotalAttempts > 0 {
			latest, err = s.attemptRepo.Latest(ctx, nil, user.ID, t.ID)
			if err != nil {
				return nil, err
			}
		}
		row := HomeTopic{
			TopicSummary: summarizeTopic(t),
			State:        s.submission.StateFor(progress, latest),
		}
		if progress != nil {
			row.FinalScore = progress.FinalScore
			row.Attempts = progress.TotalAttempts
		}
		topicsByGroup[t.GroupID] = append(topicsByGroup[t.GroupID], row)
	}

	out := &HomeView{
		User: UserSummary{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName(),
			IsAdmin:  user.IsAdmin,
		},
		Groups: make([]HomeGroup, 0, len(groups)),
	}
	for _, g := range groups {
		out.Groups = append(out.Groups, HomeGroup{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			Topics:      topicsByGroup[g.ID],
		})
	}
	return out, nil
}
