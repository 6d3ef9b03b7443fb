package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/apierr"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// GroupSummary is the admin list row for a group.
type GroupSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberCount int       `json:"member_count"`
	TopicCount  int       `json:"topic_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserSummary strips a user down to display fields.
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	IsAdmin  bool      `json:"is_admin"`
}

// MemberProgressRow is one (member, topic) progress line in the admin
// group detail view.
type MemberProgressRow struct {
	UserID         uuid.UUID           `json:"user_id"`
	UserName       string              `json:"user_name"`
	TopicID        uuid.UUID           `json:"topic_id"`
	TopicTitle     string              `json:"topic_title"`
	State          types.ProgressState `json:"state"`
	Completed      bool                `json:"completed"`
	FinalScore     *int                `json:"final_score"`
	TotalAttempts  int                 `json:"total_attempts"`
	TotalTimeSpent int                 `json:"total_time_spent"`
}

// GroupProgressDetail is the admin drill-down for one group.
type GroupProgressDetail struct {
	Group   GroupSummary        `json:"group"`
	Members []UserSummary       `json:"members"`
	Topics  []TopicSummary      `json:"topics"`
	Rows    []MemberProgressRow `json:"progress"`
}

type GroupService interface {
	Create(ctx context.Context, name, description string, createdBy uuid.UUID) (*types.Group, error)
	AddMembers(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID) error
	List(ctx context.Context, offset, limit int) ([]GroupSummary, int64, error)
	ProgressDetail(ctx context.Context, groupID uuid.UUID) (*GroupProgressDetail, error)
}

type groupService struct {
	db           *gorm.DB
	log          *logger.Logger
	groupRepo    repos.GroupRepo
	topicRepo    repos.TopicRepo
	userRepo     repos.UserRepo
	progressRepo repos.ProgressRepo
}

func NewGroupService(
	db *gorm.DB,
	log *logger.Logger,
	groupRepo repos.GroupRepo,
	topicRepo repos.TopicRepo,
	userRepo repos.UserRepo,
	progressRepo repos.ProgressRepo,
) GroupService {
	return &groupService{
		db:           db,
		log:          log.With("service", "GroupService"),
		groupRepo:    groupRepo,
		topicRepo:    topicRepo,
		userRepo:     userRepo,
		progressRepo: progressRepo,
	}
}

func (s *groupService) Create(ctx context.Context, name, description string, createdBy uuid.UUID) (*types.Group, error) {
	if name == "" {
		return nil, apierr.InvalidInput(errors.New("group name is required"))
	}
	group := &types.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		CreatedByID: createdBy,
	}
	if _, err := s.groupRepo.Create(ctx, nil, []*types.Group{group}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.InvalidInput(errors.New("a group with this name already exists"))
		}
		return nil, err
	}
	s.log.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

func (s *groupService) AddMembers(ctx context.Context, groupID uuid.UUID, userIDs []uuid.UUID) error {
	if len(userIDs) == 0 {
		return apierr.InvalidInput(errors.New("user_ids is required"))
	}
	if _, err := s.groupRepo.GetByID(ctx, nil, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(errors.New("group not found"))
		}
		return err
	}
	for _, id := range userIDs {
		if _, err := s.userRepo.GetByID(ctx, nil, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.InvalidInput(errors.New("unknown user id " + id.String()))
			}
			return err
		}
	}
	return s.groupRepo.AddMembers(ctx, nil, groupID, userIDs)
}

func (s *groupService) List(ctx context.Context, offset, limit int) ([]GroupSummary, int64, error) {
	groups, total, err := s.groupRepo.List(ctx, nil, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	groupIDs := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}
	topicCounts := map[uuid.UUID]int{}
	if len(groupIDs) > 0 {
		topics, err := s.topicRepo.GetByGroupIDs(ctx, nil, groupIDs, false)
		if err != nil {
			return nil, 0, err
		}
		for _, t := range topics {
			topicCounts[t.GroupID]++
		}
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		members, err := s.groupRepo.GetMembers(ctx, nil, g.ID)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, GroupSummary{
			ID:          g.ID,
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(members),
			TopicCount:  topicCounts[g.ID],
			CreatedAt:   g.CreatedAt,
		})
	}
	return out, total, nil
}

func (s *groupService) ProgressDetail(ctx context.Context, groupID uuid.UUID) (*GroupProgressDetail, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(errors.New("group not found"))
		}
		return nil, err
	}

	members, err := s.groupRepo.GetMembers(ctx, nil, groupID)
	if err != nil {
		return nil, err
	}
	topics, err := s.topicRepo.GetByGroupIDs(ctx, nil, []uuid.UUID{groupID}, false)
	if err != nil {
		return nil, err
	}

	topicIDs := make([]uuid.UUID, 0, len(topics))
	topicsByID := map[uuid.UUID]*types.Topic{}
	for _, t := range topics {
		topicIDs = append(topicIDs, t.ID)
		topicsByID[t.ID] = t
	}
	var progressRows []*types.UserTopicProgress
	if len(topicIDs) > 0 {
		progressRows, err = s.progressRepo.GetByTopicIDs(ctx, nil, topicIDs)
		if err != nil {
			return nil, err
		}
	}

	membersByID := map[uuid.UUID]*types.User{}
	memberSummaries := make([]UserSummary, 0, len(members))
	for _, m := range members {
		membersByID[m.ID] = m
		memberSummaries = append(memberSummaries, UserSummary{
			ID:       m.ID,
			Email:    m.Email,
			FullName: m.FullName(),
			IsAdmin:  m.IsAdmin,
		})
	}

	topicSummaries := make([]TopicSummary, 0, len(topics))
	for _, t := range topics {
		topicSummaries = append(topicSummaries, summarizeTopic(t))
	}

	rows := make([]MemberProgressRow, 0, len(progressRows))
	for _, p := range progressRows {
		user, ok := membersByID[p.UserID]
		topic := topicsByID[p.TopicID]
		if !ok || topic == nil {
			continue
		}
		state := types.StateInProgress
		if p.Completed {
			state = types.StateCompleted
		}
		rows = append(rows, MemberProgressRow{
			UserID:         p.UserID,
			UserName:       user.FullName(),
			TopicID:        p.TopicID,
			TopicTitle:     topic.Title,
			State:          state,
			Completed:      p.Completed,
			FinalScore:     p.FinalScore,
			TotalAttempts:  p.TotalAttempts,
			TotalTimeSpent: p.TotalTimeSpent,
		})
	}

	return &GroupProgressDetail{
		Group: GroupSummary{
			ID:          group.ID,
			Name:        group.Name,
			Description: group.Description,
			MemberCount: len(members),
			TopicCount:  len(topics),
			CreatedAt:   group.CreatedAt,
		},
		Members: memberSummaries,
		Topics:  topicSummaries,
		Rows:    rows,
	}, nil
}
