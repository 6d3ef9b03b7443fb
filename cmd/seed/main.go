package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/inkwell-edu/inkwell-backend/internal/data/db"
	"github.com/inkwell-edu/inkwell-backend/internal/data/repos"
	types "github.com/inkwell-edu/inkwell-backend/internal/domain"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/envutil"
	"github.com/inkwell-edu/inkwell-backend/internal/platform/logger"
)

// Seeds demo users, groups, and topics with pre-canned content so the
// platform can be explored without any AI calls. Safe to re-run:
// every record is get-or-create keyed on its natural identifier.
func main() {
	log, err := logger.New(envutil.Get("LOG_MODE", "development"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	gdb := dbService.DB()

	userRepo := repos.NewUserRepo(gdb, log)
	groupRepo := repos.NewGroupRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)
	progressRepo := repos.NewProgressRepo(gdb, log)
	attemptRepo := repos.NewAttemptRepo(gdb, log)

	s := &seeder{
		ctx:          context.Background(),
		log:          log.With("service", "Seeder"),
		db:           gdb,
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		topicRepo:    topicRepo,
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
	}
	if err := s.run(); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
	log.Info("Sample data created")
	log.Info("Login credentials", "students", "alice/bob/carol/david @example.com", "teacher", "sarah@example.com", "password", "password123")
}

type seeder struct {
	ctx          context.Context
	log          *logger.Logger
	db           *gorm.DB
	userRepo     repos.UserRepo
	groupRepo    repos.GroupRepo
	topicRepo    repos.TopicRepo
	progressRepo repos.ProgressRepo
	attemptRepo  repos.AttemptRepo
}

const demoCanvasData = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func (s *seeder) run() error {
	users, err := s.seedUsers()
	if err != nil {
		return err
	}
	students := users[:4]
	teacher := users[4]

	groups, err := s.seedGroups(teacher, students)
	if err != nil {
		return err
	}
	topics, err := s.seedTopics(teacher, groups)
	if err != nil {
		return err
	}
	return s.seedProgress(students, topics)
}

func (s *seeder) seedUsers() ([]*types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	specs := []struct {
		email, first, last string
		admin              bool
	}{
		{"alice@example.com", "Alice", "Johnson", false},
		{"bob@example.com", "Bob", "Smith", false},
		{"carol@example.com", "Carol", "Davis", false},
		{"david@example.com", "David", "Wilson", false},
		{"sarah@example.com", "Dr. Sarah", "Brown", true},
	}

	out := make([]*types.User, 0, len(specs))
	for _, spec := range specs {
		user, err := s.userRepo.GetByEmail(s.ctx, nil, spec.email)
		if err == nil {
			out = append(out, user)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user = &types.User{
			ID:        uuid.New(),
			Email:     spec.email,
			Password:  string(hashed),
			FirstName: spec.first,
			LastName:  spec.last,
			IsAdmin:   spec.admin,
		}
		if _, err := s.userRepo.Create(s.ctx, nil, []*types.User{user}); err != nil {
			return nil, err
		}
		s.log.Info("Created user", "email", user.Email)
		out = append(out, user)
	}
	return out, nil
}

func (s *seeder) seedGroups(teacher *types.User, students []*types.User) ([]*types.Group, error) {
	specs := []struct {
		name, description string
		members           []*types.User
	}{
		{"Physics 101", "Introduction to Physics - Forces and Motion", students[:3]},
		{"Chemistry Basics", "Basic Chemistry - Molecular Structure and Bonding", students[1:4]},
		{"Mathematics Advanced", "Advanced Mathematics - Geometry and Calculus", []*types.User{students[0], students[2], students[3]}},
	}

	out := make([]*types.Group, 0, len(specs))
	for _, spec := range specs {
		group, err := s.groupRepo.GetByName(s.ctx, nil, spec.name)
		if err == nil {
			out = append(out, group)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		group = &types.Group{
			ID:          uuid.New(),
			Name:        spec.name,
			Description: spec.description,
			CreatedByID: teacher.ID,
		}
		if _, err := s.groupRepo.Create(s.ctx, nil, []*types.Group{group}); err != nil {
			return nil, err
		}
		memberIDs := make([]uuid.UUID, 0, len(spec.members))
		for _, m := range spec.members {
			memberIDs = append(memberIDs, m.ID)
		}
		if err := s.groupRepo.AddMembers(s.ctx, nil, group.ID, memberIDs); err != nil {
			return nil, err
		}
		s.log.Info("Created group", "name", group.Name)
		out = append(out, group)
	}
	return out, nil
}

func (s *seeder) seedTopics(teacher *types.User, groups []*types.Group) ([]*types.Topic, error) {
	specs := []struct {
		group              *types.Group
		title, description string
		prompt, text       string
	}{
		{
			group:       groups[0],
			title:       "Forces on Inclined Plane",
			description: "Learn to identify and draw force vectors on objects on inclined planes.",
			prompt:      "Create a physics diagram showing a block on a 30-degree inclined plane. Students should draw: 1) gravitational force (red arrow pointing down), 2) normal force (blue arrow perpendicular to surface), 3) friction force (green arrow opposing motion). Include proper vector directions and magnitudes.",
			text: `Welcome to the Forces on Inclined Plane exercise!

Your task is to draw the three main forces acting on the block:

1. Gravitational Force (Red): draw a red arrow pointing straight down from the center of the block.
2. Normal Force (Blue): draw a blue arrow perpendicular to the inclined surface, away from the plane.
3. Friction Force (Green): draw a green arrow pointing up the incline, opposing the motion.

Use the correct colors and make sure the directions are accurate. Good luck!`,
		},
		{
			group:       groups[1],
			title:       "Water Molecule Structure",
			description: "Draw the molecular structure of water (H2O) showing bonds and electron pairs.",
			prompt:      "Create a molecular diagram template for water (H2O). Show oxygen atom in the center with spaces for students to draw hydrogen atoms and electron pairs. Students should draw: 1) two hydrogen atoms (small circles), 2) two lone pairs of electrons (dots), 3) covalent bonds (lines). Include angle measurements.",
			text: `Welcome to the Water Molecule Structure exercise!

1. Hydrogen Atoms: draw two small circles at approximately a 104.5 degree angle from each other.
2. Covalent Bonds: draw straight lines connecting each hydrogen atom to the central oxygen atom.
3. Lone Pairs: draw two pairs of dots on the oxygen atom.
4. Molecular Geometry: the molecule should have a bent shape.

Complete the diagram step by step!`,
		},
		{
			group:       groups[2],
			title:       "Triangle Centroid",
			description: "Find and draw the centroid of a triangle using medians.",
			prompt:      "Create a coordinate plane with triangle ABC where A(2,3), B(6,3), C(4,7). Students need to: 1) draw and label the triangle vertices, 2) calculate and draw the centroid (red dot), 3) draw the three medians (dashed lines), 4) label all measurements. Include grid lines and axis labels.",
			text: `Welcome to the Triangle Centroid exercise!

Given vertices A(2, 3), B(6, 3), C(4, 7):

1. Draw the Triangle: connect the three vertices.
2. Find Midpoints: AB -> (4, 3), BC -> (5, 5), AC -> (3, 5).
3. Draw Medians: dashed lines from each vertex to the opposite midpoint.
4. Mark Centroid: ((2+6+4)/3, (3+3+7)/3) = (4, 4.33), marked with a red dot.

The centroid divides each median in a 2:1 ratio!`,
		},
	}

	out := make([]*types.Topic, 0, len(specs))
	for _, spec := range specs {
		existing, err := s.topicRepo.GetByGroupIDs(s.ctx, nil, []uuid.UUID{spec.group.ID}, false)
		if err != nil {
			return nil, err
		}
		var topic *types.Topic
		for _, t := range existing {
			if t.Title == spec.title {
				topic = t
				break
			}
		}
		if topic == nil {
			topic = &types.Topic{
				ID:                uuid.New(),
				GroupID:           spec.group.ID,
				Title:             spec.title,
				Description:       spec.description,
				Prompt:            spec.prompt,
				InstructionalText: spec.text,
				CreatedByID:       teacher.ID,
				ContentGenerated:  true,
			}
			if _, err := s.topicRepo.Create(s.ctx, nil, []*types.Topic{topic}); err != nil {
				return nil, err
			}
			s.log.Info("Created topic", "title", topic.Title)
		}
		out = append(out, topic)
	}
	return out, nil
}

func (s *seeder) seedProgress(students []*types.User, topics []*types.Topic) error {
	for _, topic := range topics {
		for _, student := range students {
			member, err := s.groupRepo.IsMember(s.ctx, nil, topic.GroupID, student.ID)
			if err != nil {
				return err
			}
			if !member {
				continue
			}
			if _, err := s.progressRepo.Get(s.ctx, nil, student.ID, topic.ID); err == nil {
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			attempts := rand.Intn(3) + 1
			firstAt := time.Now().UTC().AddDate(0, 0, -(rand.Intn(7) + 1))
			progress := &types.UserTopicProgress{
				ID:             uuid.New(),
				UserID:         student.ID,
				TopicID:        topic.ID,
				TotalAttempts:  attempts,
				TotalTimeSpent: rand.Intn(1500) + 300,
				FirstAttemptAt: &firstAt,
			}
			completed := rand.Float64() < 0.3
			if completed {
				score := rand.Intn(6) + 15
				completedAt := time.Now().UTC().AddDate(0, 0, -rand.Intn(4))
				progress.Completed = true
				progress.FinalScore = &score
				progress.CompletedAt = &completedAt
			}

			err = s.db.WithContext(s.ctx).Transaction(func(tx *gorm.DB) error {
				if txErr := tx.Create(progress).Error; txErr != nil {
					return txErr
				}
				for n := 1; n <= attempts; n++ {
					score := rand.Intn(13) + 8
					attempt := &types.Attempt{
						ID:                  uuid.New(),
						UserID:              student.ID,
						TopicID:             topic.ID,
						AttemptNumber:       n,
						CanvasData:          demoCanvasData,
						Score:               &score,
						IsCorrect:           completed && n == attempts,
						Feedback:            "Sample feedback for demonstration purposes.",
						TimeSpent:           rand.Intn(540) + 60,
						StartedAt:           firstAt,
						SubmittedAt:         firstAt.Add(10 * time.Minute),
						EvaluationCompleted: true,
					}
					if _, txErr := s.attemptRepo.Create(s.ctx, tx, []*types.Attempt{attempt}); txErr != nil {
						return txErr
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}
