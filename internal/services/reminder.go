package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

var (
	ErrReminderDescriptionRequired = errors.New("reminder description is required")
	ErrInvalidReminderPriority     = errors.New("reminder priority must be low, medium or high")
)

// Spaced-repetition offsets for auto-created study reminders.
const (
	firstReviewAfter = 3 * 24 * time.Hour
	finalReviewAfter = 7 * 24 * time.Hour
)

const defaultUpcomingWindowDays = 7

type CreateReminderInput struct {
	ContentID   string    `json:"content_id"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    string    `json:"priority"`
}

type UpdateReminderInput struct {
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority"`
	IsCompleted *bool      `json:"is_completed"`
}

type ReminderService interface {
	CreateReminder(ctx context.Context, userID string, input CreateReminderInput) (*types.Reminder, error)
	GetReminder(ctx context.Context, userID, id string) (*types.Reminder, error)
	ListReminders(ctx context.Context, userID string, includeCompleted bool, skip, limit int64) ([]*types.Reminder, error)
	ListUpcoming(ctx context.Context, userID string, days int) ([]*types.Reminder, error)
	UpdateReminder(ctx context.Context, userID, id string, input UpdateReminderInput) (*types.Reminder, error)
	DeleteReminder(ctx context.Context, userID, id string) error
	// CreateStudyReminders schedules the spaced-repetition pair for freshly
	// uploaded content. Failures are logged, not returned; reminders are a
	// courtesy, not part of the upload contract.
	CreateStudyReminders(ctx context.Context, userID, contentID, title string)
}

type reminderService struct {
	log          *logger.Logger
	reminderRepo repos.ReminderRepo
}

func NewReminderService(reminderRepo repos.ReminderRepo, baseLog *logger.Logger) ReminderService {
	return &reminderService{
		log:          baseLog.With("service", "ReminderService"),
		reminderRepo: reminderRepo,
	}
}

func validReminderPriority(p string) bool {
	switch p {
	case types.ReminderPriorityLow, types.ReminderPriorityMedium, types.ReminderPriorityHigh:
		return true
	}
	return false
}

func (rs *reminderService) CreateReminder(ctx context.Context, userID string, input CreateReminderInput) (*types.Reminder, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrReminderDescriptionRequired
	}
	priority := input.Priority
	if priority == "" {
		priority = types.ReminderPriorityMedium
	}
	if !validReminderPriority(priority) {
		return nil, ErrInvalidReminderPriority
	}
	dueDate := input.DueDate
	if dueDate.IsZero() {
		dueDate = time.Now().UTC().Add(24 * time.Hour)
	}

	reminder := &types.Reminder{
		ID:          uuid.NewString(),
		UserID:      userID,
		ContentID:   input.ContentID,
		Description: description,
		DueDate:     dueDate.UTC(),
		Priority:    priority,
		IsCompleted: false,
		CreatedAt:   time.Now().UTC(),
	}
	if err := rs.reminderRepo.Insert(ctx, reminder); err != nil {
		return nil, fmt.Errorf("insert reminder: %w", err)
	}
	return reminder, nil
}

func (rs *reminderService) GetReminder(ctx context.Context, userID, id string) (*types.Reminder, error) {
	return rs.reminderRepo.GetByID(ctx, id, userID)
}

func (rs *reminderService) ListReminders(ctx context.Context, userID string, includeCompleted bool, skip, limit int64) ([]*types.Reminder, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}
	return rs.reminderRepo.ListByUser(ctx, userID, includeCompleted, skip, limit)
}

func (rs *reminderService) ListUpcoming(ctx context.Context, userID string, days int) ([]*types.Reminder, error) {
	if days <= 0 {
		days = defaultUpcomingWindowDays
	}
	now := time.Now().UTC()
	return rs.reminderRepo.ListUpcoming(ctx, userID, now, now.AddDate(0, 0, days))
}

func (rs *reminderService) UpdateReminder(ctx context.Context, userID, id string, input UpdateReminderInput) (*types.Reminder, error) {
	set := bson.M{}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" {
			return nil, ErrReminderDescriptionRequired
		}
		set["description"] = description
	}
	if input.DueDate != nil {
		set["due_date"] = input.DueDate.UTC()
	}
	if input.Priority != nil {
		if !validReminderPriority(*input.Priority) {
			return nil, ErrInvalidReminderPriority
		}
		set["priority"] = *input.Priority
	}
	if input.IsCompleted != nil {
		set["is_completed"] = *input.IsCompleted
	}
	if len(set) > 0 {
		if err := rs.reminderRepo.Update(ctx, id, userID, set); err != nil {
			return nil, err
		}
	}
	return rs.reminderRepo.GetByID(ctx, id, userID)
}

func (rs *reminderService) DeleteReminder(ctx context.Context, userID, id string) error {
	deleted, err := rs.reminderRepo.Delete(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if !deleted {
		return repos.ErrNotFound
	}
	return nil
}

func (rs *reminderService) CreateStudyReminders(ctx context.Context, userID, contentID, title string) {
	now := time.Now().UTC()
	pair := []*types.Reminder{
		{
			ID:          uuid.NewString(),
			UserID:      userID,
			ContentID:   contentID,
			Description: fmt.Sprintf("Review this content to reinforce your learning: %s", title),
			DueDate:     now.Add(firstReviewAfter),
			Priority:    types.ReminderPriorityMedium,
			CreatedAt:   now,
		},
		{
			ID:          uuid.NewString(),
			UserID:      userID,
			ContentID:   contentID,
			Description: fmt.Sprintf("Final review of this content: %s", title),
			DueDate:     now.Add(finalReviewAfter),
			Priority:    types.ReminderPriorityMedium,
			CreatedAt:   now,
		},
	}
	for _, reminder := range pair {
		if err := rs.reminderRepo.Insert(ctx, reminder); err != nil {
			rs.log.Warn("failed to create study reminder", "content_id", contentID, "error", err)
		}
	}
}
