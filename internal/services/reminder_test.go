package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/repos"
	"github.com/edusloth/edusloth-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

type fakeReminderRepo struct {
	reminders map[string]*types.Reminder
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{reminders: map[string]*types.Reminder{}}
}

func (f *fakeReminderRepo) Insert(ctx context.Context, reminder *types.Reminder) error {
	f.reminders[reminder.ID] = reminder
	return nil
}

func (f *fakeReminderRepo) GetByID(ctx context.Context, id, userID string) (*types.Reminder, error) {
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, repos.ErrNotFound
	}
	return r, nil
}

func (f *fakeReminderRepo) ListByUser(ctx context.Context, userID string, includeCompleted bool, skip, limit int64) ([]*types.Reminder, error) {
	var out []*types.Reminder
	for _, r := range f.reminders {
		if r.UserID != userID {
			continue
		}
		if !includeCompleted && r.IsCompleted {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReminderRepo) ListUpcoming(ctx context.Context, userID string, from, to time.Time) ([]*types.Reminder, error) {
	var out []*types.Reminder
	for _, r := range f.reminders {
		if r.UserID != userID || r.IsCompleted {
			continue
		}
		if r.DueDate.Before(from) || r.DueDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReminderRepo) Update(ctx context.Context, id, userID string, set bson.M) error {
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return repos.ErrNotFound
	}
	if v, ok := set["description"]; ok {
		r.Description = v.(string)
	}
	if v, ok := set["due_date"]; ok {
		r.DueDate = v.(time.Time)
	}
	if v, ok := set["priority"]; ok {
		r.Priority = v.(string)
	}
	if v, ok := set["is_completed"]; ok {
		r.IsCompleted = v.(bool)
	}
	return nil
}

func (f *fakeReminderRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return false, nil
	}
	delete(f.reminders, id)
	return true, nil
}

func TestCreateReminder_Defaults(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := NewReminderService(repo, newTestLogger(t))

	reminder, err := svc.CreateReminder(context.Background(), "user-1", CreateReminderInput{
		Description: "  read chapter 4  ",
	})
	if err != nil {
		t.Fatalf("CreateReminder: %v", err)
	}
	if reminder.Description != "read chapter 4" {
		t.Fatalf("description not trimmed: %q", reminder.Description)
	}
	if reminder.Priority != types.ReminderPriorityMedium {
		t.Fatalf("expected medium default priority, got %q", reminder.Priority)
	}
	if reminder.DueDate.IsZero() {
		t.Fatalf("expected a default due date")
	}
	if reminder.IsCompleted {
		t.Fatalf("new reminder should not be completed")
	}
}

func TestCreateReminder_Validation(t *testing.T) {
	svc := NewReminderService(newFakeReminderRepo(), newTestLogger(t))
	tests := []struct {
		name    string
		input   CreateReminderInput
		wantErr error
	}{
		{"blank description", CreateReminderInput{Description: "   "}, ErrReminderDescriptionRequired},
		{"bad priority", CreateReminderInput{Description: "x", Priority: "urgent"}, ErrInvalidReminderPriority},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateReminder(context.Background(), "user-1", tt.input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestListUpcoming_DefaultWindow(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := NewReminderService(repo, newTestLogger(t))
	now := time.Now().UTC()

	inWindow := &types.Reminder{ID: "r1", UserID: "user-1", Description: "soon", DueDate: now.Add(48 * time.Hour)}
	outWindow := &types.Reminder{ID: "r2", UserID: "user-1", Description: "later", DueDate: now.Add(30 * 24 * time.Hour)}
	completed := &types.Reminder{ID: "r3", UserID: "user-1", Description: "done", DueDate: now.Add(24 * time.Hour), IsCompleted: true}
	for _, r := range []*types.Reminder{inWindow, outWindow, completed} {
		repo.reminders[r.ID] = r
	}

	got, err := svc.ListUpcoming(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(got) != 1 || got[0].ID != "r1" {
		t.Fatalf("expected only the in-window pending reminder, got %+v", got)
	}
}

func TestUpdateReminder_CompleteAndNotFound(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := NewReminderService(repo, newTestLogger(t))
	repo.reminders["r1"] = &types.Reminder{ID: "r1", UserID: "user-1", Description: "x", DueDate: time.Now()}

	done := true
	updated, err := svc.UpdateReminder(context.Background(), "user-1", "r1", UpdateReminderInput{IsCompleted: &done})
	if err != nil {
		t.Fatalf("UpdateReminder: %v", err)
	}
	if !updated.IsCompleted {
		t.Fatalf("reminder not marked completed")
	}

	if _, err := svc.UpdateReminder(context.Background(), "user-2", "r1", UpdateReminderInput{IsCompleted: &done}); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("expected not found for other user's reminder, got %v", err)
	}
}

func TestDeleteReminder(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := NewReminderService(repo, newTestLogger(t))
	repo.reminders["r1"] = &types.Reminder{ID: "r1", UserID: "user-1", Description: "x"}

	if err := svc.DeleteReminder(context.Background(), "user-1", "r1"); err != nil {
		t.Fatalf("DeleteReminder: %v", err)
	}
	if err := svc.DeleteReminder(context.Background(), "user-1", "r1"); !errors.Is(err, repos.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreateStudyReminders_SchedulesReviewPair(t *testing.T) {
	repo := newFakeReminderRepo()
	svc := NewReminderService(repo, newTestLogger(t))
	before := time.Now().UTC()

	svc.CreateStudyReminders(context.Background(), "user-1", "content-1", "Biology Notes")

	if len(repo.reminders) != 2 {
		t.Fatalf("expected 2 study reminders, got %d", len(repo.reminders))
	}
	var sawFirst, sawFinal bool
	for _, r := range repo.reminders {
		if r.ContentID != "content-1" || r.Priority != types.ReminderPriorityMedium {
			t.Fatalf("unexpected reminder: %+v", r)
		}
		offset := r.DueDate.Sub(before)
		switch {
		case offset >= firstReviewAfter-time.Minute && offset <= firstReviewAfter+time.Minute:
			sawFirst = true
		case offset >= finalReviewAfter-time.Minute && offset <= finalReviewAfter+time.Minute:
			sawFinal = true
		default:
			t.Fatalf("reminder due at unexpected offset %v", offset)
		}
	}
	if !sawFirst || !sawFinal {
		t.Fatalf("expected one reminder at +3d and one at +7d")
	}
}
