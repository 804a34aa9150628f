package types

import (
	"time"
)

const (
	ReminderPriorityLow    = "low"
	ReminderPriorityMedium = "medium"
	ReminderPriorityHigh   = "high"
)

type Reminder struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	ContentID   string    `bson:"content_id,omitempty" json:"content_id,omitempty"`
	Description string    `bson:"description" json:"description"`
	DueDate     time.Time `bson:"due_date" json:"due_date"`
	Priority    string    `bson:"priority" json:"priority"`
	IsCompleted bool      `bson:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
