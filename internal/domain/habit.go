package domain

import (
	"context"
	"time"
)

// Habit represents a single tracked habit owned by a user. The owner is set
// at creation time and never reassigned.
type Habit struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"-"`
	Name         string     `json:"name"`
	Note         string     `json:"note"`
	ReminderTime string     `json:"reminderTime"`
	Recurrence   string     `json:"recurrence"`
	Category     string     `json:"category"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HabitRepository is the port for habit persistence.
type HabitRepository interface {
	// ListByUser returns the user's habits, most recently created first.
	ListByUser(ctx context.Context, userID int64) ([]Habit, error)
	// GetByID returns (nil, nil) when the habit does not exist.
	GetByID(ctx context.Context, id int64) (*Habit, error)
	Create(ctx context.Context, h *Habit) (*Habit, error)
	Update(ctx context.Context, h *Habit) (*Habit, error)
	Delete(ctx context.Context, id int64) error
}
