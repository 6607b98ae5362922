package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"trackit/internal/domain"
)

var (
	// ErrHabitNotFound indicates the referenced habit does not exist.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrNotOwner indicates the caller does not own the habit.
	ErrNotOwner = errors.New("not the habit owner")
	// ErrNameRequired indicates an update without a habit name.
	ErrNameRequired = errors.New("name is required")
	// ErrCompletedRequired indicates a toggle without a completed status.
	ErrCompletedRequired = errors.New("completed status is required")
)

// HabitService encapsulates habit use cases. Every mutating operation checks
// that the caller owns the habit before applying the change; listing is
// scoped to the caller.
type HabitService struct {
	repo domain.HabitRepository
}

// NewHabitService creates a HabitService backed by the given repository.
func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{repo: repo}
}

// HabitInput carries the mutable habit fields from a request. Nil pointer
// fields were not supplied.
type HabitInput struct {
	Name         *string
	Note         *string
	ReminderTime *string
	Recurrence   *string
	Category     *string
}

// List returns the user's habits, most recently created first.
func (s *HabitService) List(ctx context.Context, userID int64) ([]domain.Habit, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create stores a new habit owned by the user. Recurrence and category
// default to "daily" and "general" when not supplied.
func (s *HabitService) Create(ctx context.Context, userID int64, in HabitInput) (*domain.Habit, error) {
	h := &domain.Habit{
		UserID:     userID,
		Name:       strVal(in.Name),
		Note:       strVal(in.Note),
		Recurrence: "daily",
		Category:   "general",
	}
	if in.ReminderTime != nil {
		h.ReminderTime = *in.ReminderTime
	}
	if in.Recurrence != nil && *in.Recurrence != "" {
		h.Recurrence = *in.Recurrence
	}
	if in.Category != nil && *in.Category != "" {
		h.Category = *in.Category
	}
	return s.repo.Create(ctx, h)
}

// Update modifies the habit's fields after verifying ownership. Name is
// required; the remaining fields are applied only when supplied.
func (s *HabitService) Update(ctx context.Context, userID, id int64, in HabitInput) (*domain.Habit, error) {
	h, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, ErrNameRequired
	}
	h.Name = strings.TrimSpace(*in.Name)

	if in.Note != nil {
		h.Note = strings.TrimSpace(*in.Note)
	}
	if in.ReminderTime != nil {
		h.ReminderTime = strings.TrimSpace(*in.ReminderTime)
	}
	if in.Recurrence != nil {
		h.Recurrence = strings.TrimSpace(*in.Recurrence)
	}
	if in.Category != nil {
		h.Category = strings.TrimSpace(*in.Category)
	}

	return s.repo.Update(ctx, h)
}

// Delete removes the habit after verifying ownership.
func (s *HabitService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Toggle sets the habit's completion status after verifying ownership.
// Completing a habit records a completion timestamp (the caller's, when
// given); clearing completion removes it. Toggling to the same state is
// idempotent.
func (s *HabitService) Toggle(ctx context.Context, userID, id int64, completed *bool, completedAt *time.Time) (*domain.Habit, error) {
	h, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if completed == nil {
		return nil, ErrCompletedRequired
	}

	h.Completed = *completed
	if *completed {
		at := time.Now()
		if completedAt != nil {
			at = *completedAt
		}
		h.CompletedAt = &at
	} else {
		h.CompletedAt = nil
	}

	return s.repo.Update(ctx, h)
}

// owned loads the habit and verifies the caller is its recorded owner.
func (s *HabitService) owned(ctx context.Context, userID, id int64) (*domain.Habit, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHabitNotFound
	}
	if h.UserID != userID {
		return nil, ErrNotOwner
	}
	return h, nil
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
