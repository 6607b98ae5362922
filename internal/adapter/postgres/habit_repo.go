package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"trackit/internal/domain"
)

const habitColumns = "id, user_id, name, note, reminder_time, recurrence, category, completed, completed_at, created_at"

// HabitRepo implements habit repository operations on DB.
type HabitRepo struct {
	db *DB
}

// NewHabitRepo wraps a DB as a HabitRepository.
func NewHabitRepo(db *DB) *HabitRepo {
	return &HabitRepo{db: db}
}

// ListByUser returns the user's habits, most recently created first.
func (r *HabitRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Habit, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}

// GetByID retrieves a habit by ID.
func (r *HabitRepo) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	row := r.db.sql.QueryRowContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE id = $1", id,
	)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Create inserts a new habit owned by h.UserID.
func (r *HabitRepo) Create(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`INSERT INTO habits (user_id, name, note, reminder_time, recurrence, category, completed, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING `+habitColumns,
		h.UserID, h.Name, h.Note, h.ReminderTime, h.Recurrence, h.Category, h.Completed, h.CompletedAt, time.Now(),
	)
	return scanHabit(row)
}

// Update rewrites the habit's mutable fields. The owner column is never
// touched.
func (r *HabitRepo) Update(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`UPDATE habits SET name = $1, note = $2, reminder_time = $3, recurrence = $4, category = $5, completed = $6, completed_at = $7
		 WHERE id = $8 RETURNING `+habitColumns,
		h.Name, h.Note, h.ReminderTime, h.Recurrence, h.Category, h.Completed, h.CompletedAt, h.ID,
	)
	return scanHabit(row)
}

// Delete removes a habit by ID.
func (r *HabitRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM habits WHERE id = $1", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (*domain.Habit, error) {
	var h domain.Habit
	var completedAt sql.NullTime
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Note, &h.ReminderTime, &h.Recurrence, &h.Category, &h.Completed, &completedAt, &h.CreatedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		h.CompletedAt = &completedAt.Time
	}
	return &h, nil
}
