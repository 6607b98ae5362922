// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"trackit/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu     sync.Mutex
	users  []*domain.User
	habits []*domain.Habit

	userIDCounter  int64
	habitIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.HabitRepository = (*HabitRepo)(nil)

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// ExistsByUsername reports whether a user with the given username exists.
func (db *DB) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

// ExistsByEmail reports whether a user with the given email exists.
func (db *DB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// --- HabitRepository ---

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
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	out := []domain.Habit{}
	for _, h := range r.db.habits {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetByID retrieves a habit by ID.
func (r *HabitRepo) GetByID(ctx context.Context, id int64) (*domain.Habit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, h := range r.db.habits {
		if h.ID == id {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

// Create inserts a new habit.
func (r *HabitRepo) Create(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.habitIDCounter++
	cp := *h
	cp.ID = r.db.habitIDCounter
	cp.CreatedAt = time.Now()
	r.db.habits = append(r.db.habits, &cp)
	out := cp
	return &out, nil
}

// Update rewrites the habit's mutable fields, keeping owner and creation
// time.
func (r *HabitRepo) Update(ctx context.Context, h *domain.Habit) (*domain.Habit, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, existing := range r.db.habits {
		if existing.ID == h.ID {
			cp := *h
			cp.UserID = existing.UserID
			cp.CreatedAt = existing.CreatedAt
			r.db.habits[i] = &cp
			out := cp
			return &out, nil
		}
	}
	return nil, nil
}

// Delete removes a habit by ID.
func (r *HabitRepo) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, h := range r.db.habits {
		if h.ID == id {
			r.db.habits = append(r.db.habits[:i], r.db.habits[i+1:]...)
			return nil
		}
	}
	return nil
}
