package adapthttp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"trackit/internal/app"
)

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	habits, err := s.habits.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	var req habitRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	habit, err := s.habits.Create(r.Context(), user.ID, req.input())
	if err != nil {
		writeError(w, http.StatusInternalServerError, errInternal)
		return
	}
	writeJSON(w, http.StatusOK, habit)
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	id, err := habitID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req habitRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	habit, err := s.habits.Update(r.Context(), user.ID, id, req.input())
	switch {
	case errors.Is(err, app.ErrNotOwner):
		writeError(w, http.StatusBadRequest, errors.New("not authorized to update this habit"))
	case errors.Is(err, app.ErrNameRequired):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, errInternal)
	default:
		writeJSON(w, http.StatusOK, habit)
	}
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	id, err := habitID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err = s.habits.Delete(r.Context(), user.ID, id)
	switch {
	case errors.Is(err, app.ErrNotOwner):
		writeError(w, http.StatusBadRequest, errors.New("not authorized to delete this habit"))
	case err != nil:
		writeError(w, http.StatusInternalServerError, errInternal)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "habit deleted successfully"})
	}
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusForbidden, errAuthRequired)
		return
	}

	id, err := habitID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Completed   *bool  `json:"completed"`
		CompletedAt string `json:"completedAt"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// An unparseable client timestamp falls back to server time.
	var completedAt *time.Time
	if req.CompletedAt != "" {
		if at, err := time.Parse(time.RFC3339, req.CompletedAt); err == nil {
			completedAt = &at
		}
	}

	habit, err := s.habits.Toggle(r.Context(), user.ID, id, req.Completed, completedAt)
	switch {
	case errors.Is(err, app.ErrNotOwner):
		writeError(w, http.StatusForbidden, errors.New("not authorized to update this habit"))
	case errors.Is(err, app.ErrCompletedRequired):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, errors.New("an error occurred while updating the habit"))
	default:
		writeJSON(w, http.StatusOK, habit)
	}
}

var (
	errAuthRequired = errors.New("authentication required")
	errInternal     = errors.New("internal error")
)

type habitRequest struct {
	Name         *string `json:"name"`
	Note         *string `json:"note"`
	ReminderTime *string `json:"reminderTime"`
	Recurrence   *string `json:"recurrence"`
	Category     *string `json:"category"`
}

func (h habitRequest) input() app.HabitInput {
	return app.HabitInput{
		Name:         h.Name,
		Note:         h.Note,
		ReminderTime: h.ReminderTime,
		Recurrence:   h.Recurrence,
		Category:     h.Category,
	}
}

func habitID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid habit id")
	}
	return id, nil
}
