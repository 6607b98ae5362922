package app

import (
	"context"
	"time"

	"trackit/internal/domain"
)

// StatsService encapsulates habit statistics retrieval use cases.
type StatsService struct {
	repo domain.HabitRepository
}

// NewStatsService creates a StatsService backed by the given repository.
func NewStatsService(repo domain.HabitRepository) *StatsService {
	return &StatsService{repo: repo}
}

// DayPoint is a single data point returned by GetSummary.
type DayPoint struct {
	Day       string `json:"day"`
	Completed int    `json:"completed"`
}

// Summary aggregates a user's habits for the dashboard.
type Summary struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	ByCategory map[string]int `json:"byCategory"`
	Daily      []DayPoint     `json:"daily"`
}

// GetSummary returns completion statistics over the caller's habits for the
// last days days.
func (s *StatsService) GetSummary(ctx context.Context, userID int64, days int) (*Summary, error) {
	if days > 366 {
		days = 366
	}

	habits, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ByCategory: map[string]int{}}
	completedByDay := map[string]int{}
	for _, h := range habits {
		sum.Total++
		sum.ByCategory[h.Category]++
		if h.Completed {
			sum.Completed++
		}
		if h.CompletedAt != nil {
			completedByDay[h.CompletedAt.In(time.Local).Format("2006-01-02")]++
		}
	}

	today := time.Now().In(time.Local)
	sum.Daily = make([]DayPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		sum.Daily = append(sum.Daily, DayPoint{Day: day, Completed: completedByDay[day]})
	}
	return sum, nil
}
