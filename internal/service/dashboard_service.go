package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Today modes
const (
	TodayModeActive = "active"
	TodayModeNext   = "next"
	TodayModeEmpty  = "empty"
)

// ptBRShortMonths matches the pt-BR short month names the mobile client
// renders, e.g. "fev. de 2026".
var ptBRShortMonths = [12]string{
	"jan.", "fev.", "mar.", "abr.", "mai.", "jun.",
	"jul.", "ago.", "set.", "out.", "nov.", "dez.",
}

// WeekStats is the Monday-first activity map of the current week.
type WeekStats struct {
	ActiveDays int    `json:"activeDays"`
	DaysTotal  int    `json:"daysTotal"`
	Map        [7]int `json:"map"` // Mon..Sun, 0 or 1
}

// DashboardStats aggregates the active cycle's finished sessions.
type DashboardStats struct {
	MonthLabel              string    `json:"monthLabel"`
	WorkoutsFinishedInMonth int64     `json:"workoutsFinishedInMonth"`
	Week                    WeekStats `json:"week"`
}

// DashboardToday is the "what should I do now" resolution.
type DashboardToday struct {
	Mode          string `json:"mode"`
	WorkoutID     string `json:"workoutId,omitempty"`
	TrainingID    string `json:"trainingId,omitempty"`
	TrainingName  string `json:"trainingName,omitempty"`
	ExerciseCount int    `json:"exerciseCount"`
	IsActive      bool   `json:"isActive"`
}

// LastWorkoutSummary is the dashboard's most-recent-session card.
type LastWorkoutSummary struct {
	ID                 string                     `json:"id"`
	TrainingName       string                     `json:"trainingName"`
	FinishedAt         *time.Time                 `json:"finishedAt"`
	PerformedExercises []domain.PerformedExercise `json:"performedExercises"`
}

// DashboardService derives monthly/weekly aggregates and the next-up
// training rotation from finished sessions of the active cycle.
type DashboardService interface {
	GetStats(ctx context.Context, userID primitive.ObjectID) (*DashboardStats, error)
	GetToday(ctx context.Context, userID primitive.ObjectID) (*DashboardToday, error)
	GetLast(ctx context.Context, userID primitive.ObjectID) (*LastWorkoutSummary, error)
}

// dashboardService implements the DashboardService interface.
type dashboardService struct {
	workoutRepo  repository.WorkoutRepository
	trainingRepo repository.TrainingRepository
	cycles       CycleService

	// now is swappable so date arithmetic is testable.
	now func() time.Time
}

// NewDashboardService creates a new instance of dashboardService.
func NewDashboardService(workoutRepo repository.WorkoutRepository, trainingRepo repository.TrainingRepository, cycles CycleService) DashboardService {
	return &dashboardService{
		workoutRepo:  workoutRepo,
		trainingRepo: trainingRepo,
		cycles:       cycles,
		now:          time.Now,
	}
}

// GetStats computes the monthly finished count and the Monday-first weekly
// activity map, both restricted to the active cycle.
func (s *dashboardService) GetStats(ctx context.Context, userID primitive.ObjectID) (*DashboardStats, error) {
	now := s.now()

	active, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthStart := startOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)
	finishedInMonth, err := s.workoutRepo.CountFinishedInRange(ctx, userID, active.ID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	weekStart := startOfWeekMonday(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	weekWorkouts, err := s.workoutRepo.ListFinishedInRange(ctx, userID, active.ID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	var week WeekStats
	week.DaysTotal = 7
	for _, w := range weekWorkouts {
		if w.FinishedAt == nil {
			continue
		}
		week.Map[weekdayIndexMon0(w.FinishedAt.In(now.Location()))] = 1
	}
	for _, v := range week.Map {
		week.ActiveDays += v
	}

	return &DashboardStats{
		MonthLabel:              monthLabel(now),
		WorkoutsFinishedInMonth: finishedInMonth,
		Week:                    week,
	}, nil
}

// GetToday resolves the next-up training. An active session wins; otherwise
// the active cycle's trainings rotate in creation order, advancing past the
// most recently finished one and wrapping around at the end. When the last
// finished training no longer exists in the list, the rotation restarts at
// the first training.
func (s *dashboardService) GetToday(ctx context.Context, userID primitive.ObjectID) (*DashboardToday, error) {
	activeWorkout, err := s.workoutRepo.GetActiveByUserID(ctx, userID)
	if err == nil {
		return &DashboardToday{
			Mode:          TodayModeActive,
			WorkoutID:     activeWorkout.ID.Hex(),
			TrainingID:    activeWorkout.TrainingID.Hex(),
			TrainingName:  activeWorkout.TrainingName,
			ExerciseCount: len(activeWorkout.ExercisesSnapshot),
			IsActive:      true,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	activeCycle, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	trainings, err := s.trainingRepo.GetByUserAndCycle(ctx, userID, activeCycle.ID, false)
	if err != nil {
		return nil, err
	}
	if len(trainings) == 0 {
		return &DashboardToday{Mode: TodayModeEmpty}, nil
	}

	lastFinished, err := s.workoutRepo.GetLastFinished(ctx, userID, activeCycle.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return todayNext(&trainings[0]), nil
	}

	idx := -1
	for i := range trainings {
		if trainings[i].ID == lastFinished.TrainingID {
			idx = i
			break
		}
	}
	nextIndex := 0
	if idx >= 0 {
		nextIndex = (idx + 1) % len(trainings)
	}
	return todayNext(&trainings[nextIndex]), nil
}

// GetLast returns the active cycle's most recently finished session, or nil.
func (s *dashboardService) GetLast(ctx context.Context, userID primitive.ObjectID) (*LastWorkoutSummary, error) {
	activeCycle, err := s.cycles.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	last, err := s.workoutRepo.GetLastFinished(ctx, userID, activeCycle.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &LastWorkoutSummary{
		ID:                 last.ID.Hex(),
		TrainingName:       last.TrainingName,
		FinishedAt:         last.FinishedAt,
		PerformedExercises: last.PerformedExercises,
	}, nil
}

func todayNext(training *domain.Training) *DashboardToday {
	return &DashboardToday{
		Mode:          TodayModeNext,
		TrainingID:    training.ID.Hex(),
		TrainingName:  training.Name,
		ExerciseCount: len(training.Exercises),
	}
}

// --- date helpers ---

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// startOfWeekMonday returns midnight of the Monday of t's week.
func startOfWeekMonday(t time.Time) time.Time {
	y, m, d := t.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	diff := 1 - int(date.Weekday()) // Weekday: 0=Sunday
	if date.Weekday() == time.Sunday {
		diff = -6
	}
	return date.AddDate(0, 0, diff)
}

// weekdayIndexMon0 maps Mon..Sun to 0..6.
func weekdayIndexMon0(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func monthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", ptBRShortMonths[t.Month()-1], t.Year())
}
