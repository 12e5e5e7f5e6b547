package service

import (
	"context"
	"errors"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrCycleNotFound = errors.New("cycle not found")
)

// CycleService manages the lazy one-active-cycle-per-user lifecycle.
type CycleService interface {
	GetOrCreateActive(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error)
	ListCycles(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingCycle, error)
	StartNewCycle(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error)
}

// cycleService implements the CycleService interface.
type cycleService struct {
	cycleRepo repository.CycleRepository
}

// NewCycleService creates a new instance of cycleService.
func NewCycleService(cycleRepo repository.CycleRepository) CycleService {
	return &cycleService{cycleRepo: cycleRepo}
}

// GetOrCreateActive returns the user's active cycle, creating one on first
// access. When two requests race on the first create, the partial unique
// index makes one insert fail with ErrActiveConflict and that caller simply
// re-reads the winner's cycle.
func (s *cycleService) GetOrCreateActive(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	cycle, err := s.cycleRepo.GetActiveByUserID(ctx, userID)
	if err == nil {
		return cycle, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	fresh := &domain.TrainingCycle{
		UserID: userID,
		Status: domain.CycleActive,
	}
	if _, err := s.cycleRepo.Create(ctx, fresh); err != nil {
		if errors.Is(err, repository.ErrActiveConflict) {
			return s.cycleRepo.GetActiveByUserID(ctx, userID)
		}
		return nil, err
	}
	return fresh, nil
}

// ListCycles returns all cycles for history browsing, active first.
func (s *cycleService) ListCycles(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingCycle, error) {
	return s.cycleRepo.ListByUserID(ctx, userID)
}

// StartNewCycle performs the destructive reset: the active cycle's trainings
// are deleted for good, the cycle is archived, and a fresh active cycle is
// returned. The repository runs the whole sequence in one transaction.
func (s *cycleService) StartNewCycle(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	current, err := s.GetOrCreateActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.cycleRepo.ReplaceActive(ctx, userID, current.ID)
}
