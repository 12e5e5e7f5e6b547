package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fitcycle/backend/internal/domain"
	"fitcycle/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is the shared backing store of the in-memory repository fakes.
// Every create advances the clock by one second so createdAt ordering is
// deterministic in tests.
type memStore struct {
	mu        sync.Mutex
	users     []*domain.User
	cycles    []*domain.TrainingCycle
	trainings []*domain.Training
	workouts  []*domain.Workout
	clock     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// --- user repository fake ---

type fakeUserRepo struct {
	s *memStore
}

func newFakeUserRepo(s *memStore) repository.UserRepository {
	return &fakeUserRepo{s: s}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}

	user.ID = primitive.NewObjectID()
	user.Email = email
	now := r.s.tick()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.s.users = append(r.s.users, &stored)
	return user.ID, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == id {
			out := *u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch repository.UserProfilePatch) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID != id {
			continue
		}
		if patch.WeeklyGoalDays != nil {
			u.WeeklyGoalDays = *patch.WeeklyGoalDays
		}
		if patch.Gender != nil {
			u.Gender = *patch.Gender
		}
		if patch.WeightKg != nil {
			u.WeightKg = patch.WeightKg
		}
		if patch.HeightCm != nil {
			u.HeightCm = patch.HeightCm
		}
		if patch.AvatarURL != nil {
			u.AvatarURL = *patch.AvatarURL
		}
		u.UpdatedAt = r.s.tick()
		out := *u
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdatePasswordHash(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			u.UpdatedAt = r.s.tick()
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- cycle repository fake ---

type fakeCycleRepo struct {
	s *memStore
}

func newFakeCycleRepo(s *memStore) repository.CycleRepository {
	return &fakeCycleRepo{s: s}
}

func (r *fakeCycleRepo) Create(ctx context.Context, cycle *domain.TrainingCycle) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.createLocked(cycle)
}

// createLocked mirrors the partial unique index: a second active cycle per
// user is rejected.
func (r *fakeCycleRepo) createLocked(cycle *domain.TrainingCycle) (primitive.ObjectID, error) {
	if cycle.Status == "" {
		cycle.Status = domain.CycleActive
	}
	if cycle.Status == domain.CycleActive {
		for _, c := range r.s.cycles {
			if c.UserID == cycle.UserID && c.Status == domain.CycleActive {
				return primitive.NilObjectID, repository.ErrActiveConflict
			}
		}
	}

	cycle.ID = primitive.NewObjectID()
	now := r.s.tick()
	if cycle.StartedAt.IsZero() {
		cycle.StartedAt = now
	}
	cycle.CreatedAt = now
	cycle.UpdatedAt = now

	stored := *cycle
	r.s.cycles = append(r.s.cycles, &stored)
	return cycle.ID, nil
}

func (r *fakeCycleRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.cycles {
		if c.UserID == userID && c.Status == domain.CycleActive {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCycleRepo) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.TrainingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.cycles {
		if c.ID == id && c.UserID == userID {
			out := *c
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCycleRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.TrainingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.TrainingCycle{}
	for _, c := range r.s.cycles {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (r *fakeCycleRepo) ReplaceActive(ctx context.Context, userID, currentCycleID primitive.ObjectID) (*domain.TrainingCycle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.trainings[:0]
	for _, t := range r.s.trainings {
		drop := t.UserID == userID &&
			(t.CycleID == currentCycleID || t.CycleID == primitive.NilObjectID)
		if !drop {
			kept = append(kept, t)
		}
	}
	r.s.trainings = kept

	var archived bool
	for _, c := range r.s.cycles {
		if c.ID == currentCycleID && c.UserID == userID && c.Status == domain.CycleActive {
			now := r.s.tick()
			c.Status = domain.CycleArchived
			c.EndedAt = &now
			c.UpdatedAt = now
			archived = true
			break
		}
	}
	if !archived {
		return nil, repository.ErrNotFound
	}

	fresh := &domain.TrainingCycle{UserID: userID, Status: domain.CycleActive}
	if _, err := r.createLocked(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// --- training repository fake ---

type fakeTrainingRepo struct {
	s *memStore
}

func newFakeTrainingRepo(s *memStore) repository.TrainingRepository {
	return &fakeTrainingRepo{s: s}
}

func (r *fakeTrainingRepo) Create(ctx context.Context, training *domain.Training) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	training.ID = primitive.NewObjectID()
	if training.Exercises == nil {
		training.Exercises = []domain.Exercise{}
	}
	now := r.s.tick()
	training.CreatedAt = now
	training.UpdatedAt = now

	stored := *training
	stored.Exercises = append([]domain.Exercise{}, training.Exercises...)
	r.s.trainings = append(r.s.trainings, &stored)
	return training.ID, nil
}

func (r *fakeTrainingRepo) findLocked(id, userID primitive.ObjectID) *domain.Training {
	for _, t := range r.s.trainings {
		if t.ID == id && t.UserID == userID {
			return t
		}
	}
	return nil
}

func copyTraining(t *domain.Training) *domain.Training {
	out := *t
	out.Exercises = append([]domain.Exercise{}, t.Exercises...)
	return &out
}

func (r *fakeTrainingRepo) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if t := r.findLocked(id, userID); t != nil {
		return copyTraining(t), nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrainingRepo) GetByUserAndCycle(ctx context.Context, userID, cycleID primitive.ObjectID, newestFirst bool) ([]domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Training{}
	for _, t := range r.s.trainings {
		if t.UserID == userID && t.CycleID == cycleID {
			out = append(out, *copyTraining(t))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if newestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *fakeTrainingRepo) Update(ctx context.Context, id, userID, cycleID primitive.ObjectID, patch repository.TrainingPatch) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := r.findLocked(id, userID)
	if t == nil || t.CycleID != cycleID {
		return nil, repository.ErrNotFound
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	t.UpdatedAt = r.s.tick()
	return copyTraining(t), nil
}

func (r *fakeTrainingRepo) Delete(ctx context.Context, id, userID, cycleID primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i, t := range r.s.trainings {
		if t.ID == id && t.UserID == userID && t.CycleID == cycleID {
			r.s.trainings = append(r.s.trainings[:i], r.s.trainings[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTrainingRepo) AddExercise(ctx context.Context, trainingID, userID, cycleID primitive.ObjectID, exercise domain.Exercise) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := r.findLocked(trainingID, userID)
	if t == nil || t.CycleID != cycleID {
		return nil, repository.ErrNotFound
	}
	if exercise.ID == primitive.NilObjectID {
		exercise.ID = primitive.NewObjectID()
	}
	t.Exercises = append(t.Exercises, exercise)
	t.UpdatedAt = r.s.tick()
	return copyTraining(t), nil
}

func (r *fakeTrainingRepo) UpdateExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID, patch repository.ExercisePatch) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := r.findLocked(trainingID, userID)
	if t == nil || t.CycleID != cycleID {
		return nil, repository.ErrNotFound
	}
	for i := range t.Exercises {
		if t.Exercises[i].ID != exerciseID {
			continue
		}
		ex := &t.Exercises[i]
		if patch.Name != nil {
			ex.Name = *patch.Name
		}
		if patch.Sets != nil {
			ex.Sets = *patch.Sets
		}
		if patch.Reps != nil {
			ex.Reps = *patch.Reps
		}
		if patch.Technique != nil {
			ex.Technique = *patch.Technique
		}
		if patch.Order != nil {
			ex.Order = *patch.Order
		}
		if patch.TargetWeight != nil {
			ex.TargetWeight = patch.TargetWeight
		}
		t.UpdatedAt = r.s.tick()
		return copyTraining(t), nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTrainingRepo) RemoveExercise(ctx context.Context, trainingID, userID, cycleID, exerciseID primitive.ObjectID) (*domain.Training, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := r.findLocked(trainingID, userID)
	if t == nil || t.CycleID != cycleID {
		return nil, repository.ErrNotFound
	}
	for i := range t.Exercises {
		if t.Exercises[i].ID == exerciseID {
			t.Exercises = append(t.Exercises[:i], t.Exercises[i+1:]...)
			t.UpdatedAt = r.s.tick()
			return copyTraining(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- workout repository fake ---

type fakeWorkoutRepo struct {
	s *memStore
}

func newFakeWorkoutRepo(s *memStore) repository.WorkoutRepository {
	return &fakeWorkoutRepo{s: s}
}

func copyWorkout(w *domain.Workout) *domain.Workout {
	out := *w
	out.ExercisesSnapshot = append([]domain.ExerciseSnapshot{}, w.ExercisesSnapshot...)
	out.PerformedExercises = append([]domain.PerformedExercise{}, w.PerformedExercises...)
	return &out
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if workout.Status == "" {
		workout.Status = domain.WorkoutActive
	}
	if workout.Status == domain.WorkoutActive {
		for _, w := range r.s.workouts {
			if w.UserID == workout.UserID && w.Status == domain.WorkoutActive {
				return primitive.NilObjectID, repository.ErrActiveConflict
			}
		}
	}

	workout.ID = primitive.NewObjectID()
	now := r.s.tick()
	if workout.StartedAt.IsZero() {
		workout.StartedAt = now
	}
	if workout.ExercisesSnapshot == nil {
		workout.ExercisesSnapshot = []domain.ExerciseSnapshot{}
	}
	if workout.PerformedExercises == nil {
		workout.PerformedExercises = []domain.PerformedExercise{}
	}
	workout.CreatedAt = now
	workout.UpdatedAt = now

	r.s.workouts = append(r.s.workouts, copyWorkout(workout))
	return workout.ID, nil
}

func (r *fakeWorkoutRepo) findLocked(id, userID primitive.ObjectID) *domain.Workout {
	for _, w := range r.s.workouts {
		if w.ID == id && w.UserID == userID {
			return w
		}
	}
	return nil
}

func (r *fakeWorkoutRepo) GetByIDAndUserID(ctx context.Context, id, userID primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if w := r.findLocked(id, userID); w != nil {
		return copyWorkout(w), nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, w := range r.s.workouts {
		if w.UserID == userID && w.Status == domain.WorkoutActive {
			return copyWorkout(w), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeWorkoutRepo) ListByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.UserID == userID {
			out = append(out, *copyWorkout(w))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (r *fakeWorkoutRepo) ReplacePerformance(ctx context.Context, id, userID primitive.ObjectID, performed []domain.PerformedExercise) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w := r.findLocked(id, userID)
	if w == nil {
		return repository.ErrNotFound
	}
	w.PerformedExercises = append([]domain.PerformedExercise{}, performed...)
	w.UpdatedAt = r.s.tick()
	return nil
}

// Finish only matches active sessions so finishedAt is never re-stamped.
func (r *fakeWorkoutRepo) Finish(ctx context.Context, id, userID primitive.ObjectID, finishedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w := r.findLocked(id, userID)
	if w == nil || w.Status != domain.WorkoutActive {
		return repository.ErrNotFound
	}
	w.Status = domain.WorkoutFinished
	w.FinishedAt = &finishedAt
	w.UpdatedAt = r.s.tick()
	return nil
}

func (r *fakeWorkoutRepo) GetLastFinished(ctx context.Context, userID, cycleID primitive.ObjectID) (*domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var last *domain.Workout
	for _, w := range r.s.workouts {
		if w.UserID != userID || w.CycleID != cycleID || w.Status != domain.WorkoutFinished || w.FinishedAt == nil {
			continue
		}
		if last == nil || w.FinishedAt.After(*last.FinishedAt) {
			last = w
		}
	}
	if last == nil {
		return nil, repository.ErrNotFound
	}
	return copyWorkout(last), nil
}

func (r *fakeWorkoutRepo) CountFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) (int64, error) {
	workouts, err := r.ListFinishedInRange(ctx, userID, cycleID, from, to)
	if err != nil {
		return 0, err
	}
	return int64(len(workouts)), nil
}

func (r *fakeWorkoutRepo) ListFinishedInRange(ctx context.Context, userID, cycleID primitive.ObjectID, from, to time.Time) ([]domain.Workout, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []domain.Workout{}
	for _, w := range r.s.workouts {
		if w.UserID != userID || w.CycleID != cycleID || w.Status != domain.WorkoutFinished || w.FinishedAt == nil {
			continue
		}
		at := *w.FinishedAt
		if (at.Equal(from) || at.After(from)) && at.Before(to) {
			out = append(out, *copyWorkout(w))
		}
	}
	return out, nil
}

// --- file storage fake ---

type fakeFileStorage struct {
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://uploads.example.test/" + objectKey + "?sig=upload", nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://uploads.example.test/" + objectKey + "?sig=download", nil
}

func (f *fakeFileStorage) ObjectURL(objectKey string) string {
	return "https://cdn.example.test/" + objectKey
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.deleted = append(f.deleted, objectKey)
	return nil
}
