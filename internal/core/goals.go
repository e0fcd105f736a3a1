package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
)

func (t *Tracker) AddGoal(ctx context.Context, req *AddGoalRequest) (*entity.Goal, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errorvalues.ErrInvalidRequest
	}
	g := entity.Goal{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		TargetDate:      req.TargetDate,
		RelatedHabitIDs: req.RelatedHabitIDs,
	}
	if g.RelatedHabitIDs == nil {
		g.RelatedHabitIDs = make([]uuid.UUID, 0)
	}
	t.mu.Lock()
	for _, hid := range g.RelatedHabitIDs {
		if t.habitIndexLocked(hid) == -1 {
			t.mu.Unlock()
			return nil, errorvalues.ErrHabitNotFound
		}
	}
	if err := t.goalsRepo.Create(ctx, &g); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return nil, err
		}
		return nil, errors.New("goals repository error: " + err.Error())
	}
	t.goals = append(t.goals, g)
	t.mu.Unlock()
	t.notify()
	return &g, nil
}

// UpdateGoal replaces the goal's own fields. The habit relation is managed
// through AddHabitToGoal and is carried over from the current state.
func (t *Tracker) UpdateGoal(ctx context.Context, goal entity.Goal) error {
	t.mu.Lock()
	idx := t.goalIndexLocked(goal.ID)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrGoalNotFound
	}
	goal.RelatedHabitIDs = t.goals[idx].RelatedHabitIDs
	if err := t.goalsRepo.Update(ctx, &goal); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return err
		}
		return errors.New("goals repository error: " + err.Error())
	}
	t.goals[idx] = goal
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) DeleteGoal(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	idx := t.goalIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrGoalNotFound
	}
	if err := t.goalsRepo.Delete(ctx, id); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return err
		}
		return errors.New("goals repository error: " + err.Error())
	}
	t.goals = append(t.goals[:idx], t.goals[idx+1:]...)
	t.mu.Unlock()
	t.notify()
	return nil
}

// AddHabitToGoal links a habit into the goal's relation set and recomputes
// the goal's progress, since the completed fraction changes with the
// denominator.
func (t *Tracker) AddHabitToGoal(ctx context.Context, goalID, habitID uuid.UUID) error {
	t.mu.Lock()
	gidx := t.goalIndexLocked(goalID)
	if gidx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrGoalNotFound
	}
	if t.habitIndexLocked(habitID) == -1 {
		t.mu.Unlock()
		return errorvalues.ErrHabitNotFound
	}
	goal := t.goals[gidx]
	for _, hid := range goal.RelatedHabitIDs {
		if hid == habitID {
			t.mu.Unlock()
			return nil
		}
	}
	if err := t.goalsRepo.AddHabitToGoal(ctx, goalID, habitID); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrGoalNotFound) {
			return err
		}
		return errors.New("goals repository error: " + err.Error())
	}
	goal.RelatedHabitIDs = append(goal.RelatedHabitIDs, habitID)
	goal.Progress = t.goalProgressLocked(&goal)
	goal.IsCompleted = goal.Progress >= 1.0
	if err := t.goalsRepo.Update(ctx, &goal); err != nil {
		t.mu.Unlock()
		return errors.New("goals repository error: " + err.Error())
	}
	t.goals[gidx] = goal
	t.mu.Unlock()
	t.notify()
	return nil
}
