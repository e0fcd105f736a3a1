package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
)

const oneDayMillis = int64(24 * 60 * 60 * 1000)

func (t *Tracker) AddHabit(ctx context.Context, req *AddHabitRequest) (*entity.Habit, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errorvalues.ErrInvalidRequest
	}
	h := entity.Habit{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		BasePoints:    req.BasePoints,
		CurrentPoints: req.BasePoints,
		IsEcoFriendly: req.IsEcoFriendly,
		Category:      req.Category,
		ProgressLevel: 1,
	}
	t.mu.Lock()
	if err := t.habitsRepo.Create(ctx, &h); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrHabitExists) {
			return nil, err
		}
		return nil, errors.New("habits repository error: " + err.Error())
	}
	t.habits = append(t.habits, h)
	t.mu.Unlock()
	t.notify()
	return &h, nil
}

func (t *Tracker) UpdateHabit(ctx context.Context, habit entity.Habit) error {
	t.mu.Lock()
	idx := t.habitIndexLocked(habit.ID)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrHabitNotFound
	}
	if err := t.habitsRepo.Update(ctx, &habit); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	t.habits[idx] = habit
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	idx := t.habitIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrHabitNotFound
	}
	if err := t.habitsRepo.Delete(ctx, id); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrHabitNotFound) {
			return err
		}
		return errors.New("habits repository error: " + err.Error())
	}
	t.habits = append(t.habits[:idx], t.habits[idx+1:]...)
	t.mu.Unlock()
	t.notify()
	return nil
}

// CompleteHabit applies the completion bookkeeping: streak and bonus
// calculation, the activity ledger entry, the habit update and the progress
// recomputation of every goal the habit belongs to.
//
// Completing an already-completed habit awards points again, as the original
// design allows. The streak only moves when more than a day has passed since
// the last completion.
func (t *Tracker) CompleteHabit(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	t.mu.Lock()
	idx := t.habitIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return nil, errorvalues.ErrHabitNotFound
	}
	habit := t.habits[idx]
	now := t.now().UnixMilli()

	isNewStreak := habit.LastCompletedDate == 0 || now-habit.LastCompletedDate > oneDayMillis
	newStreak := habit.Streak
	if isNewStreak {
		newStreak++
	}

	bonusPoints := 0
	reasons := make([]string, 0, 2)
	if newStreak > 1 {
		streakBonus := min(newStreak*5, 50)
		bonusPoints += streakBonus
		reasons = append(reasons, fmt.Sprintf("Streak bonus: +%d points", streakBonus))
	}
	if habit.IsEcoFriendly {
		bonusPoints += 20
		reasons = append(reasons, "Eco-friendly bonus: +20 points")
	}
	basePoints := habit.BasePoints * habit.ProgressLevel

	activity := entity.Activity{
		ID:           uuid.New(),
		HabitID:      habit.ID,
		Timestamp:    now,
		PointsEarned: basePoints,
		BonusPoints:  bonusPoints,
		BonusReason:  strings.Join(reasons, "\n"),
	}

	updated := habit
	updated.CompletedToday = true
	updated.Streak = newStreak
	updated.LastCompletedDate = now
	if newStreak%5 == 0 {
		updated.ProgressLevel++
	}

	// Ledger first, then the habit. Nothing is applied in memory until both
	// are durable.
	if err := t.activitiesRepo.Create(ctx, &activity); err != nil {
		t.mu.Unlock()
		return nil, errors.New("activities repository error: " + err.Error())
	}
	if err := t.habitsRepo.Update(ctx, &updated); err != nil {
		t.mu.Unlock()
		return nil, errors.New("habits repository error: " + err.Error())
	}

	t.habits[idx] = updated
	t.activities = append(t.activities, activity)
	t.totalPoints += basePoints + bonusPoints

	if err := t.recomputeGoalsForHabitLocked(ctx, habit.ID); err != nil {
		t.mu.Unlock()
		return nil, err
	}

	t.mu.Unlock()
	t.notify()
	return &activity, nil
}

// recomputeGoalsForHabitLocked refreshes progress on every goal related to
// habitID. Progress is always the completed fraction of the goal's related
// habits; an empty relation set stays at zero.
func (t *Tracker) recomputeGoalsForHabitLocked(ctx context.Context, habitID uuid.UUID) error {
	for i := range t.goals {
		goal := t.goals[i]
		related := false
		for _, hid := range goal.RelatedHabitIDs {
			if hid == habitID {
				related = true
				break
			}
		}
		if !related {
			continue
		}
		goal.Progress = t.goalProgressLocked(&goal)
		goal.IsCompleted = goal.Progress >= 1.0
		if err := t.goalsRepo.Update(ctx, &goal); err != nil {
			return errors.New("goals repository error: " + err.Error())
		}
		t.goals[i] = goal
	}
	return nil
}

func (t *Tracker) goalProgressLocked(goal *entity.Goal) float64 {
	total := len(goal.RelatedHabitIDs)
	if total == 0 {
		return 0
	}
	completed := 0
	for _, hid := range goal.RelatedHabitIDs {
		idx := t.habitIndexLocked(hid)
		if idx != -1 && t.habits[idx].CompletedToday {
			completed++
		}
	}
	return float64(completed) / float64(total)
}

// ResetDailyHabits clears completedToday on every habit. Invoked at the
// daily boundary by the scheduler, or manually through the API.
func (t *Tracker) ResetDailyHabits(ctx context.Context) error {
	t.mu.Lock()
	if err := t.habitsRepo.ResetCompletedToday(ctx); err != nil {
		t.mu.Unlock()
		return errors.New("habits repository error: " + err.Error())
	}
	for i := range t.habits {
		if t.habits[i].CompletedToday {
			t.habits[i].CompletedToday = false
		}
	}
	t.mu.Unlock()
	t.notify()
	return nil
}
