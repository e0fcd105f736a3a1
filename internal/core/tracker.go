package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itza2k/kore/internal/repository"
	"github.com/itza2k/kore/pkg/entity"
)

// defaultWeeklyPoints is the weekly budget shown before any weekly
// allocation has been created.
const defaultWeeklyPoints = 500

type Repositories struct {
	Habits      repository.HabitsRepositoryI
	Goals       repository.GoalsRepositoryI
	Rewards     repository.RewardsRepositoryI
	Activities  repository.ActivitiesRepositoryI
	Allocations repository.AllocationsRepositoryI
}

// Tracker is the single authority over habit, goal, reward, activity and
// allocation state. It keeps ordered in-memory collections synchronized with
// the repositories, which remain the source of truth across restarts.
//
// Every mutating operation serializes on one mutex, so callers from
// different goroutines never interleave inside an operation and observers
// always read a fully committed snapshot.
type Tracker struct {
	habitsRepo      repository.HabitsRepositoryI
	goalsRepo       repository.GoalsRepositoryI
	rewardsRepo     repository.RewardsRepositoryI
	activitiesRepo  repository.ActivitiesRepositoryI
	allocationsRepo repository.AllocationsRepositoryI

	// now is swappable for tests
	now func() time.Time

	mu           sync.Mutex
	habits       []entity.Habit
	goals        []entity.Goal
	rewards      []entity.Reward
	activities   []entity.Activity
	allocations  []entity.PointAllocation
	totalPoints  int
	weeklyPoints int

	subs      map[int]func()
	nextSubID int
}

func NewTracker(repos Repositories) *Tracker {
	if repos.Habits == nil || repos.Goals == nil || repos.Rewards == nil ||
		repos.Activities == nil || repos.Allocations == nil {
		log.Fatal("provided nil repositories to tracker")
	}
	return &Tracker{
		habitsRepo:      repos.Habits,
		goalsRepo:       repos.Goals,
		rewardsRepo:     repos.Rewards,
		activitiesRepo:  repos.Activities,
		allocationsRepo: repos.Allocations,
		now:             time.Now,
		weeklyPoints:    defaultWeeklyPoints,
		subs:            make(map[int]func()),
	}
}

// Load hydrates the in-memory collections from the repositories and derives
// the point totals from the durable ledger.
func (t *Tracker) Load(ctx context.Context) error {
	habits, err := t.habitsRepo.GetAll(ctx)
	if err != nil {
		return errors.New("habits repository error: " + err.Error())
	}
	goals, err := t.goalsRepo.GetAll(ctx)
	if err != nil {
		return errors.New("goals repository error: " + err.Error())
	}
	rewards, err := t.rewardsRepo.GetAll(ctx)
	if err != nil {
		return errors.New("rewards repository error: " + err.Error())
	}
	activities, err := t.activitiesRepo.GetAll(ctx)
	if err != nil {
		return errors.New("activities repository error: " + err.Error())
	}
	allocations, err := t.allocationsRepo.GetAll(ctx)
	if err != nil {
		return errors.New("allocations repository error: " + err.Error())
	}
	earned, err := t.activitiesRepo.SumPoints(ctx)
	if err != nil {
		return errors.New("activities repository error: " + err.Error())
	}
	spent, err := t.rewardsRepo.SumRedeemedPoints(ctx)
	if err != nil {
		return errors.New("rewards repository error: " + err.Error())
	}

	t.mu.Lock()
	t.habits = habits
	t.goals = goals
	t.rewards = rewards
	t.activities = activities
	t.allocations = allocations
	t.totalPoints = earned - spent
	t.weeklyPoints = defaultWeeklyPoints
	for _, a := range allocations {
		if a.IsActive && a.Period == entity.PeriodWeekly {
			t.weeklyPoints = a.TotalPoints
			break
		}
	}
	t.mu.Unlock()
	t.notify()
	return nil
}

// Subscribe registers a change callback fired after every committed mutation.
// The returned cancel detaches it.
func (t *Tracker) Subscribe(onChange func()) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSubID
	t.nextSubID++
	t.subs[id] = onChange
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subs, id)
	}
}

// notify fires subscriber callbacks outside the state lock, so a callback is
// free to read the collections.
func (t *Tracker) notify() {
	t.mu.Lock()
	callbacks := make([]func(), 0, len(t.subs))
	for _, cb := range t.subs {
		callbacks = append(callbacks, cb)
	}
	t.mu.Unlock()
	for _, cb := range callbacks {
		cb()
	}
}

func (t *Tracker) Habits() []entity.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.Habit, len(t.habits))
	copy(out, t.habits)
	return out
}

func (t *Tracker) Goals() []entity.Goal {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.Goal, len(t.goals))
	for i, g := range t.goals {
		ids := make([]uuid.UUID, len(g.RelatedHabitIDs))
		copy(ids, g.RelatedHabitIDs)
		g.RelatedHabitIDs = ids
		out[i] = g
	}
	return out
}

func (t *Tracker) Rewards() []entity.Reward {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.Reward, len(t.rewards))
	copy(out, t.rewards)
	return out
}

func (t *Tracker) Activities() []entity.Activity {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.Activity, len(t.activities))
	copy(out, t.activities)
	return out
}

func (t *Tracker) PointAllocations() []entity.PointAllocation {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]entity.PointAllocation, len(t.allocations))
	for i, a := range t.allocations {
		items := make(map[uuid.UUID]int, len(a.Allocations))
		for k, v := range a.Allocations {
			items[k] = v
		}
		a.Allocations = items
		out[i] = a
	}
	return out
}

func (t *Tracker) TotalPoints() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalPoints
}

func (t *Tracker) WeeklyAllocationPoints() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.weeklyPoints
}

func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Summary{
		TotalPoints:            t.totalPoints,
		WeeklyAllocationPoints: t.weeklyPoints,
	}
}

func (t *Tracker) habitIndexLocked(id uuid.UUID) int {
	for i := range t.habits {
		if t.habits[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) goalIndexLocked(id uuid.UUID) int {
	for i := range t.goals {
		if t.goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) rewardIndexLocked(id uuid.UUID) int {
	for i := range t.rewards {
		if t.rewards[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Tracker) allocationIndexLocked(id uuid.UUID) int {
	for i := range t.allocations {
		if t.allocations[i].ID == id {
			return i
		}
	}
	return -1
}
