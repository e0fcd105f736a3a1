package api

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/itza2k/kore/internal/core"
	"github.com/itza2k/kore/pkg/entity"
)

type JWTServiceI interface {
	GenerateToken(client string) (string, error)
	ParseToken(tokenString string) (*JWTClaims, error)
}

type JWTClaims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// TrackerServiceI is the full surface the presentation layer gets: read
// access to the five collections and totals, plus the mutating operations.
type TrackerServiceI interface {
	Habits() []entity.Habit
	Goals() []entity.Goal
	Rewards() []entity.Reward
	Activities() []entity.Activity
	PointAllocations() []entity.PointAllocation
	TotalPoints() int
	WeeklyAllocationPoints() int
	Summary() core.Summary
	Subscribe(onChange func()) (cancel func())

	AddHabit(ctx context.Context, req *core.AddHabitRequest) (*entity.Habit, error)
	UpdateHabit(ctx context.Context, habit entity.Habit) error
	DeleteHabit(ctx context.Context, id uuid.UUID) error
	CompleteHabit(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	ResetDailyHabits(ctx context.Context) error

	AddGoal(ctx context.Context, req *core.AddGoalRequest) (*entity.Goal, error)
	UpdateGoal(ctx context.Context, goal entity.Goal) error
	DeleteGoal(ctx context.Context, id uuid.UUID) error
	AddHabitToGoal(ctx context.Context, goalID, habitID uuid.UUID) error

	AddReward(ctx context.Context, req *core.AddRewardRequest) (*entity.Reward, error)
	UpdateReward(ctx context.Context, reward entity.Reward) error
	DeleteReward(ctx context.Context, id uuid.UUID) error
	RedeemReward(ctx context.Context, id uuid.UUID) (bool, error)

	AddPointAllocation(ctx context.Context, req *core.AllocationRequest) (*entity.PointAllocation, error)
	UpdatePointAllocation(ctx context.Context, alloc entity.PointAllocation) error
	DeletePointAllocation(ctx context.Context, id uuid.UUID) error
	ActivatePointAllocation(ctx context.Context, id uuid.UUID) error
	SetWeeklyAllocationPoints(ctx context.Context, points int) error
}

type AdviceServiceI interface {
	GenerateAdvice(ctx context.Context, prompt, apiKey string) (string, error)
}
