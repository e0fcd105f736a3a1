package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/itza2k/kore/pkg/entity"
)

type HabitsRepositoryI interface {
	// Lists all habits in insertion order
	GetAll(ctx context.Context) ([]entity.Habit, error)
	// Creates new habit. All fields of habit must be filled
	Create(ctx context.Context, habit *entity.Habit) error
	// Updates habit by ID (ID in habit is necessary)
	Update(ctx context.Context, habit *entity.Habit) error
	// Deletes habit with id
	Delete(ctx context.Context, id uuid.UUID) error
	// Marks habit completed with completion timestamp and new points value
	MarkCompleted(ctx context.Context, id uuid.UUID, timestamp int64, newPoints int) error
	// Clears completed_today on every habit. Runs at the daily boundary
	ResetCompletedToday(ctx context.Context) error
}

type GoalsRepositoryI interface {
	// Lists all goals with their related habit ids
	GetAll(ctx context.Context) ([]entity.Goal, error)
	// Creates goal together with its habit links
	Create(ctx context.Context, goal *entity.Goal) error
	// Updates goal fields. Habit links are managed via AddHabitToGoal
	Update(ctx context.Context, goal *entity.Goal) error
	// Deletes goal with id, links go with it
	Delete(ctx context.Context, id uuid.UUID) error
	// Links habit to goal
	AddHabitToGoal(ctx context.Context, goalID, habitID uuid.UUID) error
	// Provides habit ids related to goal
	HabitIDsForGoal(ctx context.Context, goalID uuid.UUID) ([]uuid.UUID, error)
}

type RewardsRepositoryI interface {
	GetAll(ctx context.Context) ([]entity.Reward, error)
	Create(ctx context.Context, reward *entity.Reward) error
	Update(ctx context.Context, reward *entity.Reward) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Records a redemption of rewardID for pointsSpent at timestamp
	Redeem(ctx context.Context, rewardID uuid.UUID, pointsSpent int, timestamp int64) error
	// Sums points spent over all redemptions
	SumRedeemedPoints(ctx context.Context) (int, error)
}

type ActivitiesRepositoryI interface {
	GetAll(ctx context.Context) ([]entity.Activity, error)
	GetByHabitID(ctx context.Context, habitID uuid.UUID) ([]entity.Activity, error)
	// Appends completion record. Activities are never updated
	Create(ctx context.Context, activity *entity.Activity) error
	// Raw removal, not used by core flows
	Delete(ctx context.Context, id uuid.UUID) error
	// Sums earned plus bonus points over the whole log
	SumPoints(ctx context.Context) (int, error)
}

type AllocationsRepositoryI interface {
	// Lists all allocations with their per-habit point items
	GetAll(ctx context.Context) ([]entity.PointAllocation, error)
	// Creates allocation with items. Deactivates the rest first when active
	Create(ctx context.Context, alloc *entity.PointAllocation) error
	// Updates allocation and replaces its items. Same deactivation rule
	Update(ctx context.Context, alloc *entity.PointAllocation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Flips the single active allocation to id
	Activate(ctx context.Context, id uuid.UUID) error
	DeactivateAll(ctx context.Context) error
	ItemsForAllocation(ctx context.Context, allocationID uuid.UUID) (map[uuid.UUID]int, error)
}

type DBConfig interface {
	ConnString() string
}

type PgConnection interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGCfg struct {
	Address  string
	Username string
	Password string
	DB       string
}

func (pgcfg *PGCfg) ConnString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s/%s", pgcfg.Username, pgcfg.Password, pgcfg.Address, pgcfg.DB)
}
