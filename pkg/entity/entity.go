package entity

import (
	"github.com/google/uuid"
)

// Habit is a recurring tracked activity. Points and progress level only move
// through completion; completedToday holds until the next daily reset.
type Habit struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	BasePoints        int       `json:"base_points"`
	CurrentPoints     int       `json:"current_points"`
	IsEcoFriendly     bool      `json:"is_eco_friendly"`
	CompletedToday    bool      `json:"completed_today"`
	Streak            int       `json:"streak"`
	LastCompletedDate int64     `json:"last_completed_date"`
	Category          string    `json:"category"`
	ProgressLevel     int       `json:"progress_level"`
	GoalProgress      float64   `json:"goal_progress"`
}

// Goal progress is derived from completion of its related habits, never set
// by hand.
type Goal struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	TargetDate      int64       `json:"target_date"`
	Progress        float64     `json:"progress"`
	RelatedHabitIDs []uuid.UUID `json:"related_habit_ids"`
	IsCompleted     bool        `json:"is_completed"`
}

type Reward struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	PointsCost    int       `json:"points_cost"`
	Category      string    `json:"category"`
	IsEcoFriendly bool      `json:"is_eco_friendly"`
}

// Activity is an append-only record of one habit completion. Timestamp is
// epoch millis.
type Activity struct {
	ID           uuid.UUID `json:"id"`
	HabitID      uuid.UUID `json:"habit_id"`
	Timestamp    int64     `json:"timestamp"`
	PointsEarned int       `json:"points_earned"`
	BonusPoints  int       `json:"bonus_points"`
	BonusReason  string    `json:"bonus_reason"`
}

// Redemption records one reward purchase against the accumulated points.
type Redemption struct {
	ID          uuid.UUID `json:"id"`
	RewardID    uuid.UUID `json:"reward_id"`
	Timestamp   int64     `json:"timestamp"`
	PointsSpent int       `json:"points_spent"`
}

type AllocationPeriod string

const (
	PeriodWeekly  AllocationPeriod = "WEEKLY"
	PeriodMonthly AllocationPeriod = "MONTHLY"
)

// PointAllocation is a time-boxed budget distributing points across habits.
// At most one allocation is active system-wide.
type PointAllocation struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	TotalPoints int               `json:"total_points"`
	Period      AllocationPeriod  `json:"period"`
	Allocations map[uuid.UUID]int `json:"allocations"`
	StartDate   int64             `json:"start_date"`
	EndDate     int64             `json:"end_date"`
	IsActive    bool              `json:"is_active"`
}
