package core

import (
	"github.com/google/uuid"

	"github.com/itza2k/kore/pkg/entity"
)

type AddHabitRequest struct {
	Name          string `validate:"required,max=200"`
	Description   string
	BasePoints    int `validate:"required,gt=0"`
	IsEcoFriendly bool
	Category      string
}

type AddGoalRequest struct {
	Name            string `validate:"required,max=200"`
	Description     string
	TargetDate      int64 `validate:"gte=0"`
	RelatedHabitIDs []uuid.UUID
}

type AddRewardRequest struct {
	Name          string `validate:"required,max=200"`
	Description   string
	PointsCost    int `validate:"gte=0"`
	Category      string
	IsEcoFriendly bool
}

type AllocationRequest struct {
	Name        string `validate:"required,max=200"`
	Description string
	TotalPoints int                     `validate:"required,gt=0"`
	Period      entity.AllocationPeriod `validate:"required,oneof=WEEKLY MONTHLY"`
	Allocations map[uuid.UUID]int
	StartDate   int64
	EndDate     int64
	IsActive    bool
}

// Summary is the derived read state exposed alongside the collections.
type Summary struct {
	TotalPoints            int `json:"total_points"`
	WeeklyAllocationPoints int `json:"weekly_allocation_points"`
}
