package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
)

// At most one allocation is active at any observable instant. Every path
// that activates an allocation deactivates the rest first, both durably and
// in memory.

func (t *Tracker) AddPointAllocation(ctx context.Context, req *AllocationRequest) (*entity.PointAllocation, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errorvalues.ErrInvalidRequest
	}
	alloc := entity.PointAllocation{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		TotalPoints: req.TotalPoints,
		Period:      req.Period,
		Allocations: req.Allocations,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    req.IsActive,
	}
	if alloc.Allocations == nil {
		alloc.Allocations = make(map[uuid.UUID]int)
	}
	t.mu.Lock()
	if err := t.addAllocationLocked(ctx, &alloc); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	t.mu.Unlock()
	t.notify()
	return &alloc, nil
}

func (t *Tracker) addAllocationLocked(ctx context.Context, alloc *entity.PointAllocation) error {
	if err := t.allocationsRepo.Create(ctx, alloc); err != nil {
		return errors.New("allocations repository error: " + err.Error())
	}
	if alloc.IsActive {
		t.deactivateAllLocked()
	}
	t.allocations = append(t.allocations, *alloc)
	if alloc.Period == entity.PeriodWeekly {
		t.weeklyPoints = alloc.TotalPoints
	}
	return nil
}

func (t *Tracker) UpdatePointAllocation(ctx context.Context, alloc entity.PointAllocation) error {
	t.mu.Lock()
	if err := t.updateAllocationLocked(ctx, alloc); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) updateAllocationLocked(ctx context.Context, alloc entity.PointAllocation) error {
	idx := t.allocationIndexLocked(alloc.ID)
	if idx == -1 {
		return errorvalues.ErrAllocationNotFound
	}
	if alloc.Allocations == nil {
		alloc.Allocations = make(map[uuid.UUID]int)
	}
	if err := t.allocationsRepo.Update(ctx, &alloc); err != nil {
		if errors.Is(err, errorvalues.ErrAllocationNotFound) {
			return err
		}
		return errors.New("allocations repository error: " + err.Error())
	}
	if alloc.IsActive {
		t.deactivateAllLocked()
	}
	t.allocations[idx] = alloc
	if alloc.Period == entity.PeriodWeekly {
		t.weeklyPoints = alloc.TotalPoints
	}
	return nil
}

// DeletePointAllocation removes the allocation. The cached weekly budget
// deliberately keeps its last value even when the active weekly allocation
// goes away, matching the original behavior.
func (t *Tracker) DeletePointAllocation(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	idx := t.allocationIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrAllocationNotFound
	}
	if err := t.allocationsRepo.Delete(ctx, id); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrAllocationNotFound) {
			return err
		}
		return errors.New("allocations repository error: " + err.Error())
	}
	t.allocations = append(t.allocations[:idx], t.allocations[idx+1:]...)
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) ActivatePointAllocation(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	idx := t.allocationIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrAllocationNotFound
	}
	if err := t.allocationsRepo.Activate(ctx, id); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrAllocationNotFound) {
			return err
		}
		return errors.New("allocations repository error: " + err.Error())
	}
	t.deactivateAllLocked()
	t.allocations[idx].IsActive = true
	if t.allocations[idx].Period == entity.PeriodWeekly {
		t.weeklyPoints = t.allocations[idx].TotalPoints
	}
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) deactivateAllLocked() {
	for i := range t.allocations {
		if t.allocations[i].IsActive {
			t.allocations[i].IsActive = false
		}
	}
}

// SetWeeklyAllocationPoints adjusts the weekly budget. With an active weekly
// allocation present its total is updated in place; otherwise a fresh
// week-long allocation is synthesized and activated.
func (t *Tracker) SetWeeklyAllocationPoints(ctx context.Context, points int) error {
	if points <= 0 {
		return errorvalues.ErrInvalidRequest
	}
	t.mu.Lock()
	var activeWeekly *entity.PointAllocation
	for i := range t.allocations {
		if t.allocations[i].IsActive && t.allocations[i].Period == entity.PeriodWeekly {
			activeWeekly = &t.allocations[i]
			break
		}
	}
	if activeWeekly != nil {
		updated := *activeWeekly
		updated.TotalPoints = points
		if err := t.updateAllocationLocked(ctx, updated); err != nil {
			t.mu.Unlock()
			return err
		}
		t.mu.Unlock()
		t.notify()
		return nil
	}
	now := t.now().UnixMilli()
	alloc := entity.PointAllocation{
		ID:          uuid.New(),
		Name:        "Weekly Allocation",
		Description: "Default weekly point allocation",
		TotalPoints: points,
		Period:      entity.PeriodWeekly,
		Allocations: make(map[uuid.UUID]int),
		StartDate:   now,
		EndDate:     now + 7*oneDayMillis,
		IsActive:    true,
	}
	if err := t.addAllocationLocked(ctx, &alloc); err != nil {
		t.mu.Unlock()
		return err
	}
	t.mu.Unlock()
	t.notify()
	return nil
}
