package core

import (
	"context"
	"errors"

	"github.com/google/uuid"

	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/entity"
)

func (t *Tracker) AddReward(ctx context.Context, req *AddRewardRequest) (*entity.Reward, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errorvalues.ErrInvalidRequest
	}
	r := entity.Reward{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		PointsCost:    req.PointsCost,
		Category:      req.Category,
		IsEcoFriendly: req.IsEcoFriendly,
	}
	t.mu.Lock()
	if err := t.rewardsRepo.Create(ctx, &r); err != nil {
		t.mu.Unlock()
		return nil, errors.New("rewards repository error: " + err.Error())
	}
	t.rewards = append(t.rewards, r)
	t.mu.Unlock()
	t.notify()
	return &r, nil
}

func (t *Tracker) UpdateReward(ctx context.Context, reward entity.Reward) error {
	t.mu.Lock()
	idx := t.rewardIndexLocked(reward.ID)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrRewardNotFound
	}
	if err := t.rewardsRepo.Update(ctx, &reward); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrRewardNotFound) {
			return err
		}
		return errors.New("rewards repository error: " + err.Error())
	}
	t.rewards[idx] = reward
	t.mu.Unlock()
	t.notify()
	return nil
}

func (t *Tracker) DeleteReward(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	idx := t.rewardIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return errorvalues.ErrRewardNotFound
	}
	if err := t.rewardsRepo.Delete(ctx, id); err != nil {
		t.mu.Unlock()
		if errors.Is(err, errorvalues.ErrRewardNotFound) {
			return err
		}
		return errors.New("rewards repository error: " + err.Error())
	}
	t.rewards = append(t.rewards[:idx], t.rewards[idx+1:]...)
	t.mu.Unlock()
	t.notify()
	return nil
}

// RedeemReward spends accumulated points on a reward. The boolean is the
// validation outcome: false means the balance is short and nothing changed.
// An error means persistence failed.
func (t *Tracker) RedeemReward(ctx context.Context, id uuid.UUID) (bool, error) {
	t.mu.Lock()
	idx := t.rewardIndexLocked(id)
	if idx == -1 {
		t.mu.Unlock()
		return false, errorvalues.ErrRewardNotFound
	}
	reward := t.rewards[idx]
	if t.totalPoints < reward.PointsCost {
		t.mu.Unlock()
		return false, nil
	}
	if err := t.rewardsRepo.Redeem(ctx, reward.ID, reward.PointsCost, t.now().UnixMilli()); err != nil {
		t.mu.Unlock()
		return false, errors.New("rewards repository error: " + err.Error())
	}
	t.totalPoints -= reward.PointsCost
	t.mu.Unlock()
	t.notify()
	return true, nil
}
