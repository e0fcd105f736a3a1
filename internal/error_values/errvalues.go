package errorvalues

import "errors"

var (
	ErrHabitNotFound      = errors.New("habit doesn't exist")
	ErrGoalNotFound       = errors.New("goal doesn't exist")
	ErrRewardNotFound     = errors.New("reward doesn't exist")
	ErrActivityNotFound   = errors.New("activity doesn't exist")
	ErrAllocationNotFound = errors.New("point allocation doesn't exist")

	ErrHabitExists = errors.New("habit with such name already exists")

	ErrInsufficientPoints = errors.New("not enough points to redeem reward")
	ErrInvalidRequest     = errors.New("invalid request data")

	ErrInvalidToken = errors.New("invalid session token")
	ErrWrongKey     = errors.New("wrong access key")

	ErrAdviceUnavailable = errors.New("advice service unavailable")
	ErrEmptyAdvice       = errors.New("no text in advice response")
	ErrMissingAPIKey     = errors.New("no API key configured for advice")
)
