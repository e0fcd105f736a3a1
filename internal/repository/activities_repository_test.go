package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/google/uuid"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/internal/repository"
	"github.com/itza2k/kore/pkg/entity"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
)

var activityCols = []string{"id", "habit_id", "timestamp", "points_earned", "bonus_points", "bonus_reason"}

func testActivity(habitID uuid.UUID) entity.Activity {
	return entity.Activity{
		ID:           uuid.New(),
		HabitID:      habitID,
		Timestamp:    1756400000000,
		PointsEarned: 10,
		BonusPoints:  5,
		BonusReason:  "Streak bonus: +5 points",
	}
}

func TestGetAllActivities(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewActivitiesRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT id, habit_id, timestamp, points_earned, bonus_points, bonus_reason FROM activities ORDER BY timestamp;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		a := testActivity(uuid.New())
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows(activityCols).
				AddRow(a.ID, a.HabitID, a.Timestamp, a.PointsEarned, a.BonusPoints, a.BonusReason))
		result, err := repo.GetAll(ctx)
		assert.NoError(t, err)
		assert.Equal(t, []entity.Activity{a}, result)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(errors.New("db error"))
		_, err := repo.GetAll(ctx)
		assert.Error(t, err)
	})
}

func TestGetActivitiesByHabitID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewActivitiesRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT id, habit_id, timestamp, points_earned, bonus_points, bonus_reason FROM activities WHERE habit_id = $1 ORDER BY timestamp;`)
	habitID := uuid.New()
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		a := testActivity(habitID)
		mock.ExpectQuery(query).
			WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows(activityCols).
				AddRow(a.ID, a.HabitID, a.Timestamp, a.PointsEarned, a.BonusPoints, a.BonusReason))
		result, err := repo.GetByHabitID(ctx, habitID)
		assert.NoError(t, err)
		assert.Equal(t, []entity.Activity{a}, result)
	})
	t.Run("no activities", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(habitID).
			WillReturnRows(pgxmock.NewRows(activityCols))
		result, err := repo.GetByHabitID(ctx, habitID)
		assert.NoError(t, err)
		assert.Equal(t, 0, len(result))
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(habitID).
			WillReturnError(errors.New("db error"))
		_, err := repo.GetByHabitID(ctx, habitID)
		assert.Error(t, err)
	})
}

func TestCreateActivity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewActivitiesRepoWithConn(mock)
	query := regexp.QuoteMeta(`INSERT INTO activities (id, habit_id, timestamp, points_earned, bonus_points, bonus_reason) VALUES ($1, $2, $3, $4, $5, $6);`)
	a := testActivity(uuid.New())
	args := []any{a.ID, a.HabitID, a.Timestamp, a.PointsEarned, a.BonusPoints, a.BonusReason}
	ctx := context.Background()
	t.Run("successfully created", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(args...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		err := repo.Create(ctx, &a)
		assert.NoError(t, err)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(args...).
			WillReturnError(errors.New("db error"))
		err := repo.Create(ctx, &a)
		assert.Error(t, err)
	})
}

func TestDeleteActivity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewActivitiesRepoWithConn(mock)
	query := regexp.QuoteMeta(`DELETE FROM activities WHERE id = $1;`)
	ctx := context.Background()
	id := uuid.New()
	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		err := repo.Delete(ctx, id)
		assert.NoError(t, err)
	})
	t.Run("not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		err := repo.Delete(ctx, id)
		assert.ErrorIs(t, err, errorvalues.ErrActivityNotFound)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(id).
			WillReturnError(errors.New("db error"))
		err := repo.Delete(ctx, id)
		assert.Error(t, err)
	})
}

func TestSumActivityPoints(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	repo := repository.NewActivitiesRepoWithConn(mock)
	query := regexp.QuoteMeta(`SELECT COALESCE(SUM(points_earned + bonus_points), 0) FROM activities;`)
	ctx := context.Background()
	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(425))
		sum, err := repo.SumPoints(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 425, sum)
	})
	t.Run("empty ledger", func(t *testing.T) {
		mock.ExpectQuery(query).
			WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0))
		sum, err := repo.SumPoints(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 0, sum)
	})
	t.Run("db error", func(t *testing.T) {
		mock.ExpectQuery(query).WillReturnError(errors.New("db error"))
		_, err := repo.SumPoints(ctx)
		assert.Error(t, err)
	})
}
