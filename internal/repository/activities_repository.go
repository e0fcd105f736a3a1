package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/cleanup"
	"github.com/itza2k/kore/pkg/entity"
)

type ActivitiesRepository struct {
	conn PgConnection
}

func NewActivitiesRepo(cfg DBConfig) *ActivitiesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for activitiesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing activities pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ActivitiesRepository{
		conn: pool,
	}
}

func NewActivitiesRepoWithConn(conn PgConnection) *ActivitiesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	return &ActivitiesRepository{
		conn: conn,
	}
}

func (ar *ActivitiesRepository) GetAll(ctx context.Context) ([]entity.Activity, error) {
	rows, err := ar.conn.Query(ctx, `SELECT id, habit_id, timestamp, points_earned, bonus_points, bonus_reason FROM activities ORDER BY timestamp;`)
	if err != nil {
		return nil, errors.New("getting activities error: " + err.Error())
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (ar *ActivitiesRepository) GetByHabitID(ctx context.Context, habitID uuid.UUID) ([]entity.Activity, error) {
	rows, err := ar.conn.Query(ctx, `SELECT id, habit_id, timestamp, points_earned, bonus_points, bonus_reason FROM activities WHERE habit_id = $1 ORDER BY timestamp;`, habitID)
	if err != nil {
		return nil, errors.New("getting activities by habit error: " + err.Error())
	}
	defer rows.Close()
	return scanActivities(rows)
}

func (ar *ActivitiesRepository) Create(ctx context.Context, activity *entity.Activity) error {
	_, err := ar.conn.Exec(ctx, `INSERT INTO activities (id, habit_id, timestamp, points_earned, bonus_points, bonus_reason) VALUES ($1, $2, $3, $4, $5, $6);`,
		activity.ID,
		activity.HabitID,
		activity.Timestamp,
		activity.PointsEarned,
		activity.BonusPoints,
		activity.BonusReason,
	)
	if err != nil {
		return errors.New("creating activity db error: " + err.Error())
	}
	return nil
}

func (ar *ActivitiesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := ar.conn.Exec(ctx, `DELETE FROM activities WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting activity: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrActivityNotFound
	}
	return nil
}

func (ar *ActivitiesRepository) SumPoints(ctx context.Context) (int, error) {
	row := ar.conn.QueryRow(ctx, `SELECT COALESCE(SUM(points_earned + bonus_points), 0) FROM activities;`)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, errors.New("summing activity points error: " + err.Error())
	}
	return sum, nil
}

func scanActivities(rows pgx.Rows) ([]entity.Activity, error) {
	activities := make([]entity.Activity, 0)
	for rows.Next() {
		a := entity.Activity{}
		err := rows.Scan(&a.ID, &a.HabitID, &a.Timestamp, &a.PointsEarned, &a.BonusPoints, &a.BonusReason)
		if err != nil {
			return nil, errors.New("unmarshalling activity error: " + err.Error())
		}
		activities = append(activities, a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning activities: " + rows.Err().Error())
	}
	return activities, nil
}
