package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/cleanup"
	"github.com/itza2k/kore/pkg/entity"
)

type GoalsRepository struct {
	conn PgConnection
}

func NewGoalsRepo(cfg DBConfig) *GoalsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for goalsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for goalsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing goals pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &GoalsRepository{
		conn: pool,
	}
}

func NewGoalsRepoWithConn(conn PgConnection) *GoalsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for goalsRepo: " + err.Error())
	}
	return &GoalsRepository{
		conn: conn,
	}
}

func (gr *GoalsRepository) GetAll(ctx context.Context) ([]entity.Goal, error) {
	goals := make([]entity.Goal, 0)
	rows, err := gr.conn.Query(ctx, `SELECT id, name, description, target_date, progress, is_completed FROM goals ORDER BY created_at;`)
	if err != nil {
		return nil, errors.New("getting goals error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		g := entity.Goal{}
		err = rows.Scan(&g.ID, &g.Name, &g.Description, &g.TargetDate, &g.Progress, &g.IsCompleted)
		if err != nil {
			return nil, errors.New("unmarshalling goal error: " + err.Error())
		}
		goals = append(goals, g)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning goals: " + rows.Err().Error())
	}
	for i := range goals {
		ids, err := gr.HabitIDsForGoal(ctx, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].RelatedHabitIDs = ids
	}
	return goals, nil
}

func (gr *GoalsRepository) Create(ctx context.Context, goal *entity.Goal) error {
	tx, err := gr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting goal tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `INSERT INTO goals (id, name, description, target_date, progress, is_completed) VALUES ($1, $2, $3, $4, $5, $6);`,
		goal.ID,
		goal.Name,
		goal.Description,
		goal.TargetDate,
		goal.Progress,
		goal.IsCompleted,
	)
	if err != nil {
		return errors.New("creating goal db error: " + err.Error())
	}
	for _, habitID := range goal.RelatedHabitIDs {
		_, err = tx.Exec(ctx, `INSERT INTO goal_habits (goal_id, habit_id) VALUES ($1, $2);`, goal.ID, habitID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return errorvalues.ErrHabitNotFound
			}
			return errors.New("linking habit to goal error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing goal tx error: " + err.Error())
	}
	return nil
}

func (gr *GoalsRepository) Update(ctx context.Context, goal *entity.Goal) error {
	ct, err := gr.conn.Exec(ctx, `UPDATE goals SET name = $1, description = $2, target_date = $3, progress = $4, is_completed = $5 WHERE id = $6;`,
		goal.Name,
		goal.Description,
		goal.TargetDate,
		goal.Progress,
		goal.IsCompleted,
		goal.ID,
	)
	if err != nil {
		return errors.New("error updating goal: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrGoalNotFound
	}
	return nil
}

func (gr *GoalsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := gr.conn.Exec(ctx, `DELETE FROM goals WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting goal: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrGoalNotFound
	}
	return nil
}

func (gr *GoalsRepository) AddHabitToGoal(ctx context.Context, goalID, habitID uuid.UUID) error {
	_, err := gr.conn.Exec(ctx, `INSERT INTO goal_habits (goal_id, habit_id) VALUES ($1, $2);`, goalID, habitID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// FK violation: either side is missing
			case "23503":
				return errorvalues.ErrGoalNotFound
			// Already linked, nothing to do
			case "23505":
				return nil
			}
		}
		return errors.New("linking habit to goal error: " + err.Error())
	}
	return nil
}

func (gr *GoalsRepository) HabitIDsForGoal(ctx context.Context, goalID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := gr.conn.Query(ctx, `SELECT habit_id FROM goal_habits WHERE goal_id = $1;`, goalID)
	if err != nil {
		return nil, errors.New("getting goal habit ids error: " + err.Error())
	}
	defer rows.Close()
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, errors.New("unmarshalling goal habit id error: " + err.Error())
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning goal habit ids: " + rows.Err().Error())
	}
	return ids, nil
}
