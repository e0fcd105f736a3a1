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

type HabitsRepository struct {
	conn PgConnection
}

func NewHabitsRepo(cfg DBConfig) *HabitsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for habitsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing habits pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &HabitsRepository{
		conn: pool,
	}
}

func NewHabitsRepoWithConn(conn PgConnection) *HabitsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for habitsRepo: " + err.Error())
	}
	return &HabitsRepository{
		conn: conn,
	}
}

func (hr *HabitsRepository) GetAll(ctx context.Context) ([]entity.Habit, error) {
	habits := make([]entity.Habit, 0)
	rows, err := hr.conn.Query(ctx, `SELECT id, name, description, base_points, current_points, is_eco_friendly, completed_today, streak, last_completed_date, category, progress_level, goal_progress FROM habits ORDER BY created_at;`)
	if err != nil {
		return nil, errors.New("getting habits error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		h := entity.Habit{}
		err = rows.Scan(&h.ID, &h.Name, &h.Description, &h.BasePoints, &h.CurrentPoints, &h.IsEcoFriendly,
			&h.CompletedToday, &h.Streak, &h.LastCompletedDate, &h.Category, &h.ProgressLevel, &h.GoalProgress)
		if err != nil {
			return nil, errors.New("unmarshalling habit error: " + err.Error())
		}
		habits = append(habits, h)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning habits: " + rows.Err().Error())
	}
	return habits, nil
}

func (hr *HabitsRepository) Create(ctx context.Context, habit *entity.Habit) error {
	_, err := hr.conn.Exec(ctx, `INSERT INTO habits (id, name, description, base_points, current_points, is_eco_friendly, completed_today, streak, last_completed_date, category, progress_level, goal_progress) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		habit.ID,
		habit.Name,
		habit.Description,
		habit.BasePoints,
		habit.CurrentPoints,
		habit.IsEcoFriendly,
		habit.CompletedToday,
		habit.Streak,
		habit.LastCompletedDate,
		habit.Category,
		habit.ProgressLevel,
		habit.GoalProgress,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// Unique violation
			case "23505":
				return errorvalues.ErrHabitExists
			}
		}
		return errors.New("creating habit db error: " + err.Error())
	}
	return nil
}

func (hr *HabitsRepository) Update(ctx context.Context, habit *entity.Habit) error {
	ct, err := hr.conn.Exec(ctx, `UPDATE habits SET name = $1, description = $2, base_points = $3, current_points = $4, is_eco_friendly = $5, completed_today = $6, streak = $7, last_completed_date = $8, category = $9, progress_level = $10, goal_progress = $11 WHERE id = $12;`,
		habit.Name,
		habit.Description,
		habit.BasePoints,
		habit.CurrentPoints,
		habit.IsEcoFriendly,
		habit.CompletedToday,
		habit.Streak,
		habit.LastCompletedDate,
		habit.Category,
		habit.ProgressLevel,
		habit.GoalProgress,
		habit.ID,
	)
	if err != nil {
		return errors.New("error updating habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := hr.conn.Exec(ctx, `DELETE FROM habits WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting habit: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) MarkCompleted(ctx context.Context, id uuid.UUID, timestamp int64, newPoints int) error {
	ct, err := hr.conn.Exec(ctx, `UPDATE habits SET completed_today = TRUE, last_completed_date = $1, current_points = $2 WHERE id = $3;`,
		timestamp, newPoints, id,
	)
	if err != nil {
		return errors.New("error marking habit completed: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrHabitNotFound
	}
	return nil
}

func (hr *HabitsRepository) ResetCompletedToday(ctx context.Context) error {
	_, err := hr.conn.Exec(ctx, `UPDATE habits SET completed_today = FALSE WHERE completed_today = TRUE;`)
	if err != nil {
		return errors.New("error resetting completed habits: " + err.Error())
	}
	return nil
}
