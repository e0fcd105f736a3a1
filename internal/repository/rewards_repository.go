package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/itza2k/kore/internal/error_values"
	"github.com/itza2k/kore/pkg/cleanup"
	"github.com/itza2k/kore/pkg/entity"
)

type RewardsRepository struct {
	conn PgConnection
}

func NewRewardsRepo(cfg DBConfig) *RewardsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for rewardsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for rewardsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing rewards pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &RewardsRepository{
		conn: pool,
	}
}

func NewRewardsRepoWithConn(conn PgConnection) *RewardsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for rewardsRepo: " + err.Error())
	}
	return &RewardsRepository{
		conn: conn,
	}
}

func (rr *RewardsRepository) GetAll(ctx context.Context) ([]entity.Reward, error) {
	rewards := make([]entity.Reward, 0)
	rows, err := rr.conn.Query(ctx, `SELECT id, name, description, points_cost, category, is_eco_friendly FROM rewards ORDER BY created_at;`)
	if err != nil {
		return nil, errors.New("getting rewards error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		r := entity.Reward{}
		err = rows.Scan(&r.ID, &r.Name, &r.Description, &r.PointsCost, &r.Category, &r.IsEcoFriendly)
		if err != nil {
			return nil, errors.New("unmarshalling reward error: " + err.Error())
		}
		rewards = append(rewards, r)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning rewards: " + rows.Err().Error())
	}
	return rewards, nil
}

func (rr *RewardsRepository) Create(ctx context.Context, reward *entity.Reward) error {
	_, err := rr.conn.Exec(ctx, `INSERT INTO rewards (id, name, description, points_cost, category, is_eco_friendly) VALUES ($1, $2, $3, $4, $5, $6);`,
		reward.ID,
		reward.Name,
		reward.Description,
		reward.PointsCost,
		reward.Category,
		reward.IsEcoFriendly,
	)
	if err != nil {
		return errors.New("creating reward db error: " + err.Error())
	}
	return nil
}

func (rr *RewardsRepository) Update(ctx context.Context, reward *entity.Reward) error {
	ct, err := rr.conn.Exec(ctx, `UPDATE rewards SET name = $1, description = $2, points_cost = $3, category = $4, is_eco_friendly = $5 WHERE id = $6;`,
		reward.Name,
		reward.Description,
		reward.PointsCost,
		reward.Category,
		reward.IsEcoFriendly,
		reward.ID,
	)
	if err != nil {
		return errors.New("error updating reward: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrRewardNotFound
	}
	return nil
}

func (rr *RewardsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := rr.conn.Exec(ctx, `DELETE FROM rewards WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting reward: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrRewardNotFound
	}
	return nil
}

func (rr *RewardsRepository) Redeem(ctx context.Context, rewardID uuid.UUID, pointsSpent int, timestamp int64) error {
	_, err := rr.conn.Exec(ctx, `INSERT INTO reward_redemptions (id, reward_id, timestamp, points_spent) VALUES ($1, $2, $3, $4);`,
		uuid.New(),
		rewardID,
		timestamp,
		pointsSpent,
	)
	if err != nil {
		return errors.New("recording redemption error: " + err.Error())
	}
	return nil
}

func (rr *RewardsRepository) SumRedeemedPoints(ctx context.Context) (int, error) {
	row := rr.conn.QueryRow(ctx, `SELECT COALESCE(SUM(points_spent), 0) FROM reward_redemptions;`)
	var sum int
	if err := row.Scan(&sum); err != nil {
		return 0, errors.New("summing redeemed points error: " + err.Error())
	}
	return sum, nil
}
