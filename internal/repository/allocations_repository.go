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

type AllocationsRepository struct {
	conn PgConnection
}

func NewAllocationsRepo(cfg DBConfig) *AllocationsRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for allocationsRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for allocationsRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing allocations pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &AllocationsRepository{
		conn: pool,
	}
}

func NewAllocationsRepoWithConn(conn PgConnection) *AllocationsRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for allocationsRepo: " + err.Error())
	}
	return &AllocationsRepository{
		conn: conn,
	}
}

func (alr *AllocationsRepository) GetAll(ctx context.Context) ([]entity.PointAllocation, error) {
	allocations := make([]entity.PointAllocation, 0)
	rows, err := alr.conn.Query(ctx, `SELECT id, name, description, total_points, period, start_date, end_date, is_active FROM point_allocations ORDER BY created_at;`)
	if err != nil {
		return nil, errors.New("getting allocations error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		a := entity.PointAllocation{}
		err = rows.Scan(&a.ID, &a.Name, &a.Description, &a.TotalPoints, &a.Period, &a.StartDate, &a.EndDate, &a.IsActive)
		if err != nil {
			return nil, errors.New("unmarshalling allocation error: " + err.Error())
		}
		allocations = append(allocations, a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning allocations: " + rows.Err().Error())
	}
	for i := range allocations {
		items, err := alr.ItemsForAllocation(ctx, allocations[i].ID)
		if err != nil {
			return nil, err
		}
		allocations[i].Allocations = items
	}
	return allocations, nil
}

func (alr *AllocationsRepository) ItemsForAllocation(ctx context.Context, allocationID uuid.UUID) (map[uuid.UUID]int, error) {
	rows, err := alr.conn.Query(ctx, `SELECT habit_id, points FROM allocation_items WHERE allocation_id = $1;`, allocationID)
	if err != nil {
		return nil, errors.New("getting allocation items error: " + err.Error())
	}
	defer rows.Close()
	items := make(map[uuid.UUID]int)
	for rows.Next() {
		var habitID uuid.UUID
		var points int
		if err = rows.Scan(&habitID, &points); err != nil {
			return nil, errors.New("unmarshalling allocation item error: " + err.Error())
		}
		items[habitID] = points
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected error after scanning allocation items: " + rows.Err().Error())
	}
	return items, nil
}

func (alr *AllocationsRepository) Create(ctx context.Context, alloc *entity.PointAllocation) error {
	tx, err := alr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting allocation tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	// A new active allocation displaces whichever one was active before
	if alloc.IsActive {
		_, err = tx.Exec(ctx, `UPDATE point_allocations SET is_active = FALSE WHERE is_active = TRUE;`)
		if err != nil {
			return errors.New("deactivating allocations error: " + err.Error())
		}
	}
	_, err = tx.Exec(ctx, `INSERT INTO point_allocations (id, name, description, total_points, period, start_date, end_date, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		alloc.ID,
		alloc.Name,
		alloc.Description,
		alloc.TotalPoints,
		alloc.Period,
		alloc.StartDate,
		alloc.EndDate,
		alloc.IsActive,
	)
	if err != nil {
		return errors.New("creating allocation db error: " + err.Error())
	}
	for habitID, points := range alloc.Allocations {
		_, err = tx.Exec(ctx, `INSERT INTO allocation_items (id, allocation_id, habit_id, points) VALUES ($1, $2, $3, $4);`,
			uuid.New(), alloc.ID, habitID, points,
		)
		if err != nil {
			return errors.New("creating allocation item error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing allocation tx error: " + err.Error())
	}
	return nil
}

func (alr *AllocationsRepository) Update(ctx context.Context, alloc *entity.PointAllocation) error {
	tx, err := alr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting allocation tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	if alloc.IsActive {
		_, err = tx.Exec(ctx, `UPDATE point_allocations SET is_active = FALSE WHERE is_active = TRUE;`)
		if err != nil {
			return errors.New("deactivating allocations error: " + err.Error())
		}
	}
	ct, err := tx.Exec(ctx, `UPDATE point_allocations SET name = $1, description = $2, total_points = $3, period = $4, start_date = $5, end_date = $6, is_active = $7 WHERE id = $8;`,
		alloc.Name,
		alloc.Description,
		alloc.TotalPoints,
		alloc.Period,
		alloc.StartDate,
		alloc.EndDate,
		alloc.IsActive,
		alloc.ID,
	)
	if err != nil {
		return errors.New("error updating allocation: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAllocationNotFound
	}
	// Items are replaced wholesale, the per-habit split has no identity of its own
	_, err = tx.Exec(ctx, `DELETE FROM allocation_items WHERE allocation_id = $1;`, alloc.ID)
	if err != nil {
		return errors.New("clearing allocation items error: " + err.Error())
	}
	for habitID, points := range alloc.Allocations {
		_, err = tx.Exec(ctx, `INSERT INTO allocation_items (id, allocation_id, habit_id, points) VALUES ($1, $2, $3, $4);`,
			uuid.New(), alloc.ID, habitID, points,
		)
		if err != nil {
			return errors.New("creating allocation item error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing allocation tx error: " + err.Error())
	}
	return nil
}

func (alr *AllocationsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := alr.conn.Exec(ctx, `DELETE FROM point_allocations WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting allocation: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAllocationNotFound
	}
	return nil
}

func (alr *AllocationsRepository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := alr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting allocation tx error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `UPDATE point_allocations SET is_active = FALSE WHERE is_active = TRUE;`)
	if err != nil {
		return errors.New("deactivating allocations error: " + err.Error())
	}
	ct, err := tx.Exec(ctx, `UPDATE point_allocations SET is_active = TRUE WHERE id = $1;`, id)
	if err != nil {
		return errors.New("activating allocation error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrAllocationNotFound
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing allocation tx error: " + err.Error())
	}
	return nil
}

func (alr *AllocationsRepository) DeactivateAll(ctx context.Context) error {
	_, err := alr.conn.Exec(ctx, `UPDATE point_allocations SET is_active = FALSE WHERE is_active = TRUE;`)
	if err != nil {
		return errors.New("deactivating allocations error: " + err.Error())
	}
	return nil
}
