package deals

import (
	"context"
	stderrors "errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"mealsteals/dealworker/internal/days"
	"mealsteals/dealworker/pkg/errors"
)

// PostgresStore keeps deals in the deals table
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a store on an open pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const dealColumns = `id::text, restaurant_id::text, dish, price::text, day_of_week, notes,
	created_at, updated_at, is_deleted, deleted_at`

func (s *PostgresStore) ListActiveByRestaurant(ctx context.Context, restaurantID string) ([]Deal, error) {
	return s.query(ctx, `SELECT `+dealColumns+` FROM deals
		WHERE restaurant_id = $1 AND NOT is_deleted
		ORDER BY created_at, id`, restaurantID)
}

func (s *PostgresStore) ListActiveByDay(ctx context.Context, day days.Day) ([]Deal, error) {
	return s.query(ctx, `SELECT `+dealColumns+` FROM deals
		WHERE $1 = ANY(day_of_week) AND NOT is_deleted
		ORDER BY restaurant_id, created_at, id`, string(day))
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Deal, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	d, err := scanDeal(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFound("", "deal "+id+" not found")
	}
	if err != nil {
		return nil, errors.NewStorage("", "get deal", err)
	}
	return &d, nil
}

// ApplyPlan runs every write of the plan in one transaction
func (s *PostgresStore) ApplyPlan(ctx context.Context, plan Plan) error {
	if plan.Writes() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, d := range plan.Created {
		batch.Queue(`INSERT INTO deals
			(id, restaurant_id, dish, price, day_of_week, notes, created_at, is_deleted)
			VALUES ($1, $2, $3, $4::numeric, $5, NULLIF($6, ''), $7, FALSE)`,
			d.ID, d.RestaurantID, d.Dish, priceParam(d.Price), d.Days.AsList(), d.Notes, d.CreatedAt)
	}
	for _, d := range plan.Updated {
		batch.Queue(`UPDATE deals SET price = $2::numeric, notes = NULLIF($3, ''), updated_at = $4
			WHERE id = $1`,
			d.ID, priceParam(d.Price), d.Notes, d.UpdatedAt)
	}
	for _, d := range plan.Obsoleted {
		batch.Queue(`UPDATE deals SET is_deleted = TRUE, deleted_at = $2, updated_at = $2
			WHERE id = $1`,
			d.ID, d.DeletedAt)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errors.NewStorage(plan.RestaurantID, "begin reconciliation", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.NewStorage(plan.RestaurantID, "write reconciliation batch", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.NewStorage(plan.RestaurantID, "commit reconciliation", err)
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Deal, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.NewStorage("", "query deals", err)
	}
	defer rows.Close()

	var out []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, errors.NewStorage("", "scan deal", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("", "iterate deals", err)
	}
	return out, nil
}

func scanDeal(row pgx.Row) (Deal, error) {
	var (
		d        Deal
		price    *string
		notes    *string
		dayNames []string
	)
	err := row.Scan(&d.ID, &d.RestaurantID, &d.Dish, &price, &dayNames, &notes,
		&d.CreatedAt, &d.UpdatedAt, &d.IsDeleted, &d.DeletedAt)
	if err != nil {
		return Deal{}, err
	}
	// stored lists go through the same normalizer as scraped ones
	d.Days = days.NormalizeList(dayNames)
	if notes != nil {
		d.Notes = *notes
	}
	if price != nil {
		if p, err := decimal.NewFromString(*price); err == nil {
			d.Price = decimal.NewNullDecimal(p)
		}
	}
	return d, nil
}

func priceParam(p decimal.NullDecimal) *string {
	if !p.Valid {
		return nil
	}
	s := p.Decimal.StringFixed(2)
	return &s
}
