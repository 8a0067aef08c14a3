package venue

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mealsteals/dealworker/pkg/errors"
)

// PostgresStore keeps restaurants in the restaurants table
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const restaurantColumns = `id::text, external_id, COALESCE(url, ''), name, venue_type, open_hours,
	COALESCE(street_address, ''), COALESCE(latitude, 0), COALESCE(longitude, 0),
	COALESCE(suburb, ''), COALESCE(state, ''), COALESCE(postcode, ''), COALESCE(country, ''),
	COALESCE(timezone, ''), created_at, updated_at, is_deleted, deleted_at`

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Restaurant, error) {
	return s.getOne(ctx, id, `SELECT `+restaurantColumns+` FROM restaurants
		WHERE id::text = $1 AND NOT is_deleted`, id)
}

func (s *PostgresStore) GetByExternalID(ctx context.Context, externalID string) (*Restaurant, error) {
	return s.getOne(ctx, externalID, `SELECT `+restaurantColumns+` FROM restaurants
		WHERE external_id = $1 AND NOT is_deleted`, externalID)
}

func (s *PostgresStore) Save(ctx context.Context, r Restaurant) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO restaurants
		(id, external_id, url, name, venue_type, open_hours, street_address, latitude, longitude,
		 suburb, state, postcode, country, timezone, created_at, updated_at, is_deleted, deleted_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9,
		 NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''),
		 $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url, name = EXCLUDED.name, venue_type = EXCLUDED.venue_type,
			open_hours = EXCLUDED.open_hours, street_address = EXCLUDED.street_address,
			latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude,
			suburb = EXCLUDED.suburb, state = EXCLUDED.state, postcode = EXCLUDED.postcode,
			country = EXCLUDED.country, timezone = EXCLUDED.timezone,
			updated_at = EXCLUDED.updated_at, is_deleted = EXCLUDED.is_deleted,
			deleted_at = EXCLUDED.deleted_at`,
		r.ID, r.ExternalID, r.URL, r.Name, nonNil(r.VenueType), nonNil(r.OpenHours), r.StreetAddress,
		r.Latitude, r.Longitude, r.Suburb, r.State, r.Postcode, r.Country, r.Timezone,
		r.CreatedAt, r.UpdatedAt, r.IsDeleted, r.DeletedAt)
	if err != nil {
		return errors.NewStorage(r.ID, "save restaurant", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]Restaurant, error) {
	var (
		where = []string{"NOT is_deleted"}
		args  []any
	)
	if filter.Suburb != "" {
		args = append(args, "%"+filter.Suburb+"%")
		where = append(where, fmt.Sprintf("(suburb IS NULL OR suburb ILIKE $%d)", len(args)))
	}
	if filter.Postcode != "" {
		args = append(args, filter.Postcode)
		where = append(where, fmt.Sprintf("(postcode IS NULL OR postcode = $%d)", len(args)))
	}
	if filter.WithURL {
		where = append(where, "url IS NOT NULL")
	}
	sql := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.NewStorage("", "list restaurants", err)
	}
	defer rows.Close()

	var out []Restaurant
	for rows.Next() {
		r, err := scanRestaurant(rows)
		if err != nil {
			return nil, errors.NewStorage("", "scan restaurant", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorage("", "iterate restaurants", err)
	}
	return out, nil
}

func (s *PostgresStore) getOne(ctx context.Context, key, sql string, arg string) (*Restaurant, error) {
	r, err := scanRestaurant(s.pool.QueryRow(ctx, sql, arg))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NewNotFound(key, "restaurant not found")
	}
	if err != nil {
		return nil, errors.NewStorage(key, "get restaurant", err)
	}
	return &r, nil
}

func scanRestaurant(row pgx.Row) (Restaurant, error) {
	var r Restaurant
	err := row.Scan(&r.ID, &r.ExternalID, &r.URL, &r.Name, &r.VenueType, &r.OpenHours,
		&r.StreetAddress, &r.Latitude, &r.Longitude, &r.Suburb, &r.State, &r.Postcode,
		&r.Country, &r.Timezone, &r.CreatedAt, &r.UpdatedAt, &r.IsDeleted, &r.DeletedAt)
	return r, err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
