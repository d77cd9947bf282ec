package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresLocationRepo はPostgreSQLを使用した地点リポジトリ。
type PostgresLocationRepo struct {
	db *sql.DB
}

// NewPostgresLocationRepo はPostgresLocationRepoを生成する。
func NewPostgresLocationRepo(db *sql.DB) *PostgresLocationRepo {
	return &PostgresLocationRepo{db: db}
}

// Create は地点を作成する。public_idが衝突した場合はErrDuplicateを返す。
func (r *PostgresLocationRepo) Create(ctx context.Context, location *model.Location) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (id, public_id, name, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5)`,
		location.ID, location.PublicID, location.Name, location.Latitude, location.Longitude,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert location: %w", err)
	}
	return nil
}

// FindByID は内部IDで地点を取得する。見つからない場合はnilを返す。
func (r *PostgresLocationRepo) FindByID(ctx context.Context, id string) (*model.Location, error) {
	return r.findByColumn(ctx, "id", id)
}

// FindByPublicID は公開IDで地点を取得する。見つからない場合はnilを返す。
func (r *PostgresLocationRepo) FindByPublicID(ctx context.Context, publicID string) (*model.Location, error) {
	return r.findByColumn(ctx, "public_id", publicID)
}

// findByColumn は指定カラムで地点を1件取得する。
func (r *PostgresLocationRepo) findByColumn(ctx context.Context, column, value string) (*model.Location, error) {
	location := &model.Location{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, name, latitude, longitude FROM locations WHERE `+column+` = $1`,
		value,
	).Scan(&location.ID, &location.PublicID, &location.Name, &location.Latitude, &location.Longitude)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %w", err)
	}

	return location, nil
}

// List は全地点を名前昇順で返す。
func (r *PostgresLocationRepo) List(ctx context.Context) ([]*model.Location, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, public_id, name, latitude, longitude FROM locations ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*model.Location
	for rows.Next() {
		location := &model.Location{}
		if err := rows.Scan(&location.ID, &location.PublicID, &location.Name, &location.Latitude, &location.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, location)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}

	return locations, nil
}

// compile-time interface check
var _ LocationRepository = (*PostgresLocationRepo)(nil)
