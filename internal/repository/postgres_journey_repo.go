package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresJourneyRepo はPostgreSQLを使用した旅程リポジトリ。
type PostgresJourneyRepo struct {
	db *sql.DB
}

// NewPostgresJourneyRepo はPostgresJourneyRepoを生成する。
func NewPostgresJourneyRepo(db *sql.DB) *PostgresJourneyRepo {
	return &PostgresJourneyRepo{db: db}
}

// Create は旅程を作成する。public_idが衝突した場合はErrDuplicateを返す。
func (r *PostgresJourneyRepo) Create(ctx context.Context, journey *model.Journey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO journeys (id, public_id, title, start_location_id, end_location_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		journey.ID, journey.PublicID, journey.Title,
		journey.StartLocationID, journey.EndLocationID, journey.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert journey: %w", err)
	}
	return nil
}

// FindByID は内部IDで旅程を取得する。見つからない場合はnilを返す。
func (r *PostgresJourneyRepo) FindByID(ctx context.Context, id string) (*model.Journey, error) {
	return r.findByColumn(ctx, "id", id)
}

// FindByPublicID は公開IDで旅程を取得する。見つからない場合はnilを返す。
func (r *PostgresJourneyRepo) FindByPublicID(ctx context.Context, publicID string) (*model.Journey, error) {
	return r.findByColumn(ctx, "public_id", publicID)
}

// findByColumn は指定カラムで旅程を1件取得する。
func (r *PostgresJourneyRepo) findByColumn(ctx context.Context, column, value string) (*model.Journey, error) {
	journey := &model.Journey{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, title, start_location_id, end_location_id, user_id
		 FROM journeys
		 WHERE `+column+` = $1`,
		value,
	).Scan(&journey.ID, &journey.PublicID, &journey.Title,
		&journey.StartLocationID, &journey.EndLocationID, &journey.UserID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find journey: %w", err)
	}

	return journey, nil
}

// ListByUserID は指定ユーザーの旅程一覧を返す。
func (r *PostgresJourneyRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Journey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, public_id, title, start_location_id, end_location_id, user_id
		 FROM journeys
		 WHERE user_id = $1
		 ORDER BY title`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	var journeys []*model.Journey
	for rows.Next() {
		journey := &model.Journey{}
		if err := rows.Scan(&journey.ID, &journey.PublicID, &journey.Title,
			&journey.StartLocationID, &journey.EndLocationID, &journey.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, journey)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journeys: %w", err)
	}

	return journeys, nil
}

// compile-time interface check
var _ JourneyRepository = (*PostgresJourneyRepo)(nil)
