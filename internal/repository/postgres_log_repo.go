package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresLogRepo はPostgreSQLを使用した記録リポジトリ。
type PostgresLogRepo struct {
	db *sql.DB
}

// NewPostgresLogRepo はPostgresLogRepoを生成する。
func NewPostgresLogRepo(db *sql.DB) *PostgresLogRepo {
	return &PostgresLogRepo{db: db}
}

// Create は記録を作成する。public_idが衝突した場合はErrDuplicateを返す。
// journey_idは空文字列の場合NULLとして保存する。
func (r *PostgresLogRepo) Create(ctx context.Context, log *model.Log) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO logs (id, public_id, title, body_text, image_url, created_on, user_id, location_id, journey_id)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, '')::uuid)`,
		log.ID, log.PublicID, log.Title, log.BodyText, log.ImageURL,
		log.CreatedOn, log.UserID, log.LocationID, log.JourneyID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

// FindByPublicID は公開IDで記録を取得する。見つからない場合はnilを返す。
func (r *PostgresLogRepo) FindByPublicID(ctx context.Context, publicID string) (*model.Log, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, title, body_text, image_url, created_on, user_id, location_id, journey_id
		 FROM logs
		 WHERE public_id = $1`,
		publicID,
	)

	log, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find log: %w", err)
	}

	return log, nil
}

// ListByUserID は指定ユーザーの記録一覧をcreated_on降順で返す。
func (r *PostgresLogRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Log, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, public_id, title, body_text, image_url, created_on, user_id, location_id, journey_id
		 FROM logs
		 WHERE user_id = $1
		 ORDER BY created_on DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	return collectLogs(rows)
}

// ListByJourneyID は指定旅程の記録一覧をcreated_on昇順で返す。
func (r *PostgresLogRepo) ListByJourneyID(ctx context.Context, journeyID string) ([]*model.Log, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, public_id, title, body_text, image_url, created_on, user_id, location_id, journey_id
		 FROM logs
		 WHERE journey_id = $1
		 ORDER BY created_on`,
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list journey logs: %w", err)
	}
	defer rows.Close()

	return collectLogs(rows)
}

// rowScanner は*sql.Rowと*sql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanLog は1行をmodel.Logに変換する。NULL許容カラムを吸収する。
func scanLog(row rowScanner) (*model.Log, error) {
	log := &model.Log{}
	var bodyText, imageURL, journeyID sql.NullString
	err := row.Scan(&log.ID, &log.PublicID, &log.Title, &bodyText, &imageURL,
		&log.CreatedOn, &log.UserID, &log.LocationID, &journeyID)
	if err != nil {
		return nil, err
	}
	log.BodyText = bodyText.String
	log.ImageURL = imageURL.String
	log.JourneyID = journeyID.String
	return log, nil
}

// collectLogs は結果セット全体をスキャンして返す。
func collectLogs(rows *sql.Rows) ([]*model.Log, error) {
	var logs []*model.Log
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate logs: %w", err)
	}
	return logs, nil
}

// compile-time interface check
var _ LogRepository = (*PostgresLogRepo)(nil)
