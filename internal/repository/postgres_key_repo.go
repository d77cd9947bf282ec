package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresKeyRepo はPostgreSQLを使用したクレデンシャルリポジトリ。
type PostgresKeyRepo struct {
	db *sql.DB
}

// NewPostgresKeyRepo はPostgresKeyRepoを生成する。
func NewPostgresKeyRepo(db *sql.DB) *PostgresKeyRepo {
	return &PostgresKeyRepo{db: db}
}

// FindByProviderAndProviderUserID は(provider, provider_user_id)でクレデンシャルを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresKeyRepo) FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Key, error) {
	key := &model.Key{}
	var hashedPassword sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, provider, provider_user_id, hashed_password, created_at
		 FROM user_keys
		 WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID,
	).Scan(&key.ID, &key.UserID, &key.Provider, &key.ProviderUserID, &hashedPassword, &key.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find key: %w", err)
	}

	key.HashedPassword = hashedPassword.String
	return key, nil
}

// compile-time interface check
var _ KeyRepository = (*PostgresKeyRepo)(nil)
