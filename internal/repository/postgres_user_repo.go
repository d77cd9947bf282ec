package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, email, username, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.PublicID, &user.Email, &user.Username, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByPublicID は公開IDでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByPublicID(ctx context.Context, publicID string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, public_id, email, username, created_at FROM users WHERE public_id = $1`,
		publicID,
	).Scan(&user.ID, &user.PublicID, &user.Email, &user.Username, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by public ID: %w", err)
	}

	return user, nil
}

// ExistsByEmailOrUsername はemailまたはusernameが既に使用されているかを返す。
func (r *PostgresUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

// CreateWithKey はユーザーとクレデンシャルを同一トランザクションで作成する。
// 一意制約違反の場合はErrDuplicateを返す。
func (r *PostgresUserRepo) CreateWithKey(ctx context.Context, user *model.User, key *model.Key) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ユーザーを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, public_id, email, username, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.PublicID, user.Email, user.Username, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// クレデンシャルを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO user_keys (id, user_id, provider, provider_user_id, hashed_password, created_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`,
		key.ID, key.UserID, key.Provider, key.ProviderUserID, key.HashedPassword, key.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するuser_keys、user_sessions、journeys、logs、followersはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
