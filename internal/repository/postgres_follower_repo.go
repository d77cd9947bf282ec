package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/sojourn/internal/model"
)

// PostgresFollowerRepo はPostgreSQLを使用したフォロー関係リポジトリ。
type PostgresFollowerRepo struct {
	db *sql.DB
}

// NewPostgresFollowerRepo はPostgresFollowerRepoを生成する。
func NewPostgresFollowerRepo(db *sql.DB) *PostgresFollowerRepo {
	return &PostgresFollowerRepo{db: db}
}

// Create はフォロー関係を作成する。既にエッジが存在する場合は何もしない（冪等）。
func (r *PostgresFollowerRepo) Create(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO followers (follower_id, following_id)
		 VALUES ($1, $2)
		 ON CONFLICT (follower_id, following_id) DO NOTHING`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert follower edge: %w", err)
	}
	return nil
}

// Delete はフォロー関係を削除する。存在しないエッジでもエラーにしない（冪等）。
func (r *PostgresFollowerRepo) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM followers WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete follower edge: %w", err)
	}
	return nil
}

// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す。
func (r *PostgresFollowerRepo) ListFollowers(ctx context.Context, userID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.public_id, u.email, u.username, u.created_at
		 FROM followers f
		 JOIN users u ON u.id = f.follower_id
		 WHERE f.following_id = $1
		 ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListFollowing は指定ユーザーがフォローしているユーザー一覧を返す。
func (r *PostgresFollowerRepo) ListFollowing(ctx context.Context, userID string) ([]*model.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.public_id, u.email, u.username, u.created_at
		 FROM followers f
		 JOIN users u ON u.id = f.following_id
		 WHERE f.follower_id = $1
		 ORDER BY u.username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// collectUsers は結果セット全体をスキャンして返す。
func collectUsers(rows *sql.Rows) ([]*model.User, error) {
	var users []*model.User
	for rows.Next() {
		user := &model.User{}
		if err := rows.Scan(&user.ID, &user.PublicID, &user.Email, &user.Username, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// compile-time interface check
var _ FollowerRepository = (*PostgresFollowerRepo)(nil)
