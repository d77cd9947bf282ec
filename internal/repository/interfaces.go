// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/sojourn/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByPublicID は公開IDでユーザーを取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID string) (*model.User, error)

	// ExistsByEmailOrUsername はemailまたはusernameが既に使用されているかを返す。
	// サインアップ前の事前チェック用。重複の最終判定はCreateWithKeyの
	// 一意制約違反（ErrDuplicate）が正となる。
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)

	// CreateWithKey はユーザーとクレデンシャルを同一トランザクションで作成する。
	// email / username / public_id / (provider, provider_user_id) のいずれかが
	// 一意制約に違反した場合はErrDuplicateを返す。
	CreateWithKey(ctx context.Context, user *model.User, key *model.Key) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するuser_keys、user_sessions、journeys、logs、followersはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// KeyRepository はクレデンシャルの永続化インターフェース。
type KeyRepository interface {
	// FindByProviderAndProviderUserID は(provider, provider_user_id)でクレデンシャルを
	// 検索する。見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Key, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。見つからない場合はnilを返す。
	// 期限切れの行もそのまま返す。期限の判定と失効処理は呼び出し側が行う。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// UpdateExpiry はセッションの期限を更新する（スライド式延長）。
	// 同一セッションへの同時更新は後勝ちで構わない。
	UpdateExpiry(ctx context.Context, id string, activeExpires, idleExpires time.Time) error

	// DeleteByID は指定IDのセッションを削除する。存在しないIDでもエラーにしない（冪等）。
	DeleteByID(ctx context.Context, id string) error

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired はidle_expiresがbefore以前のセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// LocationRepository は地点データの永続化インターフェース。
type LocationRepository interface {
	// Create は地点を作成する。public_idが衝突した場合はErrDuplicateを返す。
	Create(ctx context.Context, location *model.Location) error

	// FindByID は内部IDで地点を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Location, error)

	// FindByPublicID は公開IDで地点を取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID string) (*model.Location, error)

	// List は全地点を名前昇順で返す。
	List(ctx context.Context) ([]*model.Location, error)
}

// JourneyRepository は旅程データの永続化インターフェース。
type JourneyRepository interface {
	// Create は旅程を作成する。public_idが衝突した場合はErrDuplicateを返す。
	Create(ctx context.Context, journey *model.Journey) error

	// FindByID は内部IDで旅程を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Journey, error)

	// FindByPublicID は公開IDで旅程を取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID string) (*model.Journey, error)

	// ListByUserID は指定ユーザーの旅程一覧を返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Journey, error)
}

// LogRepository は記録データの永続化インターフェース。
type LogRepository interface {
	// Create は記録を作成する。public_idが衝突した場合はErrDuplicateを返す。
	Create(ctx context.Context, log *model.Log) error

	// FindByPublicID は公開IDで記録を取得する。見つからない場合はnilを返す。
	FindByPublicID(ctx context.Context, publicID string) (*model.Log, error)

	// ListByUserID は指定ユーザーの記録一覧をcreated_on降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Log, error)

	// ListByJourneyID は指定旅程の記録一覧をcreated_on昇順で返す。
	ListByJourneyID(ctx context.Context, journeyID string) ([]*model.Log, error)
}

// FollowerRepository はフォロー関係の永続化インターフェース。
type FollowerRepository interface {
	// Create はフォロー関係を作成する。既にエッジが存在する場合は何もしない（冪等）。
	Create(ctx context.Context, followerID, followingID string) error

	// Delete はフォロー関係を削除する。存在しないエッジでもエラーにしない（冪等）。
	Delete(ctx context.Context, followerID, followingID string) error

	// ListFollowers は指定ユーザーをフォローしているユーザー一覧を返す。
	ListFollowers(ctx context.Context, userID string) ([]*model.User, error)

	// ListFollowing は指定ユーザーがフォローしているユーザー一覧を返す。
	ListFollowing(ctx context.Context, userID string) ([]*model.User, error)
}
