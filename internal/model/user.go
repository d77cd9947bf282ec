// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDは内部識別子（UUID）であり外部には公開しない。
// 外部向けにはPublicID（12文字）のみを公開する。
type User struct {
	ID        string
	PublicID  string
	Email     string
	Username  string
	CreatedAt time.Time
}

// Key はプロバイダごとのクレデンシャル（ログイン識別子と秘密情報の紐付け）を表す。
// (Provider, ProviderUserID) の組につき1レコード。
// HashedPasswordはプロバイダが秘密情報を自前管理する場合は空になる。
type Key struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	HashedPassword string
	CreatedAt      time.Time
}

// ProviderEmail はemailプロバイダの識別子。
// メールアドレス＋パスワードのクレデンシャルに使用する。
const ProviderEmail = "email"

// Session はユーザーのログインセッションを表す。
// ActiveExpiresとIdleExpiresの2つの期限を持つ:
//   - ActiveExpires: この時刻まではセッションは無条件に有効。
//   - IdleExpires: ActiveExpiresを過ぎてもこの時刻までは有効で、
//     検証時に期限が透過的に延長される（スライド式期限）。
//
// IdleExpiresを過ぎたセッションは無効であり、検証時に削除される。
type Session struct {
	ID            string
	UserID        string
	ActiveExpires time.Time
	IdleExpires   time.Time
	CreatedAt     time.Time
}

// SessionState はセッションの検証結果の状態を表す。
type SessionState int

const (
	// SessionActive はActiveExpires以前であり、延長不要で有効な状態。
	SessionActive SessionState = iota
	// SessionIdle はActiveExpiresを過ぎたがIdleExpires以前であり、
	// 有効だが期限の延長が必要な状態。
	SessionIdle
	// SessionDead はIdleExpiresを過ぎており無効な状態。
	SessionDead
)

// StateAt は指定時刻におけるセッションの状態を返す。
// 延長の判定基準はActiveExpiresそのものであり、これが更新ポリシーの閾値となる。
func (s *Session) StateAt(now time.Time) SessionState {
	if now.Before(s.ActiveExpires) {
		return SessionActive
	}
	if now.Before(s.IdleExpires) {
		return SessionIdle
	}
	return SessionDead
}
