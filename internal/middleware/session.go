// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/sojourn/internal/model"
)

// SessionCookieName はセッションIDを保持するCookieの名前。
// Max-Ageを指定しないブラウザセッションCookieとして発行し、
// 実際の有効期限はサーバー側のactive/idle期限で管理する。
const SessionCookieName = "session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// principalContextKey はリクエストコンテキストに認証済みプリンシパルを格納するためのキー。
var principalContextKey = contextKey("principal")

// Principal は1リクエストに紐付く認証済みユーザーとそのセッションを表す。
type Principal struct {
	User    *model.User
	Session *model.Session
}

// SessionValidator はセッション検証に必要なインターフェース。
// auth.Serviceの部分集合として定義する。
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error)
}

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Domain string
	Secure bool
}

// NewSessionMiddleware はCookieからセッションを読み取り検証するミドルウェアを返す。
// 検証は1リクエストにつき1回だけ行い、結果（プリンシパル）をコンテキストに
// メモ化する。以降のハンドラはPrincipalFromContextで参照でき、ストアへの
// 再問い合わせは発生しない。
//
// Cookieが無い・セッションが無効な場合は匿名のままリクエストを通す。
// 認証を必須にするルートにはRequireSessionを併用する。
// 検証で期限が延長された場合は更新後のCookieを応答に書き込む。
func NewSessionMiddleware(validator SessionValidator, cookie CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || c.Value == "" {
				// トークンが無ければストアに問い合わせず匿名で続行する
				next.ServeHTTP(w, r)
				return
			}

			user, session, renewed, err := validator.ValidateSession(r.Context(), c.Value)
			if err != nil {
				// ストア障害のみがこの分岐に到達する
				slog.Error("failed to validate session",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				// 期限切れ・不明なセッションは匿名ビューに静かに降格する
				next.ServeHTTP(w, r)
				return
			}

			if renewed {
				SetSessionCookie(w, cookie, session.ID)
			}

			ctx := ContextWithPrincipal(r.Context(), &Principal{User: user, Session: session})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession は認証済みプリンシパルを必須にするミドルウェアを返す。
// NewSessionMiddlewareの後段に配置すること。
// プリンシパルが無い場合は401と統一エラーフォーマットを返す。
func RequireSession() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証済みプリンシパルを取得する。
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok && p != nil
}

// UserIDFromContext はリクエストコンテキストから認証済みユーザーIDを取得する。
// RequireSessionを通過したリクエストでのみ有効。
func UserIDFromContext(ctx context.Context) (string, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("principal not found in context")
	}
	return p.User.ID, nil
}

// ContextWithPrincipal はコンテキストにプリンシパルを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// SetSessionCookie はセッションCookieを応答に書き込む。
// HTTP Only、SameSite=Lax、Max-Age無し（ブラウザセッションCookie）。
func SetSessionCookie(w http.ResponseWriter, config CookieConfig, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   config.Domain,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie はセッションCookieを無効化する削除指示を応答に書き込む。
func ClearSessionCookie(w http.ResponseWriter, config CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
