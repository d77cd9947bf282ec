package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sojourn/internal/middleware"
	"github.com/hitoshi/sojourn/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// GetProfile は公開IDでユーザーを取得する。
	GetProfile(ctx context.Context, publicID string) (*model.User, error)
	// Withdraw はユーザーの退会処理を実行する。
	// sessions → user（+ CASCADE: keys, journeys, logs, followers）を一括削除する。
	Withdraw(ctx context.Context, userID string) error
	// Follow はフォロー関係を作成する（冪等）。
	Follow(ctx context.Context, followerID, followingPublicID string) error
	// Unfollow はフォロー関係を削除する（冪等）。
	Unfollow(ctx context.Context, followerID, followingPublicID string) error
	// ListFollowers は公開IDで指定したユーザーのフォロワー一覧を返す。
	ListFollowers(ctx context.Context, publicID string) ([]*model.User, error)
	// ListFollowing は公開IDで指定したユーザーのフォロー中一覧を返す。
	ListFollowing(ctx context.Context, publicID string) ([]*model.User, error)
}

// UserHandler はユーザー管理とフォローグラフのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// profileResponse は公開プロフィールのAPIレスポンス。
// 本人以外にも見えるため、emailは含めない。
type profileResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// GetProfile はユーザーの公開プロフィールを取得する。
// GET /api/users/:id
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	user, err := h.service.GetProfile(r.Context(), publicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toProfileResponse(user))
}

// Withdraw はログインユーザーの退会処理を実行する。
// DELETE /api/users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Follow は指定ユーザーをフォローする。
// PUT /api/users/:id/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Follow(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow は指定ユーザーのフォローを解除する。
// DELETE /api/users/:id/follow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.Unfollow(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFollowers は指定ユーザーのフォロワー一覧を返す。
// GET /api/users/:id/followers
func (h *UserHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListFollowers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeProfileList(w, users)
}

// ListFollowing は指定ユーザーのフォロー中一覧を返す。
// GET /api/users/:id/following
func (h *UserHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListFollowing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeProfileList(w, users)
}

// toProfileResponse はmodel.Userから公開プロフィールレスポンスに変換する。
func toProfileResponse(user *model.User) profileResponse {
	return profileResponse{
		ID:       user.PublicID,
		Username: user.Username,
	}
}

// writeProfileList はユーザーのスライスを公開プロフィール一覧として書き込む。
func writeProfileList(w http.ResponseWriter, users []*model.User) {
	results := make([]profileResponse, 0, len(users))
	for _, user := range users {
		results = append(results, toProfileResponse(user))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
