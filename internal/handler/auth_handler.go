// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/sojourn/internal/auth"
	"github.com/hitoshi/sojourn/internal/middleware"
	"github.com/hitoshi/sojourn/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// VerifyCredential はクレデンシャルを検証し、所有ユーザーのIDを返す。
	VerifyCredential(ctx context.Context, provider, providerUserID, password string) (string, error)
	// SignUp は新規ユーザーとクレデンシャルを作成し、ユーザーIDを返す。
	SignUp(ctx context.Context, email, username, password string) (string, error)
	// CreateSession は指定ユーザーのセッションを発行する。
	CreateSession(ctx context.Context, userID string) (*model.Session, error)
	// InvalidateSession はセッションを失効させる（冪等）。
	InvalidateSession(ctx context.Context, sessionID string) error
}

// AuthHandler はメール+パスワード認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	cookie  middleware.CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, cookie middleware.CookieConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookie:  cookie,
	}
}

// signUpRequest はサインアップリクエストのボディ。
type signUpRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResultResponse はサインアップ・ログイン・ログアウトの結果レスポンス。
type authResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// userResponse は現在のユーザー情報のAPIレスポンス。
// 内部IDは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SignUp は新規ユーザー登録を処理し、セッションCookieを発行する。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input, fields := auth.ValidateSignUp(auth.SignUpInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if fields != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationFailedError(fields))
		return
	}

	userID, err := h.service.SignUp(r.Context(), input.Email, input.Username, input.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.SetSessionCookie(w, h.cookie, session.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(authResultResponse{
		Success: true,
		Message: "アカウントを作成しました。",
	})
}

// Login はクレデンシャルを検証し、セッションCookieを発行する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	input, fields := auth.ValidateLogin(auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if fields != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationFailedError(fields))
		return
	}

	userID, err := h.service.VerifyCredential(r.Context(), model.ProviderEmail, input.Email, input.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	session, err := h.service.CreateSession(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.SetSessionCookie(w, h.cookie, session.ID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResultResponse{
		Success: true,
		Message: "ログインしました。",
	})
}

// Logout はセッションを破棄しCookieをクリアする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		// セッションが無い場合もCookieはクリアし、失敗として応答する
		middleware.ClearSessionCookie(w, h.cookie)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(authResultResponse{Success: false})
		return
	}

	if err := h.service.InvalidateSession(r.Context(), cookie.Value); err != nil {
		// 失効に失敗してもCookieはクリアする
		slog.Error("failed to invalidate session", slog.String("error", err.Error()))
	}

	middleware.ClearSessionCookie(w, h.cookie)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(authResultResponse{Success: true})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(p.User))
}

// --- ヘルパー関数 ---

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.PublicID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

// writeInvalidRequestBody はリクエストボディの解析失敗レスポンスを書き込む。
func writeInvalidRequestBody(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// writeUnauthorized は未認証レスポンスを書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidCredential, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeDuplicateIdentity:
		return http.StatusConflict
	case model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeUserNotFound, model.ErrCodeLocationNotFound,
		model.ErrCodeJourneyNotFound, model.ErrCodeLogNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
