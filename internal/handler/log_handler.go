package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sojourn/internal/journal"
	"github.com/hitoshi/sojourn/internal/middleware"
	"github.com/hitoshi/sojourn/internal/model"
)

// LogServiceInterface は記録ハンドラーが必要とするサービスインターフェース。
type LogServiceInterface interface {
	// CreateLog は記録を作成する。本文は保存前にサニタイズされる。
	CreateLog(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error)
	// GetLogDetail は公開IDで記録を地点・旅程解決済みで取得する。
	GetLogDetail(ctx context.Context, publicID string) (*journal.LogDetail, error)
	// ListLogDetails は指定ユーザーの記録一覧を返す。
	ListLogDetails(ctx context.Context, userID string) ([]*journal.LogDetail, error)
}

// LogHandler は記録管理のHTTPハンドラー。
type LogHandler struct {
	service LogServiceInterface
}

// NewLogHandler はLogHandlerを生成する。
func NewLogHandler(service LogServiceInterface) *LogHandler {
	return &LogHandler{
		service: service,
	}
}

// createLogRequest は記録作成リクエストのボディ。
type createLogRequest struct {
	Title      string `json:"title"`
	BodyText   string `json:"body_text"`
	ImageURL   string `json:"image_url"`
	LocationID string `json:"location_id"`
	JourneyID  string `json:"journey_id"` // 任意
}

// logResponse は記録情報のAPIレスポンス。
type logResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	BodyText  string           `json:"body_text"`
	ImageURL  string           `json:"image_url,omitempty"`
	CreatedOn time.Time        `json:"created_on"`
	Location  locationResponse `json:"location"`
	JourneyID string           `json:"journey_id,omitempty"`
}

// Create は記録を作成する。
// POST /api/logs
func (h *LogHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	log, err := h.service.CreateLog(r.Context(), userID, journal.LogInput{
		Title:            req.Title,
		BodyText:         req.BodyText,
		ImageURL:         req.ImageURL,
		LocationPublicID: req.LocationID,
		JourneyPublicID:  req.JourneyID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	detail, err := h.service.GetLogDetail(r.Context(), log.PublicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toLogResponse(detail))
}

// Get は記録詳細を取得する。
// GET /api/logs/:id
func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	detail, err := h.service.GetLogDetail(r.Context(), publicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLogResponse(detail))
}

// List はログインユーザーの記録一覧を新しい順で返す。
// GET /api/logs
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	details, err := h.service.ListLogDetails(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]logResponse, 0, len(details))
	for _, detail := range details {
		results = append(results, toLogResponse(detail))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toLogResponse はjournal.LogDetailからAPIレスポンスに変換する。
func toLogResponse(detail *journal.LogDetail) logResponse {
	return logResponse{
		ID:        detail.Log.PublicID,
		Title:     detail.Log.Title,
		BodyText:  detail.Log.BodyText,
		ImageURL:  detail.Log.ImageURL,
		CreatedOn: detail.Log.CreatedOn,
		Location:  toLocationResponse(detail.Location),
		JourneyID: detail.JourneyPublicID,
	}
}
