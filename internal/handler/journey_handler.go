package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sojourn/internal/journal"
	"github.com/hitoshi/sojourn/internal/middleware"
	"github.com/hitoshi/sojourn/internal/model"
)

// JourneyServiceInterface は旅程ハンドラーが必要とするサービスインターフェース。
type JourneyServiceInterface interface {
	// CreateJourney は旅程を作成する。出発地・到着地は公開IDで指定する。
	CreateJourney(ctx context.Context, userID, title, startPublicID, endPublicID string) (*model.Journey, error)
	// GetJourneyDetail は公開IDで旅程を地点解決済みで取得する。
	GetJourneyDetail(ctx context.Context, publicID string) (*journal.JourneyDetail, error)
	// ListJourneyDetails は指定ユーザーの旅程一覧を地点解決済みで返す。
	ListJourneyDetails(ctx context.Context, userID string) ([]*journal.JourneyDetail, error)
	// ListJourneyLogDetails は指定旅程の記録一覧を時系列順で返す。
	ListJourneyLogDetails(ctx context.Context, journeyPublicID string) ([]*journal.LogDetail, error)
}

// JourneyHandler は旅程管理のHTTPハンドラー。
type JourneyHandler struct {
	service JourneyServiceInterface
}

// NewJourneyHandler はJourneyHandlerを生成する。
func NewJourneyHandler(service JourneyServiceInterface) *JourneyHandler {
	return &JourneyHandler{
		service: service,
	}
}

// createJourneyRequest は旅程作成リクエストのボディ。
type createJourneyRequest struct {
	Title           string `json:"title"`
	StartLocationID string `json:"start_location_id"`
	EndLocationID   string `json:"end_location_id"`
}

// journeyResponse は旅程情報のAPIレスポンス。
// 地点は公開IDで参照する。
type journeyResponse struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	StartLocation locationResponse `json:"start_location"`
	EndLocation   locationResponse `json:"end_location"`
}

// Create は旅程を作成する。
// POST /api/journeys
func (h *JourneyHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req createJourneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	journey, err := h.service.CreateJourney(r.Context(), userID, req.Title, req.StartLocationID, req.EndLocationID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	detail, err := h.service.GetJourneyDetail(r.Context(), journey.PublicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toJourneyResponse(detail))
}

// Get は旅程詳細を取得する。
// GET /api/journeys/:id
func (h *JourneyHandler) Get(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	detail, err := h.service.GetJourneyDetail(r.Context(), publicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toJourneyResponse(detail))
}

// List はログインユーザーの旅程一覧を返す。
// GET /api/journeys
func (h *JourneyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	details, err := h.service.ListJourneyDetails(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]journeyResponse, 0, len(details))
	for _, detail := range details {
		results = append(results, toJourneyResponse(detail))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// ListLogs は旅程に属する記録の一覧を時系列順で返す。
// GET /api/journeys/:id/logs
func (h *JourneyHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	details, err := h.service.ListJourneyLogDetails(r.Context(), publicID)
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

// toJourneyResponse はjournal.JourneyDetailからAPIレスポンスに変換する。
func toJourneyResponse(detail *journal.JourneyDetail) journeyResponse {
	return journeyResponse{
		ID:            detail.Journey.PublicID,
		Title:         detail.Journey.Title,
		StartLocation: toLocationResponse(detail.Start),
		EndLocation:   toLocationResponse(detail.End),
	}
}
