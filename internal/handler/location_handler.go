package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sojourn/internal/model"
)

// LocationServiceInterface は地点ハンドラーが必要とするサービスインターフェース。
type LocationServiceInterface interface {
	// CreateLocation は地点を作成する。
	CreateLocation(ctx context.Context, name string, latitude, longitude float64) (*model.Location, error)
	// GetLocation は公開IDで地点を取得する。
	GetLocation(ctx context.Context, publicID string) (*model.Location, error)
	// ListLocations は全地点を返す。
	ListLocations(ctx context.Context) ([]*model.Location, error)
}

// LocationHandler は地点管理のHTTPハンドラー。
type LocationHandler struct {
	service LocationServiceInterface
}

// NewLocationHandler はLocationHandlerを生成する。
func NewLocationHandler(service LocationServiceInterface) *LocationHandler {
	return &LocationHandler{
		service: service,
	}
}

// createLocationRequest は地点作成リクエストのボディ。
type createLocationRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// locationResponse は地点情報のAPIレスポンス。
type locationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Create は地点を作成する。
// POST /api/locations
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	location, err := h.service.CreateLocation(r.Context(), req.Name, req.Latitude, req.Longitude)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toLocationResponse(location))
}

// Get は地点詳細を取得する。
// GET /api/locations/:id
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "id")

	location, err := h.service.GetLocation(r.Context(), publicID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toLocationResponse(location))
}

// List は全地点の一覧を返す。
// GET /api/locations
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.service.ListLocations(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]locationResponse, 0, len(locations))
	for _, location := range locations {
		results = append(results, toLocationResponse(location))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// toLocationResponse はmodel.LocationからAPIレスポンスに変換する。
func toLocationResponse(location *model.Location) locationResponse {
	return locationResponse{
		ID:        location.PublicID,
		Name:      location.Name,
		Latitude:  location.Latitude,
		Longitude: location.Longitude,
	}
}
