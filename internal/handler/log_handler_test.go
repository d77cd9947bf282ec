package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/sojourn/internal/journal"
	"github.com/hitoshi/sojourn/internal/model"
)

// --- モック定義 ---

type mockLogService struct {
	createLogFn      func(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error)
	getLogDetailFn   func(ctx context.Context, publicID string) (*journal.LogDetail, error)
	listLogDetailsFn func(ctx context.Context, userID string) ([]*journal.LogDetail, error)
}

func (m *mockLogService) CreateLog(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error) {
	if m.createLogFn != nil {
		return m.createLogFn(ctx, userID, input)
	}
	return nil, nil
}

func (m *mockLogService) GetLogDetail(ctx context.Context, publicID string) (*journal.LogDetail, error) {
	if m.getLogDetailFn != nil {
		return m.getLogDetailFn(ctx, publicID)
	}
	return nil, nil
}

func (m *mockLogService) ListLogDetails(ctx context.Context, userID string) ([]*journal.LogDetail, error) {
	if m.listLogDetailsFn != nil {
		return m.listLogDetailsFn(ctx, userID)
	}
	return nil, nil
}

var _ LogServiceInterface = (*mockLogService)(nil)

func hakodateLogDetail(journeyPublicID string) *journal.LogDetail {
	return &journal.LogDetail{
		Log: &model.Log{
			ID:        "log-internal-1",
			PublicID:  "log000000001",
			Title:     "函館2日目",
			BodyText:  "<p>朝市に行った。</p>",
			CreatedOn: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		Location:        hakodate(),
		JourneyPublicID: journeyPublicID,
	}
}

// --- テスト ---

func TestLogHandler_Create_Returns201(t *testing.T) {
	svc := &mockLogService{
		createLogFn: func(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			if input.LocationPublicID != "hakodate0001" {
				t.Errorf("location = %q, want %q", input.LocationPublicID, "hakodate0001")
			}
			if input.JourneyPublicID != "journey00001" {
				t.Errorf("journey = %q, want %q", input.JourneyPublicID, "journey00001")
			}
			return hakodateLogDetail("journey00001").Log, nil
		},
		getLogDetailFn: func(ctx context.Context, publicID string) (*journal.LogDetail, error) {
			if publicID != "log000000001" {
				t.Errorf("publicID = %q, want %q", publicID, "log000000001")
			}
			return hakodateLogDetail("journey00001"), nil
		},
	}
	h := NewLogHandler(svc)

	body := `{"title":"函館2日目","body_text":"<p>朝市に行った。</p>","location_id":"hakodate0001","journey_id":"journey00001"}`
	w := httptest.NewRecorder()

	h.Create(w, requestAs("user-1", http.MethodPost, "/api/logs", body))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var resp logResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.ID != "log000000001" {
		t.Errorf("id = %q, want %q", resp.ID, "log000000001")
	}
	if resp.Location.Name != "函館" {
		t.Errorf("location name = %q, want %q", resp.Location.Name, "函館")
	}
	if resp.JourneyID != "journey00001" {
		t.Errorf("journey_id = %q, want %q", resp.JourneyID, "journey00001")
	}
}

func TestLogHandler_Create_StandaloneLog_OmitsJourneyID(t *testing.T) {
	svc := &mockLogService{
		createLogFn: func(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error) {
			if input.JourneyPublicID != "" {
				t.Errorf("journey = %q, want empty for standalone log", input.JourneyPublicID)
			}
			return hakodateLogDetail("").Log, nil
		},
		getLogDetailFn: func(ctx context.Context, publicID string) (*journal.LogDetail, error) {
			return hakodateLogDetail(""), nil
		},
	}
	h := NewLogHandler(svc)

	body := `{"title":"函館2日目","body_text":"<p>朝市に行った。</p>","location_id":"hakodate0001"}`
	w := httptest.NewRecorder()

	h.Create(w, requestAs("user-1", http.MethodPost, "/api/logs", body))

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	// 旅程に属さない記録ではjourney_idキー自体を省略する
	if strings.Contains(w.Body.String(), "journey_id") {
		t.Errorf("body = %s, should omit journey_id for standalone log", w.Body.String())
	}
}

func TestLogHandler_Create_NoPrincipal_Returns401(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	body := `{"title":"函館2日目","body_text":"x","location_id":"hakodate0001"}`
	req := httptest.NewRequest(http.MethodPost, "/api/logs", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Create(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLogHandler_Create_InvalidBody_Returns400(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	w := httptest.NewRecorder()
	h.Create(w, requestAs("user-1", http.MethodPost, "/api/logs", "{broken"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogHandler_Create_ValidationError_Returns400(t *testing.T) {
	svc := &mockLogService{
		createLogFn: func(ctx context.Context, userID string, input journal.LogInput) (*model.Log, error) {
			return nil, model.NewValidationFailedError(map[string]string{
				"title": "タイトルを入力してください。",
			})
		},
	}
	h := NewLogHandler(svc)

	body := `{"title":"","body_text":"x","location_id":"hakodate0001"}`
	w := httptest.NewRecorder()

	h.Create(w, requestAs("user-1", http.MethodPost, "/api/logs", body))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !strings.Contains(w.Body.String(), "VALIDATION_FAILED") {
		t.Errorf("body = %s, should contain VALIDATION_FAILED", w.Body.String())
	}
}

func TestLogHandler_Get_ReturnsDetail(t *testing.T) {
	svc := &mockLogService{
		getLogDetailFn: func(ctx context.Context, publicID string) (*journal.LogDetail, error) {
			if publicID != "log000000001" {
				t.Errorf("publicID = %q, want %q", publicID, "log000000001")
			}
			return hakodateLogDetail("journey00001"), nil
		},
	}
	r := chi.NewRouter()
	r.Get("/api/logs/{id}", NewLogHandler(svc).Get)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/log000000001", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp logResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.BodyText != "<p>朝市に行った。</p>" {
		t.Errorf("body_text = %q, want sanitized HTML", resp.BodyText)
	}
	if strings.Contains(w.Body.String(), "log-internal-1") {
		t.Error("response must not expose internal ID")
	}
}

func TestLogHandler_Get_NotFound_Returns404(t *testing.T) {
	svc := &mockLogService{
		getLogDetailFn: func(ctx context.Context, publicID string) (*journal.LogDetail, error) {
			return nil, model.NewLogNotFoundError(publicID)
		},
	}
	r := chi.NewRouter()
	r.Get("/api/logs/{id}", NewLogHandler(svc).Get)

	req := httptest.NewRequest(http.MethodGet, "/api/logs/unknownlog00", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if !strings.Contains(w.Body.String(), "LOG_NOT_FOUND") {
		t.Errorf("body = %s, should contain LOG_NOT_FOUND", w.Body.String())
	}
}

func TestLogHandler_List_ReturnsUserLogs(t *testing.T) {
	svc := &mockLogService{
		listLogDetailsFn: func(ctx context.Context, userID string) ([]*journal.LogDetail, error) {
			if userID != "user-1" {
				t.Errorf("userID = %q, want %q", userID, "user-1")
			}
			return []*journal.LogDetail{
				hakodateLogDetail("journey00001"),
				hakodateLogDetail(""),
			}, nil
		},
	}
	h := NewLogHandler(svc)

	w := httptest.NewRecorder()
	h.List(w, requestAs("user-1", http.MethodGet, "/api/logs", ""))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp []logResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("logs count = %d, want 2", len(resp))
	}
	if resp[0].JourneyID != "journey00001" {
		t.Errorf("first log journey_id = %q, want %q", resp[0].JourneyID, "journey00001")
	}
	if resp[1].JourneyID != "" {
		t.Errorf("second log journey_id = %q, want empty", resp[1].JourneyID)
	}
}

func TestLogHandler_List_NoPrincipal_Returns401(t *testing.T) {
	h := NewLogHandler(&mockLogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/logs", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
