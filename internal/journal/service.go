// Package journal は旅行記コンテンツ（地点・旅程・記録）のドメインロジックを提供する。
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/sojourn/internal/model"
	"github.com/hitoshi/sojourn/internal/publicid"
	"github.com/hitoshi/sojourn/internal/repository"
	"github.com/hitoshi/sojourn/internal/security"
)

// Service は地点・旅程・記録のビジネスロジックを提供する。
// すべての外部参照は公開IDで行い、内部IDは外部に返さない。
type Service struct {
	locationRepo repository.LocationRepository
	journeyRepo  repository.JourneyRepository
	logRepo      repository.LogRepository
	sanitizer    security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	locationRepo repository.LocationRepository,
	journeyRepo repository.JourneyRepository,
	logRepo repository.LogRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		locationRepo: locationRepo,
		journeyRepo:  journeyRepo,
		logRepo:      logRepo,
		sanitizer:    sanitizer,
	}
}

// CreateLocation は地点を作成する。
func (s *Service) CreateLocation(ctx context.Context, name string, latitude, longitude float64) (*model.Location, error) {
	name = strings.TrimSpace(name)
	if fields := validateLocation(name, latitude, longitude); len(fields) > 0 {
		return nil, model.NewValidationFailedError(fields)
	}

	pid, err := publicid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public ID: %w", err)
	}

	location := &model.Location{
		ID:        uuid.New().String(),
		PublicID:  pid,
		Name:      name,
		Latitude:  latitude,
		Longitude: longitude,
	}

	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	return location, nil
}

// GetLocation は公開IDで地点を取得する。
func (s *Service) GetLocation(ctx context.Context, publicID string) (*model.Location, error) {
	location, err := s.locationRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to find location: %w", err)
	}
	if location == nil {
		return nil, model.NewLocationNotFoundError(publicID)
	}
	return location, nil
}

// ListLocations は全地点を返す。
func (s *Service) ListLocations(ctx context.Context) ([]*model.Location, error) {
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// CreateJourney は旅程を作成する。
// 出発地・到着地は公開IDで指定し、内部IDに解決してから保存する。
func (s *Service) CreateJourney(ctx context.Context, userID, title, startPublicID, endPublicID string) (*model.Journey, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > 127 {
		return nil, model.NewValidationFailedError(map[string]string{
			"title": "タイトルは1文字以上127文字以下で入力してください。",
		})
	}

	start, err := s.GetLocation(ctx, startPublicID)
	if err != nil {
		return nil, err
	}
	end, err := s.GetLocation(ctx, endPublicID)
	if err != nil {
		return nil, err
	}

	pid, err := publicid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public ID: %w", err)
	}

	journey := &model.Journey{
		ID:              uuid.New().String(),
		PublicID:        pid,
		Title:           title,
		StartLocationID: start.ID,
		EndLocationID:   end.ID,
		UserID:          userID,
	}

	if err := s.journeyRepo.Create(ctx, journey); err != nil {
		return nil, fmt.Errorf("failed to create journey: %w", err)
	}

	slog.Info("journey created",
		slog.String("journey_public_id", journey.PublicID),
		slog.String("user_id", userID),
	)

	return journey, nil
}

// GetJourney は公開IDで旅程を取得する。
func (s *Service) GetJourney(ctx context.Context, publicID string) (*model.Journey, error) {
	journey, err := s.journeyRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journey: %w", err)
	}
	if journey == nil {
		return nil, model.NewJourneyNotFoundError(publicID)
	}
	return journey, nil
}

// ListJourneys は指定ユーザーの旅程一覧を返す。
func (s *Service) ListJourneys(ctx context.Context, userID string) ([]*model.Journey, error) {
	journeys, err := s.journeyRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return journeys, nil
}

// LogInput は記録作成の入力を表す。
type LogInput struct {
	Title            string
	BodyText         string
	ImageURL         string
	LocationPublicID string
	JourneyPublicID  string // 任意。空なら旅程に属さない記録となる
}

// CreateLog は記録を作成する。
// 本文HTMLは保存前にサニタイズされる。
func (s *Service) CreateLog(ctx context.Context, userID string, input LogInput) (*model.Log, error) {
	title := strings.TrimSpace(input.Title)
	if fields := validateLog(title, input.ImageURL); len(fields) > 0 {
		return nil, model.NewValidationFailedError(fields)
	}

	location, err := s.GetLocation(ctx, input.LocationPublicID)
	if err != nil {
		return nil, err
	}

	journeyID := ""
	if input.JourneyPublicID != "" {
		journey, err := s.GetJourney(ctx, input.JourneyPublicID)
		if err != nil {
			return nil, err
		}
		journeyID = journey.ID
	}

	pid, err := publicid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate public ID: %w", err)
	}

	log := &model.Log{
		ID:         uuid.New().String(),
		PublicID:   pid,
		Title:      title,
		BodyText:   s.sanitizer.Sanitize(input.BodyText),
		ImageURL:   strings.TrimSpace(input.ImageURL),
		CreatedOn:  time.Now(),
		UserID:     userID,
		LocationID: location.ID,
		JourneyID:  journeyID,
	}

	if err := s.logRepo.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("failed to create log: %w", err)
	}

	slog.Info("log created",
		slog.String("log_public_id", log.PublicID),
		slog.String("user_id", userID),
	)

	return log, nil
}

// GetLog は公開IDで記録を取得する。
func (s *Service) GetLog(ctx context.Context, publicID string) (*model.Log, error) {
	log, err := s.logRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("failed to find log: %w", err)
	}
	if log == nil {
		return nil, model.NewLogNotFoundError(publicID)
	}
	return log, nil
}

// ListLogs は指定ユーザーの記録一覧を返す。
func (s *Service) ListLogs(ctx context.Context, userID string) ([]*model.Log, error) {
	logs, err := s.logRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, nil
}

// ListJourneyLogs は指定旅程の記録一覧を時系列順で返す。
func (s *Service) ListJourneyLogs(ctx context.Context, journeyPublicID string) ([]*model.Log, error) {
	journey, err := s.GetJourney(ctx, journeyPublicID)
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.ListByJourneyID(ctx, journey.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list journey logs: %w", err)
	}
	return logs, nil
}

// JourneyDetail は旅程とその出発地・到着地をまとめたビュー。
// レスポンスに内部IDを含めないため、地点は解決済みのエンティティで持つ。
type JourneyDetail struct {
	Journey *model.Journey
	Start   *model.Location
	End     *model.Location
}

// LogDetail は記録とその地点・所属旅程の公開IDをまとめたビュー。
// JourneyPublicIDは旅程に属さない記録では空となる。
type LogDetail struct {
	Log             *model.Log
	Location        *model.Location
	JourneyPublicID string
}

// GetJourneyDetail は公開IDで旅程を取得し、地点を解決して返す。
func (s *Service) GetJourneyDetail(ctx context.Context, publicID string) (*JourneyDetail, error) {
	journey, err := s.GetJourney(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return s.resolveJourney(ctx, journey, map[string]*model.Location{})
}

// ListJourneyDetails は指定ユーザーの旅程一覧を地点解決済みで返す。
func (s *Service) ListJourneyDetails(ctx context.Context, userID string) ([]*JourneyDetail, error) {
	journeys, err := s.ListJourneys(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 同一地点の重複解決を避けるため、呼び出し内でキャッシュする
	cache := map[string]*model.Location{}
	details := make([]*JourneyDetail, 0, len(journeys))
	for _, journey := range journeys {
		detail, err := s.resolveJourney(ctx, journey, cache)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// GetLogDetail は公開IDで記録を取得し、地点と旅程を解決して返す。
func (s *Service) GetLogDetail(ctx context.Context, publicID string) (*LogDetail, error) {
	log, err := s.GetLog(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return s.resolveLog(ctx, log, map[string]*model.Location{}, map[string]string{})
}

// ListLogDetails は指定ユーザーの記録一覧を地点・旅程解決済みで返す。
func (s *Service) ListLogDetails(ctx context.Context, userID string) ([]*LogDetail, error) {
	logs, err := s.ListLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolveLogs(ctx, logs)
}

// ListJourneyLogDetails は指定旅程の記録一覧を地点・旅程解決済みで返す。
func (s *Service) ListJourneyLogDetails(ctx context.Context, journeyPublicID string) ([]*LogDetail, error) {
	logs, err := s.ListJourneyLogs(ctx, journeyPublicID)
	if err != nil {
		return nil, err
	}
	return s.resolveLogs(ctx, logs)
}

// resolveJourney は旅程の出発地・到着地を内部IDから解決する。
func (s *Service) resolveJourney(ctx context.Context, journey *model.Journey, cache map[string]*model.Location) (*JourneyDetail, error) {
	start, err := s.locationByID(ctx, journey.StartLocationID, cache)
	if err != nil {
		return nil, err
	}
	end, err := s.locationByID(ctx, journey.EndLocationID, cache)
	if err != nil {
		return nil, err
	}
	return &JourneyDetail{Journey: journey, Start: start, End: end}, nil
}

// resolveLogs は記録のスライスをまとめて解決する。
func (s *Service) resolveLogs(ctx context.Context, logs []*model.Log) ([]*LogDetail, error) {
	locationCache := map[string]*model.Location{}
	journeyCache := map[string]string{}
	details := make([]*LogDetail, 0, len(logs))
	for _, log := range logs {
		detail, err := s.resolveLog(ctx, log, locationCache, journeyCache)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// resolveLog は記録の地点と所属旅程の公開IDを内部IDから解決する。
func (s *Service) resolveLog(ctx context.Context, log *model.Log, locationCache map[string]*model.Location, journeyCache map[string]string) (*LogDetail, error) {
	location, err := s.locationByID(ctx, log.LocationID, locationCache)
	if err != nil {
		return nil, err
	}

	journeyPublicID := ""
	if log.JourneyID != "" {
		if cached, ok := journeyCache[log.JourneyID]; ok {
			journeyPublicID = cached
		} else {
			journey, err := s.journeyRepo.FindByID(ctx, log.JourneyID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve journey: %w", err)
			}
			if journey != nil {
				journeyPublicID = journey.PublicID
			}
			journeyCache[log.JourneyID] = journeyPublicID
		}
	}

	return &LogDetail{Log: log, Location: location, JourneyPublicID: journeyPublicID}, nil
}

// locationByID は内部IDで地点を解決する。cacheがあればそれを優先する。
func (s *Service) locationByID(ctx context.Context, id string, cache map[string]*model.Location) (*model.Location, error) {
	if cached, ok := cache[id]; ok {
		return cached, nil
	}

	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve location: %w", err)
	}
	if location == nil {
		// FK制約により通常は到達しない
		return nil, fmt.Errorf("location %s not found", id)
	}
	cache[id] = location
	return location, nil
}

// validateLocation は地点入力を検証する。
func validateLocation(name string, latitude, longitude float64) map[string]string {
	fields := map[string]string{}
	if name == "" || len(name) > 128 {
		fields["name"] = "地点名は1文字以上128文字以下で入力してください。"
	}
	if latitude < -90 || latitude > 90 {
		fields["latitude"] = "緯度は-90から90の範囲で指定してください。"
	}
	if longitude < -180 || longitude > 180 {
		fields["longitude"] = "経度は-180から180の範囲で指定してください。"
	}
	return fields
}

// validateLog は記録入力を検証する。
func validateLog(title, imageURL string) map[string]string {
	fields := map[string]string{}
	if title == "" || len(title) > 255 {
		fields["title"] = "タイトルは1文字以上255文字以下で入力してください。"
	}
	if len(imageURL) > 255 {
		fields["imageUrl"] = "画像URLは255文字以下で入力してください。"
	}
	return fields
}
