// Package user はユーザー管理とフォローグラフのドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/sojourn/internal/model"
	"github.com/hitoshi/sojourn/internal/repository"
)

// Service はユーザー管理のサービス層。
// プロフィール取得・退会処理・フォロー関係の操作を提供する。
type Service struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	followerRepo repository.FollowerRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	followerRepo repository.FollowerRepository,
) *Service {
	return &Service{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		followerRepo: followerRepo,
	}
}

// GetProfile は公開IDでユーザーを取得する。
func (s *Service) GetProfile(ctx context.Context, publicID string) (*model.User, error) {
	user, err := s.userRepo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: user_keys, journeys, logs, followers）
// セッションを先に削除することで、削除中のユーザーとして認証されることを防ぐ。
// locations は共有マスタとして残す。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	// 1. セッションを削除
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("セッションの削除に失敗しました: %w", err)
	}

	// 2. ユーザーを削除（user_keys, journeys, logs, followersはCASCADE削除）
	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)

	return nil
}

// Follow はfollowerが公開IDで指定したユーザーをフォローする。
// 既にフォロー済みの場合は何もしない（冪等）。
func (s *Service) Follow(ctx context.Context, followerID, followingPublicID string) error {
	target, err := s.GetProfile(ctx, followingPublicID)
	if err != nil {
		return err
	}

	if err := s.followerRepo.Create(ctx, followerID, target.ID); err != nil {
		return fmt.Errorf("フォローの作成に失敗しました: %w", err)
	}
	return nil
}

// Unfollow はfollowerが公開IDで指定したユーザーのフォローを解除する。
// フォローしていない場合も成功扱いとする（冪等）。
func (s *Service) Unfollow(ctx context.Context, followerID, followingPublicID string) error {
	target, err := s.GetProfile(ctx, followingPublicID)
	if err != nil {
		return err
	}

	if err := s.followerRepo.Delete(ctx, followerID, target.ID); err != nil {
		return fmt.Errorf("フォローの解除に失敗しました: %w", err)
	}
	return nil
}

// ListFollowers は公開IDで指定したユーザーのフォロワー一覧を返す。
func (s *Service) ListFollowers(ctx context.Context, publicID string) ([]*model.User, error) {
	target, err := s.GetProfile(ctx, publicID)
	if err != nil {
		return nil, err
	}

	users, err := s.followerRepo.ListFollowers(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロワー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// ListFollowing は公開IDで指定したユーザーのフォロー中一覧を返す。
func (s *Service) ListFollowing(ctx context.Context, publicID string) ([]*model.User, error) {
	target, err := s.GetProfile(ctx, publicID)
	if err != nil {
		return nil, err
	}

	users, err := s.followerRepo.ListFollowing(ctx, target.ID)
	if err != nil {
		return nil, fmt.Errorf("フォロー中一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}
