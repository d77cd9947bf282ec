// Package auth はクレデンシャル検証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/sojourn/internal/model"
	"github.com/hitoshi/sojourn/internal/publicid"
	"github.com/hitoshi/sojourn/internal/repository"
)

// bcryptCost はパスワードハッシュのコストパラメータ。
const bcryptCost = 12

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// 計測が不要な場合はnilを渡してよい。
type MetricsRecorder interface {
	RecordLogin(success bool)
	RecordSignUp()
	RecordSessionValidation(outcome string)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// ActivePeriod はセッションが無条件に有効な期間。
	// この期間を過ぎてもIdlePeriod内であれば検証時に延長される。
	ActivePeriod time.Duration
	// IdlePeriod はActiveExpires後にセッションが延長可能な猶予期間。
	IdlePeriod time.Duration
}

// Service はクレデンシャル検証とセッション発行・検証・失効のビジネスロジックを提供する。
// 長寿命の内部状態は持たず、全ての状態は永続ストアが所有する。
type Service struct {
	userRepo    repository.UserRepository
	keyRepo     repository.KeyRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
	metrics     MetricsRecorder

	// クレデンシャルが存在しない場合のタイミング攻撃対策用ダミーハッシュ。
	dummyHash []byte

	// now はテストで時刻を差し替えるためのフック。
	now func() time.Time
}

// NewService はServiceを生成する。
// metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	keyRepo repository.KeyRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
	metrics MetricsRecorder,
) *Service {
	// 固定文字列のハッシュで構わない。照合には常に失敗するパスワードを使う。
	dummy, err := bcrypt.GenerateFromPassword([]byte("sojourn-dummy-credential"), bcryptCost)
	if err != nil {
		// bcrypt.GenerateFromPasswordが固定入力で失敗することはない
		panic(fmt.Sprintf("failed to generate dummy hash: %v", err))
	}

	return &Service{
		userRepo:    userRepo,
		keyRepo:     keyRepo,
		sessionRepo: sessionRepo,
		config:      config,
		metrics:     metrics,
		dummyHash:   dummy,
		now:         time.Now,
	}
}

// VerifyCredential は(provider, providerUserID)のクレデンシャルを検証し、
// 所有ユーザーのIDを返す。
// クレデンシャルが存在しない場合もダミーハッシュとの照合を行い、
// 応答時間からどちらのフィールドが誤っていたかを推測できないようにする。
// 不一致の場合はInvalidCredentialエラーを返す。
func (s *Service) VerifyCredential(ctx context.Context, provider, providerUserID, password string) (string, error) {
	key, err := s.keyRepo.FindByProviderAndProviderUserID(ctx, provider, providerUserID)
	if err != nil {
		return "", fmt.Errorf("failed to find credential: %w", err)
	}

	hashed := s.dummyHash
	if key != nil && key.HashedPassword != "" {
		hashed = []byte(key.HashedPassword)
	}

	// bcryptの照合は定数時間比較で行われる
	compareErr := bcrypt.CompareHashAndPassword(hashed, []byte(password))
	if key == nil || key.HashedPassword == "" || compareErr != nil {
		if s.metrics != nil {
			s.metrics.RecordLogin(false)
		}
		return "", model.NewInvalidCredentialError()
	}

	if s.metrics != nil {
		s.metrics.RecordLogin(true)
	}
	return key.UserID, nil
}

// SignUp は新規ユーザーとemailクレデンシャルを作成し、ユーザーIDを返す。
// email / usernameは呼び出し前に小文字へ正規化されていること。
// 既存ユーザーの事前チェックは最適化であり、重複の最終判定は
// ストアの一意制約違反（repository.ErrDuplicate）が正となる。
func (s *Service) SignUp(ctx context.Context, email, username, password string) (string, error) {
	// 事前チェック（競合時の最終判定はCreateWithKeyの一意制約が行う）
	exists, err := s.userRepo.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return "", model.NewDuplicateIdentityError()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	publicID, err := publicid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate public ID: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		PublicID:  publicID,
		Email:     email,
		Username:  username,
		CreatedAt: now,
	}
	key := &model.Key{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		Provider:       model.ProviderEmail,
		ProviderUserID: email,
		HashedPassword: string(hashed),
		CreatedAt:      now,
	}

	if err := s.userRepo.CreateWithKey(ctx, user, key); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", model.NewDuplicateIdentityError()
		}
		return "", fmt.Errorf("failed to create user and key: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSignUp()
	}
	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)

	return user.ID, nil
}

// CreateSession は指定ユーザーのセッションを発行して永続化する。
// ストア障害以外では失敗しない。
func (s *Service) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now()
	session := &model.Session{
		ID:            sessionID,
		UserID:        userID,
		ActiveExpires: now.Add(s.config.ActivePeriod),
		IdleExpires:   now.Add(s.config.ActivePeriod + s.config.IdlePeriod),
		CreatedAt:     now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// ValidateSession はセッションを検証し、有効であれば所有ユーザーとセッションを返す。
// 戻り値のrenewedは期限が延長されたかどうかを示す。
//
// 延長ポリシー: ActiveExpiresを過ぎてからIdleExpiresまでの間に検証されたセッションは、
// 新しいActiveExpires（now + ActivePeriod）とIdleExpires（now + ActivePeriod + IdlePeriod）に
// 更新される。延長の閾値はActiveExpiresそのものであり、それ以前の検証では期限を変更しない。
//
// IdleExpiresを過ぎたセッションは検証時に削除し（読み取り時GC）、nilを返す。
// セッションが存在しない・期限切れの場合はエラーではなくnilを返す。
func (s *Service) ValidateSession(ctx context.Context, sessionID string) (*model.User, *model.Session, bool, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		s.recordValidation("missing")
		return nil, nil, false, nil
	}

	now := s.now()
	renewed := false

	switch session.StateAt(now) {
	case model.SessionDead:
		// 期限切れの行は読み取り時に削除する
		if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			slog.Warn("failed to delete expired session",
				slog.String("error", err.Error()),
			)
		}
		s.recordValidation("expired")
		return nil, nil, false, nil

	case model.SessionIdle:
		session.ActiveExpires = now.Add(s.config.ActivePeriod)
		session.IdleExpires = now.Add(s.config.ActivePeriod + s.config.IdlePeriod)
		// 同一セッションの並行検証では後勝ちとなるが、どちらの更新でも有効期限は延びる
		if err := s.sessionRepo.UpdateExpiry(ctx, session.ID, session.ActiveExpires, session.IdleExpires); err != nil {
			return nil, nil, false, fmt.Errorf("failed to renew session: %w", err)
		}
		renewed = true
		s.recordValidation("renewed")

	case model.SessionActive:
		s.recordValidation("valid")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("failed to find session user: %w", err)
	}
	if user == nil {
		// ユーザーが既に削除されている場合、孤立セッションを片付ける
		if err := s.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			slog.Warn("failed to delete orphaned session",
				slog.String("error", err.Error()),
			)
		}
		s.recordValidation("missing")
		return nil, nil, false, nil
	}

	return user, session, renewed, nil
}

// InvalidateSession はセッションを失効させる。
// 既に存在しないセッションを失効させてもエラーにしない（冪等）。
func (s *Service) InvalidateSession(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// recordValidation はセッション検証結果のメトリクスを記録する。
func (s *Service) recordValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSessionValidation(outcome)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
