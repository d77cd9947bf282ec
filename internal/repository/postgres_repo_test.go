package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

// 各Postgres実装がリポジトリインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ KeyRepository = (*PostgresKeyRepo)(nil)
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
	var _ LocationRepository = (*PostgresLocationRepo)(nil)
	var _ JourneyRepository = (*PostgresJourneyRepo)(nil)
	var _ LogRepository = (*PostgresLogRepo)(nil)
	var _ FollowerRepository = (*PostgresFollowerRepo)(nil)
}

// 各コンストラクタが正しく初期化されることを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Error("NewPostgresUserRepo returned nil")
	}
	if NewPostgresKeyRepo(nil) == nil {
		t.Error("NewPostgresKeyRepo returned nil")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Error("NewPostgresSessionRepo returned nil")
	}
	if NewPostgresLocationRepo(nil) == nil {
		t.Error("NewPostgresLocationRepo returned nil")
	}
	if NewPostgresJourneyRepo(nil) == nil {
		t.Error("NewPostgresJourneyRepo returned nil")
	}
	if NewPostgresLogRepo(nil) == nil {
		t.Error("NewPostgresLogRepo returned nil")
	}
	if NewPostgresFollowerRepo(nil) == nil {
		t.Error("NewPostgresFollowerRepo returned nil")
	}
}

// isUniqueViolationがPostgreSQLのunique_violationエラーコードを判定することを検証
func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("some error"), false},
		{"wrapped unique violation", wrapErr(&pq.Error{Code: "23505"}), true},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func wrapErr(err error) error {
	return fmt.Errorf("query failed: %w", err)
}

// ErrDuplicateがerrors.Isで判別できることを検証
func TestErrDuplicate_Identity(t *testing.T) {
	wrapped := fmt.Errorf("create user: %w", ErrDuplicate)
	if !errors.Is(wrapped, ErrDuplicate) {
		t.Error("wrapped ErrDuplicate should be detected with errors.Is")
	}
}
