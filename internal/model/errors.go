// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, journal, system
	Action   string // ユーザー向け対処方法
	Fields   map[string]string // フィールド別のバリデーションメッセージ（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"
	ErrCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeLocationNotFound  = "LOCATION_NOT_FOUND"
	ErrCodeJourneyNotFound   = "JOURNEY_NOT_FOUND"
	ErrCodeLogNotFound       = "LOG_NOT_FOUND"
)

// NewInvalidCredentialError は認証失敗エラーを生成する。
// どのフィールドが誤っていたかを特定できないよう、メッセージは意図的に曖昧にする。
func NewInvalidCredentialError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredential,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewDuplicateIdentityError はサインアップ時の重複エラーを生成する。
func NewDuplicateIdentityError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateIdentity,
		Message:  "そのメールアドレスまたはユーザー名は既に使用されています。",
		Category: "auth",
		Action:   "別のメールアドレスまたはユーザー名をお試しください。",
	}
}

// NewValidationFailedError は入力バリデーションエラーを生成する。
// fieldsにはフィールド名をキーとした個別メッセージを格納する。
func NewValidationFailedError(fields map[string]string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容に誤りがあります。",
		Category: "validation",
		Action:   "各フィールドのエラーメッセージを確認してください。",
		Fields:   fields,
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewLocationNotFoundError は地点が見つからない場合のエラーを生成する。
func NewLocationNotFoundError(publicID string) *APIError {
	return &APIError{
		Code:     ErrCodeLocationNotFound,
		Message:  fmt.Sprintf("指定された地点が見つかりません: %s", publicID),
		Category: "journal",
		Action:   "地点IDを確認してください。",
	}
}

// NewJourneyNotFoundError は旅程が見つからない場合のエラーを生成する。
func NewJourneyNotFoundError(publicID string) *APIError {
	return &APIError{
		Code:     ErrCodeJourneyNotFound,
		Message:  fmt.Sprintf("指定された旅程が見つかりません: %s", publicID),
		Category: "journal",
		Action:   "旅程IDを確認してください。",
	}
}

// NewLogNotFoundError は記録が見つからない場合のエラーを生成する。
func NewLogNotFoundError(publicID string) *APIError {
	return &APIError{
		Code:     ErrCodeLogNotFound,
		Message:  fmt.Sprintf("指定された記録が見つかりません: %s", publicID),
		Category: "journal",
		Action:   "記録IDを確認してください。",
	}
}
