package auth

import (
	"net/mail"
	"strings"
)

// 入力フィールドの長さ制限。
const (
	emailMinLength    = 5
	emailMaxLength    = 255
	passwordMinLength = 8
	passwordMaxLength = 255
	usernameMinLength = 3
	usernameMaxLength = 127
)

// LoginInput はログインフォームの入力を表す。
type LoginInput struct {
	Email    string
	Password string
}

// SignUpInput はサインアップフォームの入力を表す。
type SignUpInput struct {
	Email           string
	Username        string
	Password        string
	ConfirmPassword string
}

// ValidateLogin はログイン入力を検証し、正規化済み入力を返す。
// emailは小文字に正規化される。
// 不正な場合はフィールド名をキーとしたメッセージのマップを返す。
func ValidateLogin(input LoginInput) (LoginInput, map[string]string) {
	fields := map[string]string{}

	email, msg := validateEmail(input.Email)
	if msg != "" {
		fields["email"] = msg
	}
	if msg := validatePassword(input.Password); msg != "" {
		fields["password"] = msg
	}

	if len(fields) > 0 {
		return LoginInput{}, fields
	}
	return LoginInput{Email: email, Password: input.Password}, nil
}

// ValidateSignUp はサインアップ入力を検証し、正規化済み入力を返す。
// emailとusernameは小文字に正規化される。
// 不正な場合はフィールド名をキーとしたメッセージのマップを返す。
func ValidateSignUp(input SignUpInput) (SignUpInput, map[string]string) {
	fields := map[string]string{}

	email, msg := validateEmail(input.Email)
	if msg != "" {
		fields["email"] = msg
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		fields["username"] = "ユーザー名は3文字以上127文字以下で入力してください。"
	}

	if msg := validatePassword(input.Password); msg != "" {
		fields["password"] = msg
	}
	if input.Password != input.ConfirmPassword {
		fields["confirmPassword"] = "パスワードと確認用パスワードが一致しません。"
	}

	if len(fields) > 0 {
		return SignUpInput{}, fields
	}
	return SignUpInput{
		Email:           email,
		Username:        username,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
	}, nil
}

// validateEmail はemailの形式と長さを検証し、小文字に正規化して返す。
func validateEmail(email string) (string, string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(email) < emailMinLength || len(email) > emailMaxLength {
		return "", "メールアドレスは5文字以上255文字以下で入力してください。"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "メールアドレスの形式が正しくありません。"
	}
	return email, ""
}

// validatePassword はパスワードの長さを検証する。
func validatePassword(password string) string {
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return "パスワードは8文字以上255文字以下で入力してください。"
	}
	return ""
}
