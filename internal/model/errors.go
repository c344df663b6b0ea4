// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, clinic, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeAppointmentNotFound   = "APPOINTMENT_NOT_FOUND"
	ErrCodeBillingNotFound       = "BILLING_NOT_FOUND"
	ErrCodeMedicalRecordNotFound = "MEDICAL_RECORD_NOT_FOUND"
	ErrCodeNoteNotFound          = "NOTE_NOT_FOUND"
	ErrCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken          = "INVALID_TOKEN"
	ErrCodeAuthRequired          = "AUTH_REQUIRED"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeConstraintViolation   = "CONSTRAINT_VIOLATION"
)

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError(userID string) *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  fmt.Sprintf("指定されたユーザーが見つかりません: %s", userID),
		Category: "clinic",
		Action:   "ユーザーIDを確認してください。",
	}
}

// NewAppointmentNotFoundError は予約未検出エラーを生成する。
func NewAppointmentNotFoundError(appointmentID string) *APIError {
	return &APIError{
		Code:     ErrCodeAppointmentNotFound,
		Message:  fmt.Sprintf("指定された予約が見つかりません: %s", appointmentID),
		Category: "clinic",
		Action:   "予約IDを確認してください。",
	}
}

// NewBillingNotFoundError は請求レコード未検出エラーを生成する。
func NewBillingNotFoundError(billingID string) *APIError {
	return &APIError{
		Code:     ErrCodeBillingNotFound,
		Message:  fmt.Sprintf("指定された請求レコードが見つかりません: %s", billingID),
		Category: "clinic",
		Action:   "請求IDを確認してください。",
	}
}

// NewMedicalRecordNotFoundError は診療記録未検出エラーを生成する。
func NewMedicalRecordNotFoundError(recordID string) *APIError {
	return &APIError{
		Code:     ErrCodeMedicalRecordNotFound,
		Message:  fmt.Sprintf("指定された診療記録が見つかりません: %s", recordID),
		Category: "clinic",
		Action:   "診療記録IDを確認してください。",
	}
}

// NewNoteNotFoundError はメモ未検出エラーを生成する。
func NewNoteNotFoundError(noteID string) *APIError {
	return &APIError{
		Code:     ErrCodeNoteNotFound,
		Message:  fmt.Sprintf("指定されたメモが見つかりません: %s", noteID),
		Category: "clinic",
		Action:   "メモIDを確認してください。",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、既存のアカウントでログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不正エラーを生成する。
// メールアドレス未登録とパスワード誤りを区別しない（アカウント列挙の防止）。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewInvalidTokenError はアクセストークン不正エラーを生成する。
// 署名不一致、形式不正、有効期限切れのいずれも同一のエラーとして扱う。
func NewInvalidTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  "アクセストークンが無効です。",
		Category: "auth",
		Action:   "再度ログインしてトークンを取得し直してください。",
	}
}

// NewAuthRequiredError は認証必須エラーを生成する。
// 認証済みの呼び出し元を必要とする操作で、呼び出し元を解決できない場合に使用する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "この操作には認証が必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewValidationError はリクエスト内容の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("リクエスト内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewConstraintViolationError は外部キー制約違反エラーを生成する。
// 存在しないユーザーIDを参照するレコードの作成時に使用する。
func NewConstraintViolationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeConstraintViolation,
		Message:  fmt.Sprintf("参照整合性制約に違反しています: %s", reason),
		Category: "validation",
		Action:   "参照しているユーザーIDが存在するか確認してください。",
	}
}
