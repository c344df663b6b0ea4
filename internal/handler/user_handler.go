package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/identity"
	"github.com/hitoshi/amigo/internal/middleware"
	"github.com/hitoshi/amigo/internal/model"
)

// dateLayout はdate_of_birthなどの日付フィールドの書式。
const dateLayout = "2006-01-02"

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Register(ctx context.Context, in identity.RegisterInput) (*model.Identity, error)
	Get(ctx context.Context, id string) (*model.Identity, error)
	Update(ctx context.Context, id string, in identity.UpdateInput) (*model.Identity, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationMetrics はユーザー登録のメトリクス記録インターフェース。
type RegistrationMetrics interface {
	RecordRegistration(role string)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	metrics RegistrationMetrics // nilの場合は記録しない
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, metrics RegistrationMetrics) *UserHandler {
	return &UserHandler{
		service: service,
		metrics: metrics,
	}
}

// registerUserRequest はユーザー登録リクエストのボディ。
// ロール固有フィールドはroleの値に対応するもののみが使用される。
type registerUserRequest struct {
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"`
	Role        string `json:"role"`

	Gender           string `json:"gender"`
	PhoneNumber      string `json:"phone_number"`
	EmergencyContact string `json:"emergency_contact"`

	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"license_number"`
}

// updateUserRequest はユーザー更新リクエストのボディ。省略されたフィールドは変更しない。
type updateUserRequest struct {
	Email       *string `json:"email"`
	FullName    *string `json:"full_name"`
	Password    *string `json:"password"`
	IsActive    *bool   `json:"is_active"`
	DateOfBirth *string `json:"date_of_birth"`

	Gender           *string `json:"gender"`
	PhoneNumber      *string `json:"phone_number"`
	EmergencyContact *string `json:"emergency_contact"`

	Specialization *string `json:"specialization"`
	LicenseNumber  *string `json:"license_number"`
}

// userResponse はユーザー情報のAPIレスポンス。
// ロール固有フィールドは該当するロールの場合のみ含まれる。
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	IsActive    bool   `json:"is_active"`
	DateOfBirth string `json:"date_of_birth"`
	Role        string `json:"role"`

	Gender           *string `json:"gender,omitempty"`
	PhoneNumber      *string `json:"phone_number,omitempty"`
	EmergencyContact *string `json:"emergency_contact,omitempty"`

	Specialization *string `json:"specialization,omitempty"`
	LicenseNumber  *string `json:"license_number,omitempty"`
}

// Register はユーザー登録を処理する。認証は不要。
// POST /users/
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r)
}

// RegisterGated は認証済みの呼び出し元を必要とするユーザー登録を処理する。
// 呼び出し元を解決できない場合は403を返す。
// POST /users/register
func (h *UserHandler) RegisterGated(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.SubjectFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusForbidden, model.NewAuthRequiredError())
		return
	}
	h.register(w, r)
}

// register は登録リクエストを検証してサービス層に委譲する。
func (h *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Email == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("emailとpasswordは必須です"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("メールアドレスの形式が不正です"))
		return
	}

	dateOfBirth, err := parseDate(req.DateOfBirth)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("date_of_birthはYYYY-MM-DD形式で指定してください"))
		return
	}

	ident, err := h.service.Register(r.Context(), identity.RegisterInput{
		Email:            req.Email,
		FullName:         req.FullName,
		Password:         req.Password,
		DateOfBirth:      dateOfBirth,
		Role:             model.Role(req.Role),
		Gender:           req.Gender,
		PhoneNumber:      req.PhoneNumber,
		EmergencyContact: req.EmergencyContact,
		Specialization:   req.Specialization,
		LicenseNumber:    req.LicenseNumber,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordRegistration(string(ident.Role))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toUserResponse(ident))
}

// Get はユーザー詳細を取得する。
// GET /users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ident, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(ident))
}

// Update はユーザーの部分更新を処理する。
// PUT /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
				model.NewValidationError("メールアドレスの形式が不正です"))
			return
		}
	}

	in := identity.UpdateInput{
		Email:            req.Email,
		FullName:         req.FullName,
		Password:         req.Password,
		IsActive:         req.IsActive,
		Gender:           req.Gender,
		PhoneNumber:      req.PhoneNumber,
		EmergencyContact: req.EmergencyContact,
		Specialization:   req.Specialization,
		LicenseNumber:    req.LicenseNumber,
	}
	if req.DateOfBirth != nil {
		dateOfBirth, err := parseDate(*req.DateOfBirth)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
				model.NewValidationError("date_of_birthはYYYY-MM-DD形式で指定してください"))
			return
		}
		in.DateOfBirth = &dateOfBirth
	}

	ident, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(ident))
}

// Delete はユーザーとそのロール拡張レコードを削除する。
// DELETE /users/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toUserResponse はmodel.IdentityからAPIレスポンスに変換する。
func toUserResponse(ident *model.Identity) userResponse {
	resp := userResponse{
		ID:          ident.ID,
		Email:       ident.Email,
		FullName:    ident.FullName,
		IsActive:    ident.IsActive,
		DateOfBirth: ident.DateOfBirth.Format(dateLayout),
		Role:        string(ident.Role),
	}

	if ident.Patient != nil {
		resp.Gender = &ident.Patient.Gender
		resp.PhoneNumber = &ident.Patient.PhoneNumber
		resp.EmergencyContact = &ident.Patient.EmergencyContact
	}
	if ident.Clinician != nil {
		resp.Specialization = &ident.Clinician.Specialization
		resp.LicenseNumber = &ident.Clinician.LicenseNumber
	}

	return resp
}

// parseDate はYYYY-MM-DD形式の日付文字列を解析する。空文字はゼロ値として扱う。
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}
