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
	"github.com/hitoshi/amigo/internal/identity"
	"github.com/hitoshi/amigo/internal/middleware"
	"github.com/hitoshi/amigo/internal/model"
)

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error)
	getFn      func(ctx context.Context, id string) (*model.Identity, error)
	updateFn   func(ctx context.Context, id string, in identity.UpdateInput) (*model.Identity, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockUserService) Register(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
	return m.registerFn(ctx, in)
}

func (m *mockUserService) Get(ctx context.Context, id string) (*model.Identity, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserService) Update(ctx context.Context, id string, in identity.UpdateInput) (*model.Identity, error) {
	return m.updateFn(ctx, id, in)
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

// mockRegistrationMetrics はRegistrationMetricsのモック実装。
type mockRegistrationMetrics struct {
	roles []string
}

func (m *mockRegistrationMetrics) RecordRegistration(role string) {
	m.roles = append(m.roles, role)
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithURLParam はchiのURLパラメータを持つリクエストを生成する。
func requestWithURLParam(method, target, key, value string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// requestWithURLParamAndBody はchiのURLパラメータとJSONボディを持つリクエストを生成する。
func requestWithURLParamAndBody(method, target, key, value, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestUserRegister_Patient_Success(t *testing.T) {
	metrics := &mockRegistrationMetrics{}
	service := &mockUserService{
		registerFn: func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
			if in.Email != "patient@example.com" {
				t.Errorf("email = %q, want patient@example.com", in.Email)
			}
			if in.Role != model.RolePatient {
				t.Errorf("role = %q, want patient", in.Role)
			}
			if in.DateOfBirth.Format(dateLayout) != "1990-04-01" {
				t.Errorf("date_of_birth = %v, want 1990-04-01", in.DateOfBirth)
			}
			if in.Gender != "male" {
				t.Errorf("gender = %q, want male", in.Gender)
			}
			return testIdentity(), nil
		},
	}
	h := NewUserHandler(service, metrics)

	body := `{
		"email": "patient@example.com",
		"full_name": "山田 太郎",
		"password": "secret",
		"date_of_birth": "1990-04-01",
		"role": "patient",
		"gender": "male",
		"phone_number": "090-1234-5678",
		"emergency_contact": "090-8765-4321"
	}`
	w := httptest.NewRecorder()

	h.Register(w, postJSON("/users/", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp userResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Email != "patient@example.com" {
		t.Errorf("email = %q, want patient@example.com", resp.Email)
	}
	if len(metrics.roles) != 1 || metrics.roles[0] != "patient" {
		t.Errorf("recorded roles = %v, want [patient]", metrics.roles)
	}
}

func TestUserRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"missing email", `{"password": "secret", "role": "patient"}`},
		{"missing password", `{"email": "a@example.com", "role": "patient"}`},
		{"malformed email", `{"email": "not-an-email", "password": "secret", "role": "patient"}`},
		{"malformed date", `{"email": "a@example.com", "password": "secret", "role": "patient", "date_of_birth": "01/04/1990"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockUserService{
				registerFn: func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
					t.Error("Register should not be called")
					return nil, nil
				},
			}
			h := NewUserHandler(service, nil)

			w := httptest.NewRecorder()
			h.Register(w, postJSON("/users/", tt.body))

			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestUserRegister_DuplicateEmail_Returns400(t *testing.T) {
	service := &mockUserService{
		registerFn: func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
			return nil, model.NewDuplicateEmailError(in.Email)
		},
	}
	h := NewUserHandler(service, nil)

	body := `{"email": "taken@example.com", "password": "secret", "role": "patient"}`
	w := httptest.NewRecorder()

	h.Register(w, postJSON("/users/", body))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestUserRegisterGated_NoSubject_Returns403(t *testing.T) {
	service := &mockUserService{
		registerFn: func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
			t.Error("Register should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(service, nil)

	body := `{"email": "new@example.com", "password": "secret", "role": "patient"}`
	w := httptest.NewRecorder()

	h.RegisterGated(w, postJSON("/users/register", body))

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", w.Code, http.StatusForbidden)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeAuthRequired {
		t.Errorf("code = %q, want %q", resp.Code, model.ErrCodeAuthRequired)
	}
}

func TestUserRegisterGated_WithSubject_Succeeds(t *testing.T) {
	service := &mockUserService{
		registerFn: func(ctx context.Context, in identity.RegisterInput) (*model.Identity, error) {
			return testIdentity(), nil
		},
	}
	h := NewUserHandler(service, nil)

	body := `{"email": "patient@example.com", "password": "secret", "role": "patient"}`
	req := postJSON("/users/register", body)
	req = req.WithContext(middleware.ContextWithSubject(req.Context(), "super@example.com"))
	w := httptest.NewRecorder()

	h.RegisterGated(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestUserGet_Success(t *testing.T) {
	service := &mockUserService{
		getFn: func(ctx context.Context, id string) (*model.Identity, error) {
			if id != "11111111-1111-1111-1111-111111111111" {
				t.Errorf("id = %q", id)
			}
			return testIdentity(), nil
		},
	}
	h := NewUserHandler(service, nil)

	req := requestWithURLParam(http.MethodGet, "/users/11111111-1111-1111-1111-111111111111", "id", "11111111-1111-1111-1111-111111111111")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUserGet_NotFound_Returns404(t *testing.T) {
	service := &mockUserService{
		getFn: func(ctx context.Context, id string) (*model.Identity, error) {
			return nil, model.NewUserNotFoundError(id)
		},
	}
	h := NewUserHandler(service, nil)

	req := requestWithURLParam(http.MethodGet, "/users/unknown", "id", "unknown")
	w := httptest.NewRecorder()

	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestUserUpdate_PartialFields(t *testing.T) {
	service := &mockUserService{
		updateFn: func(ctx context.Context, id string, in identity.UpdateInput) (*model.Identity, error) {
			if in.FullName == nil || *in.FullName != "山田 次郎" {
				t.Errorf("full_name = %v, want 山田 次郎", in.FullName)
			}
			if in.Email != nil {
				t.Error("email should not be set")
			}
			if in.DateOfBirth == nil || in.DateOfBirth.Format(dateLayout) != "1985-12-24" {
				t.Errorf("date_of_birth = %v, want 1985-12-24", in.DateOfBirth)
			}
			return testIdentity(), nil
		},
	}
	h := NewUserHandler(service, nil)

	body := `{"full_name": "山田 次郎", "date_of_birth": "1985-12-24"}`
	req := httptest.NewRequest(http.MethodPut, "/users/x", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "11111111-1111-1111-1111-111111111111")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestUserUpdate_InvalidEmail_Returns422(t *testing.T) {
	service := &mockUserService{
		updateFn: func(ctx context.Context, id string, in identity.UpdateInput) (*model.Identity, error) {
			t.Error("Update should not be called")
			return nil, nil
		},
	}
	h := NewUserHandler(service, nil)

	body := `{"email": "not-an-email"}`
	req := httptest.NewRequest(http.MethodPut, "/users/x", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "x")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	h.Update(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestUserDelete_Returns204(t *testing.T) {
	deleted := false
	service := &mockUserService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	h := NewUserHandler(service, nil)

	req := requestWithURLParam(http.MethodDelete, "/users/x", "id", "11111111-1111-1111-1111-111111111111")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if !deleted {
		t.Error("Delete should be called")
	}
}

func TestUserDelete_NotFound_Returns404(t *testing.T) {
	service := &mockUserService{
		deleteFn: func(ctx context.Context, id string) error {
			return model.NewUserNotFoundError(id)
		},
	}
	h := NewUserHandler(service, nil)

	req := requestWithURLParam(http.MethodDelete, "/users/unknown", "id", "unknown")
	w := httptest.NewRecorder()

	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestToUserResponse_ClinicianFields(t *testing.T) {
	ident := &model.Identity{
		ID:          "22222222-2222-2222-2222-222222222222",
		Email:       "doctor@example.com",
		FullName:    "佐藤 花子",
		IsActive:    true,
		DateOfBirth: time.Date(1980, 1, 15, 0, 0, 0, 0, time.UTC),
		Role:        model.RoleClinicianSuperuser,
		Clinician: &model.ClinicianProfile{
			UserID:         "22222222-2222-2222-2222-222222222222",
			Specialization: "内科",
			LicenseNumber:  "MD-12345",
		},
	}

	resp := toUserResponse(ident)

	if resp.Role != "clinician_superuser" {
		t.Errorf("role = %q, want clinician_superuser", resp.Role)
	}
	if resp.Specialization == nil || *resp.Specialization != "内科" {
		t.Errorf("specialization = %v, want 内科", resp.Specialization)
	}
	if resp.LicenseNumber == nil || *resp.LicenseNumber != "MD-12345" {
		t.Errorf("license_number = %v, want MD-12345", resp.LicenseNumber)
	}
	if resp.Gender != nil {
		t.Error("gender should be omitted for clinician")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"valid date", "1990-04-01", time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC), false},
		{"empty is zero value", "", time.Time{}, false},
		{"wrong format", "01/04/1990", time.Time{}, true},
		{"garbage", "not-a-date", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDate failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
