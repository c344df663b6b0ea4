package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/appointment"
	"github.com/hitoshi/amigo/internal/model"
)

// AppointmentServiceInterface は予約ハンドラーが必要とするサービスインターフェース。
type AppointmentServiceInterface interface {
	Create(ctx context.Context, in appointment.CreateInput) (*model.Appointment, error)
	List(ctx context.Context) ([]*model.Appointment, error)
	Get(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, id string, in appointment.UpdateInput) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
}

// AppointmentHandler は診療予約のHTTPハンドラー。
type AppointmentHandler struct {
	service AppointmentServiceInterface
}

// NewAppointmentHandler はAppointmentHandlerを生成する。
func NewAppointmentHandler(service AppointmentServiceInterface) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// createAppointmentRequest は予約作成リクエストのボディ。
type createAppointmentRequest struct {
	PatientID   string    `json:"patient_id"`
	ClinicianID string    `json:"clinician_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
}

// updateAppointmentRequest は予約更新リクエストのボディ。省略されたフィールドは変更しない。
type updateAppointmentRequest struct {
	PatientID   *string    `json:"patient_id"`
	ClinicianID *string    `json:"clinician_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Description *string    `json:"description"`
	Notes       *string    `json:"notes"`
}

// appointmentResponse は予約情報のAPIレスポンス。
type appointmentResponse struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	ClinicianID string    `json:"clinician_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description"`
	Notes       string    `json:"notes"`
}

// Create は予約作成を処理する。
// POST /appointments/
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.PatientID == "" || req.ClinicianID == "" {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("patient_idとclinician_idは必須です"))
		return
	}

	appt, err := h.service.Create(r.Context(), appointment.CreateInput{
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toAppointmentResponse(appt))
}

// List は予約一覧を取得する。
// GET /appointments/
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]appointmentResponse, 0, len(appts))
	for _, appt := range appts {
		resp = append(resp, toAppointmentResponse(appt))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get は予約詳細を取得する。
// GET /appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAppointmentResponse(appt))
}

// Update は予約の部分更新を処理する。
// PUT /appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	appt, err := h.service.Update(r.Context(), id, appointment.UpdateInput{
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toAppointmentResponse(appt))
}

// Delete は予約を削除する。
// DELETE /appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toAppointmentResponse はmodel.AppointmentからAPIレスポンスに変換する。
func toAppointmentResponse(appt *model.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:          appt.ID,
		PatientID:   appt.PatientID,
		ClinicianID: appt.ClinicianID,
		StartTime:   appt.StartTime,
		EndTime:     appt.EndTime,
		Description: appt.Description,
		Notes:       appt.Notes,
	}
}
