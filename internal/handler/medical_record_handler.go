package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/medrecord"
	"github.com/hitoshi/amigo/internal/model"
)

// MedicalRecordServiceInterface は診療記録ハンドラーが必要とするサービスインターフェース。
type MedicalRecordServiceInterface interface {
	Create(ctx context.Context, in medrecord.CreateInput) (*model.MedicalRecord, error)
	List(ctx context.Context) ([]*model.MedicalRecord, error)
	Get(ctx context.Context, id string) (*model.MedicalRecord, error)
	Update(ctx context.Context, id string, in medrecord.UpdateInput) (*model.MedicalRecord, error)
	Delete(ctx context.Context, id string) error
}

// MedicalRecordHandler は診療記録のHTTPハンドラー。
type MedicalRecordHandler struct {
	service MedicalRecordServiceInterface
}

// NewMedicalRecordHandler はMedicalRecordHandlerを生成する。
func NewMedicalRecordHandler(service MedicalRecordServiceInterface) *MedicalRecordHandler {
	return &MedicalRecordHandler{service: service}
}

// createMedicalRecordRequest は診療記録作成リクエストのボディ。
type createMedicalRecordRequest struct {
	PatientID  string `json:"patient_id"`
	RecordData string `json:"record_data"`
}

// updateMedicalRecordRequest は診療記録更新リクエストのボディ。省略されたフィールドは変更しない。
type updateMedicalRecordRequest struct {
	PatientID  *string `json:"patient_id"`
	RecordData *string `json:"record_data"`
}

// medicalRecordResponse は診療記録のAPIレスポンス。
type medicalRecordResponse struct {
	ID         string `json:"id"`
	PatientID  string `json:"patient_id"`
	RecordData string `json:"record_data"`
}

// Create は診療記録作成を処理する。
// POST /medical-records/
func (h *MedicalRecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMedicalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.PatientID == "" {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("patient_idは必須です"))
		return
	}

	record, err := h.service.Create(r.Context(), medrecord.CreateInput{
		PatientID:  req.PatientID,
		RecordData: req.RecordData,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toMedicalRecordResponse(record))
}

// List は診療記録一覧を取得する。
// GET /medical-records/
func (h *MedicalRecordHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]medicalRecordResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toMedicalRecordResponse(record))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get は診療記録詳細を取得する。
// GET /medical-records/{id}
func (h *MedicalRecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toMedicalRecordResponse(record))
}

// Update は診療記録の部分更新を処理する。
// PUT /medical-records/{id}
func (h *MedicalRecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateMedicalRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	record, err := h.service.Update(r.Context(), id, medrecord.UpdateInput{
		PatientID:  req.PatientID,
		RecordData: req.RecordData,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toMedicalRecordResponse(record))
}

// Delete は診療記録を削除する。
// DELETE /medical-records/{id}
func (h *MedicalRecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toMedicalRecordResponse はmodel.MedicalRecordからAPIレスポンスに変換する。
func toMedicalRecordResponse(record *model.MedicalRecord) medicalRecordResponse {
	return medicalRecordResponse{
		ID:         record.ID,
		PatientID:  record.PatientID,
		RecordData: record.RecordData,
	}
}
