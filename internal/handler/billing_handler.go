package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/billing"
	"github.com/hitoshi/amigo/internal/model"
)

// BillingServiceInterface は請求ハンドラーが必要とするサービスインターフェース。
type BillingServiceInterface interface {
	Create(ctx context.Context, in billing.CreateInput) (*model.Billing, error)
	List(ctx context.Context) ([]*model.Billing, error)
	Get(ctx context.Context, id string) (*model.Billing, error)
	Update(ctx context.Context, id string, in billing.UpdateInput) (*model.Billing, error)
	Delete(ctx context.Context, id string) error
}

// BillingHandler は請求レコードのHTTPハンドラー。
type BillingHandler struct {
	service BillingServiceInterface
}

// NewBillingHandler はBillingHandlerを生成する。
func NewBillingHandler(service BillingServiceInterface) *BillingHandler {
	return &BillingHandler{service: service}
}

// createBillingRequest は請求作成リクエストのボディ。
type createBillingRequest struct {
	PatientID   string  `json:"patient_id"`
	ClinicianID string  `json:"clinician_id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	IsPaid      bool    `json:"is_paid"`
}

// updateBillingRequest は請求更新リクエストのボディ。省略されたフィールドは変更しない。
type updateBillingRequest struct {
	PatientID   *string  `json:"patient_id"`
	ClinicianID *string  `json:"clinician_id"`
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	IsPaid      *bool    `json:"is_paid"`
}

// billingResponse は請求情報のAPIレスポンス。
type billingResponse struct {
	ID          string  `json:"id"`
	PatientID   string  `json:"patient_id"`
	ClinicianID string  `json:"clinician_id"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	IsPaid      bool    `json:"is_paid"`
}

// Create は請求作成を処理する。
// POST /billings/
func (h *BillingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBillingRequest
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

	date, err := parseDate(req.Date)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("dateはYYYY-MM-DD形式で指定してください"))
		return
	}

	bill, err := h.service.Create(r.Context(), billing.CreateInput{
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
		IsPaid:      req.IsPaid,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBillingResponse(bill))
}

// List は請求一覧を取得する。
// GET /billings/
func (h *BillingHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]billingResponse, 0, len(bills))
	for _, bill := range bills {
		resp = append(resp, toBillingResponse(bill))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get は請求詳細を取得する。
// GET /billings/{id}
func (h *BillingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	bill, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBillingResponse(bill))
}

// Update は請求の部分更新を処理する。
// PUT /billings/{id}
func (h *BillingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateBillingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	in := billing.UpdateInput{
		PatientID:   req.PatientID,
		ClinicianID: req.ClinicianID,
		Amount:      req.Amount,
		Description: req.Description,
		IsPaid:      req.IsPaid,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
				model.NewValidationError("dateはYYYY-MM-DD形式で指定してください"))
			return
		}
		in.Date = &date
	}

	bill, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBillingResponse(bill))
}

// Delete は請求を削除する。
// DELETE /billings/{id}
func (h *BillingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toBillingResponse はmodel.BillingからAPIレスポンスに変換する。
func toBillingResponse(bill *model.Billing) billingResponse {
	return billingResponse{
		ID:          bill.ID,
		PatientID:   bill.PatientID,
		ClinicianID: bill.ClinicianID,
		Amount:      bill.Amount,
		Date:        bill.Date.Format(dateLayout),
		Description: bill.Description,
		IsPaid:      bill.IsPaid,
	}
}
