package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/note"
)

// NoteServiceInterface はメモハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	Create(ctx context.Context, in note.CreateInput) (*model.Note, error)
	List(ctx context.Context) ([]*model.Note, error)
	Get(ctx context.Context, id string) (*model.Note, error)
	Update(ctx context.Context, id string, in note.UpdateInput) (*model.Note, error)
	Delete(ctx context.Context, id string) error
}

// NoteHandler は臨床メモのHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{service: service}
}

// createNoteRequest はメモ作成リクエストのボディ。
type createNoteRequest struct {
	AuthorID    string `json:"author_id"`
	PatientID   string `json:"patient_id"`
	NoteContent string `json:"note_content"`
	Date        string `json:"date"`
}

// updateNoteRequest はメモ更新リクエストのボディ。省略されたフィールドは変更しない。
type updateNoteRequest struct {
	AuthorID    *string `json:"author_id"`
	PatientID   *string `json:"patient_id"`
	NoteContent *string `json:"note_content"`
	Date        *string `json:"date"`
}

// noteResponse はメモ情報のAPIレスポンス。
type noteResponse struct {
	ID          string `json:"id"`
	AuthorID    string `json:"author_id"`
	PatientID   string `json:"patient_id"`
	NoteContent string `json:"note_content"`
	Date        string `json:"date"`
}

// Create はメモ作成を処理する。
// POST /notes/
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.AuthorID == "" || req.PatientID == "" {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("author_idとpatient_idは必須です"))
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("dateはYYYY-MM-DD形式で指定してください"))
		return
	}

	n, err := h.service.Create(r.Context(), note.CreateInput{
		AuthorID:    req.AuthorID,
		PatientID:   req.PatientID,
		NoteContent: req.NoteContent,
		Date:        date,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toNoteResponse(n))
}

// List はメモ一覧を取得する。
// GET /notes/
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, toNoteResponse(n))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Get はメモ詳細を取得する。
// GET /notes/{id}
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toNoteResponse(n))
}

// Update はメモの部分更新を処理する。
// PUT /notes/{id}
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	in := note.UpdateInput{
		AuthorID:    req.AuthorID,
		PatientID:   req.PatientID,
		NoteContent: req.NoteContent,
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

	n, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toNoteResponse(n))
}

// Delete はメモを削除する。
// DELETE /notes/{id}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toNoteResponse はmodel.NoteからAPIレスポンスに変換する。
func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:          n.ID,
		AuthorID:    n.AuthorID,
		PatientID:   n.PatientID,
		NoteContent: n.NoteContent,
		Date:        n.Date.Format(dateLayout),
	}
}
