package note

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/security"
)

// mockNoteRepo はrepository.NoteRepositoryのモック実装。
type mockNoteRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Note, error)
	listFn     func(ctx context.Context) ([]*model.Note, error)
	createFn   func(ctx context.Context, note *model.Note) error
	updateFn   func(ctx context.Context, note *model.Note) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*model.Note, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockNoteRepo) List(ctx context.Context) ([]*model.Note, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockNoteRepo) Create(ctx context.Context, note *model.Note) error {
	if m.createFn != nil {
		return m.createFn(ctx, note)
	}
	return nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *model.Note) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, note)
	}
	return nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != code {
		t.Errorf("code = %q, want %q", apiErr.Code, code)
	}
}

func TestCreate_SanitizesNoteContent(t *testing.T) {
	var created *model.Note
	repo := &mockNoteRepo{
		createFn: func(ctx context.Context, n *model.Note) error {
			created = n
			return nil
		},
	}

	svc := NewService(repo, security.NewContentSanitizer())

	n, err := svc.Create(context.Background(), CreateInput{
		AuthorID:    "clinician-1",
		PatientID:   "patient-1",
		NoteContent: `<strong>要再診</strong><script>alert(1)</script>`,
		Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if strings.Contains(n.NoteContent, "<script") {
		t.Errorf("NoteContent should be sanitized, got %q", n.NoteContent)
	}
	if !strings.Contains(n.NoteContent, "<strong>要再診</strong>") {
		t.Errorf("safe content should be preserved, got %q", n.NoteContent)
	}
}

func TestCreate_FKViolation_ReturnsConstraintViolation(t *testing.T) {
	repo := &mockNoteRepo{
		createFn: func(ctx context.Context, n *model.Note) error {
			return &pq.Error{Code: "23503"}
		},
	}

	svc := NewService(repo, security.NewContentSanitizer())

	_, err := svc.Create(context.Background(), CreateInput{
		AuthorID:  "missing-author",
		PatientID: "patient-1",
	})
	assertErrorCode(t, err, model.ErrCodeConstraintViolation)
}

func TestUpdate_PartialFields(t *testing.T) {
	stored := &model.Note{
		ID:          "note-1",
		AuthorID:    "clinician-1",
		PatientID:   "patient-1",
		NoteContent: "旧メモ",
	}

	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Note, error) {
			return stored, nil
		},
	}

	svc := NewService(repo, security.NewContentSanitizer())

	content := "新メモ"
	n, err := svc.Update(context.Background(), "note-1", UpdateInput{NoteContent: &content})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if n.NoteContent != "新メモ" {
		t.Errorf("NoteContent = %q, want %q", n.NoteContent, "新メモ")
	}
	if n.AuthorID != "clinician-1" {
		t.Errorf("AuthorID = %q, should be unchanged", n.AuthorID)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(&mockNoteRepo{}, security.NewContentSanitizer())

	_, err := svc.Get(context.Background(), "missing-id")
	assertErrorCode(t, err, model.ErrCodeNoteNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	svc := NewService(&mockNoteRepo{}, security.NewContentSanitizer())

	err := svc.Delete(context.Background(), "missing-id")
	assertErrorCode(t, err, model.ErrCodeNoteNotFound)
}
