// Package note は臨床メモのドメインロジックを提供する。
package note

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
	"github.com/hitoshi/amigo/internal/security"
)

// CreateInput はメモ作成の入力を表す。
type CreateInput struct {
	AuthorID    string
	PatientID   string
	NoteContent string
	Date        time.Time
}

// UpdateInput は部分更新の入力を表す。nilのフィールドは変更しない。
type UpdateInput struct {
	AuthorID    *string
	PatientID   *string
	NoteContent *string
	Date        *time.Time
}

// Service は臨床メモのサービス層。
type Service struct {
	repo      repository.NoteRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.NoteRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create はメモを作成する。author_idとpatient_idは独立に検証される。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Note, error) {
	now := time.Now()
	note := &model.Note{
		ID:          uuid.New().String(),
		AuthorID:    in.AuthorID,
		PatientID:   in.PatientID,
		NoteContent: s.sanitizer.Sanitize(in.NoteContent),
		Date:        in.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, note); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("author_idまたはpatient_idが存在しません")
		}
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	return note, nil
}

// List は全メモを返す。
func (s *Service) List(ctx context.Context) ([]*model.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Get は指定IDのメモを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	if note == nil {
		return nil, model.NewNoteNotFoundError(id)
	}
	return note, nil
}

// Update は提供されたフィールドのみを適用する部分更新を行う。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	if note == nil {
		return nil, model.NewNoteNotFoundError(id)
	}

	if in.AuthorID != nil {
		note.AuthorID = *in.AuthorID
	}
	if in.PatientID != nil {
		note.PatientID = *in.PatientID
	}
	if in.NoteContent != nil {
		note.NoteContent = s.sanitizer.Sanitize(*in.NoteContent)
	}
	if in.Date != nil {
		note.Date = *in.Date
	}
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, note); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("author_idまたはpatient_idが存在しません")
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	return note, nil
}

// Delete は指定IDのメモを削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find note: %w", err)
	}
	if note == nil {
		return model.NewNoteNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
