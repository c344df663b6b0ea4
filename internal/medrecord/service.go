// Package medrecord は診療記録のドメインロジックを提供する。
package medrecord

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
	"github.com/hitoshi/amigo/internal/security"
)

// CreateInput は診療記録作成の入力を表す。
type CreateInput struct {
	PatientID  string
	RecordData string
}

// UpdateInput は部分更新の入力を表す。nilのフィールドは変更しない。
type UpdateInput struct {
	PatientID  *string
	RecordData *string
}

// Service は診療記録のサービス層。
// record_dataは不透明なテキストとして扱うが、保存前にサニタイズを通す。
type Service struct {
	repo      repository.MedicalRecordRepository
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(repo repository.MedicalRecordRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
	}
}

// Create は診療記録を作成する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.MedicalRecord, error) {
	now := time.Now()
	record := &model.MedicalRecord{
		ID:         uuid.New().String(),
		PatientID:  in.PatientID,
		RecordData: s.sanitizer.Sanitize(in.RecordData),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idが存在しません")
		}
		return nil, fmt.Errorf("failed to create medical record: %w", err)
	}

	return record, nil
}

// List は全診療記録を返す。
func (s *Service) List(ctx context.Context) ([]*model.MedicalRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

// Get は指定IDの診療記録を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.MedicalRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find medical record: %w", err)
	}
	if record == nil {
		return nil, model.NewMedicalRecordNotFoundError(id)
	}
	return record, nil
}

// Update は提供されたフィールドのみを適用する部分更新を行う。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.MedicalRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find medical record: %w", err)
	}
	if record == nil {
		return nil, model.NewMedicalRecordNotFoundError(id)
	}

	if in.PatientID != nil {
		record.PatientID = *in.PatientID
	}
	if in.RecordData != nil {
		record.RecordData = s.sanitizer.Sanitize(*in.RecordData)
	}
	record.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, record); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idが存在しません")
		}
		return nil, fmt.Errorf("failed to update medical record: %w", err)
	}

	return record, nil
}

// Delete は指定IDの診療記録を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find medical record: %w", err)
	}
	if record == nil {
		return model.NewMedicalRecordNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}

	return nil
}
