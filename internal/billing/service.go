// Package billing は請求レコードのドメインロジックを提供する。
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
)

// CreateInput は請求レコード作成の入力を表す。amountの符号は検証しない。
type CreateInput struct {
	PatientID   string
	ClinicianID string
	Amount      float64
	Date        time.Time
	Description string
	IsPaid      bool
}

// UpdateInput は部分更新の入力を表す。nilのフィールドは変更しない。
type UpdateInput struct {
	PatientID   *string
	ClinicianID *string
	Amount      *float64
	Date        *time.Time
	Description *string
	IsPaid      *bool
}

// Service は請求レコードのサービス層。
type Service struct {
	repo repository.BillingRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.BillingRepository) *Service {
	return &Service{repo: repo}
}

// Create は請求レコードを作成する。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Billing, error) {
	now := time.Now()
	billing := &model.Billing{
		ID:          uuid.New().String(),
		PatientID:   in.PatientID,
		ClinicianID: in.ClinicianID,
		Amount:      in.Amount,
		Date:        in.Date,
		Description: in.Description,
		IsPaid:      in.IsPaid,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, billing); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idまたはclinician_idが存在しません")
		}
		return nil, fmt.Errorf("failed to create billing: %w", err)
	}

	return billing, nil
}

// List は全請求レコードを返す。
func (s *Service) List(ctx context.Context) ([]*model.Billing, error) {
	billings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return billings, nil
}

// Get は指定IDの請求レコードを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Billing, error) {
	billing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find billing: %w", err)
	}
	if billing == nil {
		return nil, model.NewBillingNotFoundError(id)
	}
	return billing, nil
}

// Update は提供されたフィールドのみを適用する部分更新を行う。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Billing, error) {
	billing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find billing: %w", err)
	}
	if billing == nil {
		return nil, model.NewBillingNotFoundError(id)
	}

	if in.PatientID != nil {
		billing.PatientID = *in.PatientID
	}
	if in.ClinicianID != nil {
		billing.ClinicianID = *in.ClinicianID
	}
	if in.Amount != nil {
		billing.Amount = *in.Amount
	}
	if in.Date != nil {
		billing.Date = *in.Date
	}
	if in.Description != nil {
		billing.Description = *in.Description
	}
	if in.IsPaid != nil {
		billing.IsPaid = *in.IsPaid
	}
	billing.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, billing); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idまたはclinician_idが存在しません")
		}
		return nil, fmt.Errorf("failed to update billing: %w", err)
	}

	return billing, nil
}

// Delete は指定IDの請求レコードを削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	billing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find billing: %w", err)
	}
	if billing == nil {
		return model.NewBillingNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete billing: %w", err)
	}

	return nil
}
