// Package appointment は診療予約のドメインロジックを提供する。
package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
)

// CreateInput は予約作成の入力を表す。
// start_time < end_time の検証は行わない（呼び出し側の責任）。
type CreateInput struct {
	PatientID   string
	ClinicianID string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Notes       string
}

// UpdateInput は部分更新の入力を表す。nilのフィールドは変更しない。
type UpdateInput struct {
	PatientID   *string
	ClinicianID *string
	StartTime   *time.Time
	EndTime     *time.Time
	Description *string
	Notes       *string
}

// Service は診療予約のサービス層。
type Service struct {
	repo repository.AppointmentRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

// Create は予約を作成する。参照先ユーザーの存在検証はDBの外部キー制約に委ね、
// 違反はConstraintViolationエラーとして呼び出し元に返す。
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Appointment, error) {
	now := time.Now()
	appointment := &model.Appointment{
		ID:          uuid.New().String(),
		PatientID:   in.PatientID,
		ClinicianID: in.ClinicianID,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Description: in.Description,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idまたはclinician_idが存在しません")
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	return appointment, nil
}

// List は全予約を返す。フィルタ・ページネーションは行わない。
func (s *Service) List(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Get は指定IDの予約を返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	if appointment == nil {
		return nil, model.NewAppointmentNotFoundError(id)
	}
	return appointment, nil
}

// Update は提供されたフィールドのみを適用する部分更新を行う。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	if appointment == nil {
		return nil, model.NewAppointmentNotFoundError(id)
	}

	if in.PatientID != nil {
		appointment.PatientID = *in.PatientID
	}
	if in.ClinicianID != nil {
		appointment.ClinicianID = *in.ClinicianID
	}
	if in.StartTime != nil {
		appointment.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		appointment.EndTime = *in.EndTime
	}
	if in.Description != nil {
		appointment.Description = *in.Description
	}
	if in.Notes != nil {
		appointment.Notes = *in.Notes
	}
	appointment.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, appointment); err != nil {
		if repository.IsForeignKeyViolation(err) {
			return nil, model.NewConstraintViolationError("patient_idまたはclinician_idが存在しません")
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	return appointment, nil
}

// Delete は指定IDの予約を削除する。
func (s *Service) Delete(ctx context.Context, id string) error {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find appointment: %w", err)
	}
	if appointment == nil {
		return model.NewAppointmentNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	return nil
}
