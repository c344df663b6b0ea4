// Package identity はユーザー階層（基底レコード + ロール拡張）の
// 登録・取得・更新・削除のドメインロジックを提供する。
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
	"github.com/hitoshi/amigo/internal/security"
)

// RegisterInput はユーザー登録の入力を表す。
// Roleの値に応じて対応するロール固有フィールドのみが使用される。
type RegisterInput struct {
	Email       string
	FullName    string
	Password    string
	DateOfBirth time.Time
	Role        model.Role

	// patient
	Gender           string
	PhoneNumber      string
	EmergencyContact string

	// clinician / clinician_superuser
	Specialization string
	LicenseNumber  string
}

// UpdateInput は部分更新の入力を表す。nilのフィールドは変更しない。
// ロール固有フィールドは格納済みのロールに対応するもののみが適用され、
// 対応しないフィールドは無視される。ロール自体は変更できない。
type UpdateInput struct {
	Email       *string
	FullName    *string
	Password    *string
	IsActive    *bool
	DateOfBirth *time.Time

	// patient
	Gender           *string
	PhoneNumber      *string
	EmergencyContact *string

	// clinician / clinician_superuser
	Specialization *string
	LicenseNumber  *string
}

// isEmpty は全フィールドがnilであるかを返す。
func (in *UpdateInput) isEmpty() bool {
	return in.Email == nil && in.FullName == nil && in.Password == nil &&
		in.IsActive == nil && in.DateOfBirth == nil &&
		in.Gender == nil && in.PhoneNumber == nil && in.EmergencyContact == nil &&
		in.Specialization == nil && in.LicenseNumber == nil
}

// Service はユーザー階層のサービス層。
type Service struct {
	repo repository.IdentityRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.IdentityRepository) *Service {
	return &Service{repo: repo}
}

// Register は基底レコードとロール拡張レコードを1つの原子的な単位として作成する。
// メールアドレスの事前重複チェックは助言的なもので、同時登録の競合は
// DBの一意制約で直列化される。コミット時の一意制約違反も正当な
// DuplicateEmailエラーとして扱う。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.Identity, error) {
	if !in.Role.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("不明なロールです: %s", in.Role))
	}

	// 助言的な事前チェック
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError(in.Email)
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	identity := &model.Identity{
		ID:           uuid.New().String(),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: passwordHash,
		IsActive:     true,
		DateOfBirth:  in.DateOfBirth,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	switch in.Role {
	case model.RolePatient:
		identity.Patient = &model.PatientProfile{
			UserID:           identity.ID,
			Gender:           in.Gender,
			PhoneNumber:      in.PhoneNumber,
			EmergencyContact: in.EmergencyContact,
		}
	case model.RoleClinician, model.RoleClinicianSuperuser:
		identity.Clinician = &model.ClinicianProfile{
			UserID:         identity.ID,
			Specialization: in.Specialization,
			LicenseNumber:  in.LicenseNumber,
		}
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateEmailError(in.Email)
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	slog.Info("identity registered",
		slog.String("user_id", identity.ID),
		slog.String("role", string(identity.Role)),
	)

	return identity, nil
}

// Get は指定IDのユーザーをロール拡張と結合して返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return identity, nil
}

// Update は提供されたフィールドのみを適用する部分更新を行う。
// ロール固有フィールドは格納済みのロールに従って対応する拡張レコードに
// ルーティングされる。空の部分更新は何も変更せず現在のレコードを返す。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*model.Identity, error) {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return nil, model.NewUserNotFoundError(id)
	}

	if in.isEmpty() {
		return identity, nil
	}

	if in.Email != nil && *in.Email != identity.Email {
		// 助言的な事前チェック。競合はDBの一意制約で最終的に検出される。
		existing, err := s.repo.FindByEmail(ctx, *in.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			return nil, model.NewDuplicateEmailError(*in.Email)
		}
		identity.Email = *in.Email
	}
	if in.FullName != nil {
		identity.FullName = *in.FullName
	}
	if in.Password != nil {
		passwordHash, err := security.HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		identity.PasswordHash = passwordHash
	}
	if in.IsActive != nil {
		identity.IsActive = *in.IsActive
	}
	if in.DateOfBirth != nil {
		identity.DateOfBirth = *in.DateOfBirth
	}

	switch identity.Role {
	case model.RolePatient:
		if in.Gender != nil {
			identity.Patient.Gender = *in.Gender
		}
		if in.PhoneNumber != nil {
			identity.Patient.PhoneNumber = *in.PhoneNumber
		}
		if in.EmergencyContact != nil {
			identity.Patient.EmergencyContact = *in.EmergencyContact
		}
	case model.RoleClinician, model.RoleClinicianSuperuser:
		if in.Specialization != nil {
			identity.Clinician.Specialization = *in.Specialization
		}
		if in.LicenseNumber != nil {
			identity.Clinician.LicenseNumber = *in.LicenseNumber
		}
	}

	identity.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, identity); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, model.NewDuplicateEmailError(identity.Email)
		}
		return nil, fmt.Errorf("failed to update identity: %w", err)
	}

	return identity, nil
}

// Delete はロール拡張レコードを依存順で削除した後に基底レコードを削除する。
// 全体が1トランザクションで、孤立した拡張レコードは残らない。
func (s *Service) Delete(ctx context.Context, id string) error {
	identity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find identity: %w", err)
	}
	if identity == nil {
		return model.NewUserNotFoundError(id)
	}

	if err := s.repo.Delete(ctx, id, identity.Role); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	slog.Info("identity deleted",
		slog.String("user_id", id),
		slog.String("role", string(identity.Role)),
	)

	return nil
}
