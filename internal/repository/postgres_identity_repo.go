package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/amigo/internal/model"
)

// PostgresIdentityRepo はPostgreSQLを使用したユーザー階層リポジトリ。
// 基底テーブル（users）とロール拡張テーブル（patient_profiles、
// clinician_profiles、clinician_superusers）をroleの値で振り分けて読み書きする。
type PostgresIdentityRepo struct {
	db *sql.DB
}

// NewPostgresIdentityRepo はPostgresIdentityRepoを生成する。
func NewPostgresIdentityRepo(db *sql.DB) *PostgresIdentityRepo {
	return &PostgresIdentityRepo{db: db}
}

// FindByID は指定IDのユーザーをロール拡張と結合して取得する。
// 基底レコードまたは拡張レコードが見つからない場合はnilを返す。
func (r *PostgresIdentityRepo) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	return r.findOne(ctx,
		`SELECT id, email, full_name, password_hash, is_active, date_of_birth, role, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	)
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresIdentityRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	return r.findOne(ctx,
		`SELECT id, email, full_name, password_hash, is_active, date_of_birth, role, created_at, updated_at
		 FROM users WHERE email = $1`,
		email,
	)
}

// findOne は基底レコードを1件取得し、ロールに対応する拡張レコードを読み込む。
func (r *PostgresIdentityRepo) findOne(ctx context.Context, query string, arg any) (*model.Identity, error) {
	identity := &model.Identity{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&identity.ID, &identity.Email, &identity.FullName, &identity.PasswordHash,
		&identity.IsActive, &identity.DateOfBirth, &identity.Role,
		&identity.CreatedAt, &identity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return r.loadExtension(ctx, identity)
}

// loadExtension はroleの値に応じた拡張レコードを読み込む。
// 拡張レコードが存在しない場合、および未知のロールの場合はnilを返す
// （基底レコードが存在しても全体として未検出として扱う）。
func (r *PostgresIdentityRepo) loadExtension(ctx context.Context, identity *model.Identity) (*model.Identity, error) {
	switch identity.Role {
	case model.RolePatient:
		p := &model.PatientProfile{UserID: identity.ID}
		err := r.db.QueryRowContext(ctx,
			`SELECT gender, phone_number, emergency_contact FROM patient_profiles WHERE user_id = $1`,
			identity.ID,
		).Scan(&p.Gender, &p.PhoneNumber, &p.EmergencyContact)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find patient profile: %w", err)
		}
		identity.Patient = p

	case model.RoleClinician, model.RoleClinicianSuperuser:
		c := &model.ClinicianProfile{UserID: identity.ID}
		err := r.db.QueryRowContext(ctx,
			`SELECT specialization, license_number FROM clinician_profiles WHERE user_id = $1`,
			identity.ID,
		).Scan(&c.Specialization, &c.LicenseNumber)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find clinician profile: %w", err)
		}
		identity.Clinician = c

	default:
		// 未知のロール。防御的に未検出として扱う。
		return nil, nil
	}

	return identity, nil
}

// Create は基底レコードとロール拡張レコードを同一トランザクションで作成する。
func (r *PostgresIdentityRepo) Create(ctx context.Context, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 基底レコードを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, is_active, date_of_birth, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		identity.ID, identity.Email, identity.FullName, identity.PasswordHash,
		identity.IsActive, identity.DateOfBirth, identity.Role,
		identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	// ロール拡張レコードを作成
	switch identity.Role {
	case model.RolePatient:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO patient_profiles (user_id, gender, phone_number, emergency_contact)
			 VALUES ($1, $2, $3, $4)`,
			identity.ID, identity.Patient.Gender, identity.Patient.PhoneNumber, identity.Patient.EmergencyContact,
		)
		if err != nil {
			return fmt.Errorf("failed to insert patient profile: %w", err)
		}

	case model.RoleClinician, model.RoleClinicianSuperuser:
		_, err = tx.ExecContext(ctx,
			`INSERT INTO clinician_profiles (user_id, specialization, license_number)
			 VALUES ($1, $2, $3)`,
			identity.ID, identity.Clinician.Specialization, identity.Clinician.LicenseNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to insert clinician profile: %w", err)
		}

		// スーパーユーザーは臨床医プロファイルに加えてマーカーレコードを持つ
		if identity.Role == model.RoleClinicianSuperuser {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO clinician_superusers (user_id) VALUES ($1)`,
				identity.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert clinician superuser marker: %w", err)
			}
		}

	default:
		return fmt.Errorf("unknown role: %s", identity.Role)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update は基底レコードとロール拡張レコードを同一トランザクションで更新する。
func (r *PostgresIdentityRepo) Update(ctx context.Context, identity *model.Identity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET email = $2, full_name = $3, password_hash = $4, is_active = $5, date_of_birth = $6, updated_at = $7
		 WHERE id = $1`,
		identity.ID, identity.Email, identity.FullName, identity.PasswordHash,
		identity.IsActive, identity.DateOfBirth, identity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	switch identity.Role {
	case model.RolePatient:
		_, err = tx.ExecContext(ctx,
			`UPDATE patient_profiles SET gender = $2, phone_number = $3, emergency_contact = $4
			 WHERE user_id = $1`,
			identity.ID, identity.Patient.Gender, identity.Patient.PhoneNumber, identity.Patient.EmergencyContact,
		)
		if err != nil {
			return fmt.Errorf("failed to update patient profile: %w", err)
		}

	case model.RoleClinician, model.RoleClinicianSuperuser:
		_, err = tx.ExecContext(ctx,
			`UPDATE clinician_profiles SET specialization = $2, license_number = $3
			 WHERE user_id = $1`,
			identity.ID, identity.Clinician.Specialization, identity.Clinician.LicenseNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to update clinician profile: %w", err)
		}

	default:
		return fmt.Errorf("unknown role: %s", identity.Role)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete はロール拡張レコードを依存順で削除した後に基底レコードを削除する。
// スーパーユーザーはマーカーレコード → 臨床医プロファイル → 基底レコードの順。
func (r *PostgresIdentityRepo) Delete(ctx context.Context, id string, role model.Role) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch role {
	case model.RolePatient:
		if _, err := tx.ExecContext(ctx, `DELETE FROM patient_profiles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete patient profile: %w", err)
		}

	case model.RoleClinicianSuperuser:
		if _, err := tx.ExecContext(ctx, `DELETE FROM clinician_superusers WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete clinician superuser marker: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM clinician_profiles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete clinician profile: %w", err)
		}

	case model.RoleClinician:
		if _, err := tx.ExecContext(ctx, `DELETE FROM clinician_profiles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete clinician profile: %w", err)
		}

	default:
		return fmt.Errorf("unknown role: %s", role)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
