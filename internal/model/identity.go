// Package model はドメインモデルを定義する。
package model

import "time"

// Role は利用者の種別を表す判別子。
// 基底レコードに格納され、どのロール拡張を読み書きするかを決定する。
type Role string

const (
	// RolePatient は患者を示す。
	RolePatient Role = "patient"
	// RoleClinician は臨床医を示す。
	RoleClinician Role = "clinician"
	// RoleClinicianSuperuser はスーパーユーザー権限を持つ臨床医を示す。
	// 臨床医の拡張レコードに加えてマーカーレコードを持つ。
	RoleClinicianSuperuser Role = "clinician_superuser"
)

// IsValid はロールが定義済みのものであるかを返す。
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleClinician, RoleClinicianSuperuser:
		return true
	}
	return false
}

// Identity は全ロール共通の基底ユーザーレコードを表す。
// ロール固有の属性はRoleの値に応じてPatientまたはClinicianに格納される。
// emailは全ロールを通じてグローバルに一意であり、Roleは作成後に変更できない。
type Identity struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	IsActive     bool
	DateOfBirth  time.Time
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// ロール拡張。Roleに対応する側のみが非nilとなる。
	// clinician_superuserの場合はClinicianが非nilとなる。
	Patient   *PatientProfile
	Clinician *ClinicianProfile
}

// PatientProfile は患者固有の属性を表す。usersと同一IDで1:1に紐付く。
type PatientProfile struct {
	UserID           string
	Gender           string
	PhoneNumber      string
	EmergencyContact string
}

// ClinicianProfile は臨床医固有の属性を表す。usersと同一IDで1:1に紐付く。
// clinician_superuserもこのレコードを持ち、追加でマーカーレコードが存在する。
type ClinicianProfile struct {
	UserID         string
	Specialization string
	LicenseNumber  string
}
