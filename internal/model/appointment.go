// Package model はドメインモデルを定義する。
package model

import "time"

// Appointment は患者と臨床医の診療予約を表す。
// patient_id/clinician_idはともにusersへの外部キーであり、所有関係は持たない。
// start_time < end_time の検証はシステムでは行わない（呼び出し側の責任）。
type Appointment struct {
	ID          string
	PatientID   string
	ClinicianID string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
