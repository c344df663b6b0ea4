// Package model はドメインモデルを定義する。
package model

import "time"

// MedicalRecord は患者の診療記録を表す。
// record_dataは不透明なテキストとして扱い、内容のセマンティクスには関与しない。
type MedicalRecord struct {
	ID         string
	PatientID  string
	RecordData string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
