// Package model はドメインモデルを定義する。
package model

import "time"

// Billing は診療費の請求レコードを表す。
// amountの符号は検証しない。
type Billing struct {
	ID          string
	PatientID   string
	ClinicianID string
	Amount      float64
	Date        time.Time
	Description string
	IsPaid      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
