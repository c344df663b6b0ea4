// Package model はドメインモデルを定義する。
package model

import "time"

// Note は臨床医が患者や治療について残すメモを表す。
// author_id/patient_idはともにusersへの外部キー。
type Note struct {
	ID          string
	AuthorID    string
	PatientID   string
	NoteContent string
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
