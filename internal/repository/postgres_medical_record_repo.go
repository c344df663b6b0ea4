package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/amigo/internal/model"
)

// PostgresMedicalRecordRepo はPostgreSQLを使用した診療記録リポジトリ。
type PostgresMedicalRecordRepo struct {
	db *sql.DB
}

// NewPostgresMedicalRecordRepo はPostgresMedicalRecordRepoを生成する。
func NewPostgresMedicalRecordRepo(db *sql.DB) *PostgresMedicalRecordRepo {
	return &PostgresMedicalRecordRepo{db: db}
}

// FindByID は指定IDの診療記録を取得する。見つからない場合はnilを返す。
func (r *PostgresMedicalRecordRepo) FindByID(ctx context.Context, id string) (*model.MedicalRecord, error) {
	m := &model.MedicalRecord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, patient_id, record_data, created_at, updated_at
		 FROM medical_records WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.PatientID, &m.RecordData, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find medical record: %w", err)
	}

	return m, nil
}

// List は全診療記録を作成日時順で返す。
func (r *PostgresMedicalRecordRepo) List(ctx context.Context) ([]*model.MedicalRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_id, record_data, created_at, updated_at
		 FROM medical_records ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	defer rows.Close()

	var records []*model.MedicalRecord
	for rows.Next() {
		m := &model.MedicalRecord{}
		if err := rows.Scan(&m.ID, &m.PatientID, &m.RecordData, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan medical record: %w", err)
		}
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medical records: %w", err)
	}

	return records, nil
}

// Create は診療記録を作成する。外部キー制約違反はそのまま返す。
func (r *PostgresMedicalRecordRepo) Create(ctx context.Context, record *model.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medical_records (id, patient_id, record_data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.PatientID, record.RecordData, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert medical record: %w", err)
	}
	return nil
}

// Update は診療記録を上書き更新する。
func (r *PostgresMedicalRecordRepo) Update(ctx context.Context, record *model.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE medical_records SET patient_id = $2, record_data = $3, updated_at = $4
		 WHERE id = $1`,
		record.ID, record.PatientID, record.RecordData, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	return nil
}

// Delete は指定IDの診療記録を削除する。
func (r *PostgresMedicalRecordRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM medical_records WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete medical record: %w", err)
	}
	return nil
}

// compile-time interface check
var _ MedicalRecordRepository = (*PostgresMedicalRecordRepo)(nil)
