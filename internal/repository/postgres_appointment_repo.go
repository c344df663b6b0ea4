package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/amigo/internal/model"
)

// PostgresAppointmentRepo はPostgreSQLを使用した診療予約リポジトリ。
type PostgresAppointmentRepo struct {
	db *sql.DB
}

// NewPostgresAppointmentRepo はPostgresAppointmentRepoを生成する。
func NewPostgresAppointmentRepo(db *sql.DB) *PostgresAppointmentRepo {
	return &PostgresAppointmentRepo{db: db}
}

// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
func (r *PostgresAppointmentRepo) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, patient_id, clinician_id, start_time, end_time, description, notes, created_at, updated_at
		 FROM appointments WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.PatientID, &a.ClinicianID, &a.StartTime, &a.EndTime, &a.Description, &a.Notes, &a.CreatedAt, &a.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return a, nil
}

// List は全予約を作成日時順で返す。
func (r *PostgresAppointmentRepo) List(ctx context.Context) ([]*model.Appointment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_id, clinician_id, start_time, end_time, description, notes, created_at, updated_at
		 FROM appointments ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a := &model.Appointment{}
		if err := rows.Scan(&a.ID, &a.PatientID, &a.ClinicianID, &a.StartTime, &a.EndTime, &a.Description, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return appointments, nil
}

// Create は予約を作成する。外部キー制約違反はそのまま返す。
func (r *PostgresAppointmentRepo) Create(ctx context.Context, appointment *model.Appointment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO appointments (id, patient_id, clinician_id, start_time, end_time, description, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		appointment.ID, appointment.PatientID, appointment.ClinicianID,
		appointment.StartTime, appointment.EndTime, appointment.Description, appointment.Notes,
		appointment.CreatedAt, appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}
	return nil
}

// Update は予約を上書き更新する。
func (r *PostgresAppointmentRepo) Update(ctx context.Context, appointment *model.Appointment) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE appointments SET patient_id = $2, clinician_id = $3, start_time = $4, end_time = $5, description = $6, notes = $7, updated_at = $8
		 WHERE id = $1`,
		appointment.ID, appointment.PatientID, appointment.ClinicianID,
		appointment.StartTime, appointment.EndTime, appointment.Description, appointment.Notes,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

// Delete は指定IDの予約を削除する。
func (r *PostgresAppointmentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AppointmentRepository = (*PostgresAppointmentRepo)(nil)
