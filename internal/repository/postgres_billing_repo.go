package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/amigo/internal/model"
)

// PostgresBillingRepo はPostgreSQLを使用した請求レコードリポジトリ。
type PostgresBillingRepo struct {
	db *sql.DB
}

// NewPostgresBillingRepo はPostgresBillingRepoを生成する。
func NewPostgresBillingRepo(db *sql.DB) *PostgresBillingRepo {
	return &PostgresBillingRepo{db: db}
}

// FindByID は指定IDの請求レコードを取得する。見つからない場合はnilを返す。
func (r *PostgresBillingRepo) FindByID(ctx context.Context, id string) (*model.Billing, error) {
	b := &model.Billing{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, patient_id, clinician_id, amount, date, description, is_paid, created_at, updated_at
		 FROM billings WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.PatientID, &b.ClinicianID, &b.Amount, &b.Date, &b.Description, &b.IsPaid, &b.CreatedAt, &b.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find billing: %w", err)
	}

	return b, nil
}

// List は全請求レコードを作成日時順で返す。
func (r *PostgresBillingRepo) List(ctx context.Context) ([]*model.Billing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, patient_id, clinician_id, amount, date, description, is_paid, created_at, updated_at
		 FROM billings ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	defer rows.Close()

	var billings []*model.Billing
	for rows.Next() {
		b := &model.Billing{}
		if err := rows.Scan(&b.ID, &b.PatientID, &b.ClinicianID, &b.Amount, &b.Date, &b.Description, &b.IsPaid, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan billing: %w", err)
		}
		billings = append(billings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate billings: %w", err)
	}

	return billings, nil
}

// Create は請求レコードを作成する。外部キー制約違反はそのまま返す。
func (r *PostgresBillingRepo) Create(ctx context.Context, billing *model.Billing) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO billings (id, patient_id, clinician_id, amount, date, description, is_paid, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		billing.ID, billing.PatientID, billing.ClinicianID,
		billing.Amount, billing.Date, billing.Description, billing.IsPaid,
		billing.CreatedAt, billing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert billing: %w", err)
	}
	return nil
}

// Update は請求レコードを上書き更新する。
func (r *PostgresBillingRepo) Update(ctx context.Context, billing *model.Billing) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE billings SET patient_id = $2, clinician_id = $3, amount = $4, date = $5, description = $6, is_paid = $7, updated_at = $8
		 WHERE id = $1`,
		billing.ID, billing.PatientID, billing.ClinicianID,
		billing.Amount, billing.Date, billing.Description, billing.IsPaid,
		billing.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update billing: %w", err)
	}
	return nil
}

// Delete は指定IDの請求レコードを削除する。
func (r *PostgresBillingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM billings WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete billing: %w", err)
	}
	return nil
}

// compile-time interface check
var _ BillingRepository = (*PostgresBillingRepo)(nil)
