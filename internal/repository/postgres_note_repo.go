package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/amigo/internal/model"
)

// PostgresNoteRepo はPostgreSQLを使用したメモリポジトリ。
type PostgresNoteRepo struct {
	db *sql.DB
}

// NewPostgresNoteRepo はPostgresNoteRepoを生成する。
func NewPostgresNoteRepo(db *sql.DB) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: db}
}

// FindByID は指定IDのメモを取得する。見つからない場合はnilを返す。
func (r *PostgresNoteRepo) FindByID(ctx context.Context, id string) (*model.Note, error) {
	n := &model.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, author_id, patient_id, note_content, date, created_at, updated_at
		 FROM notes WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.AuthorID, &n.PatientID, &n.NoteContent, &n.Date, &n.CreatedAt, &n.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return n, nil
}

// List は全メモを作成日時順で返す。
func (r *PostgresNoteRepo) List(ctx context.Context) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, author_id, patient_id, note_content, date, created_at, updated_at
		 FROM notes ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		n := &model.Note{}
		if err := rows.Scan(&n.ID, &n.AuthorID, &n.PatientID, &n.NoteContent, &n.Date, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// Create はメモを作成する。外部キー制約違反はそのまま返す。
func (r *PostgresNoteRepo) Create(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (id, author_id, patient_id, note_content, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		note.ID, note.AuthorID, note.PatientID, note.NoteContent, note.Date,
		note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// Update はメモを上書き更新する。
func (r *PostgresNoteRepo) Update(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notes SET author_id = $2, patient_id = $3, note_content = $4, date = $5, updated_at = $6
		 WHERE id = $1`,
		note.ID, note.AuthorID, note.PatientID, note.NoteContent, note.Date,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// Delete は指定IDのメモを削除する。
func (r *PostgresNoteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

// compile-time interface check
var _ NoteRepository = (*PostgresNoteRepo)(nil)
