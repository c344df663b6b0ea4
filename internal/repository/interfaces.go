// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/amigo/internal/model"
)

// IdentityRepository はユーザー階層（基底レコード + ロール拡張）の永続化インターフェース。
type IdentityRepository interface {
	// FindByID は指定IDのユーザーをロール拡張と結合して取得する。
	// 基底レコードまたはロールに対応する拡張レコードが見つからない場合はnilを返す。
	// 未知のロールを持つレコードもnilとして扱う（防御的フォールスルー）。
	FindByID(ctx context.Context, id string) (*model.Identity, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)

	// Create は基底レコードとロール拡張レコードを同一トランザクションで作成する。
	// どちらかの挿入が失敗した場合は両方がロールバックされ、部分的な状態は残らない。
	// email一意制約違反はIsUniqueViolationで判別可能なエラーとして返す。
	Create(ctx context.Context, identity *model.Identity) error

	// Update は基底レコードとロール拡張レコードを同一トランザクションで更新する。
	// ロールはidentity.Roleの値に従う（作成後に変更されることはない）。
	Update(ctx context.Context, identity *model.Identity) error

	// Delete はロール拡張レコードを依存順（スーパーユーザーマーカー → 臨床医/患者
	// プロファイル）で削除した後に基底レコードを削除する。全体が1トランザクション。
	Delete(ctx context.Context, id string, role model.Role) error
}

// AppointmentRepository は診療予約の永続化インターフェース。
type AppointmentRepository interface {
	// FindByID は指定IDの予約を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	// List は全予約を返す。フィルタ・ページネーションは行わない。
	List(ctx context.Context) ([]*model.Appointment, error)
	// Create は予約を作成する。参照先ユーザーの存在はDBの外部キー制約のみで保証され、
	// 違反はIsForeignKeyViolationで判別可能なエラーとして返す。
	Create(ctx context.Context, appointment *model.Appointment) error
	// Update は予約を上書き更新する。
	Update(ctx context.Context, appointment *model.Appointment) error
	// Delete は指定IDの予約を削除する。
	Delete(ctx context.Context, id string) error
}

// BillingRepository は請求レコードの永続化インターフェース。
type BillingRepository interface {
	// FindByID は指定IDの請求レコードを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Billing, error)
	// List は全請求レコードを返す。
	List(ctx context.Context) ([]*model.Billing, error)
	// Create は請求レコードを作成する。
	Create(ctx context.Context, billing *model.Billing) error
	// Update は請求レコードを上書き更新する。
	Update(ctx context.Context, billing *model.Billing) error
	// Delete は指定IDの請求レコードを削除する。
	Delete(ctx context.Context, id string) error
}

// MedicalRecordRepository は診療記録の永続化インターフェース。
type MedicalRecordRepository interface {
	// FindByID は指定IDの診療記録を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.MedicalRecord, error)
	// List は全診療記録を返す。
	List(ctx context.Context) ([]*model.MedicalRecord, error)
	// Create は診療記録を作成する。
	Create(ctx context.Context, record *model.MedicalRecord) error
	// Update は診療記録を上書き更新する。
	Update(ctx context.Context, record *model.MedicalRecord) error
	// Delete は指定IDの診療記録を削除する。
	Delete(ctx context.Context, id string) error
}

// NoteRepository はメモの永続化インターフェース。
type NoteRepository interface {
	// FindByID は指定IDのメモを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Note, error)
	// List は全メモを返す。
	List(ctx context.Context) ([]*model.Note, error)
	// Create はメモを作成する。
	Create(ctx context.Context, note *model.Note) error
	// Update はメモを上書き更新する。
	Update(ctx context.Context, note *model.Note) error
	// Delete は指定IDのメモを削除する。
	Delete(ctx context.Context, id string) error
}
