package repository

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQLエラーコード
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// IsUniqueViolation はエラーが一意制約違反によるものかを判定する。
// 同時登録の競合はアプリケーション側の事前チェックではなくDB側の制約で
// 直列化されるため、コミット時の制約違反は正当な重複エラーとして扱う必要がある。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}

// IsForeignKeyViolation はエラーが外部キー制約違反によるものかを判定する。
// 存在しないユーザーIDを参照するレコードの挿入時に発生する。
func IsForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqForeignKeyViolation
	}
	return false
}
