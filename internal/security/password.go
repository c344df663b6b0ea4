// Package security はパスワードハッシュと自由記述テキストのサニタイズを提供する。
package security

import "golang.org/x/crypto/bcrypt"

// HashPassword は平文パスワードをbcryptでハッシュ化する。
// ソルトはランダムに生成されるため、同一の平文でも呼び出しごとに異なるダイジェストを返す。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword は平文パスワードをダイジェストと照合する。
// ダイジェストに埋め込まれたソルトを用いて再計算し、定数時間で比較する。
// ダイジェストが不正な形式の場合は照合失敗として扱い、エラーにはしない。
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
