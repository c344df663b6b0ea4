// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hitoshi/amigo/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// subjectContextKey はリクエストコンテキストに認証済みサブジェクト（メールアドレス）を
// 格納するためのキー。
var subjectContextKey = contextKey("subject")

// TokenVerifier はベアラートークンの検証に必要なインターフェース。
// token.Issuerの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// NewAuthMiddleware はAuthorizationヘッダーからベアラートークンを読み取り、
// 検証するミドルウェアを返す。
// 認証済みサブジェクトをリクエストコンテキストに注入する。
// 未認証リクエストには401 UnauthorizedとWWW-Authenticateヘッダーを返す。
func NewAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := verifyBearer(verifier, r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalAuthMiddleware はベアラートークンがあれば検証してサブジェクトを
// コンテキストに注入し、なければそのまま通過させるミドルウェアを返す。
// トークンが提示されたが無効な場合は401を返す。
func NewOptionalAuthMiddleware(verifier TokenVerifier) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := verifyBearer(verifier, r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), subjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifyBearer はAuthorizationヘッダーのベアラートークンを検証し、
// サブジェクトを返す。
func verifyBearer(verifier TokenVerifier, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
		return "", false
	}

	subject, err := verifier.Verify(tokenString)
	if err != nil {
		return "", false
	}
	return subject, true
}

// writeUnauthorized は401レスポンスをWWW-Authenticateヘッダー付きで書き込む。
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidTokenError())
}

// SubjectFromContext はリクエストコンテキストから認証済みサブジェクトを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func SubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectContextKey).(string)
	if !ok || subject == "" {
		return "", fmt.Errorf("subject not found in context")
	}
	return subject, nil
}

// ContextWithSubject はコンテキストにサブジェクトを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
