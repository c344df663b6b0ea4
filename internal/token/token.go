// Package token はアクセストークンの発行と検証を提供する。
//
// トークンはサーバー保持の共有鍵で署名されたJWTであり、subjectクレームに
// 利用者のメールアドレスを、expクレームに有効期限を格納する。
// サーバー側はトークンの状態を一切保持しない（ステートレス検証）。
// 失効リストは存在せず、トークンは自然な期限切れまで有効である。
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hitoshi/amigo/internal/model"
)

// Claims はアクセストークンに含まれるクレームを表す。
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer は共有鍵によるアクセストークンの発行・検証を行う。
type Issuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
}

// NewIssuer はIssuerを生成する。
// algorithmには署名アルゴリズム名（"HS256"等のHMAC系）を指定する。
// 未知のアルゴリズム名やHMAC系以外のアルゴリズムはエラーを返す。
func NewIssuer(secret, algorithm string, ttl time.Duration) (*Issuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}

	return &Issuer{
		secret: []byte(secret),
		method: method,
		ttl:    ttl,
	}, nil
}

// Issue はsubjectをsubクレームに持つ署名付きトークンを発行する。
// 有効期限は発行時刻 + TTL。
func (i *Issuer) Issue(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(i.method, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンの署名と有効期限を検証し、subjectを返す。
// 署名不一致、形式不正、期限切れ、subjectの欠落はいずれも
// InvalidTokenエラーとして扱う（失敗理由は区別しない）。
// 署名アルゴリズムは発行時のものに固定され、他のアルゴリズムで
// 署名されたトークンは拒否される。
func (i *Issuer) Verify(tokenStr string) (string, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !t.Valid {
		return "", model.NewInvalidTokenError()
	}

	if claims.Subject == "" {
		return "", model.NewInvalidTokenError()
	}

	return claims.Subject, nil
}
