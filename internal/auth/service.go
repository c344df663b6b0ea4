// Package auth はログイン認証とアクセストークン発行を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/amigo/internal/model"
	"github.com/hitoshi/amigo/internal/repository"
	"github.com/hitoshi/amigo/internal/security"
)

// TokenIssuer はアクセストークン発行のインターフェース。
// token.Issuerの部分集合として定義する。
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	identRepo repository.IdentityRepository
	issuer    TokenIssuer
}

// NewService はServiceを生成する。
func NewService(identRepo repository.IdentityRepository, issuer TokenIssuer) *Service {
	return &Service{
		identRepo: identRepo,
		issuer:    issuer,
	}
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
// メールアドレス未登録とパスワード誤りはレスポンス上で区別しない
// （アカウント列挙を防ぐため、いずれも同一のInvalidCredentialsエラーとする）。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	identity, err := s.identRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}

	if identity == nil || !security.VerifyPassword(password, identity.PasswordHash) {
		return "", model.NewInvalidCredentialsError()
	}

	accessToken, err := s.issuer.Issue(identity.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", identity.ID),
		slog.String("role", string(identity.Role)),
	)

	return accessToken, nil
}

// CurrentIdentity はトークンのsubject（メールアドレス）から現在のユーザーを取得する。
// トークン検証後にsubjectのユーザーが削除されている場合はUserNotFoundエラーを返す。
func (s *Service) CurrentIdentity(ctx context.Context, subject string) (*model.Identity, error) {
	identity, err := s.identRepo.FindByEmail(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if identity == nil {
		return nil, model.NewUserNotFoundError(subject)
	}

	return identity, nil
}
