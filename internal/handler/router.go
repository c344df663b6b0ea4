package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/amigo/internal/metrics"
	"github.com/hitoshi/amigo/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス。nilの場合は/metricsと収集を無効化する。
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// サービス
	AuthService          AuthServiceInterface
	UserService          UserServiceInterface
	AppointmentService   AppointmentServiceInterface
	BillingService       BillingServiceInterface
	MedicalRecordService MedicalRecordServiceInterface
	NoteService          NoteServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Metrics
//	→ (認証ルートのみ) Auth → RateLimit(General)
//
// トークン発行（/auth/token）、オープンなユーザー登録（POST /users/）、
// /health、/metricsは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.MetricsCollector != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsCollector))
	}

	var loginMetrics LoginMetrics
	var regMetrics RegistrationMetrics
	if deps.MetricsCollector != nil {
		loginMetrics = deps.MetricsCollector
		regMetrics = deps.MetricsCollector
	}

	authHandler := NewAuthHandler(deps.AuthService, loginMetrics)
	userHandler := NewUserHandler(deps.UserService, regMetrics)
	apptHandler := NewAppointmentHandler(deps.AppointmentService)
	billingHandler := NewBillingHandler(deps.BillingService)
	recordHandler := NewMedicalRecordHandler(deps.MedicalRecordService)
	noteHandler := NewNoteHandler(deps.NoteService)

	// --- 認証不要のルート ---

	// トークン発行
	r.Post("/auth/token", authHandler.Token)

	// オープンなユーザー登録（登録専用レート制限を適用）
	r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/users/", userHandler.Register)

	// 認証済みの呼び出し元を必要とするユーザー登録。
	// トークンが提示された場合のみサブジェクトを解決し、
	// 呼び出し元の有無はハンドラー側で判定する。
	r.With(
		middleware.NewOptionalAuthMiddleware(deps.TokenVerifier),
		deps.RateLimiter.RegistrationMiddleware(),
	).Post("/users/register", userHandler.RegisterGated)

	// ヘルスチェック
	r.Get("/health", healthHandler(deps.HealthChecker))

	// Prometheusスクレイプ
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Get("/", userHandler.Get)
			r.Put("/", userHandler.Update)
			r.Delete("/", userHandler.Delete)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", apptHandler.Create)
			r.Get("/", apptHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", apptHandler.Get)
				r.Put("/", apptHandler.Update)
				r.Delete("/", apptHandler.Delete)
			})
		})

		r.Route("/billings", func(r chi.Router) {
			r.Post("/", billingHandler.Create)
			r.Get("/", billingHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", billingHandler.Get)
				r.Put("/", billingHandler.Update)
				r.Delete("/", billingHandler.Delete)
			})
		})

		r.Route("/medical-records", func(r chi.Router) {
			r.Post("/", recordHandler.Create)
			r.Get("/", recordHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recordHandler.Get)
				r.Put("/", recordHandler.Update)
				r.Delete("/", recordHandler.Delete)
			})
		})

		r.Route("/notes", func(r chi.Router) {
			r.Post("/", noteHandler.Create)
			r.Get("/", noteHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", noteHandler.Get)
				r.Put("/", noteHandler.Update)
				r.Delete("/", noteHandler.Delete)
			})
		})
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}
}
