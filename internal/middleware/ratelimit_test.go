package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// testRateLimiterConfig はテスト用の小さなバースト設定を返す。
func testRateLimiterConfig(generalBurst, registerBurst int) RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(1.0 / 60.0), // 補充がテスト中に起きない程度に遅く
		GeneralBurst:    generalBurst,
		RegisterRate:    rate.Limit(1.0 / 60.0),
		RegisterBurst:   registerBurst,
		CleanupInterval: time.Hour,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestGeneralMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
		req = req.WithContext(ContextWithSubject(req.Context(), "patient@example.com"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}
}

func TestGeneralMiddleware_BlocksOverBurst(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(2, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
		req = req.WithContext(ContextWithSubject(req.Context(), "patient@example.com"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first 2 requests should succeed, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", statuses[2], http.StatusTooManyRequests)
	}
}

func TestGeneralMiddleware_SeparateLimitsPerSubject(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	doRequest := func(subject string) int {
		req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
		req = req.WithContext(ContextWithSubject(req.Context(), subject))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := doRequest("alice@example.com"); code != http.StatusOK {
		t.Errorf("alice 1st request: status = %d, want %d", code, http.StatusOK)
	}
	if code := doRequest("alice@example.com"); code != http.StatusTooManyRequests {
		t.Errorf("alice 2nd request: status = %d, want %d", code, http.StatusTooManyRequests)
	}
	// 別のサブジェクトは独立したバケットを持つ
	if code := doRequest("bob@example.com"); code != http.StatusOK {
		t.Errorf("bob 1st request: status = %d, want %d", code, http.StatusOK)
	}

	if count := rl.GeneralLimiterCount(); count != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", count)
	}
}

func TestGeneralMiddleware_MissingSubject_Returns401(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRegistrationMiddleware_KeyedByClientIP(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	handler := rl.RegistrationMiddleware()(okHandler())

	doRequest := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	if code := doRequest("192.0.2.1:50001"); code != http.StatusOK {
		t.Errorf("1st request from IP: status = %d, want %d", code, http.StatusOK)
	}
	// 同一IPの別ポートは同じバケット
	if code := doRequest("192.0.2.1:50002"); code != http.StatusTooManyRequests {
		t.Errorf("2nd request from same IP: status = %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := doRequest("192.0.2.2:50001"); code != http.StatusOK {
		t.Errorf("1st request from other IP: status = %d, want %d", code, http.StatusOK)
	}

	if count := rl.RegisterLimiterCount(); count != 2 {
		t.Errorf("RegisterLimiterCount() = %d, want 2", count)
	}
}

func TestRateLimitResponse_HasRetryAfterHeader(t *testing.T) {
	rl := NewRateLimiter(testRateLimiterConfig(1, 1))
	defer rl.Stop()

	handler := rl.RegistrationMiddleware()(okHandler())

	var w *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/users/", nil)
		req.RemoteAddr = "192.0.2.1:50001"
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
	}

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want %q", got, "application/json")
	}
}

func TestCleanup_RemovesStaleEntries(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(1),
		GeneralBurst:    1,
		RegisterRate:    rate.Limit(1),
		RegisterBurst:   1,
		CleanupInterval: time.Hour,
	})
	defer rl.Stop()

	rl.getOrCreateLimiter(&rl.generalMu, rl.generalLimiters, "stale@example.com", rl.config.GeneralRate, rl.config.GeneralBurst)

	// 最終アクセス時刻をTTL超過まで巻き戻す
	rl.generalMu.Lock()
	rl.generalLimiters["stale@example.com"].lastAccess = time.Now().Add(-3 * time.Hour)
	rl.generalMu.Unlock()

	rl.cleanup()

	if count := rl.GeneralLimiterCount(); count != 0 {
		t.Errorf("GeneralLimiterCount() after cleanup = %d, want 0", count)
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	if config.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", config.GeneralBurst)
	}
	if config.RegisterBurst != 10 {
		t.Errorf("RegisterBurst = %d, want 10", config.RegisterBurst)
	}
	if config.CleanupInterval != 5*time.Minute {
		t.Errorf("CleanupInterval = %v, want 5m", config.CleanupInterval)
	}
}
