package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/salesdesk-api/internal/domain/entity"
	"github.com/sangkips/salesdesk-api/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]entity.IdempotencyKey
}

func newMemIdempotencyRepo() *memIdempotencyRepo {
	return &memIdempotencyRepo{keys: map[string]entity.IdempotencyKey{}}
}

func (r *memIdempotencyRepo) GetByKey(_ context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.keys[userID.String()+"/"+key]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *memIdempotencyRepo) Reserve(_ context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := ikey.UserID.String() + "/" + ikey.Key
	if _, taken := r.keys[id]; taken {
		return false, nil
	}
	r.keys[id] = *ikey
	return true, nil
}

func (r *memIdempotencyRepo) Complete(_ context.Context, ikey *entity.IdempotencyKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys[ikey.UserID.String()+"/"+ikey.Key] = *ikey
	return nil
}

func (r *memIdempotencyRepo) Release(_ context.Context, key string, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if k, ok := r.keys[userID.String()+"/"+key]; ok && k.IsPending() {
		delete(r.keys, userID.String()+"/"+key)
	}
	return nil
}

func (r *memIdempotencyRepo) DeleteExpired(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.keys {
		if v.IsExpired() {
			delete(r.keys, k)
		}
	}
	return nil
}

func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func post(router http.Handler, body, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/invoices", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	repo := newMemIdempotencyRepo()
	calls := 0

	router := gin.New()
	router.POST("/invoices", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: repo, Required: true}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"call": calls})
	})

	first := post(router, `{"a":1}`, "key-1")
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d", first.Code)
	}

	second := post(router, `{"a":1}`, "key-1")
	if second.Code != http.StatusCreated {
		t.Fatalf("replay status = %d", second.Code)
	}
	if second.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Error("replay header missing")
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body %q, want %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}

	mismatch := post(router, `{"a":2}`, "key-1")
	if mismatch.Code != http.StatusUnprocessableEntity {
		t.Errorf("reused key with another body: status = %d, want 422", mismatch.Code)
	}
}

func TestIdempotencyRequiredKey(t *testing.T) {
	router := gin.New()
	router.POST("/invoices", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: newMemIdempotencyRepo(), Required: true}), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	if w := post(router, `{}`, ""); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestIdempotencyOptionalKeyPassesThrough(t *testing.T) {
	calls := 0
	router := gin.New()
	router.POST("/invoices", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: newMemIdempotencyRepo()}), func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	post(router, `{}`, "")
	post(router, `{}`, "")
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	repo := newMemIdempotencyRepo()
	calls := 0
	router := gin.New()
	router.POST("/invoices", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: repo, Required: true}), func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	if w := post(router, `{}`, "key-2"); w.Code != http.StatusConflict {
		t.Fatalf("first status = %d", w.Code)
	}
	if w := post(router, `{}`, "key-2"); w.Code != http.StatusCreated {
		t.Fatalf("retry status = %d, want 201", w.Code)
	}
	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotencyConcurrentRequestRunsOnce(t *testing.T) {
	repo := newMemIdempotencyRepo()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	calls := 0

	router := gin.New()
	router.POST("/invoices", asUser(uuid.New()), Idempotency(IdempotencyConfig{Repo: repo, Required: true}), func(c *gin.Context) {
		calls++
		close(entered)
		<-proceed
		c.JSON(http.StatusCreated, gin.H{"invoice": "INV-1"})
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() { done <- post(router, `{"a":1}`, "key-4") }()
	<-entered

	second := post(router, `{"a":1}`, "key-4")
	if second.Code != http.StatusConflict {
		t.Errorf("concurrent duplicate: status = %d, want 409", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing on in-flight duplicate")
	}

	close(proceed)
	first := <-done
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d", first.Code)
	}

	replay := post(router, `{"a":1}`, "key-4")
	if replay.Code != http.StatusCreated || replay.Header().Get("X-Idempotency-Replayed") != "true" {
		t.Errorf("retry after completion: status = %d, replayed = %q", replay.Code, replay.Header().Get("X-Idempotency-Replayed"))
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencyExpiredKeyRunsAgain(t *testing.T) {
	repo := newMemIdempotencyRepo()
	userID := uuid.New()
	repo.keys[userID.String()+"/key-3"] = entity.IdempotencyKey{
		Key:          "key-3",
		UserID:       userID,
		ResponseCode: http.StatusCreated,
		ResponseBody: `{"old":true}`,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	calls := 0
	router := gin.New()
	router.POST("/invoices", asUser(userID), Idempotency(IdempotencyConfig{Repo: repo, Required: true}), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"new": true})
	})

	w := post(router, `{}`, "key-3")
	if calls != 1 || w.Header().Get("X-Idempotency-Replayed") != "" {
		t.Errorf("expired key was replayed: calls=%d body=%s", calls, w.Body.String())
	}
}

func TestAuthAndPermission(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour, time.Hour)

	router := gin.New()
	router.GET("/invoices", AuthMiddleware(jwtManager), RequirePermission("manage-invoices"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token := func(perms ...string) string {
		tok, err := jwtManager.GenerateAccessToken(uuid.New(), "a@example.com", "A", []string{"sales"}, perms)
		if err != nil {
			t.Fatalf("GenerateAccessToken: %v", err)
		}
		return "Bearer " + tok
	}

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"missing permission", token("manage-products"), http.StatusForbidden},
		{"allowed", token("manage-products", "manage-invoices"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestUserRateLimiter(t *testing.T) {
	rl := NewUserRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	defer rl.Stop()

	limited := uuid.New()
	router := gin.New()
	router.GET("/a", asUser(limited), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/b", asUser(uuid.New()), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	if get("/a") != http.StatusOK || get("/a") != http.StatusOK {
		t.Fatal("burst requests should pass")
	}
	if code := get("/a"); code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", code)
	}
	if code := get("/b"); code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", code)
	}
}

func TestLoggerSetsRequestID(t *testing.T) {
	router := gin.New()
	router.Use(LoggerMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	router.ServeHTTP(w, req)

	if got := w.Header().Get(RequestIDHeader); got != "req-42" {
		t.Errorf("request id header = %q, want req-42", got)
	}
}
