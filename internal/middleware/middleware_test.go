package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logipro/internal/authz"
	"logipro/internal/domain/fleet"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/mocks"
	"logipro/pkg/utils"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func tokenFor(t *testing.T, id uuid.UUID, role authz.Role) string {
	t.Helper()
	pair, err := utils.GenerateTokenPair(id, "someone@logipro.test", string(role), testSecret, 1, 24)
	require.NoError(t, err)
	return pair.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) utils.Response {
	t.Helper()
	var resp utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		require.True(t, ok)
		fromCtx, ok := authz.FromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, p, fromCtx)
		c.String(http.StatusOK, string(p.Role))
	})

	userID := uuid.New()
	pair, err := utils.GenerateTokenPair(userID, "m@logipro.test", "manager", testSecret, 1, 24)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"unknown role", "Bearer " + tokenFor(t, userID, "shipper"), http.StatusUnauthorized},
		{"access token", "Bearer " + pair.AccessToken, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
			if tc.want != http.StatusOK {
				assert.False(t, decode(t, w).Success)
			}
		})
	}
}

func TestAuthorizeWithOwnership(t *testing.T) {
	owner := uuid.New()
	check := func(_ context.Context, p authz.Principal, id string) (bool, error) {
		return id == "mine" && p.UserID == owner, nil
	}
	policy := authz.Allow(authz.RoleDriver, authz.RoleManager).WithOwner(check, authz.RoleManager)

	router := gin.New()
	router.GET("/shipments/:id", AuthMiddleware(testSecret), Authorize(policy, "id"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	cases := []struct {
		name string
		user uuid.UUID
		role authz.Role
		path string
		want int
	}{
		{"owner driver", owner, authz.RoleDriver, "/shipments/mine", http.StatusNoContent},
		{"other driver", uuid.New(), authz.RoleDriver, "/shipments/mine", http.StatusForbidden},
		{"manager bypasses owner", uuid.New(), authz.RoleManager, "/shipments/theirs", http.StatusNoContent},
		{"customer role denied", owner, authz.RoleCustomer, "/shipments/mine", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, tc.user, tc.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireDriverProfile(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	withProfile := uuid.New()
	require.NoError(t, store.Drivers().Create(ctx, &fleet.Driver{UserID: withProfile, LicenseNumber: "L1", PhoneNumber: "+15550101"}))

	router := gin.New()
	router.GET("/drivers/me/shipments", AuthMiddleware(testSecret), RequireDriverProfile(store.Drivers()), func(c *gin.Context) {
		if d, ok := CurrentDriver(c); ok {
			c.String(http.StatusOK, d.UserID.String())
			return
		}
		c.String(http.StatusOK, "staff")
	})

	do := func(id uuid.UUID, role authz.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/drivers/me/shipments", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, id, role))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(withProfile, authz.RoleDriver)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, withProfile.String(), w.Body.String())

	w = do(uuid.New(), authz.RoleDriver)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "A driver profile is required", decode(t, w).Error)

	w = do(uuid.New(), authz.RoleCustomer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(uuid.New(), authz.RoleAdmin)
	assert.Equal(t, "staff", w.Body.String())
}

func TestRequireDriverProfileLookupError(t *testing.T) {
	drivers := mocks.NewMockDriverRepository(gomock.NewController(t))
	drivers.EXPECT().GetByUserID(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	router := gin.New()
	router.GET("/drivers/me/shipments", AuthMiddleware(testSecret), RequireDriverProfile(drivers), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/drivers/me/shipments", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, uuid.New(), authz.RoleDriver))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRequestIDAndSizeLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), RequestSizeLimitMiddleware(16, 0))
	router.POST("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("tiny"))
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(1, 2))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes[i] = w.Code
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), RecoveryMiddleware())
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w).Error)
}

func TestRequestIDRejectsUnsafeHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	for _, bad := range []string{"two words", strings.Repeat("a", 65), "line\nbreak"} {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, bad)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, bad, w.Body.String())
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.limiterFor("10.0.0.1")
	now = now.Add(visitorIdleTTL / 2)
	rl.limiterFor("10.0.0.2")

	now = now.Add(visitorIdleTTL/2 + time.Second)
	assert.Equal(t, 1, rl.sweep())
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestSizeLimitAllowsImageUploads(t *testing.T) {
	router := gin.New()
	router.Use(RequestSizeLimitMiddleware(64, 256))
	router.POST("/upload", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	body := strings.Repeat("x", 512)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware(true, "/media"))
	router.GET("/api/v1/users/me", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/media/pod/a.png", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, hstsValue, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/pod/a.png", nil))
	assert.Empty(t, w.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	plain := gin.New()
	plain.Use(SecurityHeadersMiddleware(false))
	plain.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	w = httptest.NewRecorder()
	plain.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
