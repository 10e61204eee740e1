package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/http/response"
	"github.com/ignatzorin/preloved-backend/internal/models"
	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
	"github.com/ignatzorin/preloved-backend/internal/repository"
	"github.com/ignatzorin/preloved-backend/internal/service"
)

type fakeTokens map[string]uuid.UUID

func (f fakeTokens) ParseAccess(token string) (uuid.UUID, *service.AccessClaims, error) {
	id, ok := f[token]
	if !ok {
		return uuid.Nil, nil, service.ErrInvalidToken
	}
	return id, &service.AccessClaims{}, nil
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type authFixture struct {
	tokens fakeTokens
	users  fakeUsers
	member *models.User
	admin  *models.User
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		tokens: fakeTokens{},
		users:  fakeUsers{},
		member: &models.User{ID: uuid.New(), IsActive: true},
		admin:  &models.User{ID: uuid.New(), IsActive: true, IsAdmin: true},
	}
	blocked := &models.User{ID: uuid.New(), IsActive: false}
	ghost := uuid.New()

	for token, user := range map[string]*models.User{"member": f.member, "admin": f.admin, "blocked": blocked} {
		f.tokens[token] = user.ID
		f.users[user.ID] = user
	}
	f.tokens["ghost"] = ghost
	return f
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestAuthRequired(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.GET("/me", AuthRequired(f.tokens, f.users), func(c *gin.Context) {
		user, ok := CurrentUser(c)
		require.True(t, ok)
		c.String(http.StatusOK, user.ID.String())
	})

	cases := []struct {
		name    string
		headers map[string]string
		status  int
		message string
	}{
		{"без заголовка", nil, http.StatusUnauthorized, "требуется авторизация"},
		{"не bearer", map[string]string{"Authorization": "Basic abc"}, http.StatusUnauthorized, "требуется авторизация"},
		{"подделанный токен", bearer("forged"), http.StatusUnauthorized, "токен невалиден"},
		{"удалённый пользователь", bearer("ghost"), http.StatusUnauthorized, "требуется авторизация"},
		{"заблокированный", bearer("blocked"), http.StatusUnauthorized, "аккаунт деактивирован"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/me", tc.headers)
			assert.Equal(t, tc.status, w.Code)
			body := decode(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tc.message, body.Message)
		})
	}

	w := perform(r, http.MethodGet, "/me", bearer("member"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f.member.ID.String(), w.Body.String())
}

func TestAuthRequired_WebsocketQueryToken(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.GET("/ws", AuthRequired(f.tokens, f.users), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/ws?token=member", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "без upgrade токен из строки запроса не принимается")

	w = perform(r, http.MethodGet, "/ws?token=member", map[string]string{"Upgrade": "websocket"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthOptional(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.GET("/products", AuthOptional(f.tokens, f.users), func(c *gin.Context) {
		_, ok := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	for token, want := range map[string]bool{"": false, "forged": false, "blocked": false, "member": true} {
		headers := map[string]string{}
		if token != "" {
			headers = bearer(token)
		}
		w := perform(r, http.MethodGet, "/products", headers)
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]bool
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, want, body["authenticated"], token)
	}
}

func TestAdminOnly(t *testing.T) {
	f := newAuthFixture()
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.GET("/admin", AuthRequired(f.tokens, f.users), AdminOnly(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", bearer("member")).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin", bearer("admin")).Code)
}

func TestErrorHandler(t *testing.T) {
	newEngine := func(expose bool) *gin.Engine {
		r := gin.New()
		r.Use(ErrorHandler(expose))
		r.GET("/internal", func(c *gin.Context) {
			_ = c.Error(errors.New("pq: connection refused"))
		})
		r.GET("/validation", func(c *gin.Context) {
			_ = c.Error(apperror.Validation([]apperror.FieldError{{Field: "price", Message: "обязательное поле"}}))
		})
		r.GET("/conflict", func(c *gin.Context) {
			_ = c.Error(apperror.ErrOwnProduct)
		})
		return r
	}

	w := perform(newEngine(false), http.MethodGet, "/internal", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "внутренняя ошибка сервера", decode(t, w).Message)

	w = perform(newEngine(true), http.MethodGet, "/internal", nil)
	assert.Equal(t, "pq: connection refused", decode(t, w).Message)

	w = perform(newEngine(false), http.MethodGet, "/validation", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "price", body.Errors[0].Field)

	w = perform(newEngine(false), http.MethodGet, "/conflict", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.ErrOwnProduct.Message, decode(t, w).Message)
}

func TestUUIDValidator(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.GET("/products/:id/images/:imageId", UUIDValidator("id", "imageId"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/products/"+uuid.NewString()+"/images/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "imageId", body.Errors[0].Field)

	w = perform(r, http.MethodGet, "/products/"+uuid.NewString()+"/images/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(false))
	r.POST("/auth/login", RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/auth/login", nil).Code)
	w := perform(r, http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = perform(r, http.MethodPost, "/auth/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.False(t, decode(t, w).Success)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://preloved.example"}))
	r.GET("/api/products", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/api/products", map[string]string{"Origin": "https://preloved.example"})
	assert.Equal(t, "https://preloved.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodGet, "/api/products", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/api/products", map[string]string{"Origin": "https://preloved.example"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "внутренняя ошибка сервера", decode(t, w).Message)
}
