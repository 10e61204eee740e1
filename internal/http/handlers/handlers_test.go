package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/http/middleware"
	"github.com/ignatzorin/preloved-backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter собирает gin с обработчиком ошибок. user == nil означает анонимный запрос.
func newTestRouter(user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserIDKey, user.ID)
			c.Set(middleware.ContextUserKey, user)
			c.Next()
		})
	}
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope ответ API с отложенным разбором data.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func readEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}
