package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/preloved-backend/internal/pkg/apperror"
)

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 1, 2)
	assert.Equal(t, []int{1, 2}, page.Items)
	assert.True(t, page.HasMore)

	page = NewPage([]int{1, 2}, 2, 2)
	assert.False(t, page.HasMore)

	page = NewPage[int](nil, 3, 2)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		expose  bool
		status  int
		message string
	}{
		{"доменная ошибка", fmt.Errorf("cart: %w", apperror.ErrOwnProduct), false, http.StatusBadRequest, apperror.ErrOwnProduct.Message},
		{"не найдено", apperror.ErrProductNotFound, false, http.StatusNotFound, "товар не найден"},
		{"внутренняя скрыта", apperror.Internal(errors.New("pq: boom")), false, http.StatusInternalServerError, "внутренняя ошибка сервера"},
		{"внутренняя в разработке", errors.New("pq: boom"), true, http.StatusInternalServerError, "pq: boom"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			Error(c, tc.err, tc.expose)

			assert.Equal(t, tc.status, w.Code)
			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}
