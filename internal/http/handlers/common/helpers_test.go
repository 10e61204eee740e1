package common

import (
	"math"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationFor(query string) Pagination {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return GetPagination(c)
}

func TestGetPagination(t *testing.T) {
	cases := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, DefaultLimit, 0},
		{"page=3&limit=10", 3, 10, 20},
		{"page=0&limit=-5", 1, DefaultLimit, 0},
		{"page=abc&limit=1000", 1, MaxLimit, 0},
		{"page=2&limit=1000", 2, MaxLimit, MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			p := paginationFor(tc.query)
			assert.Equal(t, tc.page, p.Page)
			assert.Equal(t, tc.limit, p.Limit)
			assert.Equal(t, tc.offset, p.Offset)
			assert.Equal(t, tc.limit+1, p.Fetch())
		})
	}
}

func TestGetPagination_HugePageKeepsOffsetPositive(t *testing.T) {
	for _, limit := range []int{1, 20, MaxLimit} {
		p := paginationFor("page=" + strconv.Itoa(math.MaxInt) + "&limit=" + strconv.Itoa(limit))

		assert.Equal(t, MaxPage, p.Page)
		assert.Positive(t, p.Offset)
		assert.LessOrEqual(t, p.Offset, math.MaxInt32)
	}
}
