package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListResponse is the envelope for unpaginated collection endpoints
// (match results, payment history).
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// PagedResponse is the envelope for paginated listings; Total counts
// all rows matching the filter, not just the returned page.
type PagedResponse[T any] struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Data  []T   `json:"data"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func List[T any](c *gin.Context, data []T) {
	c.JSON(http.StatusOK, ListResponse[T]{
		Data:  data,
		Total: len(data),
	})
}

func Paged[T any](c *gin.Context, page, limit int, total int64, data []T) {
	c.JSON(http.StatusOK, PagedResponse[T]{
		Page:  page,
		Limit: limit,
		Total: total,
		Data:  data,
	})
}
