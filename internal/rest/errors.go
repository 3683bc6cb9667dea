package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/api"
	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

// statusFor maps a read error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSourceUnavailableEmptyCache):
		return http.StatusServiceUnavailable
	case domain.IsNotFound(err), domain.IsCachedNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), api.Error{Error: err.Error()})
}
