package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/samchencode/stroke-mgmt-sub000/api"
)

// HandlePanics answers a panicking request with a 500 and logs what was recovered.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		message := http.StatusText(http.StatusInternalServerError)
		if err, ok := recovered.(error); ok {
			message = err.Error()
		}

		log.Error().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("panic", fmt.Sprint(recovered)).
			Msg("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, api.Error{Error: message})
	}
}
