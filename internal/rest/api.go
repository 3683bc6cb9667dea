package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/content/application"
)

// NewApi registers the content routes. Responses carry the foreground result of each
// read; refreshes found in the background are published on the notification bus.
func NewApi(router gin.IRouter, service *application.Service) {
	h := &contentHandler{service: service}

	articles := router.Group("articles")
	{
		articles.GET("", h.GetArticles)
		articles.GET("/home", h.GetHomeArticles)
		articles.GET("/:id", h.GetArticle)
	}

	algorithms := router.Group("algorithms")
	{
		algorithms.GET("", h.GetAlgorithms)
		algorithms.GET("/home", h.GetHomeAlgorithms)
		algorithms.GET("/:id", h.GetAlgorithm)
	}

	tags := router.Group("tags")
	{
		tags.GET("", h.GetTags)
		tags.GET("/:id", h.GetTag)
		tags.GET("/:id/articles", h.GetArticlesByTag)
	}

	intro := router.Group("intro")
	{
		intro.GET("", h.GetIntroSequences)
		intro.GET("/:id", h.GetIntroSequence)
	}

	router.DELETE("/cache", h.ClearCache)
	router.GET("/healthz", Healthz)
}

type contentHandler struct {
	service *application.Service
}

func (h *contentHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearAll(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
