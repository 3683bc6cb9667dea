package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/api"
	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

func (h *contentHandler) GetArticles(c *gin.Context) {
	articles, err := h.service.Articles.GetAll(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(articles, toArticle))
}

func (h *contentHandler) GetHomeArticles(c *gin.Context) {
	articles, err := h.service.Articles.GetAllShownOnHome(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(articles, toArticle))
}

func (h *contentHandler) GetArticle(c *gin.Context) {
	article, err := h.service.Articles.GetByID(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toArticle(article))
}

func (h *contentHandler) GetArticlesByTag(c *gin.Context) {
	articles, err := h.service.Articles.GetByTag(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(articles, toArticle))
}

func toArticle(a domain.Article) api.Article {
	tags := a.TagIDs
	if tags == nil {
		tags = []string{}
	}
	return api.Article{
		ID:               a.ID,
		Title:            a.Title,
		Summary:          a.Summary,
		Body:             a.Body,
		Thumbnail:        a.Thumbnail,
		Tags:             tags,
		ShowOnHomeScreen: a.ShowOnHomeScreen,
		LastUpdated:      a.LastUpdated,
	}
}

// mapAll converts a result list, encoding an empty list as [] rather than null.
func mapAll[T, R any](in []T, convert func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, convert(v))
	}
	return out
}
