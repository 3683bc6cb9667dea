package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/api"
	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

func (h *contentHandler) GetTags(c *gin.Context) {
	tags, err := h.service.Tags.GetAll(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(tags, toTag))
}

func (h *contentHandler) GetTag(c *gin.Context) {
	tag, err := h.service.Tags.GetByID(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTag(tag))
}

func toTag(t domain.Tag) api.Tag {
	return api.Tag{
		ID:          t.ID,
		Designation: t.Designation,
		Description: t.Description,
		LastUpdated: t.LastUpdated,
	}
}
