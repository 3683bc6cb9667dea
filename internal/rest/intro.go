package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/api"
	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

func (h *contentHandler) GetIntroSequences(c *gin.Context) {
	sequences, err := h.service.Intro.GetAll(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(sequences, toIntroSequence))
}

func (h *contentHandler) GetIntroSequence(c *gin.Context) {
	seq, err := h.service.Intro.GetByID(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIntroSequence(seq))
}

func toIntroSequence(s domain.IntroSequence) api.IntroSequence {
	return api.IntroSequence{
		ID: s.ID,
		Items: mapAll(s.Items, func(item domain.IntroItem) api.IntroItem {
			return api.IntroItem{Title: item.Title, Body: item.Body}
		}),
		LastUpdated: s.LastUpdated,
	}
}
