package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samchencode/stroke-mgmt-sub000/api"
	"github.com/samchencode/stroke-mgmt-sub000/content/domain"
)

func (h *contentHandler) GetAlgorithms(c *gin.Context) {
	algorithms, err := h.service.Algorithms.GetAll(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(algorithms, toAlgorithm))
}

func (h *contentHandler) GetHomeAlgorithms(c *gin.Context) {
	algorithms, err := h.service.Algorithms.GetAllShownOnHome(c.Request.Context(), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapAll(algorithms, toAlgorithm))
}

func (h *contentHandler) GetAlgorithm(c *gin.Context) {
	algorithm, err := h.service.Algorithms.GetByID(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAlgorithm(algorithm))
}

func toAlgorithm(a domain.Algorithm) api.Algorithm {
	out := api.Algorithm{
		ID:               a.ID,
		Title:            a.Title,
		Summary:          a.Summary,
		Body:             a.Body,
		Thumbnail:        a.Thumbnail,
		Kind:             string(a.Kind()),
		Outcomes:         mapAll(a.Outcomes, toOutcome),
		ShowOnHomeScreen: a.ShowOnHomeScreen,
		LastUpdated:      a.LastUpdated,
	}
	if scored, ok := a.Info.(domain.ScoredInfo); ok {
		out.Switches = mapAll(scored.Switches, toSwitch)
	}
	return out
}

func toOutcome(o domain.Outcome) api.Outcome {
	return api.Outcome{ID: o.ID, Title: o.Title, Body: o.Body, Threshold: o.Threshold}
}

func toSwitch(s domain.Switch) api.Switch {
	return api.Switch{ID: s.ID, Label: s.Label, Description: s.Description, Weight: s.Weight}
}
