package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"

	"github.com/samchencode/stroke-mgmt-sub000/api"
)

// Warmer refreshes the content cache without blocking the caller.
type Warmer interface {
	WarmInBackground() bool
}

type WebhookHandler struct {
	webhookSecret []byte
	repoFullName  string
	ref           string
	warmer        Warmer
}

// NewWebhookHandler creates a handler reacting to pushes to ref of repoFullName. ref may
// be a branch name or a full ref such as refs/heads/main.
func NewWebhookHandler(secret, repoFullName, ref string, warmer Warmer) (*WebhookHandler, error) {
	if secret == "" {
		return nil, errors.New("webhook secret is not set")
	}
	if !strings.HasPrefix(ref, "refs/") {
		ref = "refs/heads/" + ref
	}

	return &WebhookHandler{
		webhookSecret: []byte(secret),
		repoFullName:  repoFullName,
		ref:           ref,
		warmer:        warmer,
	}, nil
}

func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook/content", h.HandleContentWebhook)
}

func (h *WebhookHandler) HandleContentWebhook(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.webhookSecret)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Error: "Invalid payload"})
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(c.Request), payload)
	if err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Error{Error: "Invalid event"})
		return
	}

	switch evt := event.(type) {
	case *github.PushEvent:
		if !h.tracks(evt) {
			break
		}
		log.Info().Str("ref", evt.GetRef()).Str("after", evt.GetAfter()).Msg("Content pushed, refreshing cache")
		h.warmer.WarmInBackground()
		c.Status(http.StatusAccepted)
		return
	case *github.PingEvent:
		log.Info().Str("zen", evt.GetZen()).Msg("Webhook ping received")
	}

	c.Status(http.StatusNoContent)
}

func (h *WebhookHandler) tracks(evt *github.PushEvent) bool {
	if evt.GetRef() != h.ref {
		return false
	}
	return h.repoFullName == "" || strings.EqualFold(evt.GetRepo().GetFullName(), h.repoFullName)
}
