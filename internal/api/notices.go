package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-crisis-response/internal/intake"
	"github.com/mr1hm/go-crisis-response/internal/repository"
)

const heartbeatInterval = 30 * time.Second

func (h *Handler) listNotices(c *gin.Context) {
	filter := repository.NoticeFilter{
		Limit:       20,
		TargetState: c.Query("state"),
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.Since = &t
		} else if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}

	notices, err := h.notices.ListNotices(c.Request.Context(), filter)
	if err != nil {
		respondStoreError(c, err, "notices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notices": notices})
}

func (h *Handler) publishNotice(c *gin.Context) {
	var body intake.NewNotice
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid notice body")
		return
	}

	n, err := h.intake.PublishNotice(c.Request.Context(), body)
	if err != nil {
		respondStoreError(c, err, "notice")
		return
	}
	c.JSON(http.StatusCreated, n)
}

// streamNotices pushes notices as server-sent events until the client
// leaves or the broadcaster shuts down. ?state= narrows the stream.
func (h *Handler) streamNotices(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	state := c.Query("state")
	slog.Info("client subscribed to notice stream", "subscriber_id", id, "state", state)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			slog.Info("client disconnected from notice stream", "subscriber_id", id)
			return
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		case n, ok := <-ch:
			if !ok {
				return
			}
			if state != "" && !strings.EqualFold(n.TargetState, state) {
				continue
			}
			c.SSEvent("notice", n)
			c.Writer.Flush()
		}
	}
}
