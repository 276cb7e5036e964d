package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

const streamKeepAlive = 25 * time.Second

// AlertFeed delivers raw alert events published for a channel until ctx ends.
type AlertFeed interface {
	Subscribe(ctx context.Context, channel string, onMsg func([]byte)) error
}

// StreamHandler relays a clinician's push channel as server-sent events.
type StreamHandler struct {
	log  *logger.Logger
	feed AlertFeed
}

func NewStreamHandler(log *logger.Logger, feed AlertFeed) *StreamHandler {
	return &StreamHandler{log: log.With("handler", "StreamHandler"), feed: feed}
}

// GET /api/alerts/stream
func (h *StreamHandler) AlertStream(c *gin.Context) {
	doctorID, ok := requestUserID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan []byte, 16)
	err := h.feed.Subscribe(ctx, escalation.PushChannel(doctorID), func(b []byte) {
		select {
		case events <- b:
		default:
			h.log.Warn("Alert stream backlog full, dropping event", "doctor_id", doctorID.String())
		}
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.log.Debug("Alert stream open", "doctor_id", doctorID.String())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case b := <-events:
			c.SSEvent("alert", string(b))
			return true
		case <-ticker.C:
			c.SSEvent("ping", "")
			return true
		}
	})
	h.log.Debug("Alert stream closed", "doctor_id", doctorID.String())
}
