package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homefix-app/homefix-backend/internal/identity"
	"github.com/homefix-app/homefix-backend/internal/repair/sync"
)

const keepAliveInterval = 15 * time.Second

// StreamState streams live view state for the caller's session using
// Server-Sent Events. One connection is one session: a synchronizer is
// opened against the caller's identity when the stream attaches and torn
// down when the client disconnects, so no listener survives an identity
// change. `?view=staff` streams the global collection instead of the
// personal one.
func (h *Handler) StreamState(c *gin.Context) {
	userID := identity.UserID(c)
	staffView := c.Query("view") == "staff"

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	syn := sync.Open(ctx, userID, h.syncDeps)
	defer syn.Close()

	updates, detach := syn.Subscribe()
	defer detach()

	anonymous := identity.IsAnonymous(c)
	writeEvent := func(name string) {
		state := h.viewState(syn, staffView)
		state["identity"] = gin.H{"uid": userID, "anonymous": anonymous}
		payload, err := json.Marshal(state)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, payload)
		flusher.Flush()
	}

	// Initial state before any mirror delivery; scopes fill in as their
	// subscriptions attach.
	writeEvent("initial")

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case _, open := <-updates:
			if !open {
				return
			}
			writeEvent("update")
		}
	}
}

// viewState assembles one SSE payload from the synchronizer's mirrors.
func (h *Handler) viewState(syn *sync.Synchronizer, staffView bool) gin.H {
	state := gin.H{
		"company": syn.Company(),
		"profile": syn.Profile(),
	}
	if staffView {
		state["requests"] = syn.AllRequests()
		state["pending_count"] = syn.PendingCount()
	} else {
		state["requests"] = syn.MyRequests()
		state["inbox"] = syn.Inbox()
		state["inbox_count"] = syn.InboxCount()
	}
	return state
}

// StreamActivity streams the cross-instance request activity feed from
// the Redis bridge. Staff-facing; 503 when no bridge is configured.
func (h *Handler) StreamActivity(c *gin.Context) {
	if h.bridge == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity feed not configured"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()
	events, cancel := h.bridge.Subscribe(ctx)
	defer cancel()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: activity\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
