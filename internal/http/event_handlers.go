package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zhpack/jobtrack/internal/realtime"
)

const sseHeartbeat = 30 * time.Second

// streamEvents is the change-feed endpoint the work and reporting views keep
// open: a server-sent event stream of job_processes row changes, optionally
// narrowed with ?process_id= to one stage.
func (s *Server) streamEvents(c *gin.Context) {
	profile := currentProfile(c)

	var processID *int
	if raw := c.Query("process_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid process_id"})
			return
		}
		processID = &id
	}

	client := &realtime.Client{
		ID:        fmt.Sprintf("%s_%d", profile.ID, time.Now().UnixNano()),
		UserID:    profile.ID.String(),
		ProcessID: processID,
		Events:    make(chan realtime.Event, 64),
	}
	s.hub.Register(client)
	defer s.hub.Unregister(client.ID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	clientGone := c.Request.Context().Done()

	for {
		select {
		case <-clientGone:
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Name, event.Data)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
