package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/zhpack/jobtrack/internal/models"
	"github.com/zhpack/jobtrack/internal/mq"
)

// Change event routing keys. The suffix names what happened to the row.
const (
	EventCreated = "job_process.created"
	EventUpdated = "job_process.updated"
	EventDeleted = "job_process.deleted"
)

type changePayload struct {
	Event  string             `json:"event"`
	New    *models.JobProcess `json:"new"`
	Origin string             `json:"origin"`
}

// Feed is the single outlet for job_process change events: every mutation is
// broadcast to this instance's SSE clients and published to the exchange so
// other replicas converge. A nil Feed is a no-op, which keeps service tests
// free of event plumbing.
type Feed struct {
	origin string
	hub    *Hub
	pub    mq.Publisher
	logger *zap.Logger
}

// NewFeed builds a feed with a fresh origin id identifying this instance.
func NewFeed(hub *Hub, pub mq.Publisher, logger *zap.Logger) *Feed {
	return &Feed{origin: uuid.New().String(), hub: hub, pub: pub, logger: logger}
}

// JobProcessChanged fans one row change out to SSE clients and the exchange.
func (f *Feed) JobProcessChanged(ctx context.Context, event string, row *models.JobProcess) {
	if f == nil || row == nil {
		return
	}
	payload := changePayload{Event: event, New: row, Origin: f.origin}
	body, err := json.Marshal(payload)
	if err != nil {
		f.logger.Error("encode change event", zap.Error(err))
		return
	}
	if f.hub != nil {
		f.hub.Broadcast(Event{Name: event, Data: body}, row.ProcessID)
	}
	if f.pub != nil {
		if err := f.pub.Publish(ctx, event, payload); err != nil {
			f.logger.Warn("publish change event", zap.String("event", event), zap.Error(err))
		}
	}
}

// HandleDelivery re-broadcasts a change event received from the exchange,
// skipping events this instance originated (those already reached the hub).
func (f *Feed) HandleDelivery(msg amqp091.Delivery) {
	if f == nil || f.hub == nil {
		return
	}
	var payload changePayload
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		f.logger.Warn("decode change event", zap.Error(err))
		return
	}
	if payload.Origin == f.origin || payload.New == nil {
		return
	}
	f.hub.Broadcast(Event{Name: payload.Event, Data: msg.Body}, payload.New.ProcessID)
}
