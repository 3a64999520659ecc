package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"myimpact/internal/model"
	"myimpact/internal/queue"
)

// MessageType tags audit events on the work queue.
const MessageType = "audit"

// Sink receives events after the transaction that appended them committed.
type Sink interface {
	Publish(ctx context.Context, evt model.AuditEvent) error
}

// QueueSink forwards events to a queue for the archive worker.
type QueueSink struct {
	q queue.Queue
}

// NewQueueSink wraps q.
func NewQueueSink(q queue.Queue) *QueueSink {
	return &QueueSink{q: q}
}

// Publish encodes evt as JSON and enqueues it.
func (s *QueueSink) Publish(ctx context.Context, evt model.AuditEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode audit event %s: %w", evt.ID, err)
	}
	return s.q.Publish(ctx, queue.Message{Type: MessageType, Body: body})
}

// Forward hands a committed event to sink. The event is already part of
// the log, so a failure is logged and not returned. A nil sink is a no-op.
func Forward(ctx context.Context, sink Sink, log *zap.SugaredLogger, evt model.AuditEvent) {
	if sink == nil {
		return
	}
	if err := sink.Publish(ctx, evt); err != nil && log != nil {
		log.Warnw("audit fan-out failed", "audit_event_id", evt.ID, "action", evt.Action, "error", err)
	}
}

// Decode reverses Publish for a consumed message.
func Decode(msg queue.Message) (model.AuditEvent, error) {
	if msg.Type != MessageType {
		return model.AuditEvent{}, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	var evt model.AuditEvent
	if err := json.Unmarshal(msg.Body, &evt); err != nil {
		return model.AuditEvent{}, fmt.Errorf("decode audit event: %w", err)
	}
	return evt, nil
}
