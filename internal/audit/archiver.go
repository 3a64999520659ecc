package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"myimpact/internal/metrics"
	"myimpact/internal/model"
	"myimpact/internal/queue"
)

// Writer persists one audit event. *Archive implements it.
type Writer interface {
	Insert(ctx context.Context, evt model.AuditEvent) error
}

// Archiver drains audit messages from a queue into a Writer.
type Archiver struct {
	q        queue.Queue
	w        Writer
	log      *zap.SugaredLogger
	attempts int
	backoff  time.Duration
}

// NewArchiver creates an archiver reading q and writing to w.
func NewArchiver(q queue.Queue, w Writer, log *zap.SugaredLogger) *Archiver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Archiver{q: q, w: w, log: log, attempts: 3, backoff: 200 * time.Millisecond}
}

// Run consumes until ctx is cancelled. Messages that cannot be decoded or
// written after retries are logged and dropped.
func (a *Archiver) Run(ctx context.Context) error {
	messages, err := a.q.Consume(ctx)
	if err != nil {
		return err
	}
	a.log.Infow("audit archiver started")
	for msg := range messages {
		a.handle(ctx, msg)
	}
	a.log.Infow("audit archiver stopped")
	return nil
}

func (a *Archiver) handle(ctx context.Context, msg queue.Message) {
	evt, err := Decode(msg)
	if err != nil {
		metrics.ArchivedEventsTotal.WithLabelValues("decode_error").Inc()
		a.log.Warnw("dropping undecodable message", "type", msg.Type, "error", err)
		return
	}
	for attempt := 1; ; attempt++ {
		err = a.w.Insert(ctx, evt)
		if err == nil {
			metrics.ArchivedEventsTotal.WithLabelValues("ok").Inc()
			a.log.Debugw("audit event archived", "audit_event_id", evt.ID, "action", evt.Action)
			return
		}
		if attempt >= a.attempts {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(time.Duration(attempt) * a.backoff):
			continue
		}
		break
	}
	metrics.ArchivedEventsTotal.WithLabelValues("insert_error").Inc()
	a.log.Errorw("audit archive write failed", "audit_event_id", evt.ID, "error", err)
}
