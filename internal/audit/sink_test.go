package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myimpact/internal/model"
	"myimpact/internal/queue"
)

func TestQueueSinkRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemory(1)
	evt := NewEvent("evt-9", admin, model.EntityVerificationRequest, "vr-002", model.ActionReject,
		time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC), "Reason: duplicate")
	evt.Seq = 9
	require.NoError(t, NewQueueSink(q).Publish(ctx, evt))

	msgs, err := q.Consume(ctx)
	require.NoError(t, err)
	msg := <-msgs
	got, err := Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, evt, got)
}

func TestDecodeRejectsForeignMessages(t *testing.T) {
	_, err := Decode(queue.Message{Type: "checkin", Body: []byte("x")})
	require.Error(t, err)

	_, err = Decode(queue.Message{Type: MessageType, Body: []byte("{not json")})
	require.Error(t, err)
}
