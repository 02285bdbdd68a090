package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return client, cleanup
}

func TestPublishSubscribe(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	pub := NewPublisher(client)
	sub := NewSubscriber(client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	received := make(chan *DeliveryEvent, 1)
	go func() {
		_ = sub.Subscribe(ctx, func(event *DeliveryEvent) {
			received <- event
		})
	}()

	// 等订阅建立
	time.Sleep(100 * time.Millisecond)

	err := pub.PublishDelivery(ctx, &DeliveryEvent{
		VoucherID: 1,
		StudioID:  2,
		Code:      "GV-ABCD1234",
		Step:      StepDone,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "delivery_progress", event.Type)
		assert.Equal(t, int64(1), event.VoucherID)
		assert.Equal(t, StepDone, event.Step)
		assert.Equal(t, StepMessages[StepDone], event.Message)
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery event")
	}
}

func TestPublishDelivery_FillsDefaultMessage(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	pub := NewPublisher(client)

	event := &DeliveryEvent{VoucherID: 9, Step: StepRendering}
	err := pub.PublishDelivery(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, StepMessages[StepRendering], event.Message)
}
