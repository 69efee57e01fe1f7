package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acked   []uint64
	nacked  []uint64
	requeue []bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(ack amqp.Acknowledger, tag uint64, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: []byte(body)}
}

func TestDispatch_AcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	logger := zerolog.Nop()

	var seen string
	dispatch(delivery(ack, 1, "hello"), func(msg amqp.Delivery) error {
		seen = string(msg.Body)
		return nil
	}, true, &logger)

	assert.Equal(t, "hello", seen)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Empty(t, ack.nacked)
}

func TestDispatch_NacksOnFailure(t *testing.T) {
	for _, requeue := range []bool{true, false} {
		ack := &fakeAcknowledger{}
		logger := zerolog.Nop()

		dispatch(delivery(ack, 7, "x"), func(amqp.Delivery) error {
			return errors.New("boom")
		}, requeue, &logger)

		assert.Empty(t, ack.acked)
		assert.Equal(t, []uint64{7}, ack.nacked)
		assert.Equal(t, []bool{requeue}, ack.requeue)
	}
}

func TestConsumeLoop_StopsOnContextCancel(t *testing.T) {
	ack := &fakeAcknowledger{}
	logger := zerolog.Nop()
	msgs := make(chan amqp.Delivery, 2)
	msgs <- delivery(ack, 1, "a")
	msgs <- delivery(ack, 2, "b")

	ctx, cancel := context.WithCancel(context.Background())
	handled := 0
	done := make(chan error, 1)
	go func() {
		done <- consumeLoop(ctx, msgs, func(amqp.Delivery) error {
			handled++
			if handled == 2 {
				cancel()
			}
			return nil
		}, false, &logger)
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("consume loop did not stop")
	}
	assert.Equal(t, []uint64{1, 2}, ack.acked)
}

func TestConsumeLoop_ReturnsWhenChannelCloses(t *testing.T) {
	logger := zerolog.Nop()
	msgs := make(chan amqp.Delivery)
	close(msgs)

	err := consumeLoop(context.Background(), msgs, func(amqp.Delivery) error { return nil }, false, &logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestNewClient_RequiresQueue(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewClient(Config{URL: "amqp://localhost"}, &logger)
	assert.Error(t, err)
}

func TestPublish_WithoutChannel(t *testing.T) {
	logger := zerolog.Nop()
	c := &Client{queue: "q", logger: &logger}
	assert.Error(t, c.Publish([]byte("{}")))
}

type countingPublisher struct {
	inFlight   int32
	overlapped atomic.Bool
	published  atomic.Int32
	routingKey string
	mu         sync.Mutex
}

func (p *countingPublisher) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if atomic.AddInt32(&p.inFlight, 1) > 1 {
		p.overlapped.Store(true)
	}
	time.Sleep(time.Millisecond)
	p.mu.Lock()
	p.routingKey = key
	p.mu.Unlock()
	p.published.Add(1)
	atomic.AddInt32(&p.inFlight, -1)
	return nil
}

func TestPublish_SerializesConcurrentCalls(t *testing.T) {
	logger := zerolog.Nop()
	pub := &countingPublisher{}
	c := &Client{publisher: pub, queue: "image_events", logger: &logger}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Publish([]byte("{}")))
		}()
	}
	wg.Wait()

	assert.False(t, pub.overlapped.Load(), "publishes overlapped on the shared channel")
	assert.Equal(t, int32(20), pub.published.Load())
	assert.Equal(t, "image_events", pub.routingKey)
}
