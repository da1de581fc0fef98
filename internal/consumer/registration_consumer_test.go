package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"

	rediscommon "festflow/common/redis"
	"festflow/internal/broadcast"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeForwarder struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakeForwarder) Publish(topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)
	return nil
}

func setup(t *testing.T, fwd Forwarder) (*RegistrationConsumer, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := NewRegistrationConsumer(client, fwd, zap.NewNop(), "festflow:registrations", "notifier", "n1", 10, "festflow")
	c.block = 0
	require.NoError(t, rediscommon.CreateConsumerGroup(context.Background(), client, c.stream, c.groupName))
	return c, client
}

func TestConsumeOnce_ForwardsPerEvent(t *testing.T) {
	fwd := &fakeForwarder{}
	c, client := setup(t, fwd)
	ctx := context.Background()

	pub := broadcast.NewStreamPublisher(client, "festflow:registrations")
	require.NoError(t, pub.PublishRegistration(ctx, broadcast.RegistrationEvent{
		Type: broadcast.EventTeamRegistered, TeamID: "t1", EventIDs: []string{"e1", "e2"},
	}))

	acked, err := c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, acked)
	assert.Equal(t, []string{"festflow/events/e1/registrations", "festflow/events/e2/registrations"}, fwd.topics)
	assert.Contains(t, string(fwd.payloads[0]), `"team_id":"t1"`)

	pending, err := client.XPending(ctx, "festflow:registrations", "notifier").Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func pendingCount(t *testing.T, client *redis.Client) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), "festflow:registrations", "notifier").Result()
	require.NoError(t, err)
	return pending.Count
}

func TestConsumeOnce_RedeliversAfterForwardFailure(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("broker offline")}
	c, client := setup(t, fwd)
	ctx := context.Background()

	pub := broadcast.NewStreamPublisher(client, "festflow:registrations")
	require.NoError(t, pub.PublishRegistration(ctx, broadcast.RegistrationEvent{
		Type: broadcast.EventTeamDeleted, TeamID: "t1", EventIDs: []string{"e1"},
	}))

	acked, err := c.ConsumeOnce(ctx)
	require.Error(t, err)
	assert.Zero(t, acked)
	assert.Equal(t, int64(1), pendingCount(t, client))

	// broker 恢复后，pending 消息被重投并 ack
	fwd.err = nil
	acked, err = c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, acked)
	assert.Equal(t, []string{"festflow/events/e1/registrations"}, fwd.topics)
	assert.Zero(t, pendingCount(t, client))

	acked, err = c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, acked)
	assert.Len(t, fwd.topics, 1)
}

func TestConsumeOnce_KeepsOrderAcrossFailure(t *testing.T) {
	fwd := &fakeForwarder{err: errors.New("broker offline")}
	c, client := setup(t, fwd)
	ctx := context.Background()
	pub := broadcast.NewStreamPublisher(client, "festflow:registrations")

	require.NoError(t, pub.PublishRegistration(ctx, broadcast.RegistrationEvent{
		Type: broadcast.EventTeamRegistered, TeamID: "a", EventIDs: []string{"e1"},
	}))
	_, err := c.ConsumeOnce(ctx)
	require.Error(t, err)

	require.NoError(t, pub.PublishRegistration(ctx, broadcast.RegistrationEvent{
		Type: broadcast.EventTeamRegistered, TeamID: "b", EventIDs: []string{"e2"},
	}))
	// pending 未清空前不拉取新消息
	_, err = c.ConsumeOnce(ctx)
	require.Error(t, err)
	assert.Equal(t, int64(1), pendingCount(t, client))

	fwd.err = nil
	acked, err := c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	assert.Equal(t, []string{"festflow/events/e1/registrations", "festflow/events/e2/registrations"}, fwd.topics)
	assert.Zero(t, pendingCount(t, client))
}

func TestConsumeOnce_MalformedIsAcked(t *testing.T) {
	fwd := &fakeForwarder{}
	c, client := setup(t, fwd)
	ctx := context.Background()

	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: "festflow:registrations",
		Values: map[string]interface{}{"data": "{not json"},
	}).Err())
	require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
		Stream: "festflow:registrations",
		Values: map[string]interface{}{"other": "x"},
	}).Err())

	acked, err := c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, acked)
	assert.Empty(t, fwd.topics)
	assert.Zero(t, pendingCount(t, client))
}

func TestConsumeOnce_UnknownTypeIsAcked(t *testing.T) {
	fwd := &fakeForwarder{}
	c, client := setup(t, fwd)
	ctx := context.Background()

	_, err := rediscommon.PublishJSONToStream(ctx, client, "festflow:registrations", map[string]any{"type": "room.cleaned"})
	require.NoError(t, err)

	acked, err := c.ConsumeOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, acked)
	assert.Empty(t, fwd.topics)
}

func TestConsumeOnce_Empty(t *testing.T) {
	c, _ := setup(t, &fakeForwarder{})
	acked, err := c.ConsumeOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, acked)
}
