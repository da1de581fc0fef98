package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublishJSONToStream_ReadFromStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, CreateConsumerGroup(ctx, client, "festflow:test", "g1"))
	// 重复创建不报错
	require.NoError(t, CreateConsumerGroup(ctx, client, "festflow:test", "g1"))

	id, err := PublishJSONToStream(ctx, client, "festflow:test", map[string]any{"team_id": "t-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := ReadFromStream(ctx, client, "festflow:test", "g1", "c1", 10, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.JSONEq(t, `{"team_id":"t-1"}`, msgs[0].Values["data"].(string))

	require.NoError(t, AckMessage(ctx, client, "festflow:test", "g1", id))
}

func TestReadPendingFromStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, CreateConsumerGroup(ctx, client, "festflow:test", "g1"))

	id, err := PublishJSONToStream(ctx, client, "festflow:test", map[string]any{"team_id": "t-1"})
	require.NoError(t, err)

	// 未读取过：pending 为空
	pending, err := ReadPendingFromStream(ctx, client, "festflow:test", "g1", "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = ReadFromStream(ctx, client, "festflow:test", "g1", "c1", 10, 0)
	require.NoError(t, err)

	// 读取但未 ack：可重复读到；新消息读取为空
	for i := 0; i < 2; i++ {
		pending, err = ReadPendingFromStream(ctx, client, "festflow:test", "g1", "c1", 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, id, pending[0].ID)
	}
	fresh, err := ReadFromStream(ctx, client, "festflow:test", "g1", "c1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	// 其他消费者看不到 c1 的 pending
	other, err := ReadPendingFromStream(ctx, client, "festflow:test", "g1", "c2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, AckMessage(ctx, client, "festflow:test", "g1", id))
	pending, err = ReadPendingFromStream(ctx, client, "festflow:test", "g1", "c1", 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStringify(t *testing.T) {
	cases := map[string]interface{}{
		"abc":   "abc",
		"42":    42,
		"7":     int64(7),
		"1.5":   1.5,
		"true":  true,
		`[1,2]`: []int{1, 2},
	}
	for want, in := range cases {
		got, err := stringify(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
