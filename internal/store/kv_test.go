package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return NewRedisKV(c), mr
}

func TestRedisKV_GetSetMiss(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "festflow:rooms:occupancy")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "festflow:rooms:occupancy", []byte("[]"), time.Minute))
	v, err := kv.Get(ctx, "festflow:rooms:occupancy")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(v))

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "festflow:rooms:occupancy")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Incr(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	n, err := kv.Incr(ctx, "festflow:cache:rooms:gen")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = kv.Incr(ctx, "festflow:cache:rooms:gen")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	v, err := kv.Get(ctx, "festflow:cache:rooms:gen")
	require.NoError(t, err)
	assert.Equal(t, "2", string(v))
}

func TestRedisKV_DeleteMatching(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "festflow:rooms:occupancy", []byte("a"), 0))
	require.NoError(t, kv.Set(ctx, "festflow:rooms:r1:participants", []byte("b"), 0))
	require.NoError(t, kv.Set(ctx, "festflow:events:e1", []byte("c"), 0))

	n, err := kv.DeleteMatching(ctx, "festflow:rooms:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"festflow:events:e1"}, mr.Keys())

	n, err = kv.DeleteMatching(ctx, "nothing:*")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisKV_DeleteMatchingAcrossBatches(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	total := unlinkBatch*2 + 7
	for i := 0; i < total; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("festflow:rooms:%d:participants", i), "[]"))
	}

	n, err := kv.DeleteMatching(ctx, "festflow:rooms:*")
	require.NoError(t, err)
	assert.Equal(t, total, n)
	assert.Empty(t, mr.Keys())
}

type roomSnapshot struct {
	RoomID    string `json:"room_id"`
	Occupancy int    `json:"current_occupancy"`
}

func TestJSONHelpers(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	_, err := GetJSON[[]roomSnapshot](ctx, kv, "festflow:rooms:occupancy")
	assert.ErrorIs(t, err, ErrMiss)

	in := []roomSnapshot{{RoomID: "r1", Occupancy: 2}}
	require.NoError(t, SetJSON(ctx, kv, "festflow:rooms:occupancy", in, time.Minute))

	out, err := GetJSON[[]roomSnapshot](ctx, kv, "festflow:rooms:occupancy")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	require.NoError(t, mr.Set("festflow:rooms:broken", "{not json"))
	_, err = GetJSON[[]roomSnapshot](ctx, kv, "festflow:rooms:broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
