package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data   map[string][]byte
	getErr error
	setErr error
	ttls   map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Close() error { return nil }

func TestRedis_GetMissing(t *testing.T) {
	s := &RedisStore{client: newFakeRedis()}

	data, err := s.Get(context.Background(), "leads")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, data)
}

func TestRedis_PutAndGet(t *testing.T) {
	fake := newFakeRedis()
	s := &RedisStore{client: fake}
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "leads", []byte(`[]`)))
	assert.Equal(t, time.Duration(0), fake.ttls["leads"])

	data, err := s.Get(ctx, "leads")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestRedis_Errors(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("i/o timeout")
	fake.setErr = errors.New("READONLY")
	s := &RedisStore{client: fake}

	_, err := s.Get(context.Background(), "leads")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: get leads")

	err = s.Put(context.Background(), "leads", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: put leads")
}
