package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisDB = 13

func setupTestCache(t *testing.T) {
	t.Helper()

	c := redis.NewClient(&redis.Options{Addr: Addr(), DB: testRedisDB, DialTimeout: time.Second})
	if err := c.Ping(context.Background()).Err(); err != nil {
		_ = c.Close()
		t.Skipf("redis not reachable at %s: %v", Addr(), err)
	}

	prev := client
	SetClient(c)
	t.Cleanup(func() {
		_ = c.FlushDB(context.Background()).Err()
		_ = c.Close()
		client = prev
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "feefox:dashboard:2024-03", Key("dashboard", "2024-03"))
}

func TestSetGetDelete(t *testing.T) {
	setupTestCache(t)

	require.NoError(t, Set("feefox:test:key", "42", time.Minute))
	val, err := Get("feefox:test:key")
	require.NoError(t, err)
	assert.Equal(t, "42", val)

	require.NoError(t, Delete("feefox:test:key"))
	_, err = Get("feefox:test:key")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestSetGetJSON(t *testing.T) {
	setupTestCache(t)

	type payload struct {
		Profiles int64  `json:"profiles"`
		Month    string `json:"month"`
	}
	require.NoError(t, SetJSON("feefox:test:json", payload{Profiles: 3, Month: "2024-02"}, time.Minute))

	var got payload
	require.NoError(t, GetJSON("feefox:test:json", &got))
	assert.Equal(t, payload{Profiles: 3, Month: "2024-02"}, got)

	assert.ErrorIs(t, GetJSON("feefox:test:missing", &got), redis.Nil)
}
