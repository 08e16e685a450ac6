package redis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRedisConfig(t *testing.T) {
	config := &RedisConfig{
		Host:      "localhost",
		Port:      6379,
		Password:  "secret",
		Namespace: "portal",
	}

	require.Equal(t, "localhost", config.Host)
	require.Equal(t, 6379, config.Port)
	require.Equal(t, "secret", config.Password)
	require.Equal(t, "portal", config.Namespace)
}

func TestRedisSentinelConfig(t *testing.T) {
	config := &RedisSentinelConfig{
		SentinelHost:     "localhost",
		SentinelPort:     26379,
		Password:         "secret",
		MasterName:       "portal-master",
		SentinelUsername: "sentinel",
		Namespace:        "portal",
	}

	require.Equal(t, "localhost", config.SentinelHost)
	require.Equal(t, 26379, config.SentinelPort)
	require.Equal(t, "secret", config.Password)
	require.Equal(t, "portal-master", config.MasterName)
	require.Equal(t, "sentinel", config.SentinelUsername)
	require.Equal(t, "portal", config.Namespace)
}

func TestNewRedisClientUnresolvableHost(t *testing.T) {
	config := &RedisConfig{
		Host: "redis-host-that-does-not-resolve",
		Port: 6379,
	}

	client, err := NewRedisClient(config)
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestNewRedisClientInvalidPort(t *testing.T) {
	config := &RedisConfig{
		Host: "localhost",
		Port: 99999,
	}

	client, err := NewRedisClient(config)
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestNewRedisClientEmptyConfig(t *testing.T) {
	client, err := NewRedisClient(&RedisConfig{})
	require.Error(t, err)
	require.Nil(t, client)
}

func TestNewRedisSentinelClientUnresolvableHost(t *testing.T) {
	config := &RedisSentinelConfig{
		SentinelHost: "sentinel-host-that-does-not-resolve",
		SentinelPort: 26379,
		MasterName:   "portal-master",
	}

	client, err := NewRedisSentinelClient(config)
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "failed to connect to Redis through Sentinel")
}

func TestNewRedisSentinelClientInvalidPort(t *testing.T) {
	config := &RedisSentinelConfig{
		SentinelHost: "localhost",
		SentinelPort: 99999,
		MasterName:   "portal-master",
	}

	client, err := NewRedisSentinelClient(config)
	require.Error(t, err)
	require.Nil(t, client)
	require.Contains(t, err.Error(), "failed to connect to Redis through Sentinel")
}

func TestNewRedisSentinelClientEmptyMasterName(t *testing.T) {
	config := &RedisSentinelConfig{
		SentinelHost: "localhost",
		SentinelPort: 26379,
	}

	client, err := NewRedisSentinelClient(config)
	require.Error(t, err)
	require.Nil(t, client)
}
