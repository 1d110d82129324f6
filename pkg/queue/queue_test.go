package queue

import (
	"testing"

	"github.com/hugh/recipe-api/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestRedisOpt(t *testing.T) {
	opt := redisOpt(&config.RedisConfig{Host: "cache", Port: 6380, Password: "secret"})
	assert.Equal(t, "cache:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
}

func TestQueues_LowIsLeastWeighted(t *testing.T) {
	for name, weight := range Queues {
		if name == "low" {
			continue
		}
		assert.Greater(t, weight, Queues["low"], name)
	}
}
