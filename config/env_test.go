package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	assert.Equal(t, "mongodb://localhost:27017", MongoURI())
	assert.Equal(t, "storefront", MongoDB())
	assert.Equal(t, "8080", AppPort())
	assert.Equal(t, "local", AppEnv())
	assert.Equal(t, "memory", QueueDriver())
	assert.Equal(t, 5, QueueWorkers())
	assert.Equal(t, 30*time.Second, AnalyticsCacheTTL())
	assert.False(t, LogToMongo())
}

func TestQueueDriverRejectsUnknown(t *testing.T) {
	mu.Lock()
	values["QUEUE_DRIVER"] = "rabbitmq"
	mu.Unlock()
	defer func() {
		mu.Lock()
		values["QUEUE_DRIVER"] = defaultQueueDriver
		mu.Unlock()
	}()

	assert.Equal(t, "memory", QueueDriver())
}

func TestGetFallsBack(t *testing.T) {
	assert.Equal(t, "fallback", Get("NOT_A_KEY", "fallback"))
	assert.Equal(t, "storefront", Get("MONGO_DB", "other"))
}
