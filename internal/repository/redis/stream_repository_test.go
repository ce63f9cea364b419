package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/domain"
	redisRepo "github.com/rock-radar/internal/repository/redis"
)

const (
	testImportStream = "test:stream:region:import"
	testDoneStream   = "test:stream:region:done"
)

// getTestRedisClient creates a Redis client for testing
func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     "localhost:6379",
		Password: "",
		DB:       1, // Use DB 1 for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testImportStream, testDoneStream)

	return client
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()
	groupName := "test-group"

	defer client.Del(ctx, testImportStream)

	err := repo.CreateConsumerGroup(ctx, testImportStream, groupName)
	require.NoError(t, err)

	groups, err := client.XInfoGroups(ctx, testImportStream).Result()
	require.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, groupName, groups[0].Name)

	// повторное создание не является ошибкой (BUSYGROUP)
	err = repo.CreateConsumerGroup(ctx, testImportStream, groupName)
	assert.NoError(t, err)
}

func TestStreamRepository_PublishToStream(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()

	defer client.Del(ctx, testDoneStream)

	event := &domain.RegionDoneEvent{
		EventID:     uuid.New(),
		Region:      "Nevada",
		Routes:      42,
		TotalRoutes: 1042,
	}

	err := repo.PublishToStream(ctx, testDoneStream, event)
	require.NoError(t, err)

	messages, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{testDoneStream, "0"},
		Count:   1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	dataStr, ok := messages[0].Messages[0].Values["data"].(string)
	require.True(t, ok)

	var received domain.RegionDoneEvent
	require.NoError(t, json.Unmarshal([]byte(dataStr), &received))
	assert.Equal(t, event.EventID, received.EventID)
	assert.Equal(t, "Nevada", received.Region)
	assert.Equal(t, 42, received.Routes)
	assert.Empty(t, received.Error)
}

func TestStreamRepository_ConsumeStream(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), redisRepo.WithBlockTimeout(200*time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	defer client.Del(context.Background(), testImportStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testImportStream, "test-consumer-group"))

	event := &domain.RegionImportEvent{
		EventID:     uuid.New(),
		Region:      "Utah",
		RequestedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.PublishToStream(ctx, testImportStream, event))

	msgChan, err := repo.ConsumeStream(ctx, testImportStream, "test-consumer-group", "test-consumer")
	require.NoError(t, err)

	select {
	case msg := <-msgChan:
		assert.NotEmpty(t, msg.ID)

		var received domain.RegionImportEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Data), &received))
		assert.Equal(t, event.EventID, received.EventID)
		assert.Equal(t, "Utah", received.Region)
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for message")
	}
}

func TestStreamRepository_AckMessage(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := redisRepo.NewStreamRepository(client, zap.NewNop())
	ctx := context.Background()
	groupName := "test-ack-group"

	defer client.Del(ctx, testImportStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testImportStream, groupName))
	require.NoError(t, repo.PublishToStream(ctx, testImportStream, &domain.RegionImportEvent{
		EventID: uuid.New(),
		Region:  "Nevada",
	}))

	messages, err := client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: "test-consumer",
		Streams:  []string{testImportStream, ">"},
		Count:    1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	messageID := messages[0].Messages[0].ID

	pending, err := client.XPending(ctx, testImportStream, groupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	require.NoError(t, repo.AckMessage(ctx, testImportStream, groupName, messageID))

	pending, err = client.XPending(ctx, testImportStream, groupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestStreamRepository_ConsumeStream_ContextCancellation(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := redisRepo.NewStreamRepository(client, zap.NewNop(), redisRepo.WithBlockTimeout(200*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	defer client.Del(context.Background(), testImportStream)

	require.NoError(t, repo.CreateConsumerGroup(ctx, testImportStream, "test-cancel-group"))

	msgChan, err := repo.ConsumeStream(ctx, testImportStream, "test-cancel-group", "test-consumer")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-msgChan:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Channel not closed after context cancellation")
		}
	}
}
