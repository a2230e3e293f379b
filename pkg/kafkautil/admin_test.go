package kafkautil

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureTopic_Misconfigured(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, EnsureTopic(ctx, []string{"b:9092"}, "", 1, 1, nil), errEmptyTopic)
	assert.ErrorIs(t, EnsureTopic(ctx, nil, "merge.results", 1, 1, nil), errNoBrokers)
}

func TestEnsureTopicWithRetry_DoesNotRetryMisconfiguration(t *testing.T) {
	start := time.Now()
	err := EnsureTopicWithRetry(context.Background(), nil, "merge.results", 1, 1, nil, 5, time.Second)
	require.ErrorIs(t, err, errNoBrokers)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestEnsureTopicWithRetry_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 127.0.0.1:1 refuses connections, so the first attempt fails fast and
	// the cancelled context ends the backoff.
	err := EnsureTopicWithRetry(ctx, []string{"127.0.0.1:1"}, "merge.results", 1, 1, nil, 3, time.Hour)
	assert.Error(t, err)
}

func TestConfigEntries(t *testing.T) {
	assert.Nil(t, configEntries(nil))
	got := configEntries(map[string]string{"retention.ms": "86400000", "cleanup.policy": "delete"})
	assert.Equal(t, []kafka.ConfigEntry{
		{ConfigName: "cleanup.policy", ConfigValue: "delete"},
		{ConfigName: "retention.ms", ConfigValue: "86400000"},
	}, got)
}

func TestTopicConfig_ClampsCounts(t *testing.T) {
	tc := topicConfig("merge.results", 0, -1, map[string]string{"retention.ms": "1000"})
	assert.Equal(t, "merge.results", tc.Topic)
	assert.Equal(t, 1, tc.NumPartitions)
	assert.Equal(t, 1, tc.ReplicationFactor)
	assert.Len(t, tc.ConfigEntries, 1)

	tc = topicConfig("merge.results", 6, 3, nil)
	assert.Equal(t, 6, tc.NumPartitions)
	assert.Equal(t, 3, tc.ReplicationFactor)
	assert.Nil(t, tc.ConfigEntries)
}

func TestEnsureTopic_UnreachableBrokers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := EnsureTopic(ctx, []string{"127.0.0.1:1", "127.0.0.1:2"}, "merge.results", 1, 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Contains(t, err.Error(), "127.0.0.1:2")
	assert.True(t, retryable(err))
}
