package kafkautil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/logger"
)

var (
	errEmptyTopic = errors.New("topic name is empty")
	errNoBrokers  = errors.New("no brokers configured")
)

// EnsureTopicWithRetry calls EnsureTopic up to attempts times, doubling
// backoff between tries. Misconfiguration is returned at once.
func EnsureTopicWithRetry(
	ctx context.Context,
	brokers []string,
	topic string,
	nPart, rf int,
	cfg map[string]string,
	attempts int,
	backoff time.Duration,
) error {
	var err error
	for i := 1; i <= attempts; i++ {
		err = EnsureTopic(ctx, brokers, topic, nPart, rf, cfg)
		if err == nil {
			return nil
		}
		if !retryable(err) || i == attempts {
			break
		}
		logger.Warnf("ensure topic %q attempt=%d: %v", topic, i, err)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// EnsureTopic creates topic through the cluster controller unless it is
// already listed in the metadata of the first reachable broker.
func EnsureTopic(ctx context.Context,
	brokers []string,
	topic string,
	numPartitions,
	replicationFactor int,
	configs map[string]string) error {

	if topic == "" {
		return errEmptyTopic
	}
	if len(brokers) == 0 {
		return errNoBrokers
	}

	conn, err := dialAny(ctx, brokers)
	if err != nil {
		return err
	}
	exists, ctrl, err := inspect(conn, topic)
	conn.Close()
	if err != nil {
		return err
	}
	if exists {
		logger.Debugf("topic %q already exists", topic)
		return nil
	}

	cc, err := kafka.DialContext(ctx, "tcp", ctrl)
	if err != nil {
		return fmt.Errorf("dial controller %s: %w", ctrl, err)
	}
	defer cc.Close()

	tc := topicConfig(topic, numPartitions, replicationFactor, configs)
	logger.Infof("creating topic %q partitions=%d replication=%d", topic, tc.NumPartitions, tc.ReplicationFactor)
	if err := cc.CreateTopics(tc); err != nil {
		// Another worker may have won the race.
		if errors.Is(err, kafka.TopicAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	return nil
}

// dialAny returns a connection to the first broker that answers.
func dialAny(ctx context.Context, brokers []string) (*kafka.Conn, error) {
	var errs []error
	for _, b := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("dial broker %s: %w", b, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// inspect reports whether topic exists and where the controller lives.
func inspect(conn *kafka.Conn, topic string) (bool, string, error) {
	parts, err := conn.ReadPartitions(topic)
	if err == nil && len(parts) > 0 {
		return true, "", nil
	}
	if err != nil && !errors.Is(err, kafka.UnknownTopicOrPartition) {
		return false, "", fmt.Errorf("read partitions: %w", err)
	}

	c, err := conn.Controller()
	if err != nil {
		return false, "", fmt.Errorf("controller: %w", err)
	}
	return false, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), nil
}

func topicConfig(topic string, partitions, replication int, cfg map[string]string) kafka.TopicConfig {
	return kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     max(partitions, 1),
		ReplicationFactor: max(replication, 1),
		ConfigEntries:     configEntries(cfg),
	}
}

func retryable(err error) bool {
	return !errors.Is(err, errEmptyTopic) && !errors.Is(err, errNoBrokers)
}

func configEntries(cfg map[string]string) []kafka.ConfigEntry {
	if len(cfg) == 0 {
		return nil
	}
	names := make([]string, 0, len(cfg))
	for k := range cfg {
		names = append(names, k)
	}
	sort.Strings(names)

	out := make([]kafka.ConfigEntry, 0, len(names))
	for _, k := range names {
		out = append(out, kafka.ConfigEntry{ConfigName: k, ConfigValue: cfg[k]})
	}
	return out
}
