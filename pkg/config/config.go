package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yangjie500/media_merger_ffmpeg/pkg/ffmpegx"
)

type Config struct {
	// App
	AppName string
	Env     string

	// ffmpeg
	FFmpegBin     string
	FFprobeBin    string
	FFmpegTimeout time.Duration

	// Local merge
	InputDir       string
	OutputDir      string
	OutputFilename string
	WorkDir        string

	// AWS
	Region       string
	OutputBucket string
	S3Endpoint   string

	// Kafka consumer
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaGroupId     string
	KafkaClientId    string
	KafkaStartOffset string
	KafkaMinBytes    int
	KafkaMaxBytes    int
	KafkaMaxWait     time.Duration
	KafkaCommitEvery time.Duration

	// Kafka results
	KafkaProducerBroker         []string
	KafkaProducerTopic          string
	AutoCreateTopics            bool
	KafkaOutputTopicPartitions  int
	KafkaOutputTopicReplication int
}

func LoadAll(dotenvPaths ...string) (Config, error) {
	// Missing .env files are fine; the environment may already be populated.
	if len(dotenvPaths) > 0 {
		_ = godotenv.Load(dotenvPaths...)
	} else {
		_ = godotenv.Load()
	}

	return Load()
}

// Load reads the environment. Only malformed values are errors here; what a
// given command requires is checked by the Validate* methods.
func Load() (Config, error) {
	var cfg Config
	var errs []string

	cfg.AppName = getenv("APP_NAME", "media-merger")
	cfg.Env = getenv("APP_ENV", "DEVELOPMENT")

	// --- ffmpeg ---
	cfg.FFmpegBin = getenv("FFMPEG_BIN", "")
	cfg.FFprobeBin = getenv("FFPROBE_BIN", "")
	cfg.FFmpegTimeout = mustDuration("FFMPEG_TIMEOUT", 0, &errs)

	// --- Local merge ---
	cfg.InputDir = getenv("MERGE_INPUT_DIR", "./input")
	cfg.OutputDir = getenv("MERGE_OUTPUT_DIR", "./output")
	cfg.OutputFilename = getenv("MERGE_OUTPUT_FILENAME", "merged_media.mp4")
	cfg.WorkDir = getenv("MERGE_WORK_DIR", "./tmp")

	// --- AWS ---
	cfg.Region = getenv("AWS_REGION", "ap-southeast-1")
	cfg.OutputBucket = getenv("OUTPUT_BUCKET", "")
	cfg.S3Endpoint = getenv("S3_ENDPOINT", "")

	// --- Kafka consumer ---
	cfg.KafkaBrokers = splitAndTrim(getenv("KAFKA_BROKERS", ""), ",")
	cfg.KafkaTopic = getenv("KAFKA_TOPIC", "")
	cfg.KafkaGroupId = getenv("KAFKA_GROUP_ID", "")
	cfg.KafkaClientId = getenv("KAFKA_CLIENT_ID", "media-merger")
	cfg.KafkaMinBytes = mustInt("KAFKA_MIN_BYTES", 1, &errs)
	cfg.KafkaMaxBytes = mustInt("KAFKA_MAX_BYTES", 1048576, &errs)
	cfg.KafkaMaxWait = mustDuration("KAFKA_MAX_WAIT", 250*time.Millisecond, &errs)
	cfg.KafkaCommitEvery = mustDuration("KAFKA_COMMIT_INTERVAL", 0, &errs)
	cfg.KafkaStartOffset = strings.ToLower(getenv("KAFKA_START_OFFSET", "last"))

	// --- Kafka results ---
	// Results go to the input cluster unless told otherwise.
	cfg.KafkaProducerBroker = splitAndTrim(getenv("KAFKA_BROKERS_PRODUCER", ""), ",")
	if len(cfg.KafkaProducerBroker) == 0 {
		cfg.KafkaProducerBroker = cfg.KafkaBrokers
	}
	cfg.KafkaProducerTopic = getenv("KAFKA_TOPIC_PRODUCER", "")
	cfg.AutoCreateTopics = mustBool("KAFKA_AUTO_CREATE_TOPICS", false, &errs)
	cfg.KafkaOutputTopicPartitions = mustInt("KAFKA_OUTPUT_PARTITIONS", 1, &errs)
	cfg.KafkaOutputTopicReplication = mustInt("KAFKA_OUTPUT_REPLICATION", 1, &errs)

	if len(errs) > 0 {
		return cfg, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

// ValidateWorker checks the settings the Kafka merge worker cannot run
// without.
func (c Config) ValidateWorker() error {
	var errs []string
	if len(c.KafkaBrokers) == 0 {
		errs = append(errs, "KAFKA_BROKERS is required (comma-separated)")
	}
	if c.KafkaTopic == "" {
		errs = append(errs, "KAFKA_TOPIC is required")
	}
	if c.KafkaGroupId == "" {
		errs = append(errs, "KAFKA_GROUP_ID is required")
	}
	if c.KafkaProducerTopic != "" && len(c.KafkaProducerBroker) == 0 {
		errs = append(errs, "KAFKA_BROKERS_PRODUCER is required when KAFKA_TOPIC_PRODUCER is set")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// ValidateProducer checks what submitting a merge job needs.
func (c Config) ValidateProducer() error {
	var errs []string
	if len(c.KafkaBrokers) == 0 {
		errs = append(errs, "KAFKA_BROKERS is required (comma-separated)")
	}
	if c.KafkaTopic == "" {
		errs = append(errs, "KAFKA_TOPIC is required")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c Config) Toolchain() ffmpegx.Toolchain {
	return ffmpegx.Toolchain{
		FFmpeg:  c.FFmpegBin,
		FFprobe: c.FFprobeBin,
		Timeout: c.FFmpegTimeout,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustInt(key string, def int, errs *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, key+": invalid int ("+err.Error()+")")
		return def
	}
	return n
}

func mustBool(key string, def bool, errs *[]string) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, key+": invalid bool ("+err.Error()+")")
		return def
	}
	return b
}

func mustDuration(key string, def time.Duration, errs *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, key+": invalid duration ("+err.Error()+")")
		return def
	}
	return d
}

func splitAndTrim(s, sep string) []string {
	raw := strings.Split(s, sep)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
