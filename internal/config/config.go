package config

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

const (
	ServiceName    = "flash-item"
	ServiceVersion = "0.1.0"
)

const (
	InventorySQL   = "sql"
	InventoryRedis = "redis"

	SinkNATS  = "nats"
	SinkKafka = "kafka"
	SinkRedis = "redis"
	SinkLog   = "log"
)

type Config struct {
	LogLevel        string
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration

	StoreDriver string // mysql, postgres or sqlite
	StoreDSN    string

	InventoryBackend string // sql or redis
	StockWorkers     int    // write-behind workers persisting Redis decrements
	StockQueueSize   int

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string
	RedisPassword string
	RedisPoolSize int

	EventSink      string // nats, kafka, redis or log
	NATSURL        string
	NATSStream     string
	KafkaBrokers   []string
	KafkaTopic     string
	RedisStream    string
	RedisStreamMax int
	PublishTimeout time.Duration

	JWTSecret      string
	OtelEndpoint   string // empty disables trace export
	HealthInterval time.Duration
}

// Load reads flags from args, falling back to environment variables and defaults.
func Load(args []string) (*Config, error) {
	c := &Config{}
	fs := flag.NewFlagSet(ServiceName, flag.ContinueOnError)

	fs.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "info"), "Set log level: debug, info, warn, error.")
	fs.StringVar(&c.HTTPAddr, "httpAddr", LookupEnvString("HTTP_ADDR", ":8080"), `Address in form of "[host]:port" for the HTTP API.`)
	fs.StringVar(&c.GRPCAddr, "grpcAddr", LookupEnvString("GRPC_ADDR", ":50051"), `Address in form of "[host]:port" for the gRPC health endpoint.`)
	fs.DurationVar(&c.ShutdownTimeout, "shutdownTimeout", LookupEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second), "How long to wait for in-flight requests on shutdown.")

	fs.StringVar(&c.StoreDriver, "storeDriver", LookupEnvString("STORE_DRIVER", "mysql"), "Item store: mysql, postgres or sqlite.")
	fs.StringVar(&c.StoreDSN, "storeDSN", LookupEnvString("STORE_DSN", "root:root@tcp(localhost:3306)/flashsale?parseTime=true"), "Item store data source name.")

	fs.StringVar(&c.InventoryBackend, "inventoryBackend", LookupEnvString("INVENTORY_BACKEND", InventorySQL), "Where stock counters live: sql or redis.")
	fs.IntVar(&c.StockWorkers, "stockWorkers", LookupEnvInt("STOCK_WORKERS", 10), "Workers persisting Redis stock decrements to the item store.")
	fs.IntVar(&c.StockQueueSize, "stockQueueSize", LookupEnvInt("STOCK_QUEUE_SIZE", 10000), "Pending stock decrements buffered for persistence.")

	fs.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", "127.0.0.1:6379"), "Redis address in host[:port] format.")
	fs.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	fs.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")
	fs.IntVar(&c.RedisPoolSize, "redisPoolSize", LookupEnvInt("REDIS_POOL_SIZE", 100), "Redis connection pool size.")

	var brokers string
	fs.StringVar(&c.EventSink, "eventSink", LookupEnvString("EVENT_SINK", SinkLog), "Event sink: nats, kafka, redis or log.")
	fs.StringVar(&c.NATSURL, "natsURL", LookupEnvString("NATS_URL", "nats://127.0.0.1:4222"), "NATS server URL.")
	fs.StringVar(&c.NATSStream, "natsStream", LookupEnvString("NATS_STREAM", "FLASH_ITEM_EVENTS"), "JetStream stream name.")
	fs.StringVar(&brokers, "kafkaBrokers", LookupEnvString("KAFKA_BROKERS", "localhost:9092"), "Comma separated Kafka brokers.")
	fs.StringVar(&c.KafkaTopic, "kafkaTopic", LookupEnvString("KAFKA_TOPIC", "flash-item-events"), "Kafka topic for lifecycle events.")
	fs.StringVar(&c.RedisStream, "redisStream", LookupEnvString("REDIS_STREAM", "flash_item:events"), "Redis stream key for lifecycle events.")
	fs.IntVar(&c.RedisStreamMax, "redisStreamMax", LookupEnvInt("REDIS_STREAM_MAX", 100000), "Approximate max length of the Redis event stream.")
	fs.DurationVar(&c.PublishTimeout, "publishTimeout", LookupEnvDuration("PUBLISH_TIMEOUT", 5*time.Second), "Timeout for a single event publish.")

	fs.StringVar(&c.JWTSecret, "jwtSecret", LookupEnvString("JWT_SECRET", ""), "HMAC secret for operator tokens.")
	fs.StringVar(&c.OtelEndpoint, "otelEndpoint", LookupEnvString("OTEL_ENDPOINT", ""), "OTLP/HTTP endpoint (host:port) for traces.")
	fs.DurationVar(&c.HealthInterval, "healthInterval", LookupEnvDuration("HEALTH_INTERVAL", 10*time.Second), "How often dependencies are probed.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	c.KafkaBrokers = splitList(brokers)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}
	if c.StoreDSN == "" {
		return fmt.Errorf("STORE_DSN cannot be empty")
	}

	switch c.InventoryBackend {
	case InventorySQL:
	case InventoryRedis:
		if c.StockWorkers <= 0 || c.StockQueueSize <= 0 {
			return fmt.Errorf("STOCK_WORKERS and STOCK_QUEUE_SIZE must be positive")
		}
	default:
		return fmt.Errorf("unsupported inventory backend %q", c.InventoryBackend)
	}

	switch c.EventSink {
	case SinkNATS, SinkRedis, SinkLog:
	case SinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported event sink %q", c.EventSink)
	}

	if c.HealthInterval <= 0 {
		return fmt.Errorf("HEALTH_INTERVAL must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// NeedsRedis reports whether any component is configured to use Redis.
func (c *Config) NeedsRedis() bool {
	return c.InventoryBackend == InventoryRedis || c.EventSink == SinkRedis
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
