package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTP struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Postgres struct {
	Host     string
	Port     string
	DB       string
	User     string
	Password string
	SSLMode  string

	OrdersTable string
	MaxConns    int32
	MinConns    int32
	TraceLevel  string
}

type Cache struct {
	Backend           string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	Cap               int
	TTL               time.Duration
	InvalidateOnWrite bool
}

type Kafka struct {
	Brokers []string
	Topic   string
	Group   string
	Workers int
}

type Breaker struct {
	Threshold   uint32
	OpenTimeout time.Duration
	MaxHalfOpen uint32
}

type Retry struct {
	Attempts     int
	Base         time.Duration
	Max          time.Duration
	JitterFactor float64
}

type Log struct {
	Env   string
	Level string
}

const (
	CacheRedis  = "redis"
	CacheMemory = "memory"
)

type Config struct {
	HTTP        HTTP
	MaxPageSize int

	Pg      Postgres
	Cache   Cache
	Kafka   Kafka
	Breaker Breaker
	Retry   Retry
	Log     Log
}

// Load fatals on error; tests call load directly.
func Load() Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	return cfg
}

func load() (Config, error) {
	_ = godotenv.Load("env/.env")

	cfg := Config{
		HTTP: HTTP{
			Addr:         envDefault("HTTP_ADDR", ":8081"),
			ReadTimeout:  envDurationMS("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: envDurationMS("HTTP_WRITE_TIMEOUT", 30*time.Second),
		},
		MaxPageSize: envInt("MAX_PAGE_SIZE", 1000),

		Pg: Postgres{
			Host:        strings.TrimSpace(os.Getenv("PG_HOST")),
			Port:        strings.TrimSpace(envDefault("PG_PORT", "5432")),
			DB:          strings.TrimSpace(os.Getenv("PG_DB")),
			User:        strings.TrimSpace(os.Getenv("PG_USER")),
			Password:    strings.TrimSpace(os.Getenv("PG_PASSWORD")),
			SSLMode:     strings.TrimSpace(envDefault("PG_SSLMODE", "disable")),
			OrdersTable: envDefault("PG_ORDERS_TABLE", "orders"),
			MaxConns:    int32(envInt("PG_MAX_CONNS", 10)),
			MinConns:    int32(envInt("PG_MIN_CONNS", 2)),
			TraceLevel:  envDefault("PG_TRACE_LEVEL", "warn"),
		},

		Cache: Cache{
			Backend:           strings.ToLower(envDefault("CACHE_BACKEND", CacheRedis)),
			RedisHost:         envDefault("REDIS_HOST", "redis-server"),
			RedisPort:         envDefault("REDIS_PORT", "6379"),
			RedisPassword:     os.Getenv("REDIS_PASSWORD"),
			RedisDB:           envInt("REDIS_DB", 0),
			Cap:               envInt("CACHE_CAP", 10000),
			TTL:               envDurationMS("CACHE_TTL", time.Hour),
			InvalidateOnWrite: envBool("CACHE_INVALIDATE_ON_WRITE", false),
		},

		Kafka: Kafka{
			Brokers: splitCSV(strings.TrimSpace(os.Getenv("KAFKA_BROKERS"))),
			Topic:   envDefault("KAFKA_TOPIC", "orders"),
			Group:   envDefault("KAFKA_GROUP", "orders-api"),
			Workers: envInt("KAFKA_WORKERS", 4),
		},

		Breaker: Breaker{
			Threshold:   envUint32("BREAKER_THRESHOLD", 5),
			OpenTimeout: envDurationMS("BREAKER_OPENTIMEOUT", 10*time.Second),
			MaxHalfOpen: envUint32("BREAKER_MAXHALFOPEN", 3),
		},

		Retry: Retry{
			Attempts:     envInt("RETRY_ATTEMPTS", 3),
			Base:         envDurationMS("RETRY_BASE", 100*time.Millisecond),
			Max:          envDurationMS("RETRY_MAX", 5*time.Second),
			JitterFactor: envFloat64("RETRY_JITTERFACTOR", 0.3),
		},

		Log: Log{
			Env:   envDefault("LOG_ENV", "development"),
			Level: envDefault("LOG_LEVEL", "info"),
		},
	}

	// Validate required envs and basic sanity.
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	req := []struct{ key, val string }{
		{"PG_HOST", c.Pg.Host},
		{"PG_DB", c.Pg.DB},
		{"PG_USER", c.Pg.User},
		{"PG_PASSWORD", c.Pg.Password},
	}
	for _, r := range req {
		if strings.TrimSpace(r.val) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &missingEnvError{Keys: missing}
	}

	if c.Cache.Backend != CacheRedis && c.Cache.Backend != CacheMemory {
		return &invalidEnvError{Key: "CACHE_BACKEND", Value: c.Cache.Backend, Reason: "want redis or memory"}
	}

	if c.Cache.Cap <= 0 {
		log.Printf("CACHE_CAP is %d, adjusting to 1", c.Cache.Cap)
		c.Cache.Cap = 1
	}
	if c.Cache.TTL <= 0 {
		log.Printf("CACHE_TTL is %v, adjusting to 1h", c.Cache.TTL)
		c.Cache.TTL = time.Hour
	}
	if c.MaxPageSize < 0 {
		log.Printf("MAX_PAGE_SIZE is %d, disabling the bound", c.MaxPageSize)
		c.MaxPageSize = 0
	}
	if c.Pg.MinConns > c.Pg.MaxConns {
		log.Printf("PG_MIN_CONNS (%d) > PG_MAX_CONNS (%d), adjusting min to max", c.Pg.MinConns, c.Pg.MaxConns)
		c.Pg.MinConns = c.Pg.MaxConns
	}
	if c.Kafka.Workers <= 0 {
		log.Printf("KAFKA_WORKERS is %d, adjusting to 1", c.Kafka.Workers)
		c.Kafka.Workers = 1
	}
	if c.Retry.Attempts < 0 {
		log.Printf("RETRY_ATTEMPTS is %d, adjusting to 0", c.Retry.Attempts)
		c.Retry.Attempts = 0
	}
	if c.Retry.Base <= 0 {
		log.Printf("RETRY_BASE is %v, adjusting to 100ms", c.Retry.Base)
		c.Retry.Base = 100 * time.Millisecond
	}
	if c.Retry.Max < c.Retry.Base {
		log.Printf("RETRY_MAX (%v) < RETRY_BASE (%v), adjusting max to base", c.Retry.Max, c.Retry.Base)
		c.Retry.Max = c.Retry.Base
	}
	return nil
}

type missingEnvError struct{ Keys []string }

func (e *missingEnvError) Error() string {
	return "missing required envs: " + strings.Join(e.Keys, ", ")
}

type invalidEnvError struct {
	Key, Value, Reason string
}

func (e *invalidEnvError) Error() string {
	return "invalid " + e.Key + "=" + strconv.Quote(e.Value) + ": " + e.Reason
}

// KafkaEnabled reports whether the optional ingest consumer should run.
func (c Config) KafkaEnabled() bool { return len(c.Kafka.Brokers) > 0 }

// DSN builds a proper Postgres URL, safely escaping user/pass and query.
func (c Config) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Pg.User, c.Pg.Password),
		Host:   net.JoinHostPort(c.Pg.Host, c.Pg.Port),
		Path:   "/" + c.Pg.DB,
	}
	q := url.Values{}
	if c.Pg.SSLMode != "" {
		q.Set("sslmode", c.Pg.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c Config) RedisAddr() string {
	return net.JoinHostPort(c.Cache.RedisHost, c.Cache.RedisPort)
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return n
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %t: %v", k, v, def, err)
		return def
	}
	return b
}

func envUint32(k string, def uint32) uint32 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d: %v", k, v, def, err)
		return def
	}
	return uint32(u)
}

func envFloat64(k string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %.3f: %v", k, v, def, err)
		return def
	}
	return f
}

// envDurationMS supports either plain integer milliseconds ("1500") or
// Go duration strings ("1.5s", "250ms", "2m"). CACHE_TTL=3600 therefore
// means 3.6s; write "3600s" for an hour.
func envDurationMS(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if strings.IndexFunc(v, func(r rune) bool { return r < '0' || r > '9' }) != -1 {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
			return def
		}
		return d
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v: %v", k, v, def, err)
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
