package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultMongoDB      = "storefront"
	defaultRedisAddr    = "localhost:6379"
	defaultJWTSecret    = "change-me-in-production"
	defaultAppPort      = "8080"
	defaultAppEnv       = "local"
	defaultQueueDriver  = "memory"
	defaultQueueWorkers = "5"
	defaultCacheTTL     = "30s"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"MONGO_URI":           defaultMongoURI,
		"MONGO_DB":            defaultMongoDB,
		"REDIS_ADDR":          defaultRedisAddr,
		"REDIS_PASSWORD":      "",
		"STRIPE_SECRET_KEY":   "",
		"JWT_SECRET":          defaultJWTSecret,
		"APP_PORT":            defaultAppPort,
		"APP_ENV":             defaultAppEnv,
		"QUEUE_DRIVER":        defaultQueueDriver,
		"QUEUE_WORKERS":       defaultQueueWorkers,
		"ANALYTICS_CACHE_TTL": defaultCacheTTL,
		"LOG_TO_MONGO":        "false",
	}
}

func MongoURI() string {
	_ = Load()
	return get("MONGO_URI", defaultMongoURI)
}

func MongoDB() string {
	_ = Load()
	return get("MONGO_DB", defaultMongoDB)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func StripeSecretKey() string {
	_ = Load()
	return get("STRIPE_SECRET_KEY", "")
}

func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// QueueDriver selects the queue backend: "memory" or "redis".
func QueueDriver() string {
	_ = Load()

	driver := strings.ToLower(get("QUEUE_DRIVER", defaultQueueDriver))
	switch driver {
	case "memory", "redis":
		return driver
	default:
		return defaultQueueDriver
	}
}

func QueueWorkers() int {
	_ = Load()

	n, err := strconv.Atoi(get("QUEUE_WORKERS", defaultQueueWorkers))
	if err != nil || n < 1 {
		return 5
	}
	return n
}

// AnalyticsCacheTTL is how long the analytics response is cached in Redis.
func AnalyticsCacheTTL() time.Duration {
	_ = Load()

	d, err := time.ParseDuration(get("ANALYTICS_CACHE_TTL", defaultCacheTTL))
	if err != nil || d < 0 {
		return 30 * time.Second
	}
	return d
}

func LogToMongo() bool {
	_ = Load()
	return get("LOG_TO_MONGO", "false") == "true"
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and app.json are available after config.Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
