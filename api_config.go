package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type apiConfig struct {
	cities          *CityResolver
	dates           *DateFormatter
	tickets         TicketService
	extractor       TripExtractor
	sessions        SessionStore
	memSessions     *MemorySessionStore
	extractorReady  bool
	httpClient      *http.Client
	sessionTTL      time.Duration
	janitorInterval time.Duration
	port            string
	devMode         bool
	logger          *slog.Logger
}

// getEnv retrieves an environment variable by key, with a fallback value.
func getEnv(key, fallback string, logger *slog.Logger) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
	return fallback
}

// getEnvAsInt retrieves an environment variable as an integer, with a fallback value.
func getEnvAsInt(key string, fallback int, logger *slog.Logger) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		logger.Info("environment variable not set, using fallback", "key", key, "fallback", fallback)
		return fallback
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		logger.Warn("invalid integer value for environment variable, using fallback", "key", key, "value", valStr, "error", err)
		return fallback
	}
	return val
}

func config() *apiConfig {
	devModeStr := os.Getenv("DEV_MODE")
	devMode, err := strconv.ParseBool(devModeStr)
	if err != nil {
		devMode = false
	}

	var logger *slog.Logger
	if devMode {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, relying on environment variables")
	}

	httpClient := &http.Client{
		Timeout: time.Duration(getEnvAsInt("PROVIDER_TIMEOUT_SEC", 20, logger)) * time.Second,
	}

	cityTable := defaultCityTable()
	if path, ok := os.LookupEnv("CITY_TABLE_FILE"); ok {
		cityTable, err = loadCityTable(path)
		if err != nil {
			logger.Error("could not load city table", "path", path, "error", err)
			os.Exit(1)
		}
	}

	routeURL := getEnv("PROVIDER_ROUTE_URL", "https://service.safar724.com/buses/api/bus/route", logger)
	schema := getEnv("PROVIDER_SCHEMA", SchemaSlugDash, logger)

	extractor := NewOpenAIExtractor(
		os.Getenv("OPENAI_API_KEY"),
		getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", logger),
		getEnv("OPENAI_MODEL", "gpt-4o-mini", logger),
		&http.Client{Timeout: 30 * time.Second},
		logger,
	)

	sessionTTL := time.Duration(getEnvAsInt("SESSION_TTL_MIN", 30, logger)) * time.Minute

	cfg := apiConfig{
		extractorReady:  os.Getenv("OPENAI_API_KEY") != "",
		cities:          NewCityResolver(cityTable),
		dates:           NewDateFormatter(getEnv("TRAVEL_YEAR", "1404", logger)),
		extractor:       extractor,
		httpClient:      httpClient,
		sessionTTL:      sessionTTL,
		janitorInterval: time.Duration(getEnvAsInt("JANITOR_INTERVAL_MIN", 10, logger)) * time.Minute,
		port:            getEnv("PORT", "8080", logger),
		devMode:         devMode,
		logger:          logger,
	}
	cfg.tickets = NewSafar724Client(routeURL, schema, httpClient, logger)

	// Sessions live in Redis when a URL is configured (multi-replica
	// deployments), otherwise in memory with the janitor sweeping stale ones.
	if redisURL, ok := os.LookupEnv("SESSIONS_REDIS_URL"); ok {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("could not parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(opt)
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logger.Error("could not connect to Redis", "error", err)
			os.Exit(1)
		}
		cfg.sessions = NewRedisSessionStore(redisClient, sessionTTL)
	} else {
		memStore := NewMemorySessionStore()
		cfg.sessions = memStore
		cfg.memSessions = memStore
	}

	return &cfg
}

// loadCityTable reads a JSON object of city name -> provider code overrides.
func loadCityTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	return table, nil
}
