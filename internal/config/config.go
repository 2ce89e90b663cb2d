package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
)

// Config stores runtime configuration for every entrypoint.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	InternalJobToken   string
	LogLevel           logging.Level

	StorageDriver     string
	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBDisableSSL      bool

	SeasonStore    string
	DynamoDBTable  string
	AWSRegion      string
	RedisURL       string
	RedisKeyPrefix string

	RawArchive       string
	RawArchiveBucket string
	RawArchivePrefix string

	ESPNBaseURL               string
	ESPNTimeout               time.Duration
	ESPNRateLimitRPS          float64
	ESPNRateLimitBurst        int
	ESPNCircuitEnabled        bool
	ESPNCircuitFailureCount   int
	ESPNCircuitOpenTimeout    time.Duration
	ESPNCircuitHalfOpenMaxReq int

	YahooEnabled      bool
	YahooClientID     string
	YahooClientSecret string
	YahooTokenURL     string
	YahooRedirectURL  string
	YahooAPIBaseURL   string
	YahooGameCode     string
	YahooTimeout      time.Duration
	YahooGameKeyTTL   time.Duration

	DiscoveryFloorSeason int

	RefreshWorkers    int
	RefreshSeason     int
	RefreshStaleAfter time.Duration

	MetricsEnabled bool

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SeasonStoreMemory   = "memory"
	SeasonStoreDynamoDB = "dynamodb"
	SeasonStoreRedis    = "redis"

	RawArchiveNone     = "none"
	RawArchivePostgres = "postgres"
	RawArchiveS3       = "s3"
)

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("APP_WRITE_TIMEOUT", "120s")
	if err != nil {
		return Config{}, err
	}

	storageDriver, err := parseChoice("STORAGE_DRIVER", getEnv("STORAGE_DRIVER", StorageMemory), StorageMemory, StoragePostgres)
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storageDriver == StoragePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 || dbMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0 and DB_MAX_IDLE_CONNS must be >= 0")
	}
	dbConnMaxLifetime, err := getEnvAsDuration("DB_CONN_MAX_LIFETIME", "30m")
	if err != nil {
		return Config{}, err
	}
	dbConnMaxIdleTime, err := getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", "5m")
	if err != nil {
		return Config{}, err
	}
	dbDisableSSL, err := strconv.ParseBool(getEnv("DB_DISABLE_SSL", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_SSL: %w", err)
	}

	seasonStore, err := parseChoice("SEASON_STORE", getEnv("SEASON_STORE", SeasonStoreMemory), SeasonStoreMemory, SeasonStoreDynamoDB, SeasonStoreRedis)
	if err != nil {
		return Config{}, err
	}
	dynamoTable := strings.TrimSpace(getEnv("DYNAMODB_TABLE", "fantasy-league-seasons"))
	redisURL := strings.TrimSpace(getEnv("REDIS_URL", ""))
	if seasonStore == SeasonStoreRedis && redisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL is required when SEASON_STORE=%s", SeasonStoreRedis)
	}

	rawArchive, err := parseChoice("RAW_ARCHIVE", getEnv("RAW_ARCHIVE", RawArchiveNone), RawArchiveNone, RawArchivePostgres, RawArchiveS3)
	if err != nil {
		return Config{}, err
	}
	rawArchiveBucket := strings.TrimSpace(getEnv("RAW_ARCHIVE_BUCKET", ""))
	if rawArchive == RawArchiveS3 && rawArchiveBucket == "" {
		return Config{}, fmt.Errorf("RAW_ARCHIVE_BUCKET is required when RAW_ARCHIVE=%s", RawArchiveS3)
	}
	if rawArchive == RawArchivePostgres && storageDriver != StoragePostgres {
		return Config{}, fmt.Errorf("RAW_ARCHIVE=%s requires STORAGE_DRIVER=%s", RawArchivePostgres, StoragePostgres)
	}

	espnTimeout, err := getEnvAsDuration("ESPN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	espnRPS, err := strconv.ParseFloat(getEnv("ESPN_RATE_LIMIT_RPS", "5"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_RATE_LIMIT_RPS: %w", err)
	}
	if espnRPS < 0 {
		return Config{}, fmt.Errorf("ESPN_RATE_LIMIT_RPS must be >= 0")
	}
	espnBurst, err := getEnvAsInt("ESPN_RATE_LIMIT_BURST", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_RATE_LIMIT_BURST: %w", err)
	}
	if espnBurst <= 0 {
		return Config{}, fmt.Errorf("ESPN_RATE_LIMIT_BURST must be > 0")
	}
	espnCircuitEnabled, err := strconv.ParseBool(getEnv("ESPN_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_ENABLED: %w", err)
	}
	espnCircuitFailureCount, err := getEnvAsInt("ESPN_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	espnCircuitOpenTimeout, err := getEnvAsDuration("ESPN_CIRCUIT_OPEN_TIMEOUT", "30s")
	if err != nil {
		return Config{}, err
	}
	espnCircuitHalfOpenMaxReq, err := getEnvAsInt("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if espnCircuitEnabled && (espnCircuitFailureCount <= 0 || espnCircuitHalfOpenMaxReq <= 0) {
		return Config{}, fmt.Errorf("ESPN circuit failure count and half-open max requests must be > 0")
	}

	yahooEnabled, err := strconv.ParseBool(getEnv("YAHOO_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse YAHOO_ENABLED: %w", err)
	}
	yahooClientID := strings.TrimSpace(getEnv("YAHOO_CLIENT_ID", ""))
	yahooClientSecret := strings.TrimSpace(getEnv("YAHOO_CLIENT_SECRET", ""))
	if yahooEnabled && (yahooClientID == "" || yahooClientSecret == "") {
		return Config{}, fmt.Errorf("YAHOO_CLIENT_ID and YAHOO_CLIENT_SECRET are required when YAHOO_ENABLED=true")
	}
	yahooTimeout, err := getEnvAsDuration("YAHOO_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	yahooGameKeyTTL, err := getEnvAsDuration("YAHOO_GAME_KEY_TTL", "24h")
	if err != nil {
		return Config{}, err
	}

	discoveryFloor, err := getEnvAsInt("DISCOVERY_FLOOR_SEASON", 2000)
	if err != nil {
		return Config{}, fmt.Errorf("parse DISCOVERY_FLOOR_SEASON: %w", err)
	}

	refreshWorkers, err := getEnvAsInt("REFRESH_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_WORKERS: %w", err)
	}
	if refreshWorkers <= 0 {
		return Config{}, fmt.Errorf("REFRESH_WORKERS must be > 0")
	}
	refreshSeason, err := getEnvAsInt("REFRESH_SEASON", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_SEASON: %w", err)
	}
	refreshStaleAfter, err := getEnvAsDuration("REFRESH_STALE_AFTER", "24h")
	if err != nil {
		return Config{}, err
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	serviceName := getEnv("APP_SERVICE_NAME", "fantasy-league-activation")

	return Config{
		AppEnv:             appEnv,
		ServiceName:        serviceName,
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),

		StorageDriver:     storageDriver,
		DBURL:             dbURL,
		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,
		DBConnMaxIdleTime: dbConnMaxIdleTime,
		DBDisableSSL:      dbDisableSSL,

		SeasonStore:    seasonStore,
		DynamoDBTable:  dynamoTable,
		AWSRegion:      strings.TrimSpace(getEnv("AWS_REGION", "us-east-1")),
		RedisURL:       redisURL,
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "league-season"),

		RawArchive:       rawArchive,
		RawArchiveBucket: rawArchiveBucket,
		RawArchivePrefix: strings.Trim(getEnv("RAW_ARCHIVE_PREFIX", "raw"), "/"),

		ESPNBaseURL:               strings.TrimRight(getEnv("ESPN_BASE_URL", "https://lm-api-reads.fantasy.espn.com/apis/v3/games/fba"), "/"),
		ESPNTimeout:               espnTimeout,
		ESPNRateLimitRPS:          espnRPS,
		ESPNRateLimitBurst:        espnBurst,
		ESPNCircuitEnabled:        espnCircuitEnabled,
		ESPNCircuitFailureCount:   espnCircuitFailureCount,
		ESPNCircuitOpenTimeout:    espnCircuitOpenTimeout,
		ESPNCircuitHalfOpenMaxReq: espnCircuitHalfOpenMaxReq,

		YahooEnabled:      yahooEnabled,
		YahooClientID:     yahooClientID,
		YahooClientSecret: yahooClientSecret,
		YahooTokenURL:     getEnv("YAHOO_TOKEN_URL", "https://api.login.yahoo.com/oauth2/get_token"),
		YahooRedirectURL:  getEnv("YAHOO_REDIRECT_URL", "oob"),
		YahooAPIBaseURL:   strings.TrimRight(getEnv("YAHOO_API_BASE_URL", "https://fantasysports.yahooapis.com/fantasy/v2"), "/"),
		YahooGameCode:     getEnv("YAHOO_GAME_CODE", "nba"),
		YahooTimeout:      yahooTimeout,
		YahooGameKeyTTL:   yahooGameKeyTTL,

		DiscoveryFloorSeason: discoveryFloor,

		RefreshWorkers:    refreshWorkers,
		RefreshSeason:     refreshSeason,
		RefreshStaleAfter: refreshStaleAfter,

		MetricsEnabled: metricsEnabled,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func parseChoice(key, value string, allowed ...string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, item := range allowed {
		if normalized == item {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, value, strings.Join(allowed, ", "))
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), "=")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "uptrace-dsn") {
			return strings.Trim(strings.TrimSpace(value), "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
