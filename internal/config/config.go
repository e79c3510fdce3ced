package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	SwaggerEnabled              bool
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	UptraceCaptureRequestBody   bool
	UptraceRequestBodyMaxBytes  int
	BetterStackEnabled          bool
	BetterStackEndpoint         string
	BetterStackToken            string
	BetterStackTimeout          time.Duration
	BetterStackMinLevel         logging.Level
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	OpenF1Enabled               bool
	OpenF1BaseURL               string
	OpenF1Timeout               time.Duration
	OpenF1MaxRetries            int
	OpenF1RetryDelay            time.Duration
	OpenF1CircuitEnabled        bool
	OpenF1CircuitFailureCount   int
	OpenF1CircuitOpenTimeout    time.Duration
	OpenF1CircuitHalfOpenMaxReq int
	QualifyingCacheTTL          time.Duration
	FallbackPinnedSeason        string
	DeadlineTickInterval        time.Duration
	DeadlineWarningWindow       time.Duration
	NotifyEnabled               bool
	NotifyEndpoint              string
	NotifyToken                 string
	NotifyTimeout               time.Duration
	NotifyMaxRetries            int
	InternalJobToken            string
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
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
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofAddr == "" {
		pprofAddr = ":6060"
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	openF1Enabled, err := strconv.ParseBool(getEnv("OPENF1_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_ENABLED: %w", err)
	}
	openF1Timeout, err := time.ParseDuration(getEnv("OPENF1_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_TIMEOUT: %w", err)
	}
	if openF1Timeout <= 0 {
		return Config{}, fmt.Errorf("OPENF1_TIMEOUT must be > 0")
	}
	openF1MaxRetries, err := getEnvAsInt("OPENF1_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_MAX_RETRIES: %w", err)
	}
	if openF1MaxRetries < 1 {
		return Config{}, fmt.Errorf("OPENF1_MAX_RETRIES must be >= 1")
	}
	openF1RetryDelay, err := time.ParseDuration(getEnv("OPENF1_RETRY_DELAY", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_RETRY_DELAY: %w", err)
	}
	if openF1RetryDelay <= 0 {
		return Config{}, fmt.Errorf("OPENF1_RETRY_DELAY must be > 0")
	}
	openF1CircuitEnabled, err := strconv.ParseBool(getEnv("OPENF1_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_ENABLED: %w", err)
	}
	openF1CircuitFailureCount, err := getEnvAsInt("OPENF1_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if openF1CircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	openF1CircuitOpenTimeout, err := time.ParseDuration(getEnv("OPENF1_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if openF1CircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	openF1CircuitHalfOpenMaxReq, err := getEnvAsInt("OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if openF1CircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("OPENF1_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	openF1BaseURL := strings.TrimSpace(getEnv("OPENF1_BASE_URL", "https://api.openf1.org/v1"))
	if openF1Enabled && openF1BaseURL == "" {
		return Config{}, fmt.Errorf("OPENF1_BASE_URL is required when OPENF1_ENABLED=true")
	}

	qualifyingCacheTTL, err := time.ParseDuration(getEnv("QUALIFYING_CACHE_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse QUALIFYING_CACHE_TTL: %w", err)
	}
	if qualifyingCacheTTL <= 0 {
		return Config{}, fmt.Errorf("QUALIFYING_CACHE_TTL must be > 0")
	}

	deadlineTickInterval, err := time.ParseDuration(getEnv("DEADLINE_TICK_INTERVAL", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DEADLINE_TICK_INTERVAL: %w", err)
	}
	if deadlineTickInterval <= 0 {
		return Config{}, fmt.Errorf("DEADLINE_TICK_INTERVAL must be > 0")
	}
	deadlineWarningWindow, err := time.ParseDuration(getEnv("DEADLINE_WARNING_WINDOW", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DEADLINE_WARNING_WINDOW: %w", err)
	}
	if deadlineWarningWindow <= 0 {
		return Config{}, fmt.Errorf("DEADLINE_WARNING_WINDOW must be > 0")
	}

	notifyEnabled, err := strconv.ParseBool(getEnv("NOTIFY_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFY_ENABLED: %w", err)
	}
	notifyEndpoint := strings.TrimSpace(getEnv("NOTIFY_ENDPOINT", ""))
	if notifyEnabled && notifyEndpoint == "" {
		return Config{}, fmt.Errorf("NOTIFY_ENDPOINT is required when NOTIFY_ENABLED=true")
	}
	notifyTimeout, err := time.ParseDuration(getEnv("NOTIFY_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFY_TIMEOUT: %w", err)
	}
	if notifyTimeout <= 0 {
		return Config{}, fmt.Errorf("NOTIFY_TIMEOUT must be > 0")
	}
	notifyMaxRetries, err := getEnvAsInt("NOTIFY_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFY_MAX_RETRIES: %w", err)
	}
	if notifyMaxRetries < 1 {
		return Config{}, fmt.Errorf("NOTIFY_MAX_RETRIES must be >= 1")
	}

	internalJobToken := strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", ""))
	if appEnv == EnvProd && internalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "f1-survivor-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                       getEnv("DB_URL", ""),
		DBDisablePreparedBinary:     true,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		SwaggerEnabled:              swaggerEnabled,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		UptraceCaptureRequestBody:   uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes:  uptraceRequestBodyMaxBytes,
		BetterStackEnabled:          betterStackEnabled,
		BetterStackEndpoint:         betterStackEndpoint,
		BetterStackToken:            strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:          betterStackTimeout,
		BetterStackMinLevel:         betterStackMinLevel,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		OpenF1Enabled:               openF1Enabled,
		OpenF1BaseURL:               openF1BaseURL,
		OpenF1Timeout:               openF1Timeout,
		OpenF1MaxRetries:            openF1MaxRetries,
		OpenF1RetryDelay:            openF1RetryDelay,
		OpenF1CircuitEnabled:        openF1CircuitEnabled,
		OpenF1CircuitFailureCount:   openF1CircuitFailureCount,
		OpenF1CircuitOpenTimeout:    openF1CircuitOpenTimeout,
		OpenF1CircuitHalfOpenMaxReq: openF1CircuitHalfOpenMaxReq,
		QualifyingCacheTTL:          qualifyingCacheTTL,
		FallbackPinnedSeason:        strings.TrimSpace(getEnv("FALLBACK_PINNED_SEASON", "2025")),
		DeadlineTickInterval:        deadlineTickInterval,
		DeadlineWarningWindow:       deadlineWarningWindow,
		NotifyEnabled:               notifyEnabled,
		NotifyEndpoint:              notifyEndpoint,
		NotifyToken:                 strings.TrimSpace(getEnv("NOTIFY_TOKEN", "")),
		NotifyTimeout:               notifyTimeout,
		NotifyMaxRetries:            notifyMaxRetries,
		InternalJobToken:            internalJobToken,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.FallbackPinnedSeason == "" {
		return Config{}, fmt.Errorf("FALLBACK_PINNED_SEASON cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
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

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
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
