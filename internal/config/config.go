// Пакет config — загрузка и валидация конфигурации Document Intake
// из переменных окружения (опционально дополненных .env файлом).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые значения DI_TOKEN_STORE.
const (
	TokenStorePostgres = "postgres"
	TokenStoreMemory   = "memory"
)

// Config содержит все параметры конфигурации Document Intake.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Имя вершины графа в topologymetrics
	ServiceID string
	// Корневая директория пространств имён субъектов
	UploadDir string
	// Имя поддиректории для подписанных документов (один элемент пути)
	AuthorizationDir string
	// Размер буфера multipart в памяти
	MaxMemory int64
	// Максимальный размер тела запроса загрузки
	MaxUploadSize int64

	// Время жизни токена на скачивание подписанного документа
	TokenTTL time.Duration
	// Хранилище токенов: postgres или memory
	TokenStore string
	// Размер LRU-кэша записей токенов (0 отключает кэш)
	TokenCacheSize int

	// Параметры PostgreSQL (обязательны для TokenStore == postgres)
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	// Разрешённые CORS origins
	CORSAllowedOrigins []string

	// Ограничение частоты запросов к /signed-document (на IP клиента)
	FetchRateLimit float64
	FetchRateBurst int

	// Обратные прокси, которым разрешено передавать X-Forwarded-For.
	// Пустой список: IP клиента берётся только из адреса соединения.
	TrustedProxies []netip.Prefix

	// Таймауты HTTP-сервера
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// Таймаут graceful shutdown
	ShutdownTimeout time.Duration

	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics
	DephealthGroup string

	// Путь к TLS сертификату и ключу (опционально, оба или ни одного)
	TLSCert string
	TLSKey  string

	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// поля и возвращает Config или ошибку.
// Перед чтением переменных применяется .env файл (DI_ENV_FILE, по умолчанию .env),
// уже заданные переменные окружения не перезаписываются.
//
//nolint:cyclop,funlen // линейная последовательность проверок
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvDefault("DI_ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{}
	var err error

	// DI_PORT — порт HTTP-сервера (по умолчанию 3027)
	cfg.Port, err = getEnvInt("DI_PORT", 3027)
	if err != nil {
		return nil, fmt.Errorf("DI_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("DI_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	cfg.ServiceID = getEnvDefault("DI_SERVICE_ID", "document-intake")

	// DI_UPLOAD_DIR — корень пространств имён (по умолчанию uploads)
	cfg.UploadDir = getEnvDefault("DI_UPLOAD_DIR", "uploads")

	// DI_AUTHORIZATION_DIR — имя поддиректории подписанных документов
	cfg.AuthorizationDir = getEnvDefault("DI_AUTHORIZATION_DIR", "autorización")
	if !isSinglePathElement(cfg.AuthorizationDir) {
		return nil, fmt.Errorf("DI_AUTHORIZATION_DIR: %q должно быть одним элементом пути", cfg.AuthorizationDir)
	}

	// DI_MAX_MEMORY — буфер multipart в памяти (по умолчанию 32 MB)
	cfg.MaxMemory, err = getEnvInt64("DI_MAX_MEMORY", 32<<20)
	if err != nil {
		return nil, fmt.Errorf("DI_MAX_MEMORY: %w", err)
	}
	if cfg.MaxMemory <= 0 {
		return nil, fmt.Errorf("DI_MAX_MEMORY: значение должно быть положительным")
	}

	// DI_MAX_UPLOAD_SIZE — максимальный размер тела запроса (по умолчанию 256 MB)
	cfg.MaxUploadSize, err = getEnvInt64("DI_MAX_UPLOAD_SIZE", 256<<20)
	if err != nil {
		return nil, fmt.Errorf("DI_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("DI_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	// DI_TOKEN_TTL — время жизни токена (по умолчанию 300s)
	cfg.TokenTTL, err = getEnvDuration("DI_TOKEN_TTL", 300*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("DI_TOKEN_TTL: значение должно быть положительным")
	}

	// DI_TOKEN_STORE — хранилище токенов (по умолчанию postgres)
	cfg.TokenStore = getEnvDefault("DI_TOKEN_STORE", TokenStorePostgres)
	if cfg.TokenStore != TokenStorePostgres && cfg.TokenStore != TokenStoreMemory {
		return nil, fmt.Errorf("DI_TOKEN_STORE: недопустимое значение %q, допустимые: postgres, memory", cfg.TokenStore)
	}

	cfg.TokenCacheSize, err = getEnvInt("DI_TOKEN_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("DI_TOKEN_CACHE_SIZE: %w", err)
	}
	if cfg.TokenCacheSize < 0 {
		return nil, fmt.Errorf("DI_TOKEN_CACHE_SIZE: значение не может быть отрицательным")
	}

	if cfg.TokenStore == TokenStorePostgres {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	// DI_CORS_ALLOWED_ORIGINS — список origins через запятую
	cfg.CORSAllowedOrigins = parseCSV(getEnvDefault("DI_CORS_ALLOWED_ORIGINS", "https://historiallaboral.com"))

	cfg.FetchRateLimit, err = getEnvFloat("DI_FETCH_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("DI_FETCH_RATE_LIMIT: %w", err)
	}
	if cfg.FetchRateLimit <= 0 {
		return nil, fmt.Errorf("DI_FETCH_RATE_LIMIT: значение должно быть положительным")
	}
	cfg.FetchRateBurst, err = getEnvInt("DI_FETCH_RATE_BURST", 10)
	if err != nil {
		return nil, fmt.Errorf("DI_FETCH_RATE_BURST: %w", err)
	}
	if cfg.FetchRateBurst < 1 {
		return nil, fmt.Errorf("DI_FETCH_RATE_BURST: значение должно быть не меньше 1")
	}

	// DI_TRUSTED_PROXIES — адреса или CIDR через запятую
	cfg.TrustedProxies, err = parsePrefixes(getEnvDefault("DI_TRUSTED_PROXIES", ""))
	if err != nil {
		return nil, fmt.Errorf("DI_TRUSTED_PROXIES: %w", err)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("DI_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("DI_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("DI_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("DI_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.DephealthCheckInterval, err = getEnvDuration("DI_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DI_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("DI_DEPHEALTH_GROUP", "document-intake")

	// DI_TLS_CERT и DI_TLS_KEY задаются парой
	cfg.TLSCert = getEnvDefault("DI_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("DI_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("DI_TLS_CERT и DI_TLS_KEY должны задаваться вместе")
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("DI_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("DI_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("DI_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DI_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	return cfg, nil
}

// loadDatabase читает параметры подключения к PostgreSQL.
func loadDatabase(cfg *Config) error {
	var err error

	cfg.DBHost, err = getEnvRequired("DI_DB_HOST")
	if err != nil {
		return err
	}
	cfg.DBPort, err = getEnvInt("DI_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("DI_DB_PORT: %w", err)
	}
	cfg.DBName, err = getEnvRequired("DI_DB_NAME")
	if err != nil {
		return err
	}
	cfg.DBUser, err = getEnvRequired("DI_DB_USER")
	if err != nil {
		return err
	}
	cfg.DBPassword, err = getEnvRequired("DI_DB_PASSWORD")
	if err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("DI_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("DI_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}
	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате key=value.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения (для golang-migrate и меток topologymetrics).
func (c *Config) DatabaseURL(scheme string) string {
	return fmt.Sprintf("%s://%s:%s@%s:%d/%s?sslmode=%s",
		scheme, c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// loadEnvFile применяет .env файл, если он существует.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("DI_ENV_FILE: ошибка чтения %s: %w", path, err)
	}
	return nil
}

// isSinglePathElement проверяет, что имя не содержит разделителей и не является . или ..
func isSinglePathElement(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvFloat возвращает float64 значение переменной окружения или значение по умолчанию.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное число: %q", val)
	}
	return f, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 5m, 1h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбивает строку по запятым, отбрасывая пустые элементы.
func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// parsePrefixes разбирает список адресов и CIDR через запятую.
// Одиночный адрес превращается в префикс полной длины.
func parsePrefixes(s string) ([]netip.Prefix, error) {
	items := parseCSV(s)
	result := make([]netip.Prefix, 0, len(items))
	for _, item := range items {
		if strings.Contains(item, "/") {
			p, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("недопустимый CIDR %q: %w", item, err)
			}
			result = append(result, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("недопустимый адрес %q: %w", item, err)
		}
		addr = addr.Unmap()
		result = append(result, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return result, nil
}
