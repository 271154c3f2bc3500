package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Режимы выбора базовой цены для детектора аномалий
const (
	BaselineCurrent  = "current"
	BaselinePrevious = "previous"
)

// Config конфигурация конвейера и сервера
type Config struct {
	// Файлы конвейера
	Paths PathsConfig `json:"paths" yaml:"paths"`

	// Кластеризация номенклатуры
	Clustering ClusteringConfig `json:"clustering" yaml:"clustering"`

	// Агрегация статистики цен
	Analytics AnalyticsConfig `json:"analytics" yaml:"analytics"`

	// Детектор аномалий
	Anomaly AnomalyConfig `json:"anomaly" yaml:"anomaly"`

	// Реестр канонических позиций (SQLite)
	Registry RegistryConfig `json:"registry" yaml:"registry"`

	// HTTP сервер
	Server ServerConfig `json:"server" yaml:"server"`

	// Логирование
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
}

// PathsConfig расположение входных и выходных файлов
type PathsConfig struct {
	RawFile      string `json:"raw_file" yaml:"raw_file"`
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir"`
	UploadDir    string `json:"upload_dir" yaml:"upload_dir"`
}

// ClusteringConfig параметры стандартизации описаний
type ClusteringConfig struct {
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
	UseStemming         bool    `json:"use_stemming" yaml:"use_stemming"`
	RemoveStopWords     bool    `json:"remove_stop_words" yaml:"remove_stop_words"`
	Workers             int     `json:"workers" yaml:"workers"`
}

// AnalyticsConfig параметры агрегатора
type AnalyticsConfig struct {
	GroupBySupplier bool    `json:"group_by_supplier" yaml:"group_by_supplier"`
	TrendEpsilon    float64 `json:"trend_epsilon" yaml:"trend_epsilon"`
	MinTrendSamples int     `json:"min_trend_samples" yaml:"min_trend_samples"`
}

// AnomalyConfig пороги отклонения и режим базовой цены
type AnomalyConfig struct {
	MediumThreshold   float64 `json:"medium_threshold" yaml:"medium_threshold"`
	HighThreshold     float64 `json:"high_threshold" yaml:"high_threshold"`
	CriticalThreshold float64 `json:"critical_threshold" yaml:"critical_threshold"`
	BaselineMode      string  `json:"baseline_mode" yaml:"baseline_mode"`
}

// RegistryConfig настройки SQLite реестра кодов позиций и истории запусков
type RegistryConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	DatabasePath    string        `json:"database_path" yaml:"database_path"`
	MaxOpenConns    int           `json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// ServerConfig настройки HTTP слоя
type ServerConfig struct {
	Port            string        `json:"port" yaml:"port"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout"`
	ProcessTimeout  time.Duration `json:"process_timeout" yaml:"process_timeout"`
	MaxUploadSize   int64         `json:"max_upload_size" yaml:"max_upload_size"`
	RateLimitPerSec int           `json:"rate_limit_per_sec" yaml:"rate_limit_per_sec"`
	// PipelineBinary путь к исполняемому файлу для запуска конвейера; пусто - текущий бинарник
	PipelineBinary string `json:"pipeline_binary" yaml:"pipeline_binary"`
}

// RawDir каталог, в котором лежит исходный файл и его резервные копии
func (p PathsConfig) RawDir() string {
	return filepath.Dir(p.RawFile)
}

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML файл (если указан),
// затем переменные окружения
func LoadConfig(path string) (*Config, error) {
	config := GetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		log.Printf("Конфигурация загружена из файла %s", path)
	}

	applyEnv(config)

	// Валидация
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// applyEnv переопределяет значения из переменных окружения
func applyEnv(c *Config) {
	// Файлы
	c.Paths.RawFile = getEnv("COSTDB_RAW_FILE", c.Paths.RawFile)
	c.Paths.ProcessedDir = getEnv("COSTDB_PROCESSED_DIR", c.Paths.ProcessedDir)
	c.Paths.UploadDir = getEnv("COSTDB_UPLOAD_DIR", c.Paths.UploadDir)

	// Кластеризация
	c.Clustering.SimilarityThreshold = getEnvFloat("COSTDB_SIMILARITY_THRESHOLD", c.Clustering.SimilarityThreshold)
	c.Clustering.UseStemming = getEnvBool("COSTDB_USE_STEMMING", c.Clustering.UseStemming)
	c.Clustering.RemoveStopWords = getEnvBool("COSTDB_REMOVE_STOP_WORDS", c.Clustering.RemoveStopWords)
	c.Clustering.Workers = getEnvInt("COSTDB_WORKERS", c.Clustering.Workers)

	// Аналитика
	c.Analytics.GroupBySupplier = getEnvBool("COSTDB_GROUP_BY_SUPPLIER", c.Analytics.GroupBySupplier)
	c.Analytics.TrendEpsilon = getEnvFloat("COSTDB_TREND_EPSILON", c.Analytics.TrendEpsilon)
	c.Analytics.MinTrendSamples = getEnvInt("COSTDB_MIN_TREND_SAMPLES", c.Analytics.MinTrendSamples)

	// Аномалии
	c.Anomaly.MediumThreshold = getEnvFloat("COSTDB_ANOMALY_MEDIUM", c.Anomaly.MediumThreshold)
	c.Anomaly.HighThreshold = getEnvFloat("COSTDB_ANOMALY_HIGH", c.Anomaly.HighThreshold)
	c.Anomaly.CriticalThreshold = getEnvFloat("COSTDB_ANOMALY_CRITICAL", c.Anomaly.CriticalThreshold)
	c.Anomaly.BaselineMode = getEnv("COSTDB_ANOMALY_BASELINE", c.Anomaly.BaselineMode)

	// Реестр
	c.Registry.Enabled = getEnvBool("COSTDB_REGISTRY_ENABLED", c.Registry.Enabled)
	c.Registry.DatabasePath = getEnv("COSTDB_REGISTRY_PATH", c.Registry.DatabasePath)
	c.Registry.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Registry.MaxOpenConns)
	c.Registry.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Registry.MaxIdleConns)
	c.Registry.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.Registry.ConnMaxLifetime)

	// Сервер
	c.Server.Port = getEnv("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.ProcessTimeout = getEnvDuration("PROCESS_TIMEOUT", c.Server.ProcessTimeout)
	c.Server.MaxUploadSize = int64(getEnvInt("MAX_UPLOAD_SIZE", int(c.Server.MaxUploadSize)))
	c.Server.RateLimitPerSec = getEnvInt("RATE_LIMIT_PER_SEC", c.Server.RateLimitPerSec)
	c.Server.PipelineBinary = getEnv("COSTDB_PIPELINE_BINARY", c.Server.PipelineBinary)

	// Логирование
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool получает переменную окружения как bool или возвращает значение по умолчанию
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
