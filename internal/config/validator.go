package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация путей
	if c.Paths.RawFile == "" {
		errors = append(errors, "raw file path is required")
	}
	if c.Paths.ProcessedDir == "" {
		errors = append(errors, "processed directory is required")
	}

	// Валидация кластеризации
	if c.Clustering.SimilarityThreshold <= 0 || c.Clustering.SimilarityThreshold >= 1 {
		errors = append(errors, fmt.Sprintf("similarity threshold must be in (0, 1), got %v", c.Clustering.SimilarityThreshold))
	}
	if c.Clustering.Workers < 1 {
		errors = append(errors, "clustering workers must be at least 1")
	}

	// Валидация аналитики
	if c.Analytics.TrendEpsilon < 0 {
		errors = append(errors, "trend epsilon cannot be negative")
	}
	if c.Analytics.MinTrendSamples < 2 {
		errors = append(errors, "min trend samples must be at least 2")
	}

	// Валидация порогов аномалий
	a := c.Anomaly
	if a.MediumThreshold <= 0 {
		errors = append(errors, "medium anomaly threshold must be positive")
	}
	if a.HighThreshold <= a.MediumThreshold {
		errors = append(errors, "high anomaly threshold must be greater than medium threshold")
	}
	if a.CriticalThreshold <= a.HighThreshold {
		errors = append(errors, "critical anomaly threshold must be greater than high threshold")
	}
	if a.BaselineMode != BaselineCurrent && a.BaselineMode != BaselinePrevious {
		errors = append(errors, fmt.Sprintf("invalid baseline mode: %s (valid: %s, %s)",
			a.BaselineMode, BaselineCurrent, BaselinePrevious))
	}

	// Валидация реестра
	if c.Registry.Enabled {
		if c.Registry.DatabasePath == "" {
			errors = append(errors, "registry database path is required when registry is enabled")
		}
		if c.Registry.MaxOpenConns < 1 {
			errors = append(errors, "max open connections must be at least 1")
		}
		if c.Registry.MaxIdleConns > c.Registry.MaxOpenConns {
			errors = append(errors, "max idle connections cannot be greater than max open connections")
		}
		if c.Registry.ConnMaxLifetime < time.Second {
			errors = append(errors, "connection max lifetime must be at least 1 second")
		}
	}

	// Валидация порта
	if c.Server.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Server.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Server.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}
	if c.Server.ProcessTimeout < time.Second {
		errors = append(errors, "process timeout must be at least 1 second")
	}
	if c.Server.MaxUploadSize < 1 {
		errors = append(errors, "max upload size must be positive")
	}
	if c.Server.RateLimitPerSec < 0 {
		errors = append(errors, "rate limit cannot be negative")
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Валидация формата логов
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "text" {
		errors = append(errors, fmt.Sprintf("invalid log format: %s (valid: json, text)", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Paths: PathsConfig{
			RawFile:      "data/raw/purchase_orders_raw.csv",
			ProcessedDir: "data/processed",
			UploadDir:    "data/uploads",
		},
		Clustering: ClusteringConfig{
			SimilarityThreshold: 0.7,
			UseStemming:         true,
			RemoveStopWords:     true,
			Workers:             4,
		},
		Analytics: AnalyticsConfig{
			GroupBySupplier: false,
			TrendEpsilon:    0.05,
			MinTrendSamples: 2,
		},
		Anomaly: AnomalyConfig{
			MediumThreshold:   0.2,
			HighThreshold:     0.4,
			CriticalThreshold: 0.75,
			BaselineMode:      BaselineCurrent,
		},
		Registry: RegistryConfig{
			Enabled:         false,
			DatabasePath:    "data/registry.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Server: ServerConfig{
			Port:            "5000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    6 * time.Minute,
			ProcessTimeout:  300 * time.Second,
			MaxUploadSize:   16 * 1024 * 1024,
			RateLimitPerSec: 5,
		},
		LogLevel:  "INFO",
		LogFormat: "json",
	}
}
