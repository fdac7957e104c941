/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StoreBackend selects where the running order lives.
type StoreBackend string

const (
	StoreSheets   StoreBackend = "sheets"
	StorePostgres StoreBackend = "postgres"
	StoreMySQL    StoreBackend = "mysql"
	StoreSQLite   StoreBackend = "sqlite"
	StoreMemory   StoreBackend = "memory"
)

// EventBridge selects the cross-instance event relay.
type EventBridge string

const (
	BridgeNone  EventBridge = "none"
	BridgeRedis EventBridge = "redis"
	BridgeNATS  EventBridge = "nats"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://stage.example.com)
	StageName   string
	MetricsBind string

	// Schedule store
	StoreBackend StoreBackend
	DBDSN        string // Required for the postgres/mysql/sqlite backends

	// Google Sheets store
	SheetsID              string
	SheetsTab             string // Empty means the first sheet
	SheetsCredentialsFile string

	// Cross-instance event bridge
	EventBridge   EventBridge
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	NATSURL       string
	InstanceID    string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// S3 report export (optional; disabled without a bucket)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3UsePathStyle    bool   // Required for MinIO

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("HEIMDALL_ENV", "development"),
		HTTPBind:    getEnv("HEIMDALL_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("HEIMDALL_HTTP_PORT", 8080),
		BaseURL:     getEnv("HEIMDALL_BASE_URL", ""),
		StageName:   getEnvAny([]string{"HEIMDALL_STAGE_NAME", "STAGE_NAME"}, "Main Stage"),
		MetricsBind: getEnv("HEIMDALL_METRICS_BIND", "127.0.0.1:9000"),

		StoreBackend: StoreBackend(getEnv("HEIMDALL_STORE_BACKEND", string(StoreMemory))),
		DBDSN:        getEnv("HEIMDALL_DB_DSN", ""),

		// The GOOGLE_* fallbacks match the pre-rewrite deployment env.
		SheetsID:              getEnvAny([]string{"HEIMDALL_SHEETS_ID", "GOOGLE_SHEETS_ID"}, ""),
		SheetsTab:             getEnvAny([]string{"HEIMDALL_SHEETS_TAB", "GOOGLE_SHEET_TAB"}, ""),
		SheetsCredentialsFile: getEnvAny([]string{"HEIMDALL_SHEETS_CREDENTIALS_FILE", "GOOGLE_SERVICE_ACCOUNT_FILE"}, ""),

		EventBridge:   EventBridge(getEnv("HEIMDALL_EVENT_BRIDGE", string(BridgeNone))),
		RedisAddr:     getEnv("HEIMDALL_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("HEIMDALL_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("HEIMDALL_REDIS_DB", 0),
		NATSURL:       getEnv("HEIMDALL_NATS_URL", "nats://localhost:4222"),
		InstanceID:    getEnv("HEIMDALL_INSTANCE_ID", ""),

		TracingEnabled:    getEnvBool("HEIMDALL_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("HEIMDALL_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("HEIMDALL_TRACING_SAMPLE_RATE", 1.0),

		S3AccessKeyID:     getEnvAny([]string{"HEIMDALL_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"HEIMDALL_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"HEIMDALL_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"HEIMDALL_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"HEIMDALL_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3UsePathStyle:    getEnvBool("HEIMDALL_S3_USE_PATH_STYLE", false),
	}

	switch cfg.StoreBackend {
	case StoreSheets, StorePostgres, StoreMySQL, StoreSQLite, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	switch cfg.EventBridge {
	case BridgeNone, BridgeRedis, BridgeNATS:
	default:
		return nil, fmt.Errorf("unsupported event bridge %q", cfg.EventBridge)
	}

	if cfg.StoreBackend == StoreSheets {
		if cfg.SheetsID == "" {
			return nil, fmt.Errorf("HEIMDALL_SHEETS_ID must be provided for the sheets backend")
		}
		if cfg.SheetsCredentialsFile == "" {
			return nil, fmt.Errorf("HEIMDALL_SHEETS_CREDENTIALS_FILE must be provided for the sheets backend")
		}
	}

	if isDatabaseBackend(cfg.StoreBackend) && cfg.DBDSN == "" {
		return nil, fmt.Errorf("HEIMDALL_DB_DSN must be provided for the %s backend", cfg.StoreBackend)
	}

	if strings.EqualFold(cfg.Environment, "production") && cfg.StoreBackend == StoreMemory {
		return nil, fmt.Errorf("the memory store backend is for development only")
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func isDatabaseBackend(b StoreBackend) bool {
	return b == StorePostgres || b == StoreMySQL || b == StoreSQLite
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"STAGE_NAME":                  "use HEIMDALL_STAGE_NAME",
		"GOOGLE_SHEETS_ID":            "use HEIMDALL_SHEETS_ID",
		"GOOGLE_SHEET_TAB":            "use HEIMDALL_SHEETS_TAB",
		"GOOGLE_SERVICE_ACCOUNT_FILE": "use HEIMDALL_SHEETS_CREDENTIALS_FILE",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}
