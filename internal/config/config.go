package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	InputPath  string
	InputSheet string
	OutputDir  string

	APIBaseURL      string
	APIKeys         []string
	APIRateLimitRPS int
	APITimeoutMs    int

	SinkDriver  string
	SQLitePath  string
	DatabaseURL string
	SinkTable   string

	PullSchedule string
	PullOnStart  bool
	MetricsAddr  string

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InputPath:  getEnv("INPUT_PATH", filepath.Join(cwd, "v2_All_products.xlsx")),
		InputSheet: getEnv("INPUT_SHEET", "Sheet1"),
		OutputDir:  getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		APIBaseURL:      getEnv("API_BASE_URL", "https://oemsecretsapi.com/partsearch"),
		APIKeys:         SplitList(getEnv("API_KEYS", "")),
		APIRateLimitRPS: getEnvInt("API_RATE_LIMIT_RPS", 5),
		APITimeoutMs:    getEnvInt("API_TIMEOUT_MS", 30000),

		SinkDriver:  strings.ToLower(strings.TrimSpace(getEnv("SINK_DRIVER", "sqlite"))),
		SQLitePath:  getEnv("SQLITE_PATH", filepath.Join(cwd, "data", "productcatalog.db")),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		SinkTable:   getEnv("SINK_TABLE", "productdetails"),

		PullSchedule: getEnv("PULL_SCHEDULE", "30 21 * * *"),
		PullOnStart:  getEnvBool("PULL_ON_START", true),
		MetricsAddr:  getEnv("METRICS_ADDR", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

// SplitList turns a comma separated value into trimmed, non-empty entries,
// keeping their order.
func SplitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
