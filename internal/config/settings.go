package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/assetplan/internal/calculation"
	"github.com/sirupsen/logrus"
)

// Environment variables read by LoadSettings.
const (
	EnvLogLevel      = "ASSETPLAN_LOG_LEVEL"
	EnvDateMode      = "ASSETPLAN_DATE_MODE"
	EnvTaxPolicyFile = "ASSETPLAN_TAX_POLICY_FILE"
	EnvRedisAddr     = "ASSETPLAN_REDIS_ADDR"
	EnvValuationRPS  = "ASSETPLAN_VALUATION_RPS"
)

// Settings holds process-level configuration.
type Settings struct {
	LogLevel      logrus.Level
	DateMode      calculation.DateMode
	TaxPolicyFile string // empty means the built-in policies
	RedisAddr     string // empty disables the redis valuation cache
	ValuationRPS  float64
}

// LoadSettings reads settings from the environment after loading the given .env files
// (".env" when none are given). A missing .env file is not an error.
func LoadSettings(files ...string) (*Settings, error) {
	if err := godotenv.Load(files...); err != nil {
		logrus.Warn(".env file not found, using process environment")
	}

	level, err := logrus.ParseLevel(getEnv(EnvLogLevel, "warn"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}

	mode, err := calculation.ParseDateMode(getEnv(EnvDateMode, "lenient"))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvDateMode, err)
	}

	rps, err := strconv.ParseFloat(getEnv(EnvValuationRPS, "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid %s: must be a positive number", EnvValuationRPS)
	}

	return &Settings{
		LogLevel:      level,
		DateMode:      mode,
		TaxPolicyFile: getEnv(EnvTaxPolicyFile, ""),
		RedisAddr:     getEnv(EnvRedisAddr, ""),
		ValuationRPS:  rps,
	}, nil
}

// getEnv returns the environment value for key, or defaultValue when unset or empty.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
