package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

const defaultOpenWeatherApiUrl = "https://api.openweathermap.org/data/2.5/weather"

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_header_timeout", "15s")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "10s")
	viper.SetDefault("server.idle_timeout", "30s")
	viper.SetDefault("openweathermap.api_url", defaultOpenWeatherApiUrl)
	viper.SetDefault("openweathermap.units", "metric")
	viper.SetDefault("storage.backend", "s3")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("history.max_concurrency", 0)
}

// bindEnv maps the variables a Lambda deployment sets onto config keys.
func bindEnv() {
	_ = viper.BindEnv("storage.bucket", "BUCKET_NAME")
	_ = viper.BindEnv("storage.backend", "STORAGE_BACKEND")
	_ = viper.BindEnv("storage.s3.region", "AWS_REGION")
	_ = viper.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("history.max_concurrency", "HISTORY_MAX_CONCURRENCY")
}

func initConfig() {
	once.Do(func() {
		setDefaults()
		bindEnv()

		root, err := getProjectRoot()
		if err != nil {
			// Deployed Lambdas carry no project tree; defaults and env are enough.
			GetLogger().Debugw("Project root not found, using defaults", "error", err)
			return
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Errorw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Errorw("Error merging test config file", "error", err)
			}
		}
	})
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetOpenWeatherApiUrl() string {
	initConfig()
	return viper.GetString("openweathermap.api_url")
}

func GetOpenWeatherUnits() string {
	initConfig()
	return viper.GetString("openweathermap.units")
}

// GetOpenWeatherMapAPIKey reads the credential straight from the environment
// (optionally seeded by a .env file). An empty key is passed through as is.
func GetOpenWeatherMapAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPENWEATHER_API_KEY")
}

// GetBucketName returns the snapshot bucket. BUCKET_NAME wins over the config file.
func GetBucketName() string {
	initConfig()
	return viper.GetString("storage.bucket")
}

func GetStorageBackend() string {
	initConfig()
	return viper.GetString("storage.backend")
}

func GetS3Region() string {
	initConfig()
	return viper.GetString("storage.s3.region")
}

func GetS3Endpoint() string {
	initConfig()
	return viper.GetString("storage.s3.endpoint")
}

func GetS3UsePathStyle() bool {
	initConfig()
	return viper.GetBool("storage.s3.use_path_style")
}

func GetRedisAddr() string {
	initConfig()
	return viper.GetString("redis.addr")
}

// GetHistoryMaxConcurrency bounds the historical fan-out. Zero or less means unbounded.
func GetHistoryMaxConcurrency() int {
	initConfig()
	return viper.GetInt("history.max_concurrency")
}

func GetServerPort() string {
	initConfig()
	return viper.GetString("server.port")
}

func GetServerTimeout(key string) string {
	initConfig()
	return viper.GetString("server." + key)
}

// GetServerTimeoutDuration parses a server.* timeout, falling back to def when unset or invalid.
func GetServerTimeoutDuration(key string, def time.Duration) time.Duration {
	dur, err := time.ParseDuration(GetServerTimeout(key))
	if err != nil {
		return def
	}
	return dur
}

func GetTestRedisMockPort() string {
	initConfig()
	return viper.GetString("test.redis_mock_port")
}

func GetTestServerPort() string {
	initConfig()
	return viper.GetString("test.server_port")
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	durStr := viper.GetString("rate_limiter.cleanup_timeout")
	if durStr == "" {
		durStr = "3m"
	}
	dur, err := time.ParseDuration(durStr)
	if err != nil {
		return 3 * time.Minute
	}
	return dur
}

// GetGlobalRateLimiterConfig returns the rate and burst for the global rate limiter from config.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the rate and burst for the per-city rate limiter from config.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}
