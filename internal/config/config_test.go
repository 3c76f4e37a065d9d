package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOpenWeatherMapAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test_api_key_123")
	assert.Equal(t, "test_api_key_123", GetOpenWeatherMapAPIKey())

	os.Unsetenv("OPENWEATHER_API_KEY")
	assert.Empty(t, GetOpenWeatherMapAPIKey())
}

func TestGetBucketName(t *testing.T) {
	t.Setenv("BUCKET_NAME", "weather-snapshots-prod")
	assert.Equal(t, "weather-snapshots-prod", GetBucketName())

	os.Unsetenv("BUCKET_NAME")
	assert.Equal(t, "test-bucket", GetBucketName())
}

func TestGetRedisAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	assert.Equal(t, "redis.internal:6379", GetRedisAddr())

	os.Unsetenv("REDIS_ADDR")
	assert.Equal(t, "localhost:16379", GetRedisAddr())
}

func TestGetStorageBackend(t *testing.T) {
	assert.Equal(t, "redis", GetStorageBackend())

	t.Setenv("STORAGE_BACKEND", "s3")
	assert.Equal(t, "s3", GetStorageBackend())
}

func TestGetOpenWeatherApiUrl(t *testing.T) {
	assert.Equal(t, "https://api.openweathermap.org/data/2.5/weather", GetOpenWeatherApiUrl())
	assert.Equal(t, "metric", GetOpenWeatherUnits())
}

func TestGetS3Settings(t *testing.T) {
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("S3_ENDPOINT", "http://localhost:4566")
	assert.Equal(t, "eu-west-1", GetS3Region())
	assert.Equal(t, "http://localhost:4566", GetS3Endpoint())
	assert.False(t, GetS3UsePathStyle())
}

func TestGetHistoryMaxConcurrency(t *testing.T) {
	assert.Equal(t, 0, GetHistoryMaxConcurrency())

	t.Setenv("HISTORY_MAX_CONCURRENCY", "8")
	assert.Equal(t, 8, GetHistoryMaxConcurrency())
}

func TestGetServerPort(t *testing.T) {
	assert.Equal(t, "8080", GetServerPort())
}

func TestGetServerTimeout(t *testing.T) {
	assert.Equal(t, "15s", GetServerTimeout("read_header_timeout"))
	assert.Equal(t, 10*time.Second, GetServerTimeoutDuration("write_timeout", time.Second))
	assert.Equal(t, time.Second, GetServerTimeoutDuration("does_not_exist", time.Second))
}

func TestGetTestPorts(t *testing.T) {
	assert.Equal(t, ":16379", GetTestRedisMockPort())
	assert.Equal(t, ":8080", GetTestServerPort())
}

func TestRateLimiterConfig(t *testing.T) {
	rate, burst := GetGlobalRateLimiterConfig()
	assert.Equal(t, 10.0, rate)
	assert.Equal(t, 10, burst)

	rate, burst = GetParamRateLimiterConfig()
	assert.Equal(t, 2.0, rate)
	assert.Equal(t, 2, burst)

	assert.Equal(t, 3*time.Minute, GetRateLimiterCleanupTimeout())
}

func TestReloadConfigForTest(t *testing.T) {
	// Should not panic or error
	ReloadConfigForTest()
}

func TestGetProjectRoot(t *testing.T) {
	root, err := getProjectRoot()
	require.NoError(t, err)
	assert.FileExists(t, root+"/go.mod")
}

func TestGetProjectRoot_MissingGoMod(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := getProjectRoot()
	assert.Error(t, err)
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger())
	assert.Same(t, GetLogger(), GetLogger())
}
