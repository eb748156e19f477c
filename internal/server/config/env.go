package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const envPrefix = "CAMFEED_"

// parseEnv overlays CAMFEED_* environment variables onto config. Malformed
// numeric, boolean or duration values panic, like a malformed JSON file.
func parseEnv(config *Config) {
	envString("LISTEN_ADDR", &config.ListenAddr)
	envString("INGEST_PATH", &config.IngestPath)
	envString("HEALTH_ADDR_GRPC", &config.HealthAddrGRPC)
	envDuration("HEALTH_INTERVAL", &config.HealthInterval)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envInt("MAX_OPEN_CONNS", &config.MaxOpenConns)
	envInt("MAX_IDLE_CONNS", &config.MaxIdleConns)
	envDuration("STORE_TIMEOUT", &config.StoreTimeout)
	envDuration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	envInt64("MAX_BODY_BYTES", &config.MaxBodyBytes)
	envString("SCHEMA_VARIANT", &config.SchemaVariant)
	envString("HISTORY_TABLE", &config.HistoryTable)
	envString("LATEST_TABLE", &config.LatestTable)
	envString("LOG_LEVEL", &config.LogLevel)
	envBool("METRICS_ENABLED", &config.MetricsEnabled)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
}

func envString(name string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func envInt(name string, dst *int) {
	v64 := int64(*dst)
	envInt64(name, &v64)
	*dst = int(v64)
}

func envInt64(name string, dst *int64) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = n
}

func envBool(name string, dst *bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = b
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s%s: %w", envPrefix, name, err))
	}
	*dst = d
}
