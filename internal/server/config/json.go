package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/flagx"
	"github.com/dmitrijs2005/camfeed/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// strings such as "5s" or integer nanoseconds. Pointer fields distinguish an
// explicit zero from an absent key.
type JsonConfig struct {
	ListenAddr      string          `json:"listen_addr"`
	IngestPath      string          `json:"ingest_path"`
	HealthAddrGRPC  *string         `json:"health_addr_grpc"`
	HealthInterval  *timex.Duration `json:"health_interval"`
	DatabaseDSN     string          `json:"database_dsn"`
	MaxOpenConns    *int            `json:"max_open_conns"`
	MaxIdleConns    *int            `json:"max_idle_conns"`
	StoreTimeout    *timex.Duration `json:"store_timeout"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	MaxBodyBytes    *int64          `json:"max_body_bytes"`
	SchemaVariant   string          `json:"schema_variant"`
	Fields          []FieldConfig   `json:"fields"`
	HistoryTable    string          `json:"history_table"`
	LatestTable     string          `json:"latest_table"`
	LogLevel        string          `json:"log_level"`
	MetricsEnabled  *bool           `json:"metrics_enabled"`
	S3RootUser      string          `json:"s3_root_user"`
	S3RootPassword  string          `json:"s3_root_password"`
	S3Bucket        string          `json:"s3_bucket"`
	S3Region        string          `json:"s3_region"`
	S3BaseEndpoint  string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c / -config (or
// CAMFEED_CONFIG) onto config. Keys missing from the file keep their current
// value. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.IngestPath, c.IngestPath)
	if c.HealthAddrGRPC != nil {
		config.HealthAddrGRPC = *c.HealthAddrGRPC
	}
	setDuration(&config.HealthInterval, c.HealthInterval)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	if c.MaxOpenConns != nil {
		config.MaxOpenConns = *c.MaxOpenConns
	}
	if c.MaxIdleConns != nil {
		config.MaxIdleConns = *c.MaxIdleConns
	}
	setDuration(&config.StoreTimeout, c.StoreTimeout)
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}
	setString(&config.SchemaVariant, c.SchemaVariant)
	if c.Fields != nil {
		config.Fields = c.Fields
	}
	setString(&config.HistoryTable, c.HistoryTable)
	setString(&config.LatestTable, c.LatestTable)
	setString(&config.LogLevel, c.LogLevel)
	if c.MetricsEnabled != nil {
		config.MetricsEnabled = *c.MetricsEnabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
