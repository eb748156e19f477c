package config

import (
	"testing"

	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty listen address", func(c *Config) { c.ListenAddr = "" }, "listen address"},
		{"relative ingest path", func(c *Config) { c.IngestPath = "ingest" }, "ingest path"},
		{"no dsn", func(c *Config) { c.DatabaseDSN = "" }, "database DSN"},
		{"zero store timeout", func(c *Config) { c.StoreTimeout = 0 }, "store timeout"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "shutdown timeout"},
		{"health without interval", func(c *Config) { c.HealthAddrGRPC = ":1"; c.HealthInterval = 0 }, "health interval"},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, "max body bytes"},
		{"zero pool", func(c *Config) { c.MaxOpenConns = 0 }, "max open connections"},
		{"negative idle", func(c *Config) { c.MaxIdleConns = -1 }, "max idle connections"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad variant", func(c *Config) { c.SchemaVariant = "huge" }, "unknown variant"},
		{"bad table", func(c *Config) { c.HistoryTable = "drop table" }, "history table"},
		{"same tables", func(c *Config) { c.LatestTable = c.HistoryTable }, "must differ"},
		{"bad custom kind", func(c *Config) {
			c.Fields = []FieldConfig{{Name: "sn", Column: "sn", Kind: "float"}}
		}, "unknown field kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			require.ErrorContains(t, c.Validate(), tt.wantErr)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	c := validConfig()
	c.ListenAddr = ""
	c.DatabaseDSN = ""

	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen address")
	assert.Contains(t, err.Error(), "database DSN")
}

func TestSchema(t *testing.T) {
	c := validConfig()

	s, err := c.Schema()
	require.NoError(t, err)
	assert.Equal(t, schema.Full().Columns(), s.Columns())

	c.SchemaVariant = "reduced"
	s, err = c.Schema()
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	c.Fields = []FieldConfig{
		{Name: "sn", Column: "sn", Kind: "string"},
		{Name: "temp", Column: "temperature", Kind: "int"},
	}
	s, err = c.Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"sn", "temperature"}, s.Columns())
	f, ok := s.Lookup("temp")
	require.True(t, ok)
	assert.Equal(t, schema.Integer, f.Kind)
}
