package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/camfeed/internal/logging"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if !strings.HasPrefix(c.IngestPath, "/") {
		errs = append(errs, fmt.Errorf("ingest path %q must start with /", c.IngestPath))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database DSN is required"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, fmt.Errorf("store timeout must be positive, got %s", c.StoreTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be positive, got %s", c.ShutdownTimeout))
	}
	if c.HealthAddrGRPC != "" && c.HealthInterval <= 0 {
		errs = append(errs, fmt.Errorf("health interval must be positive, got %s", c.HealthInterval))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.MaxOpenConns <= 0 {
		errs = append(errs, fmt.Errorf("max open connections must be positive, got %d", c.MaxOpenConns))
	}
	if c.MaxIdleConns < 0 {
		errs = append(errs, fmt.Errorf("max idle connections must not be negative, got %d", c.MaxIdleConns))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Schema(); err != nil {
		errs = append(errs, err)
	}
	if !schema.ValidIdentifier(c.HistoryTable) {
		errs = append(errs, fmt.Errorf("invalid history table %q", c.HistoryTable))
	}
	if !schema.ValidIdentifier(c.LatestTable) {
		errs = append(errs, fmt.Errorf("invalid latest table %q", c.LatestTable))
	}
	if c.HistoryTable == c.LatestTable {
		errs = append(errs, errors.New("history and latest tables must differ"))
	}

	return errors.Join(errs...)
}

// Schema builds the field schema: the custom Fields when set, otherwise the
// named built-in variant.
func (c *Config) Schema() (*schema.Schema, error) {
	if len(c.Fields) == 0 {
		return schema.Variant(c.SchemaVariant)
	}

	fields := make([]schema.Field, 0, len(c.Fields))
	for _, f := range c.Fields {
		kind, err := schema.ParseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, schema.Field{Name: f.Name, Column: f.Column, Kind: kind})
	}
	return schema.New(schema.DefaultContainer, schema.FieldSerial, fields)
}
