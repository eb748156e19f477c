// Package normalize turns raw captured tag text into typed device records.
package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/server/models"
	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// Normalizer is pure apart from the clock it stamps records with.
type Normalizer struct {
	Schema *schema.Schema
	Clock  func() time.Time
}

func New(s *schema.Schema) *Normalizer {
	return &Normalizer{Schema: s, Clock: time.Now}
}

// Normalize builds a record from captured values. Integer text that does not
// parse is recorded as absent, never as zero.
func (n *Normalizer) Normalize(captured map[string]string) models.DeviceRecord {
	clock := n.Clock
	if clock == nil {
		clock = time.Now
	}

	rec := models.DeviceRecord{
		Counts:     make(map[string]*int64),
		ObservedAt: clock().UTC(),
	}
	key := n.Schema.Key().Name

	for _, f := range n.Schema.Fields() {
		raw, ok := captured[f.Name]

		if f.Kind == schema.Integer {
			rec.Counts[f.Name] = nil
			if ok {
				rec.Counts[f.Name] = ParseCount(raw)
			}
			continue
		}

		if !ok {
			continue
		}
		v := raw
		switch f.Name {
		case key:
			rec.SerialNumber = &v
		case schema.FieldMAC:
			rec.MACAddress = &v
		case schema.FieldDeviceName:
			rec.DeviceName = &v
		default:
			if rec.Texts == nil {
				rec.Texts = make(map[string]*string)
			}
			rec.Texts[f.Name] = &v
		}
	}

	return rec
}

// ParseCount parses a base-10 integer, returning nil when s is not one.
func ParseCount(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
