// Package models defines the records camfeed extracts and persists.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/camfeed/internal/server/schema"
)

// DeviceRecord is one completed <config> element after normalization.
// Nil pointers mean the field was absent or unparsable.
type DeviceRecord struct {
	SerialNumber *string
	MACAddress   *string
	DeviceName   *string

	// Counts holds every integer field of the schema, keyed by tag name.
	Counts map[string]*int64
	// Texts holds string fields other than sn, mac and deviceName.
	Texts map[string]*string

	ObservedAt time.Time
}

// Serial returns the trimmed serial number and whether it is usable as a key.
func (r DeviceRecord) Serial() (string, bool) {
	if r.SerialNumber == nil {
		return "", false
	}
	sn := strings.TrimSpace(*r.SerialNumber)
	return sn, sn != ""
}

// Count returns the integer field by tag name.
func (r DeviceRecord) Count(name string) *int64 {
	return r.Counts[name]
}

// Value returns the value for f as a driver-ready argument: nil when absent,
// otherwise a string or int64.
func (r DeviceRecord) Value(f schema.Field, key string) any {
	if f.Kind == schema.Integer {
		if v := r.Counts[f.Name]; v != nil {
			return *v
		}
		return nil
	}

	var p *string
	switch f.Name {
	case key:
		p = r.SerialNumber
	case schema.FieldMAC:
		p = r.MACAddress
	case schema.FieldDeviceName:
		p = r.DeviceName
	default:
		p = r.Texts[f.Name]
	}
	if p == nil {
		return nil
	}
	if f.Name == key {
		return strings.TrimSpace(*p)
	}
	return *p
}
