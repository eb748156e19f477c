// Package schema declares which XML tags a camera payload carries, how each
// one is typed and which relational column it lands in.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the value type of a field.
type Kind int

const (
	String Kind = iota
	Integer
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Integer:
		return "integer"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "string" / "integer" (also "int").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "text":
		return String, nil
	case "integer", "int":
		return Integer, nil
	default:
		return String, fmt.Errorf("unknown field kind %q", s)
	}
}

// Field is one recognized child element of the container.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Well-known field names.
const (
	FieldMAC        = "mac"
	FieldSerial     = "sn"
	FieldDeviceName = "deviceName"

	DefaultContainer = "config"
)

// Variant names.
const (
	VariantFull    = "full"
	VariantReduced = "reduced"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to splice into SQL as a table or
// column name.
func ValidIdentifier(s string) bool { return identRe.MatchString(s) }

// Schema is an ordered, validated field list. It is immutable once built and
// safe for concurrent use.
type Schema struct {
	container string
	key       string
	fields    []Field
	index     map[string]int
}

// New validates fields and builds a schema. key names the natural-key field,
// which must be present and of kind String.
func New(container, key string, fields []Field) (*Schema, error) {
	if container == "" {
		return nil, errors.New("schema: empty container name")
	}
	if len(fields) == 0 {
		return nil, errors.New("schema: no fields")
	}

	s := &Schema{
		container: container,
		key:       key,
		fields:    make([]Field, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	columns := make(map[string]struct{}, len(fields))
	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema: field %d has no name", i)
		}
		if f.Name == container {
			return nil, fmt.Errorf("schema: field %q clashes with container", f.Name)
		}
		if !ValidIdentifier(f.Column) {
			return nil, fmt.Errorf("schema: field %q: invalid column %q", f.Name, f.Column)
		}
		if strings.EqualFold(f.Column, ObservedAtColumn) {
			return nil, fmt.Errorf("schema: column %q is reserved", f.Column)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %q", f.Name)
		}
		if _, dup := columns[strings.ToLower(f.Column)]; dup {
			return nil, fmt.Errorf("schema: duplicate column %q", f.Column)
		}
		s.index[f.Name] = i
		columns[strings.ToLower(f.Column)] = struct{}{}
	}

	kf, ok := s.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("schema: key field %q not declared", key)
	}
	if kf.Kind != String {
		return nil, fmt.Errorf("schema: key field %q must be a string", key)
	}

	return s, nil
}

// ObservedAtColumn is the timestamp column written next to the schema columns.
const ObservedAtColumn = "observed_at"

var fullFields = []Field{
	{Name: FieldMAC, Column: "mac", Kind: String},
	{Name: FieldSerial, Column: "sn", Kind: String},
	{Name: FieldDeviceName, Column: "device_name", Kind: String},
	{Name: "enterCarCount", Column: "enter_car_count", Kind: Integer},
	{Name: "enterPersonCount", Column: "enter_person_count", Kind: Integer},
	{Name: "enterBikeCount", Column: "enter_bike_count", Kind: Integer},
	{Name: "leaveCarCount", Column: "leave_car_count", Kind: Integer},
	{Name: "leavePersonCount", Column: "leave_person_count", Kind: Integer},
	{Name: "leaveBikeCount", Column: "leave_bike_count", Kind: Integer},
	{Name: "existCarCount", Column: "exist_car_count", Kind: Integer},
	{Name: "existPersonCount", Column: "exist_person_count", Kind: Integer},
	{Name: "existBikeCount", Column: "exist_bike_count", Kind: Integer},
}

// Full is the 12-field schema.
func Full() *Schema {
	return mustNew(DefaultContainer, FieldSerial, fullFields)
}

// Reduced is the 5-field schema: mac, sn and the enter counters.
func Reduced() *Schema {
	return mustNew(DefaultContainer, FieldSerial, []Field{
		fullFields[0], fullFields[1], fullFields[3], fullFields[4], fullFields[5],
	})
}

// Variant returns a built-in schema by name.
func Variant(name string) (*Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VariantFull:
		return Full(), nil
	case VariantReduced:
		return Reduced(), nil
	default:
		return nil, fmt.Errorf("schema: unknown variant %q", name)
	}
}

func mustNew(container, key string, fields []Field) *Schema {
	s, err := New(container, key, fields)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Container() string { return s.container }

// Key returns the natural-key field.
func (s *Schema) Key() Field { return s.fields[s.index[s.key]] }

// Fields returns a copy of the ordered field list.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

func (s *Schema) Len() int { return len(s.fields) }

// Lookup finds a field by tag name.
func (s *Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Columns lists the schema columns in field order.
func (s *Schema) Columns() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Column
	}
	return out
}
