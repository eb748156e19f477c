package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFull(t *testing.T) {
	s := Full()

	assert.Equal(t, 12, s.Len())
	assert.Equal(t, "config", s.Container())
	assert.Equal(t, "sn", s.Key().Name)

	f, ok := s.Lookup("existBikeCount")
	require.True(t, ok)
	assert.Equal(t, Integer, f.Kind)
	assert.Equal(t, "exist_bike_count", f.Column)

	f, ok = s.Lookup("deviceName")
	require.True(t, ok)
	assert.Equal(t, String, f.Kind)
}

func TestReduced(t *testing.T) {
	s := Reduced()

	assert.Equal(t, []string{"mac", "sn", "enter_car_count", "enter_person_count", "enter_bike_count"}, s.Columns())
	_, ok := s.Lookup("deviceName")
	assert.False(t, ok)
}

func TestVariant(t *testing.T) {
	s, err := Variant("")
	require.NoError(t, err)
	assert.Equal(t, 12, s.Len())

	s, err = Variant(" Reduced ")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())

	_, err = Variant("tiny")
	require.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	sn := Field{Name: "sn", Column: "sn", Kind: String}

	tests := []struct {
		name      string
		container string
		key       string
		fields    []Field
		wantErr   string
	}{
		{name: "no fields", container: "config", key: "sn", wantErr: "no fields"},
		{name: "no container", key: "sn", fields: []Field{sn}, wantErr: "empty container"},
		{name: "missing key", container: "config", key: "serial", fields: []Field{sn}, wantErr: "key field"},
		{
			name: "integer key", container: "config", key: "sn",
			fields:  []Field{{Name: "sn", Column: "sn", Kind: Integer}},
			wantErr: "must be a string",
		},
		{
			name: "duplicate name", container: "config", key: "sn",
			fields:  []Field{sn, {Name: "sn", Column: "sn2"}},
			wantErr: "duplicate field",
		},
		{
			name: "duplicate column", container: "config", key: "sn",
			fields:  []Field{sn, {Name: "serial", Column: "SN"}},
			wantErr: "duplicate column",
		},
		{
			name: "bad column", container: "config", key: "sn",
			fields:  []Field{sn, {Name: "mac", Column: "mac; DROP TABLE x"}},
			wantErr: "invalid column",
		},
		{
			name: "reserved column", container: "config", key: "sn",
			fields:  []Field{sn, {Name: "ts", Column: "observed_at"}},
			wantErr: "reserved",
		},
		{
			name: "field named like container", container: "config", key: "sn",
			fields:  []Field{sn, {Name: "config", Column: "cfg"}},
			wantErr: "clashes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.container, tt.key, tt.fields)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFields_ReturnsCopy(t *testing.T) {
	s := Reduced()
	fields := s.Fields()
	fields[0].Name = "changed"

	_, ok := s.Lookup("mac")
	assert.True(t, ok)
	assert.Equal(t, "mac", s.Fields()[0].Name)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("INT")
	require.NoError(t, err)
	assert.Equal(t, Integer, k)

	k, err = ParseKind("string")
	require.NoError(t, err)
	assert.Equal(t, String, k)

	_, err = ParseKind("float")
	require.Error(t, err)
	assert.Equal(t, "integer", Integer.String())
}
