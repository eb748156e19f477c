package extract

import (
	"testing"

	"github.com/dmitrijs2005/camfeed/internal/server/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Transitions(t *testing.T) {
	s := NewSession(schema.Reduced())
	require.Equal(t, Idle, s.State())

	s.Open("config")
	assert.Equal(t, InContainer, s.State())
	_, inField := s.CurrentField()
	assert.False(t, inField)

	s.Open("mac")
	assert.Equal(t, InField, s.State())
	name, inField := s.CurrentField()
	assert.True(t, inField)
	assert.Equal(t, "mac", name)

	s.Text([]byte(" AA:"))
	s.Text([]byte("BB "))
	out, done := s.Close("mac")
	assert.False(t, done)
	assert.Nil(t, out)
	assert.Equal(t, InContainer, s.State())

	out, done = s.Close("config")
	require.True(t, done)
	assert.Equal(t, map[string]string{"mac": "AA:BB"}, out)
	assert.Equal(t, Idle, s.State())
}

func TestSession_IgnoresElementsWhileIdle(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("sn")
	s.Text([]byte("S1"))
	out, done := s.Close("sn")

	assert.False(t, done)
	assert.Nil(t, out)
	assert.Equal(t, Idle, s.State())
}

func TestSession_IgnoresUnknownElementsInContainer(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("firmware")
	s.Text([]byte("1.0"))
	assert.Equal(t, InContainer, s.State())
	_, done := s.Close("firmware")
	assert.False(t, done)

	s.Open("sn")
	s.Text([]byte("S1"))
	s.Close("sn")

	out, done := s.Close("config")
	require.True(t, done)
	assert.Equal(t, map[string]string{"sn": "S1"}, out)
}

func TestSession_FieldsOnlyDirectlyUnderContainer(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("meta")
	s.Open("sn")
	assert.Equal(t, InContainer, s.State(), "sn nested under an unknown element is not a field")
	s.Text([]byte("nested"))
	s.Close("sn")
	s.Close("meta")

	out, done := s.Close("config")
	require.True(t, done)
	assert.Empty(t, out)
}

func TestSession_NestedFieldLastOpenedWins(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("mac")
	s.Text([]byte("outer"))
	s.Open("sn")
	name, _ := s.CurrentField()
	assert.Equal(t, "sn", name)

	s.Text([]byte("inner"))
	s.Close("sn")
	assert.Equal(t, InContainer, s.State())

	s.Text([]byte("tail"))
	s.Close("mac")

	out, done := s.Close("config")
	require.True(t, done)
	assert.Equal(t, map[string]string{"sn": "inner"}, out, "buffer tracks only the innermost field")
}

func TestSession_UnknownElementInsideFieldKeepsText(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("mac")
	s.Text([]byte("AA"))
	s.Open("b")
	s.Text([]byte(":BB"))
	s.Close("b")
	assert.Equal(t, InField, s.State())
	s.Close("mac")

	out, _ := s.Close("config")
	assert.Equal(t, map[string]string{"mac": "AA:BB"}, out)
}

func TestSession_BufferResetOnReopen(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("sn")
	s.Text([]byte("first"))
	s.Close("sn")
	s.Open("sn")
	s.Text([]byte("second"))
	s.Close("sn")

	out, _ := s.Close("config")
	assert.Equal(t, map[string]string{"sn": "second"}, out)
}

func TestSession_TextOutsideFieldIgnored(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Text([]byte("noise"))
	s.Open("sn")
	s.Text([]byte("S1"))
	s.Close("sn")
	s.Text([]byte("more noise"))

	out, _ := s.Close("config")
	assert.Equal(t, map[string]string{"sn": "S1"}, out)
}

func TestSession_NestedContainerIsNotABoundary(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("config")
	_, done := s.Close("config")
	assert.False(t, done, "only the outermost container closes the record")
	assert.Equal(t, InContainer, s.State())

	_, done = s.Close("config")
	assert.True(t, done)
}

func TestSession_ReusableAfterEmit(t *testing.T) {
	s := NewSession(schema.Reduced())

	s.Open("config")
	s.Open("sn")
	s.Text([]byte("S1"))
	s.Close("sn")
	first, _ := s.Close("config")

	s.Open("config")
	s.Open("mac")
	s.Text([]byte("M2"))
	s.Close("mac")
	second, _ := s.Close("config")

	assert.Equal(t, map[string]string{"sn": "S1"}, first)
	assert.Equal(t, map[string]string{"mac": "M2"}, second, "captured values must not leak across containers")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "in_container", InContainer.String())
	assert.Equal(t, "in_field", InField.String())
}
