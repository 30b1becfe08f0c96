package ident

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDigitString(t *testing.T) {
	id := Normalize("42")
	n, ok := id.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestNormalizeTrimsWhitespace(t *testing.T) {
	id := Normalize("  17 ")
	n, ok := id.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(17), n)

	id = Normalize("  R7K2 ")
	assert.Equal(t, Str, id.Kind())
	assert.Equal(t, "R7K2", id.String())
}

func TestNormalizeOpaqueString(t *testing.T) {
	id := Normalize("R7K2")
	assert.Equal(t, Str, id.Kind())
	assert.Equal(t, "R7K2", id.String())
	_, ok := id.Int()
	assert.False(t, ok)
}

func TestNormalizeAbsent(t *testing.T) {
	assert.True(t, Normalize(nil).IsNone())
	assert.True(t, Normalize("").IsNone())
	assert.True(t, Normalize("   ").IsNone())
	assert.Equal(t, "", Normalize(nil).String())
}

func TestNormalizeNativeInts(t *testing.T) {
	for _, v := range []any{7, int32(7), int64(7), float64(7)} {
		id := Normalize(v)
		n, ok := id.Int()
		assert.True(t, ok)
		assert.Equal(t, int64(7), n)
	}
}

func TestNormalizeJSONNumber(t *testing.T) {
	id := Normalize(json.Number("123"))
	n, ok := id.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(123), n)
}

func TestNormalizeOverflowFallsBackToString(t *testing.T) {
	const huge = "99999999999999999999999999"
	id := Normalize(huge)
	assert.Equal(t, Str, id.Kind())
	assert.Equal(t, huge, id.String())
}
