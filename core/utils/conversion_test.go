package utils

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"Int", 5, 5, true},
		{"Float", float64(30), 30, true},
		{"Fraction", 1.5, 1, false},
		{"JSONNumber", json.Number("12"), 12, true},
		{"String", " 30 ", 30, true},
		{"Unit", "30 days", 30, true},
		{"Negative", "-2", -2, true},
		{"Word", "thirty", 0, false},
		{"Mixed", "3.5", 0, false},
		{"Nil", nil, 0, false},
		{"Empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat("9.8")
	assert.True(t, ok)
	assert.InDelta(t, 9.8, f, 0.0001)

	f, ok = ToFloat(json.Number("7"))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = ToFloat("high")
	assert.False(t, ok)
	_, ok = ToFloat(nil)
	assert.False(t, ok)

	for _, v := range []any{"NaN", " nan ", "Inf", "-Infinity", math.NaN(), math.Inf(1)} {
		_, ok = ToFloat(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "9.8", ToString(9.8))
	assert.Equal(t, "42", ToString(42))
}

func TestToStringSlice(t *testing.T) {
	assert.Nil(t, ToStringSlice(nil))
	assert.Equal(t, []string{"a", "b"}, ToStringSlice([]any{"a", " ", "b"}))
	assert.Equal(t, []string{"Production", "QA"}, ToStringSlice("Production, QA,"))
	assert.Equal(t, []string{}, ToStringSlice(""))
}
