package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		score   *float64
		label   string
		wantErr bool
	}{
		{"9.8 Critical", ptr(9.8), "CRITICAL", false},
		{"high", nil, "HIGH", false},
		{" 7.5 ", ptr(7.5), "HIGH", false},
		{"5.0", ptr(5.0), "MEDIUM", false},
		{"0", ptr(0.0), "NONE", false},
		{"", nil, "", false},
		{"11 Critical", nil, "", true},
		{"9.8 Scary", nil, "", true},
		{"very bad indeed", nil, "", true},
		{"abc", nil, "", true},
		{"NaN", nil, "", true},
		{"NaN High", nil, "", true},
		{"+Inf", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			score, label, err := ParseSeverity(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
			if tt.score == nil {
				assert.Nil(t, score)
			} else {
				require.NotNil(t, score)
				assert.InDelta(t, *tt.score, *score, 0.0001)
			}
		})
	}
}

func TestSeverityForScore(t *testing.T) {
	assert.Equal(t, "LOW", SeverityForScore(3.9))
	assert.Equal(t, "MEDIUM", SeverityForScore(4))
	assert.Equal(t, "HIGH", SeverityForScore(8.9))
	assert.Equal(t, "CRITICAL", SeverityForScore(10))
}
