package server_test

import (
	"testing"

	"asset-importer/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_BodyLimitBytes(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"Configured", 8, 8 << 20},
		{"Zero", 0, 32 << 20},
		{"Negative", -1, 32 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{BodyLimitMB: tt.limit}
			assert.Equal(t, tt.want, c.BodyLimitBytes())
		})
	}
}

func TestConfig_AuthEnabled(t *testing.T) {
	assert.False(t, server.Config{}.AuthEnabled())
	assert.True(t, server.Config{ApiKey: "secret"}.AuthEnabled())
}
