package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitReplacesLogger(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	Init(false)
	assert.False(t, L.Core().Enabled(zap.DebugLevel))

	Init(true)
	assert.True(t, L.Core().Enabled(zap.DebugLevel))
	assert.Same(t, L, Default())

	Init(false)
	assert.False(t, Default().Core().Enabled(zap.DebugLevel))
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"short", "short..."},
		{"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload", "eyJhbGciOiJIUzI1NiIs..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskKey(tt.key))
	}
}
