package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeenSet(t *testing.T) {
	s := NewSeenSet()

	assert.False(t, s.Seen("x1"))
	s.Mark("x1")
	assert.True(t, s.Seen("x1"))

	// Повторная отметка идемпотентна
	s.Mark("x1")
	assert.Equal(t, 1, s.Len())

	s.Mark("x2")
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Seen("x3"))
}
