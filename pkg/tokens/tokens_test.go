package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount(t *testing.T) {
	assert.Equal(t, 0, Count(""))

	short := Count("loan default")
	long := Count(strings.Repeat("loan default prediction ", 50))

	assert.Greater(t, short, 0)
	assert.Greater(t, long, short)
}
