package helpers

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampInt(t *testing.T) {
	assert.Equal(t, 5, ClampInt(5, 0, 10))
	assert.Equal(t, 0, ClampInt(-3, 0, 10))
	assert.Equal(t, 10, ClampInt(42, 0, 10))
}

func TestClampIntToUint32(t *testing.T) {
	assert.Equal(t, uint32(0), ClampIntToUint32(-1))
	assert.Equal(t, uint32(128), ClampIntToUint32(128))
	assert.Equal(t, uint32(math.MaxUint32), ClampIntToUint32(math.MaxInt))
}
