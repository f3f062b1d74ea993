package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadDigest(t *testing.T) {
	a := PayloadDigest([]byte("frame"))
	assert.Len(t, a, 16)
	assert.Equal(t, a, PayloadDigest([]byte("frame")))
	assert.NotEqual(t, a, PayloadDigest([]byte("other")))
	// blake2b-256("") starts with 0e5751c026e543b2
	assert.Equal(t, "0e5751c026e543b2", PayloadDigest(nil))
}
