package guilded

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigMaxMessageCache(t *testing.T) {
	// Zero means the default; a negative value disables the cache.
	assert.Equal(t, 1000, (&Config{}).maxMessageCache())
	assert.Equal(t, 250, (&Config{MaxMessageCache: 250}).maxMessageCache())
	assert.Equal(t, 0, (&Config{MaxMessageCache: -1}).maxMessageCache())
}
