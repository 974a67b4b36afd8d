package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetProxyRotates(t *testing.T) {
	m := NewManager("bot/1.0", []string{"http://p1", "http://p2"})

	assert.Equal(t, "http://p1", m.GetProxy())
	assert.Equal(t, "http://p2", m.GetProxy())
	assert.Equal(t, "http://p1", m.GetProxy())
}

func TestNoProxies(t *testing.T) {
	m := NewManager("bot/1.0", nil)

	assert.Empty(t, m.GetProxy())
	assert.Equal(t, "bot/1.0", m.GetUserAgent())
	assert.Equal(t, "bot/1.0", m.GetUserAgent())
}
