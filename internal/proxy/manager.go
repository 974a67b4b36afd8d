package proxy

import (
	"sync"
)

// Manager hands out the client identity used for page fetches and rotates
// through the configured proxies.
type Manager struct {
	proxies    []string
	userAgent  string
	mu         sync.Mutex
	proxyIndex int
}

func NewManager(userAgent string, proxies []string) *Manager {
	return &Manager{
		proxies:   proxies,
		userAgent: userAgent,
	}
}

// GetProxy returns the next proxy URL round-robin, or "" when none are set.
func (m *Manager) GetProxy() string {
	if len(m.proxies) == 0 {
		return ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.proxies[m.proxyIndex]
	m.proxyIndex = (m.proxyIndex + 1) % len(m.proxies)
	return p
}

// GetUserAgent returns the configured client identifier. It does not rotate.
func (m *Manager) GetUserAgent() string {
	return m.userAgent
}
