package game

import (
	"math/rand"
	"sync"
)

// Manager tracks live session controllers by join code. The most
// recently created session is the active one; creating a new session
// replaces it (single-player game, one session per browser).
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Controller
	active   string
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Controller)}
}

func (m *Manager) CreateSession(provider Provider, opts Options) (string, *Controller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code := randomCode(5)
	for m.sessions[code] != nil {
		code = randomCode(5)
	}
	ctrl := NewController(code, provider, opts)
	m.sessions[code] = ctrl
	m.active = code
	return code, ctrl
}

func (m *Manager) Get(code string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ctrl := m.sessions[code]
	if ctrl == nil {
		return nil, ErrSessionNotFound
	}
	return ctrl, nil
}

func (m *Manager) Active() (string, *Controller) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return "", nil
	}
	return m.active, m.sessions[m.active]
}

// Remove drops a session, e.g. when its last connection goes away.
func (m *Manager) Remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, code)
	if m.active == code {
		m.active = ""
	}
}

func randomCode(n int) string {
	letters := []rune("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	b := make([]rune, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}
