package auth

import "sync"

// Session tracks the signed-in identity for the process and notifies
// registered listeners on every state change, including sign-out (nil).
type Session struct {
	mu        sync.Mutex
	current   *Credential
	listeners []func(*Credential)
}

// Current returns the signed-in credential, or nil when signed out.
func (s *Session) Current() *Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// OnChange registers a listener invoked with the new state on every change.
func (s *Session) OnChange(fn func(*Credential)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SignOut clears the session. Screen controllers listening for the change
// are responsible for disposing their subscriptions.
func (s *Session) SignOut() {
	s.set(nil)
}

func (s *Session) set(cred *Credential) {
	s.mu.Lock()
	s.current = cred
	listeners := make([]func(*Credential), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(cred)
	}
}
