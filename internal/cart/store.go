package cart

import "sync"

// Store guarda um carrinho por sessão (ID do operador do caixa).
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

// NewStore cria um Store vazio.
func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Get devolve o carrinho da sessão, criando-o na primeira vez.
func (s *Store) Get(sessionID string) *Cart {
	s.mu.RLock()
	c, ok := s.carts[sessionID]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.carts[sessionID]; ok {
		return c
	}
	c = New()
	s.carts[sessionID] = c
	return c
}

// Drop descarta o carrinho da sessão (logout).
func (s *Store) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}
