package catalogservice

import (
	"time"

	"gopos/internal/domain"
)

// Snapshot é uma visão imutável do catálogo. É substituída inteira a cada recarga
// e nunca alterada no lugar; os leitores recebem cópias.
type Snapshot struct {
	items    []domain.CatalogItem
	byID     map[string]int
	inputs   map[string]domain.InputItem
	LoadedAt time.Time
}

// NewSnapshot constrói um snapshot copiando os itens e insumos recebidos.
func NewSnapshot(items []domain.CatalogItem, inputs []domain.InputItem, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		items:    make([]domain.CatalogItem, len(items)),
		byID:     make(map[string]int, len(items)),
		inputs:   make(map[string]domain.InputItem, len(inputs)),
		LoadedAt: loadedAt,
	}
	for i, it := range items {
		s.items[i] = it.Clone()
		s.byID[it.ID] = i
	}
	for _, in := range inputs {
		s.inputs[in.ID] = in
	}
	return s
}

// withItems cria um novo snapshot com outros itens, reaproveitando os insumos.
func (s *Snapshot) withItems(items []domain.CatalogItem, loadedAt time.Time) *Snapshot {
	next := NewSnapshot(items, nil, loadedAt)
	next.inputs = s.inputs // mapa nunca alterado depois de construído
	return next
}

// Item devolve uma cópia do item pelo ID.
func (s *Snapshot) Item(id string) (domain.CatalogItem, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.CatalogItem{}, false
	}
	return s.items[i].Clone(), true
}

// Items devolve uma cópia de todos os itens na ordem do repositório.
func (s *Snapshot) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Inputs devolve uma cópia do catálogo de insumos indexado por ID.
func (s *Snapshot) Inputs() map[string]domain.InputItem {
	out := make(map[string]domain.InputItem, len(s.inputs))
	for k, v := range s.inputs {
		out[k] = v
	}
	return out
}

// Availability devolve a disponibilidade mais recente conhecida de um item.
func (s *Snapshot) Availability(id string) (domain.Availability, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.Availability{}, false
	}
	return s.items[i].Available, true
}

// Len devolve o número de itens vendáveis.
func (s *Snapshot) Len() int {
	return len(s.items)
}
