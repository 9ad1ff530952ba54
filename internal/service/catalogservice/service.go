package catalogservice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gopos/internal/costing"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
)

// Repository define o contrato que o Serviço de Catálogo espera da camada de Persistência.
type Repository interface {
	ListSellableItems(ctx context.Context) ([]domain.CatalogItem, error)
	ListInputItems(ctx context.Context) ([]domain.InputItem, error)
}

// Service mantém o snapshot atual do catálogo, publicado de forma atômica.
// As recargas são serializadas por reloadMu; leituras não bloqueiam.
type Service struct {
	repo     Repository
	logger   logger.Logger
	current  atomic.Pointer[Snapshot]
	reloadMu sync.Mutex
	now      func() time.Time
}

// NewService cria o serviço com um snapshot vazio; chame Reload para carregá-lo.
func NewService(repo Repository, logger logger.Logger) *Service {
	s := &Service{repo: repo, logger: logger, now: time.Now}
	s.current.Store(NewSnapshot(nil, nil, time.Time{}))
	return s
}

// Current devolve o último snapshot publicado. Nunca é nil.
func (s *Service) Current() *Snapshot {
	return s.current.Load()
}

// Reload busca itens vendáveis e insumos em paralelo e publica um novo snapshot.
// Em caso de erro o snapshot anterior continua valendo.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()
	s.logger.Debug("Recarregando catálogo completo.", nil)

	var (
		items  []domain.CatalogItem
		inputs []domain.InputItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.repo.ListSellableItems(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		inputs, err = s.repo.ListInputItems(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Falha ao recarregar o catálogo.", err)
		return s.Current(), apperror.NewInternalError("Falha ao recarregar o catálogo.", err)
	}

	snap := NewSnapshot(items, inputs, s.now())
	s.current.Store(snap)
	s.logger.Info("Catálogo recarregado.", map[string]interface{}{"items": len(items), "inputs": len(inputs)})
	return snap, nil
}

// ReloadItems recarrega apenas os itens vendáveis, mantendo os insumos do snapshot atual.
// É a recarga usada na validação e após cada venda.
func (s *Service) ReloadItems(ctx context.Context) (*Snapshot, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	items, err := s.repo.ListSellableItems(ctx)
	if err != nil {
		s.logger.Error("Falha ao recarregar itens vendáveis.", err)
		return s.Current(), apperror.NewInternalError("Falha ao recarregar itens vendáveis.", err)
	}

	snap := s.Current().withItems(items, s.now())
	s.current.Store(snap)
	s.logger.Debug("Itens vendáveis recarregados.", map[string]interface{}{"items": len(items)})
	return snap, nil
}

// Item devolve um item do snapshot atual.
func (s *Service) Item(id string) (domain.CatalogItem, error) {
	item, ok := s.Current().Item(id)
	if !ok {
		return domain.CatalogItem{}, apperror.NewNotFoundError(fmt.Sprintf("Item %s não existe no catálogo.", id))
	}
	return item, nil
}

// ItemCost calcula CMV, preço sugerido e margem realizada de um item do catálogo.
// margin e price, quando válidos, substituem os valores cadastrados no item.
func (s *Service) ItemCost(id string, margin, price decimal.NullDecimal) (costing.Result, error) {
	snap := s.Current()
	item, ok := snap.Item(id)
	if !ok {
		return costing.Result{}, apperror.NewNotFoundError(fmt.Sprintf("Item %s não existe no catálogo.", id))
	}
	if !margin.Valid {
		margin = item.SuggestedMargin
	}
	if !price.Valid {
		price = decimal.NewNullDecimal(item.Price)
	}
	return costing.Calculate(costing.Input{
		Lines:         item.BillOfMaterials,
		Inputs:        snap.Inputs(),
		MarginPercent: margin,
		SalePrice:     price,
	}), nil
}

// Quote calcula o custo de uma receita em edição contra os insumos do snapshot atual.
func (s *Service) Quote(lines []domain.BillOfMaterialsLine, margin, price decimal.NullDecimal) costing.Result {
	return costing.Calculate(costing.Input{
		Lines:         lines,
		Inputs:        s.Current().Inputs(),
		MarginPercent: margin,
		SalePrice:     price,
	})
}
