package pendingrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperror "gopos/internal/errors"
	"gopos/internal/pkg/cache"
	"gopos/internal/pkg/logger"
	"gopos/internal/service/saleservice"
)

// Define a chave de cache para vendas que aguardam reconciliação.
const pendingKey = "sale:pending:%s"

// PendingRepository guarda no Redis os relatórios de vendas PARTIALLY_FAILED.
type PendingRepository struct {
	Cache   cache.Client
	Timeout time.Duration
	TTL     time.Duration // 0 = sem expiração
	logger  logger.Logger
}

// NewPendingRepository cria e retorna uma nova instância do Repositório.
func NewPendingRepository(cacheClient cache.Client, timeout, ttl time.Duration, logger logger.Logger) *PendingRepository {
	return &PendingRepository{
		Cache:   cacheClient,
		Timeout: timeout,
		TTL:     ttl,
		logger:  logger,
	}
}

// SavePending grava (ou substitui) o relatório de uma venda.
func (r *PendingRepository) SavePending(ctx context.Context, out saleservice.Outcome) error {
	if out.Sale == nil {
		return apperror.NewValidationError("Relatório sem venda registrada não pode ser reconciliado.")
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	data, err := json.Marshal(out)
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar reconciliação pendente.", err)
	}
	if err := r.Cache.Set(ctxTimeout, fmt.Sprintf(pendingKey, out.Sale.ID), data, r.TTL); err != nil {
		r.logger.Error("Falha ao gravar reconciliação pendente no Redis.", err)
		return apperror.NewInternalError("Falha ao gravar reconciliação pendente.", err)
	}

	r.logger.Debug("Reconciliação pendente gravada.", map[string]interface{}{"sale_id": out.Sale.ID, "failed": out.FailedIDs()})
	return nil
}

// GetPending lê o relatório de uma venda. Devolve NotFoundError se não houver pendência.
func (r *PendingRepository) GetPending(ctx context.Context, saleID string) (saleservice.Outcome, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cached, err := r.Cache.Get(ctxTimeout, fmt.Sprintf(pendingKey, saleID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return saleservice.Outcome{}, apperror.NewNotFoundError(fmt.Sprintf("Nenhuma reconciliação pendente para a venda %s.", saleID))
	}
	if err != nil {
		r.logger.Error("Falha ao ler reconciliação pendente do Redis.", err)
		return saleservice.Outcome{}, apperror.NewInternalError("Falha ao ler reconciliação pendente.", err)
	}

	var out saleservice.Outcome
	if err := json.Unmarshal([]byte(cached), &out); err != nil {
		return saleservice.Outcome{}, apperror.NewInternalError("Reconciliação pendente corrompida.", err)
	}
	return out, nil
}

// DeletePending remove o relatório depois da reconciliação.
func (r *PendingRepository) DeletePending(ctx context.Context, saleID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if err := r.Cache.Delete(ctxTimeout, fmt.Sprintf(pendingKey, saleID)); err != nil {
		r.logger.Error("Falha ao remover reconciliação pendente do Redis.", err)
		return apperror.NewInternalError("Falha ao remover reconciliação pendente.", err)
	}
	return nil
}
