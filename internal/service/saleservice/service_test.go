package saleservice_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gopos/config"
	"gopos/internal/cart"
	"gopos/internal/domain"
	apperror "gopos/internal/errors"
	"gopos/internal/pkg/logger"
	"gopos/internal/service/catalogservice"
	"gopos/internal/service/saleservice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockStore implementa SaleRepository, StockRepository e BatchStockRepository.
// Um único mock permite verificar a ordem das chamadas de persistência.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RecordSale(ctx context.Context, draft domain.SaleRecord) (domain.SaleRecord, error) {
	args := m.Called(ctx, draft)
	if rec, ok := args.Get(0).(domain.SaleRecord); ok {
		return rec, args.Error(1)
	}
	return draft, args.Error(1)
}

func (m *MockStore) FindSaleByID(ctx context.Context, id string) (domain.SaleRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.SaleRecord), args.Error(1)
}

func (m *MockStore) SetItemStock(ctx context.Context, itemID string, newQuantity decimal.Decimal) error {
	args := m.Called(ctx, itemID, newQuantity)
	return args.Error(0)
}

func (m *MockStore) ApplyStockDecrements(ctx context.Context, decrements []domain.StockDecrement) error {
	args := m.Called(ctx, decrements)
	return args.Error(0)
}

// MockCatalogRepository alimenta o catalogservice real usado pelo finalizador.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) ListSellableItems(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogRepository) ListInputItems(ctx context.Context) ([]domain.InputItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InputItem), args.Error(1)
}

// memPending é um PendingStore em memória.
type memPending struct {
	mu   sync.Mutex
	data map[string]saleservice.Outcome
}

func newMemPending() *memPending {
	return &memPending{data: map[string]saleservice.Outcome{}}
}

func (p *memPending) SavePending(_ context.Context, out saleservice.Outcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[out.Sale.ID] = out
	return nil
}

func (p *memPending) GetPending(_ context.Context, saleID string) (saleservice.Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out, ok := p.data[saleID]
	if !ok {
		return saleservice.Outcome{}, apperror.NewNotFoundError("pendência não encontrada")
	}
	return out, nil
}

func (p *memPending) DeletePending(_ context.Context, saleID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, saleID)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

var (
	itemA = domain.CatalogItem{ID: "A", Name: "Café", Price: dec("10"), Available: domain.BoundedInt(5)}
	itemB = domain.CatalogItem{ID: "B", Name: "Torta", Price: dec("25"), Available: domain.BoundedInt(4)}
	itemS = domain.CatalogItem{ID: "S", Name: "Entrega", Price: dec("5"), Available: domain.Unlimited()}
)

type fixture struct {
	store   *MockStore
	catRepo *MockCatalogRepository
	catalog *catalogservice.Service
	pending *memPending
	svc     *saleservice.Service
}

func newFixture(t *testing.T, mode string, items ...domain.CatalogItem) *fixture {
	t.Helper()
	f := &fixture{
		store:   new(MockStore),
		catRepo: new(MockCatalogRepository),
		pending: newMemPending(),
	}
	f.catalog = catalogservice.NewService(f.catRepo, logger.NewNop())
	if items != nil {
		f.catRepo.On("ListSellableItems", mock.Anything).Return(items, nil)
	}
	f.svc = saleservice.NewService(f.store, f.store, f.catalog, f.pending, logger.NewNop(), saleservice.Options{
		Mode:         mode,
		Currency:     "ARS",
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})
	return f
}

// cartAB monta o carrinho 3 x A (10) + 2 x B (25) = 80.
func cartAB(t *testing.T) *cart.Cart {
	t.Helper()
	c := cart.New()
	_, err := c.AddItem(itemA)
	require.NoError(t, err)
	_, err = c.AddItem(itemB)
	require.NoError(t, err)
	_, err = c.UpdateQuantity("A", 3)
	require.NoError(t, err)
	_, err = c.UpdateQuantity("B", 2)
	require.NoError(t, err)
	return c
}

func methods(m *mock.Mock) []string {
	var out []string
	for _, c := range m.Calls {
		out = append(out, c.Method)
	}
	return out
}

func TestFinalize_CompletesSale(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	c := cartAB(t)

	f.store.On("RecordSale", mock.Anything, mock.AnythingOfType("domain.SaleRecord")).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil)
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(nil)

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "caixa-1")

	require.NoError(t, err)
	assert.Equal(t, saleservice.StateCompleted, out.State)
	assert.Equal(t, []saleservice.State{
		saleservice.StateIdle,
		saleservice.StateValidating,
		saleservice.StateSubmitting,
		saleservice.StateApplying,
		saleservice.StateCompleted,
	}, out.Transitions)

	require.NotNil(t, out.Sale)
	assert.Equal(t, "80.00", cart.Format(out.Sale.Subtotal))
	assert.Equal(t, "16.80", cart.Format(out.Sale.Tax))
	assert.Equal(t, "96.80", cart.Format(out.Sale.Total))
	assert.Equal(t, domain.PaymentCash, out.Sale.PaymentMethod)
	assert.Equal(t, "ARS", out.Sale.Currency)
	assert.Equal(t, "caixa-1", out.Sale.CashierID)
	assert.True(t, strings.HasPrefix(out.Sale.ReceiptNumber, "R-"))
	require.Len(t, out.Sale.Lines, 2)
	assert.Equal(t, "A", out.Sale.Lines[0].ItemID)
	assert.Equal(t, 3, out.Sale.Lines[0].Quantity)
	assert.True(t, dec("50").Equal(out.Sale.Lines[1].LineTotal))

	assert.Equal(t, []string{"RecordSale", "SetItemStock", "SetItemStock"}, methods(&f.store.Mock))
	assert.Equal(t, "A", f.store.Calls[1].Arguments.String(1))
	assert.Equal(t, "B", f.store.Calls[2].Arguments.String(1))
	assert.Equal(t, []string{"A", "B"}, out.SucceededIDs())
	assert.True(t, dec("5").Equal(out.Succeeded[0].PreviousStock))

	assert.True(t, c.IsEmpty(), "as quantidades vendidas saem do carrinho")
	f.store.AssertExpectations(t)
	// Validação + recarga pós-venda.
	f.catRepo.AssertNumberOfCalls(t, "ListSellableItems", 2)
}

func TestFinalize_TwoLineCashSale(t *testing.T) {
	coffee := domain.CatalogItem{ID: "A", Name: "Café", Price: dec("10"), Available: domain.BoundedInt(5)}
	cake := domain.CatalogItem{ID: "B", Name: "Bolo", Price: dec("50"), Available: domain.BoundedInt(3)}
	f := newFixture(t, config.DecrementBestEffort, coffee, cake)

	c := cart.New()
	_, err := c.AddItem(coffee)
	require.NoError(t, err)
	_, err = c.AddItem(cake)
	require.NoError(t, err)
	_, err = c.UpdateQuantity("A", 3)
	require.NoError(t, err)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(nil).Once()

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

	require.NoError(t, err)
	assert.Equal(t, saleservice.StateCompleted, out.State)
	assert.Equal(t, "80.00", cart.Format(out.Sale.Subtotal))
	assert.Equal(t, "16.80", cart.Format(out.Sale.Tax))
	assert.Equal(t, "96.80", cart.Format(out.Sale.Total))

	require.Len(t, out.Sale.Lines, 2)
	assert.Equal(t, "A", out.Sale.Lines[0].ItemID)
	assert.Equal(t, 3, out.Sale.Lines[0].Quantity)
	assert.True(t, dec("10").Equal(out.Sale.Lines[0].UnitPrice))
	assert.Equal(t, "B", out.Sale.Lines[1].ItemID)
	assert.Equal(t, 1, out.Sale.Lines[1].Quantity)
	assert.True(t, dec("50").Equal(out.Sale.Lines[1].UnitPrice))

	f.store.AssertNumberOfCalls(t, "SetItemStock", 2)
	assert.Equal(t, []string{"RecordSale", "SetItemStock", "SetItemStock"}, methods(&f.store.Mock))
	assert.Equal(t, "A", f.store.Calls[1].Arguments.String(1))
	assert.Equal(t, "B", f.store.Calls[2].Arguments.String(1))
	assert.True(t, c.IsEmpty())
}

func TestFinalize_SecondDecrementFails(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	c := cartAB(t)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil)
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(errors.New("connection reset"))

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

	require.Error(t, err)
	var pf *apperror.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, []string{"A"}, pf.Succeeded)
	assert.Equal(t, []string{"B"}, pf.Failed)

	assert.Equal(t, saleservice.StatePartiallyFailed, out.State)
	assert.Equal(t, saleservice.ReasonStockUpdateFailed, out.Reason)
	assert.Equal(t, []string{"A"}, out.SucceededIDs())
	require.Len(t, out.Failed, 1)
	assert.True(t, out.Failed[0].Attempted)
	assert.Contains(t, out.Failed[0].Error, "connection reset")

	assert.False(t, c.IsEmpty(), "o carrinho não deve ser limpo em falha parcial")
	assert.Len(t, c.Lines(), 2)

	pending, err := f.svc.Pending(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, pending.FailedIDs())
}

func TestFinalize_FirstDecrementFailsStopsSequence(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	c := cartAB(t)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", mock.Anything).Return(errors.New("timeout"))

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCard, "")

	require.Error(t, err)
	assert.Equal(t, []string{"A", "B"}, out.FailedIDs())
	assert.True(t, out.Failed[0].Attempted)
	assert.False(t, out.Failed[1].Attempted)
	f.store.AssertNotCalled(t, "SetItemStock", mock.Anything, "B", mock.Anything)
}

func TestFinalize_EmptyCart(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)

	out, err := f.svc.Finalize(context.Background(), cart.New(), domain.PaymentCash, "")

	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	assert.Equal(t, saleservice.StateRejected, out.State)
	assert.Equal(t, apperror.ReasonEmptyCart, out.Reason)
	assert.Empty(t, f.store.Calls)
	assert.Empty(t, f.catRepo.Calls)
}

func TestFinalize_NoPaymentMethod(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)
	c := cartAB(t)

	out, err := f.svc.Finalize(context.Background(), c, "  ", "")

	assert.ErrorIs(t, err, apperror.ErrNoPaymentMethod)
	assert.Equal(t, saleservice.StateRejected, out.State)
	assert.Empty(t, f.store.Calls)
	assert.Empty(t, f.catRepo.Calls)
	assert.Len(t, c.Lines(), 2)
}

func TestFinalize_InsufficientStockAfterReload(t *testing.T) {
	// Outro caixa vendeu B: restou apenas 1 unidade.
	soldOut := itemB
	soldOut.Available = domain.BoundedInt(1)
	f := newFixture(t, config.DecrementBestEffort, itemA, soldOut)
	c := cartAB(t)

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, &apperror.RejectionError{Reason: apperror.ReasonInsufficientStock, ItemID: "B"})
	assert.Equal(t, saleservice.StateRejected, out.State)
	assert.Equal(t, apperror.ReasonInsufficientStock, out.Reason)
	assert.Equal(t, "B", out.ItemID)
	assert.Empty(t, f.store.Calls)
	assert.Len(t, c.Lines(), 2)
}

func TestFinalize_ItemRemovedFromCatalog(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA)
	c := cartAB(t)

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

	require.Error(t, err)
	assert.Equal(t, apperror.ReasonInsufficientStock, out.Reason)
	assert.Equal(t, "B", out.ItemID)
}

func TestFinalize_ReloadFailureUsesLastSnapshot(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem{itemA, itemB}, nil).Once()
	_, err := f.catalog.ReloadItems(context.Background())
	require.NoError(t, err)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem(nil), errors.New("db down"))

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	out, err := f.svc.Finalize(context.Background(), cartAB(t), domain.PaymentCash, "")

	require.NoError(t, err)
	assert.Equal(t, saleservice.StateCompleted, out.State)
}

func TestFinalize_SaleNotRecorded(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	c := cartAB(t)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(domain.SaleRecord{}, errors.New("timeout"))

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentTransfer, "")

	var notRecorded *apperror.SaleNotRecordedError
	require.ErrorAs(t, err, &notRecorded)
	assert.Equal(t, saleservice.StatePartiallyFailed, out.State)
	assert.Equal(t, saleservice.ReasonSaleNotRecorded, out.Reason)
	assert.Nil(t, out.Sale)
	f.store.AssertNotCalled(t, "SetItemStock", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, c.Lines(), 2)
}

func TestFinalize_UnlimitedItemsAreSkipped(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemS)
	c := cart.New()
	_, err := c.AddItem(itemA)
	require.NoError(t, err)
	_, err = c.AddItem(itemS)
	require.NoError(t, err)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("4")).Return(nil)

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

	require.NoError(t, err)
	assert.Equal(t, []string{"S"}, out.Skipped)
	f.store.AssertNotCalled(t, "SetItemStock", mock.Anything, "S", mock.Anything)
	f.store.AssertNumberOfCalls(t, "SetItemStock", 1)
}

func TestFinalize_CancelledDuringValidation(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := f.svc.Finalize(ctx, cartAB(t), domain.PaymentCash, "")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, saleservice.StateRejected, out.State)
	assert.Equal(t, saleservice.ReasonCancelled, out.Reason)
	assert.Empty(t, f.store.Calls)
}

func TestFinalize_AtomicMode(t *testing.T) {
	t.Run("aplica todas as baixas em lote", func(t *testing.T) {
		f := newFixture(t, config.DecrementAtomic, itemA, itemB)
		c := cartAB(t)

		f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
		f.store.On("ApplyStockDecrements", mock.Anything, mock.MatchedBy(func(d []domain.StockDecrement) bool {
			return len(d) == 2 && d[0].ItemID == "A" && d[0].Quantity.Equal(dec("3")) &&
				d[1].ItemID == "B" && d[1].Quantity.Equal(dec("2"))
		})).Return(nil)

		out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

		require.NoError(t, err)
		assert.Equal(t, saleservice.StateCompleted, out.State)
		f.store.AssertNotCalled(t, "SetItemStock", mock.Anything, mock.Anything, mock.Anything)
		assert.True(t, c.IsEmpty())
	})

	t.Run("falha do lote não aplica nenhuma baixa", func(t *testing.T) {
		f := newFixture(t, config.DecrementAtomic, itemA, itemB)
		c := cartAB(t)

		f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
		f.store.On("ApplyStockDecrements", mock.Anything, mock.Anything).
			Return(apperror.NewConflictError("estoque insuficiente para B"))

		out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")

		require.Error(t, err)
		assert.Equal(t, saleservice.StatePartiallyFailed, out.State)
		assert.Empty(t, out.Succeeded)
		assert.Equal(t, []string{"A", "B"}, out.FailedIDs())
		assert.False(t, c.IsEmpty())
	})
}

func TestFinalize_ConcurrentCheckoutOfSameCart(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB, itemS)
	c := cartAB(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.store.On("RecordSale", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil, nil).Once()
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(nil).Once()

	type result struct {
		out saleservice.Outcome
		err error
	}
	first := make(chan result, 1)
	go func() {
		out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "caixa-1")
		first <- result{out, err}
	}()
	<-entered

	// Clique duplo: a segunda finalização é recusada sem tocar a persistência.
	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "caixa-1")
	var conflict *apperror.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, saleservice.StateRejected, out.State)
	assert.Equal(t, saleservice.ReasonCheckoutInProgress, out.Reason)

	// Item adicionado durante o registro não faz parte da venda.
	_, err = c.AddItem(itemS)
	require.NoError(t, err)

	close(release)
	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, saleservice.StateCompleted, res.out.State)

	f.store.AssertNumberOfCalls(t, "RecordSale", 1)
	f.store.AssertNumberOfCalls(t, "SetItemStock", 2)
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "S", lines[0].ItemID)

	// Terminada a primeira, o carrinho aceita nova finalização.
	_, ok := c.BeginCheckout()
	assert.True(t, ok)
	c.EndCheckout()
}

func TestReconcile(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)
	c := cartAB(t)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(errors.New("timeout")).Twice()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(nil).Once()

	out, err := f.svc.Finalize(context.Background(), c, domain.PaymentCash, "")
	require.Error(t, err)
	saleID := out.Sale.ID

	// Primeira tentativa da reconciliação falha e é repetida com backoff.
	rec, err := f.svc.Reconcile(context.Background(), saleID)

	require.NoError(t, err)
	assert.Equal(t, saleservice.StateCompleted, rec.State)
	assert.Equal(t, []string{"A", "B"}, rec.SucceededIDs())
	assert.Empty(t, rec.Failed)

	_, err = f.svc.Pending(context.Background(), saleID)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	f.store.AssertExpectations(t)
}

func TestReconcile_AppliesOnCurrentStock(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem{itemA, itemB}, nil).Once()

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(errors.New("timeout")).Once()

	out, err := f.svc.Finalize(context.Background(), cartAB(t), domain.PaymentCash, "")
	require.Error(t, err)

	// Outro caixa vendeu 1 unidade de B antes da reconciliação: restam 3.
	bNow := itemB
	bNow.Available = domain.BoundedInt(3)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem{itemA, bNow}, nil)
	f.store.On("SetItemStock", mock.Anything, "B", decEq("1")).Return(nil).Once()

	rec, err := f.svc.Reconcile(context.Background(), out.Sale.ID)

	require.NoError(t, err)
	assert.Equal(t, saleservice.StateCompleted, rec.State)
	// A baixa de B foi gravada sobre o estoque atual (3 - 2), não sobre o da venda (4 - 2).
	f.store.AssertNumberOfCalls(t, "SetItemStock", 3)
	last := rec.Succeeded[len(rec.Succeeded)-1]
	assert.Equal(t, "B", last.ItemID)
	assert.True(t, dec("3").Equal(last.PreviousStock))
	assert.True(t, dec("1").Equal(last.NewStock))
	f.store.AssertExpectations(t)
}

func TestReconcile_InsufficientCurrentStockKeepsPending(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem{itemA, itemB}, nil).Once()

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", decEq("2")).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", decEq("2")).Return(errors.New("timeout")).Once()

	out, err := f.svc.Finalize(context.Background(), cartAB(t), domain.PaymentCash, "")
	require.Error(t, err)

	// Restou 1 unidade de B; a baixa pendente é de 2.
	bNow := itemB
	bNow.Available = domain.BoundedInt(1)
	f.catRepo.On("ListSellableItems", mock.Anything).Return([]domain.CatalogItem{itemA, bNow}, nil)

	rec, err := f.svc.Reconcile(context.Background(), out.Sale.ID)

	var pf *apperror.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, saleservice.StatePartiallyFailed, rec.State)
	assert.Equal(t, []string{"B"}, rec.FailedIDs())
	assert.Contains(t, rec.Failed[0].Error, apperror.ReasonInsufficientStock)
	assert.True(t, dec("1").Equal(rec.Failed[0].PreviousStock))
	f.store.AssertNumberOfCalls(t, "SetItemStock", 2)

	pending, err := f.svc.Pending(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, pending.FailedIDs())
}

func TestReconcile_NonRetryableErrorKeepsPending(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort, itemA, itemB)

	f.store.On("RecordSale", mock.Anything, mock.Anything).Return(nil, nil)
	f.store.On("SetItemStock", mock.Anything, "A", mock.Anything).Return(nil).Once()
	f.store.On("SetItemStock", mock.Anything, "B", mock.Anything).Return(errors.New("timeout")).Once()
	f.store.On("SetItemStock", mock.Anything, "B", mock.Anything).Return(apperror.NewNotFoundError("item B")).Once()

	out, err := f.svc.Finalize(context.Background(), cartAB(t), domain.PaymentCash, "")
	require.Error(t, err)

	rec, err := f.svc.Reconcile(context.Background(), out.Sale.ID)

	require.Error(t, err)
	assert.Equal(t, saleservice.StatePartiallyFailed, rec.State)
	assert.Equal(t, []string{"B"}, rec.FailedIDs())
	f.store.AssertNumberOfCalls(t, "SetItemStock", 3)

	pending, err := f.svc.Pending(context.Background(), out.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, pending.FailedIDs())
}

func TestReconcile_UnknownSale(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)

	_, err := f.svc.Reconcile(context.Background(), "nao-existe")

	assert.IsType(t, &apperror.NotFoundError{}, err)
}

func TestGetSale_InvalidID(t *testing.T) {
	f := newFixture(t, config.DecrementBestEffort)

	_, err := f.svc.GetSale(context.Background(), "abc")

	assert.IsType(t, &apperror.ValidationError{}, err)
	assert.Empty(t, f.store.Calls)
}
